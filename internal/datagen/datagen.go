// Package datagen produces the pseudo-random row values used to seed the
// example database: opaque description text and foreign-key ids drawn
// uniformly from the valid parent range.
package datagen

import (
	"math/rand"
	"strings"
	"sync"
	"time"
)

var words = []string{
	"lorem", "ipsum", "dolor", "sit", "amet", "consectetur", "adipiscing", "elit",
	"sed", "do", "eiusmod", "tempor", "incididunt", "ut", "labore", "et", "dolore",
	"magna", "aliqua", "enim", "ad", "minim", "veniam", "quis", "nostrud",
	"exercitation", "ullamco", "laboris", "nisi", "aliquip", "ex", "ea", "commodo",
	"consequat", "duis", "aute", "irure", "in", "reprehenderit", "voluptate",
	"velit", "esse", "cillum", "fugiat", "nulla", "pariatur", "excepteur", "sint",
	"product", "service", "platform", "digital", "cloud", "data", "system",
	"network", "performance", "solution", "integration", "analytics",
	"infrastructure", "management", "enterprise", "scalable", "reliable",
	"efficient", "modern", "premium", "customer", "market", "growth",
}

// Generator produces pseudo-random seed data. Not for anything
// security-sensitive; math/rand is fine for test data.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a Generator. A seed of 0 seeds from the current time;
// any other value gives a reproducible sequence.
func New(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

func (g *Generator) intn(n int) int {
	g.mu.Lock()
	v := g.rng.Intn(n)
	g.mu.Unlock()
	return v
}

// Description returns a short sentence of 3-8 lowercase words.
func (g *Generator) Description() string {
	count := 3 + g.intn(6)
	parts := make([]string, count)
	for i := range parts {
		parts[i] = words[g.intn(len(words))]
	}
	return strings.Join(parts, " ")
}

// RefID returns a foreign-key id uniform in [1, n].
func (g *Generator) RefID(n int) int64 {
	return int64(g.intn(n)) + 1
}
