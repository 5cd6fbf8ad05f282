package pipe

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Namer hands out stage names of the form "Kind-N", counting separately per
// kind. The zero value is ready to use. Share one Namer between the stages of
// a pipeline to get stable names.
type Namer struct {
	mu       sync.Mutex
	counters map[string]int
}

// NewNamer returns a Namer with all counters at zero.
func NewNamer() *Namer {
	return &Namer{counters: make(map[string]int)}
}

// Next returns the next name for kind. On a nil Namer the suffix is random,
// which keeps names unique without shared state.
func (n *Namer) Next(kind string) string {
	if n == nil {
		return kind + "-" + uuid.NewString()[:8]
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.counters == nil {
		n.counters = make(map[string]int)
	}
	i := n.counters[kind]
	n.counters[kind] = i + 1
	return fmt.Sprintf("%s-%d", kind, i)
}
