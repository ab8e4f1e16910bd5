package session

import (
	"context"
	"sync"
)

type idGenerator interface {
	GetID(ctx context.Context) (int, error)
}

// Guard tracks the newest request generation per logical resource. A response
// is worth applying only if its generation is still the newest for its key.
type Guard struct {
	mu     sync.Mutex
	gen    idGenerator
	latest map[string]int
}

func NewGuard(gen idGenerator) *Guard {
	return &Guard{
		gen:    gen,
		latest: make(map[string]int),
	}
}

// Begin starts a request for key and returns its generation.
func (g *Guard) Begin(ctx context.Context, key string) (int, error) {
	id, err := g.gen.GetID(ctx)
	if err != nil {
		return 0, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if id > g.latest[key] {
		g.latest[key] = id
	}

	return id, nil
}

func (g *Guard) IsLatest(key string, generation int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.latest[key] == generation
}
