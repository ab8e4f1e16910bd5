package simple

import (
	"context"
	"sync/atomic"
)

// Generator hands out increasing ids. It is safe for concurrent use.
type Generator struct {
	counter atomic.Int64
}

func New() *Generator {
	//nolint:exhaustruct
	return &Generator{}
}

func (g *Generator) GetID(_ context.Context) (int, error) {
	return int(g.counter.Add(1)), nil
}
