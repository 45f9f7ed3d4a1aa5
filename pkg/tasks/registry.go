package tasks

import (
	"context"
	"fmt"
	"sync"
)

// Handler executes one task delivery.
type Handler func(ctx context.Context, env Envelope) error

type Registry struct {
	mtx      sync.RWMutex
	handlers map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

func (r *Registry) Register(name string, handler Handler) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.handlers[name] = handler
}

func (r *Registry) Lookup(name string) (Handler, error) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	if handler, ok := r.handlers[name]; ok {
		return handler, nil
	}
	return nil, fmt.Errorf("handler not registered for task %s", name)
}
