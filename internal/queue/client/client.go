package client

import (
	"context"
	"sync"

	"github.com/hibiken/asynq"
)

type ctxKey int

const (
	_ ctxKey = iota
	asynqCtxKey
)

var (
	globalClient *asynq.Client
	globalMu     sync.RWMutex
)

// NewContext returns a context carrying its own asynq client, overriding the
// global one. Used in tests.
func NewContext(ctx context.Context, client *asynq.Client) context.Context {
	return context.WithValue(ctx, asynqCtxKey, client)
}

// GetClient returns the context-scoped client if present, otherwise the
// global one set with SetClient. Safe for concurrent use.
func GetClient(ctx context.Context) *asynq.Client {
	c := ctx.Value(asynqCtxKey)
	if c != nil {
		client, ok := c.(*asynq.Client)
		if !ok {
			return nil
		}

		return client
	}

	globalMu.RLock()
	client := globalClient
	globalMu.RUnlock()

	return client
}

// SetClient replaces the global client, and returns a function to restore the
// previous value. Safe for concurrent use.
func SetClient(client *asynq.Client) func() {
	globalMu.Lock()
	prev := globalClient
	globalClient = client
	globalMu.Unlock()
	return func() { SetClient(prev) }
}
