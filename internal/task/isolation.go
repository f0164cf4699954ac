package task

import (
	"context"
	"net/http"
)

// Isolation drives the backend's atomic test-isolation endpoints.
// Begin opens a reversible context, Rollback discards everything done since.
type Isolation struct {
	client *Client
}

// NewIsolation returns an Isolation that shares c's base URL and transport.
func NewIsolation(c *Client) *Isolation {
	return &Isolation{client: c}
}

// Begin starts an atomic context on the backend.
func (i *Isolation) Begin(ctx context.Context) error {
	return i.call(ctx, "atomic/begin/")
}

// Setup asks the backend to install its fixtures.
func (i *Isolation) Setup(ctx context.Context) error {
	return i.call(ctx, "atomic/setup/")
}

// Rollback reverts the current atomic context.
func (i *Isolation) Rollback(ctx context.Context) error {
	return i.call(ctx, "atomic/rollback/")
}

// Run calls fn between Begin and Rollback. Rollback runs even if fn fails;
// fn's error wins over a rollback error.
func (i *Isolation) Run(ctx context.Context, fn func(context.Context) error) (err error) {
	if err := i.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		if rbErr := i.Rollback(context.WithoutCancel(ctx)); rbErr != nil && err == nil {
			err = rbErr
		}
	}()
	return fn(ctx)
}

func (i *Isolation) call(ctx context.Context, rel string) error {
	_, _, err := i.client.do(ctx, "isolation", 0, http.MethodGet, i.client.resolve(rel), nil)
	return err
}
