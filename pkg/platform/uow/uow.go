// Package uow provides an explicit unit-of-work handle carried in context.
//
// A Unit collects commit hooks while it is active. Commit runs them once, in
// registration order, after the surrounding work has been made durable;
// Rollback discards them without running any. Code that must only act on
// committed work (event emission, cache invalidation) asks the context for the
// active unit and registers a hook instead of acting immediately.
package uow

import (
	"context"
	"sync"
)

type state int

const (
	stateActive state = iota
	stateCommitted
	stateRolledBack
)

// Unit is a unit of work that can be committed or rolled back once.
type Unit struct {
	mu    sync.Mutex
	state state
	hooks []func()
}

// New returns an active unit of work.
func New() *Unit {
	return &Unit{}
}

// Active reports whether the unit has neither committed nor rolled back.
func (u *Unit) Active() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state == stateActive
}

// Pending returns the number of registered hooks waiting for commit.
func (u *Unit) Pending() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.hooks)
}

// OnCommit registers fn to run after a successful commit. When the unit is no
// longer active there is nothing to wait for and fn runs immediately.
func (u *Unit) OnCommit(fn func()) {
	u.mu.Lock()
	if u.state == stateActive {
		u.hooks = append(u.hooks, fn)
		u.mu.Unlock()
		return
	}
	u.mu.Unlock()
	fn()
}

// Commit marks the unit committed and runs its hooks in registration order.
// Calling Commit on a finished unit does nothing.
func (u *Unit) Commit() {
	u.mu.Lock()
	if u.state != stateActive {
		u.mu.Unlock()
		return
	}
	u.state = stateCommitted
	hooks := u.hooks
	u.hooks = nil
	u.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
}

// Rollback marks the unit rolled back and drops its hooks.
// Calling Rollback on a finished unit does nothing.
func (u *Unit) Rollback() {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.state != stateActive {
		return
	}
	u.state = stateRolledBack
	u.hooks = nil
}

type unitKey struct{}

// WithUnit stores u in ctx.
func WithUnit(ctx context.Context, u *Unit) context.Context {
	if u == nil {
		return ctx
	}
	return context.WithValue(ctx, unitKey{}, u)
}

// From returns the unit of work in ctx if it is still active.
func From(ctx context.Context) (*Unit, bool) {
	u, ok := ctx.Value(unitKey{}).(*Unit)
	if !ok || !u.Active() {
		return nil, false
	}
	return u, true
}

// Runner runs fn inside a unit of work.
type Runner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Local is a Runner for work with no backing database transaction.
type Local struct{}

// RunInTx implements Runner.
func (Local) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return Run(ctx, fn)
}

// Run executes fn in a new unit of work, committing when fn returns nil and
// rolling back when it returns an error or panics. When ctx already carries an
// active unit, fn joins it and the outermost Run decides the outcome.
func Run(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := From(ctx); ok {
		return fn(ctx)
	}

	u := New()
	defer u.Rollback()

	if err := fn(WithUnit(ctx, u)); err != nil {
		return err
	}
	u.Commit()
	return nil
}
