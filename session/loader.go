package session

import (
	"context"
	"sync"
	"time"
)

// Fetcher resolves the current session of a client from some external source.
type Fetcher interface {
	FetchSession(ctx context.Context) (LoginSucceeded, error)
}

// FetcherFunc adapts a plain function to Fetcher.
type FetcherFunc func(ctx context.Context) (LoginSucceeded, error)

func (f FetcherFunc) FetchSession(ctx context.Context) (LoginSucceeded, error) {
	return f(ctx)
}

// MockFetcher resolves to a fixed profile after Delay. It stands in for a real
// session endpoint during demos.
type MockFetcher struct {
	Delay   time.Duration
	Profile Profile
	Token   string
}

// DemoFetcher is the demo manager session resolved after delay.
func DemoFetcher(delay time.Duration) MockFetcher {
	return MockFetcher{
		Delay:   delay,
		Profile: Profile{Name: "Admin", Role: "manager"},
		Token:   "mock-token",
	}
}

func (m MockFetcher) FetchSession(ctx context.Context) (LoginSucceeded, error) {
	if m.Delay > 0 {
		timer := time.NewTimer(m.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return LoginSucceeded{}, ctx.Err()
		case <-timer.C:
		}
	}
	p := m.Profile
	return LoginSucceeded{Profile: &p, Token: m.Token}, nil
}

// Loader runs a single session fetch for one mounted client and populates its
// store. It is loading from construction until the fetch resolves, fails or is
// cancelled. A failed or cancelled fetch leaves the store untouched.
type Loader struct {
	store   *Store
	fetcher Fetcher

	once sync.Once
	done chan struct{}

	mu      sync.Mutex
	loading bool
	err     error
}

func NewLoader(store *Store, fetcher Fetcher) *Loader {
	return &Loader{
		store:   store,
		fetcher: fetcher,
		done:    make(chan struct{}),
		loading: true,
	}
}

// Start launches the fetch. Calls after the first are no-ops.
func (l *Loader) Start(ctx context.Context) {
	l.once.Do(func() {
		go l.run(ctx)
	})
}

func (l *Loader) run(ctx context.Context) {
	type result struct {
		event LoginSucceeded
		err   error
	}

	results := make(chan result, 1)
	go func() {
		ev, err := l.fetcher.FetchSession(ctx)
		results <- result{event: ev, err: err}
	}()

	select {
	case <-ctx.Done():
		l.finish(ctx.Err())
	case r := <-results:
		switch {
		case ctx.Err() != nil:
			// resolved after the client went away
			l.finish(ctx.Err())
		case r.err != nil:
			l.finish(r.err)
		case !r.event.complete():
			l.finish(ErrInvalidSession)
		default:
			l.store.Dispatch(r.event)
			l.finish(nil)
		}
	}
}

func (l *Loader) finish(err error) {
	l.mu.Lock()
	l.loading = false
	l.err = err
	l.mu.Unlock()
	close(l.done)
}

// IsLoading reports whether the fetch is still outstanding.
func (l *Loader) IsLoading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loading
}

// Err returns the failure of a finished fetch, or nil.
func (l *Loader) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// Done is closed once loading has ended.
func (l *Loader) Done() <-chan struct{} {
	return l.done
}

// Wait blocks until loading ends or ctx is done.
func (l *Loader) Wait(ctx context.Context) error {
	select {
	case <-l.done:
		return l.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}
