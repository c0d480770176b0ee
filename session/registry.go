package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Client is one mounted POS view client: its store and the loader that
// populated it.
type Client struct {
	ID     string
	Store  *Store
	Loader *Loader

	cancel   context.CancelFunc
	mu       sync.Mutex
	lastSeen time.Time
}

func (c *Client) touch(now time.Time) {
	c.mu.Lock()
	c.lastSeen = now
	c.mu.Unlock()
}

func (c *Client) idleSince() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSeen
}

// Observer is told about every transition of every client store.
type Observer func(clientID string, prev, next Session)

type RegistryOptions struct {
	// MaxIdle evicts clients not seen for this long. Zero disables eviction.
	MaxIdle time.Duration
	// Interval is how often the janitor looks for idle clients.
	Interval time.Duration
	Observer Observer
	// OnLoaded is called once per client when its session fetch finishes, with
	// the fetch error if any.
	OnLoaded func(clientID string, err error)
}

// Registry owns the stores of all mounted clients. Closing it tears every
// client down and cancels outstanding session fetches.
type Registry struct {
	opts RegistryOptions

	base   context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	clients map[string]*Client

	stopOnce sync.Once
	StopChan chan struct{}
	now      func() time.Time
}

func NewRegistry(opts RegistryOptions) *Registry {
	if opts.Interval <= 0 {
		opts.Interval = time.Minute
	}
	base, cancel := context.WithCancel(context.Background())
	return &Registry{
		opts:     opts,
		base:     base,
		cancel:   cancel,
		clients:  make(map[string]*Client),
		StopChan: make(chan struct{}),
		now:      time.Now,
	}
}

// Create mounts a new client and starts its session fetch.
func (r *Registry) Create(fetcher Fetcher) *Client {
	ctx, cancel := context.WithCancel(r.base)
	store := NewStore()
	client := &Client{
		ID:       uuid.NewString(),
		Store:    store,
		Loader:   NewLoader(store, fetcher),
		cancel:   cancel,
		lastSeen: r.now(),
	}
	if obs := r.opts.Observer; obs != nil {
		id := client.ID
		store.Subscribe(func(prev, next Session) { obs(id, prev, next) })
	}

	r.mu.Lock()
	r.clients[client.ID] = client
	r.mu.Unlock()

	client.Loader.Start(ctx)
	if cb := r.opts.OnLoaded; cb != nil {
		go func() {
			<-client.Loader.Done()
			cb(client.ID, client.Loader.Err())
		}()
	}
	return client
}

// Get returns a mounted client and marks it as seen.
func (r *Registry) Get(id string) (*Client, bool) {
	if id == "" {
		return nil, false
	}
	r.mu.Lock()
	client, ok := r.clients[id]
	r.mu.Unlock()
	if ok {
		client.touch(r.now())
	}
	return client, ok
}

// Release tears a client down. A fetch still in flight is cancelled and its
// result discarded.
func (r *Registry) Release(id string) {
	r.mu.Lock()
	client, ok := r.clients[id]
	delete(r.clients, id)
	r.mu.Unlock()
	if ok {
		client.cancel()
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

// Sweep releases clients idle for longer than MaxIdle and returns how many.
func (r *Registry) Sweep() int {
	if r.opts.MaxIdle <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.opts.MaxIdle)

	r.mu.Lock()
	var stale []*Client
	for id, c := range r.clients {
		if c.idleSince().Before(cutoff) {
			stale = append(stale, c)
			delete(r.clients, id)
		}
	}
	r.mu.Unlock()

	for _, c := range stale {
		c.cancel()
	}
	return len(stale)
}

// Start runs the idle janitor until Stop is called.
func (r *Registry) Start() {
	go func() {
		ticker := time.NewTicker(r.opts.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				r.Sweep()
			case <-r.StopChan:
				return
			}
		}
	}()
}

// Stop ends the janitor and tears down every client.
func (r *Registry) Stop() {
	r.stopOnce.Do(func() {
		close(r.StopChan)
		r.cancel()

		r.mu.Lock()
		r.clients = make(map[string]*Client)
		r.mu.Unlock()
	})
}
