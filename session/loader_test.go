package session

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitLoaded(t *testing.T, l *Loader) {
	t.Helper()
	select {
	case <-l.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("loader did not finish")
	}
}

func TestLoaderDispatchesOnce(t *testing.T) {
	store := NewStore()
	var dispatches int32
	store.Subscribe(func(_, _ Session) { atomic.AddInt32(&dispatches, 1) })

	var fetches int32
	loader := NewLoader(store, FetcherFunc(func(ctx context.Context) (LoginSucceeded, error) {
		atomic.AddInt32(&fetches, 1)
		return LoginSucceeded{Profile: &Profile{Name: "Admin", Role: "manager"}, Token: "t1"}, nil
	}))
	assert.True(t, loader.IsLoading())

	loader.Start(context.Background())
	loader.Start(context.Background())
	waitLoaded(t, loader)

	assert.False(t, loader.IsLoading())
	assert.NoError(t, loader.Err())
	assert.Equal(t, int32(1), atomic.LoadInt32(&fetches))
	assert.Equal(t, int32(1), atomic.LoadInt32(&dispatches))
	assert.Equal(t, "Admin", store.GetState().Profile.Name)
}

func TestLoaderFailureLeavesUnauthenticated(t *testing.T) {
	store := NewStore()
	boom := errors.New("session endpoint unavailable")
	loader := NewLoader(store, FetcherFunc(func(ctx context.Context) (LoginSucceeded, error) {
		return LoginSucceeded{}, boom
	}))

	loader.Start(context.Background())
	err := loader.Wait(context.Background())

	assert.ErrorIs(t, err, boom)
	assert.False(t, loader.IsLoading())
	assert.False(t, store.GetState().IsAuthenticated)
}

func TestLoaderRejectsIncompleteSession(t *testing.T) {
	store := NewStore()
	loader := NewLoader(store, FetcherFunc(func(ctx context.Context) (LoginSucceeded, error) {
		return LoginSucceeded{Token: "orphan"}, nil
	}))

	loader.Start(context.Background())
	assert.ErrorIs(t, loader.Wait(context.Background()), ErrInvalidSession)
	assert.False(t, store.GetState().IsAuthenticated)
}

func TestLoaderIgnoresLateResolution(t *testing.T) {
	store := NewStore()
	release := make(chan struct{})
	loader := NewLoader(store, FetcherFunc(func(ctx context.Context) (LoginSucceeded, error) {
		<-release
		return LoginSucceeded{Profile: &Profile{Name: "Admin", Role: "manager"}, Token: "late"}, nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	loader.Start(ctx)
	cancel()
	waitLoaded(t, loader)
	close(release)

	assert.ErrorIs(t, loader.Err(), context.Canceled)
	assert.False(t, loader.IsLoading())

	// give the abandoned fetch time to return; it must not reach the store
	time.Sleep(20 * time.Millisecond)
	assert.False(t, store.GetState().IsAuthenticated)
}

func TestDemoFetcher(t *testing.T) {
	ev, err := DemoFetcher(0).FetchSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &Profile{Name: "Admin", Role: "manager"}, ev.Profile)
	assert.Equal(t, "mock-token", ev.Token)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = DemoFetcher(time.Hour).FetchSession(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoaderWithDelayedMock(t *testing.T) {
	store := NewStore()
	loader := NewLoader(store, DemoFetcher(10*time.Millisecond))
	loader.Start(context.Background())

	assert.True(t, loader.IsLoading())
	require.NoError(t, loader.Wait(context.Background()))
	assert.Equal(t, "mock-token", store.GetState().Token)
}
