package cachemanager

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockCache struct {
	mock.Mock
}

func (m *mockCache) Get(ctx context.Context, key string) (int, bool) {
	args := m.Called(ctx, key)
	return args.Int(0), args.Bool(1)
}

func (m *mockCache) Set(ctx context.Context, key string, value int, ttl time.Duration) {
	m.Called(ctx, key, value, ttl)
}

func (m *mockCache) Delete(ctx context.Context, keys ...string) error { return nil }
func (m *mockCache) Flush(ctx context.Context) error                  { return nil }
func (m *mockCache) Len() int                                         { return 0 }

func TestReadThroughCache_HitSkipsCompute(t *testing.T) {
	ctx := context.Background()
	c := &mockCache{}
	c.On("Get", ctx, "k").Return(7, true)

	calls := 0
	rt := NewReadThroughCache[string, int, string](c, func(context.Context, string) (int, error) {
		calls++
		return 0, nil
	}, false)

	got, err := rt.Get(ctx, "k", "src", time.Minute)
	require.NoError(t, err)
	require.Equal(t, 7, got)
	require.Zero(t, calls)
	c.AssertExpectations(t)
}

func TestReadThroughCache_MissComputesAndStores(t *testing.T) {
	ctx := context.Background()
	c := &mockCache{}
	c.On("Get", ctx, "k").Return(0, false)
	c.On("Set", ctx, "k", 5, time.Minute).Return()

	rt := NewReadThroughCache[string, int, string](c, func(_ context.Context, in string) (int, error) {
		return len(in), nil
	}, false)

	got, err := rt.Get(ctx, "k", "hello", time.Minute)
	require.NoError(t, err)
	require.Equal(t, 5, got)
	c.AssertExpectations(t)
}

func TestReadThroughCache_ErrorNotCached(t *testing.T) {
	ctx := context.Background()
	c := &mockCache{}
	c.On("Get", ctx, "k").Return(0, false)

	rt := NewReadThroughCache[string, int, string](c, func(context.Context, string) (int, error) {
		return 0, errors.New("boom")
	}, false)

	_, err := rt.Get(ctx, "k", "x", time.Minute)
	require.EqualError(t, err, "boom")
	c.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReadThroughCache_Disabled(t *testing.T) {
	c := &mockCache{}
	rt := NewReadThroughCache[string, int, string](c, func(context.Context, string) (int, error) {
		return 1, nil
	}, true)

	got, err := rt.Get(context.Background(), "k", "x", time.Minute)
	require.NoError(t, err)
	require.Equal(t, 1, got)
	c.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}
