package gallery

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLoader struct {
	mu         sync.Mutex
	calls      int
	identities []Identity
	err        error
}

func (s *stubLoader) LoadScope(companyId, groupId int64) ([]Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.identities, nil
}

func (s *stubLoader) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestCacheLoadCachesView(t *testing.T) {
	loader := &stubLoader{identities: []Identity{
		{EmployeeId: 1, Name: "Alice Smith", Descriptors: [][]float64{{0.1, 0.2}}},
	}}
	cache := NewCache(loader)

	v1, err := cache.Load(10, 20)
	require.NoError(t, err)
	v2, err := cache.Load(10, 20)
	require.NoError(t, err)

	assert.Same(t, v1, v2)
	assert.Equal(t, 1, loader.callCount())
	assert.Equal(t, int64(10), v1.CompanyId)
	assert.Equal(t, int64(20), v1.GroupId)
}

func TestCacheInvalidateForcesReload(t *testing.T) {
	loader := &stubLoader{identities: []Identity{{EmployeeId: 1, Name: "Alice Smith"}}}
	cache := NewCache(loader)

	v1, err := cache.Load(10, 20)
	require.NoError(t, err)

	cache.Invalidate(10, 20)

	v2, err := cache.Load(10, 20)
	require.NoError(t, err)

	assert.NotSame(t, v1, v2)
	assert.Equal(t, 2, loader.callCount())
	assert.Greater(t, v2.Generation, v1.Generation)
}

func TestCacheScopesAreIndependent(t *testing.T) {
	loader := &stubLoader{}
	cache := NewCache(loader)

	_, err := cache.Load(10, 20)
	require.NoError(t, err)
	_, err = cache.Load(10, 21)
	require.NoError(t, err)

	assert.Equal(t, 2, loader.callCount())

	// Invalidating one scope must not touch the other.
	cache.Invalidate(10, 20)
	_, err = cache.Load(10, 21)
	require.NoError(t, err)
	assert.Equal(t, 2, loader.callCount())
}

func TestCacheEmptyScopeIsNotAnError(t *testing.T) {
	cache := NewCache(&stubLoader{})

	v, err := cache.Load(1, 2)
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.True(t, v.Empty())
}

func TestCacheLoaderErrorPassesThrough(t *testing.T) {
	boom := errors.New("store unreachable")
	cache := NewCache(&stubLoader{err: boom})

	_, err := cache.Load(1, 2)
	assert.ErrorIs(t, err, boom)
}

// gatedLoader blocks its first LoadScope call until released, snapshotting the
// identity list on entry the way a real query would.
type gatedLoader struct {
	mu         sync.Mutex
	identities []Identity
	calls      int

	entered chan struct{} // closed once the first call is inside
	release chan struct{} // first call waits on this
}

func newGatedLoader(identities []Identity) *gatedLoader {
	return &gatedLoader{
		identities: identities,
		entered:    make(chan struct{}),
		release:    make(chan struct{}),
	}
}

func (l *gatedLoader) LoadScope(companyId, groupId int64) ([]Identity, error) {
	l.mu.Lock()
	l.calls++
	first := l.calls == 1
	snapshot := l.identities
	l.mu.Unlock()

	if first {
		close(l.entered)
		<-l.release
	}
	return snapshot, nil
}

func (l *gatedLoader) setIdentities(identities []Identity) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.identities = identities
}

func (l *gatedLoader) callCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

func TestCacheInvalidateDuringLoadIsNotLost(t *testing.T) {
	loader := newGatedLoader([]Identity{{EmployeeId: 1, Name: "Old Enrollee"}})
	cache := NewCache(loader)

	got := make(chan *View, 1)
	go func() {
		v, err := cache.Load(10, 20)
		assert.NoError(t, err)
		got <- v
	}()

	// While the first load is stuck inside the store with pre-enrollment
	// data, a new employee is enrolled and the scope invalidated.
	<-loader.entered
	loader.setIdentities([]Identity{
		{EmployeeId: 1, Name: "Old Enrollee"},
		{EmployeeId: 2, Name: "New Enrollee"},
	})
	cache.Invalidate(10, 20)
	close(loader.release)

	// The in-flight load must not cache or return the pre-enrollment view.
	v := <-got
	require.NotNil(t, v)
	require.Len(t, v.Identities, 2)
	assert.Equal(t, "New Enrollee", v.Identities[1].Name)
	assert.GreaterOrEqual(t, loader.callCount(), 2)

	// And the cached view afterwards is the post-enrollment one.
	v, err := cache.Load(10, 20)
	require.NoError(t, err)
	assert.Len(t, v.Identities, 2)
}

func TestCacheConcurrentLoadAndInvalidate(t *testing.T) {
	loader := &stubLoader{identities: []Identity{
		{EmployeeId: 1, Name: "Alice Smith", Descriptors: [][]float64{{0.5}}},
	}}
	cache := NewCache(loader)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				v, err := cache.Load(10, 20)
				// A view is always complete: either one identity or none,
				// never a torn intermediate.
				if !assert.NoError(t, err) || !assert.NotNil(t, v) {
					return
				}
				if len(v.Identities) > 0 {
					assert.Equal(t, "Alice Smith", v.Identities[0].Name)
				}
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 200; j++ {
			cache.Invalidate(10, 20)
		}
	}()
	wg.Wait()
}

func TestCacheSweepDropsIdleViews(t *testing.T) {
	loader := &stubLoader{}
	cache := NewCache(loader)

	_, err := cache.Load(1, 1)
	require.NoError(t, err)

	// Nothing is older than an hour yet.
	assert.Equal(t, 0, cache.Sweep(time.Hour))

	// With a zero idle budget everything read before now is stale.
	time.Sleep(time.Millisecond)
	assert.Equal(t, 1, cache.Sweep(0))

	_, err = cache.Load(1, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, loader.callCount())
}
