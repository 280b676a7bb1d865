package lookup

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"twopane/internal/models"
)

type fetchResult struct {
	user *models.UserRecord
	err  error
}

// fakeFetcher hands every call a channel the test answers explicitly.
type fakeFetcher struct {
	mu    sync.Mutex
	calls []int
	reply map[int]chan fetchResult
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{reply: make(map[int]chan fetchResult)}
}

func (f *fakeFetcher) ch(id int) chan fetchResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.reply[id]
	if !ok {
		c = make(chan fetchResult, 1)
		f.reply[id] = c
	}
	return c
}

func (f *fakeFetcher) FetchUser(ctx context.Context, id int) (*models.UserRecord, error) {
	f.mu.Lock()
	f.calls = append(f.calls, id)
	f.mu.Unlock()

	select {
	case r := <-f.ch(id):
		return r.user, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeFetcher) waitCalls(t *testing.T, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return f.callCount() >= n }, time.Second, time.Millisecond)
}

type changeCounter struct {
	mu sync.Mutex
	n  int
}

func (c *changeCounter) inc() {
	c.mu.Lock()
	c.n++
	c.mu.Unlock()
}

func (c *changeCounter) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

func TestWidget_StartsIdle(t *testing.T) {
	w := NewWidget(newFakeFetcher(), newTestLogger(), nil)

	query, status := w.State()
	assert.Empty(t, query)
	assert.Equal(t, models.LookupIdle, status.State)
}

func TestWidget_InvalidInput_NoRequest(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	for _, raw := range []string{"0", "11", "abc", ""} {
		f := newFakeFetcher()
		w := NewWidget(f, newTestLogger(), nil)

		status := w.Search(context.Background(), raw)
		w.Wait()

		assert.Equal(t, models.LookupNotFound, status.State, "query %q", raw)
		assert.Equal(t, models.ReasonInvalidInput, status.Reason, "query %q", raw)
		assert.Zero(t, f.callCount(), "query %q must not reach the network", raw)
	}
}

func TestWidget_Found(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	f := newFakeFetcher()
	changes := &changeCounter{}
	w := NewWidget(f, newTestLogger(), changes.inc)

	status := w.Search(context.Background(), "5")
	assert.Equal(t, models.LookupLoading, status.State)

	user := &models.UserRecord{ID: 5, Name: "Chelsey Dietrich", Email: "c@d.info", Phone: "1", Website: "demarco.info"}
	f.ch(5) <- fetchResult{user: user}
	w.Wait()

	query, status := w.State()
	assert.Equal(t, "5", query)
	assert.Equal(t, models.LookupFound, status.State)
	assert.Equal(t, user, status.User)
	assert.Empty(t, status.Message)
	assert.Equal(t, 1, changes.count())
	assert.Equal(t, 1, f.callCount())
}

func TestWidget_MissingID(t *testing.T) {
	f := newFakeFetcher()
	w := NewWidget(f, newTestLogger(), nil)

	w.Search(context.Background(), "4")
	f.ch(4) <- fetchResult{user: &models.UserRecord{Name: "ghost"}}
	w.Wait()

	_, status := w.State()
	assert.Equal(t, models.LookupNotFound, status.State)
	assert.Equal(t, models.ReasonMissingID, status.Reason)
	assert.Nil(t, status.User)
}

func TestWidget_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"bad status", ErrBadStatus, "Network error"},
		{"transport", errors.New("dial tcp: connection refused"), "dial tcp: connection refused"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeFetcher()
			w := NewWidget(f, newTestLogger(), nil)

			w.Search(context.Background(), "2")
			f.ch(2) <- fetchResult{err: tt.err}
			w.Wait()

			_, status := w.State()
			assert.Equal(t, models.LookupError, status.State)
			assert.Equal(t, tt.want, status.Message)
			assert.Nil(t, status.User)
		})
	}
}

func TestWidget_StaleResultDropped(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	f := newFakeFetcher()
	changes := &changeCounter{}
	w := NewWidget(f, newTestLogger(), changes.inc)

	w.Search(context.Background(), "1")
	f.waitCalls(t, 1)
	w.Search(context.Background(), "2")
	f.waitCalls(t, 2)

	f.ch(2) <- fetchResult{user: &models.UserRecord{ID: 2, Name: "B"}}
	require.Eventually(t, func() bool { return changes.count() == 1 }, time.Second, time.Millisecond)

	// the first fetch was cancelled; even a late answer must not win
	f.ch(1) <- fetchResult{user: &models.UserRecord{ID: 1, Name: "A"}}
	w.Wait()

	_, status := w.State()
	require.Equal(t, models.LookupFound, status.State)
	assert.Equal(t, 2, status.User.ID)
	assert.Equal(t, 1, changes.count())
}

func TestWidget_InvalidSearchSupersedesInFlight(t *testing.T) {
	f := newFakeFetcher()
	w := NewWidget(f, newTestLogger(), nil)

	w.Search(context.Background(), "3")
	f.waitCalls(t, 1)
	w.Search(context.Background(), "42")
	f.ch(3) <- fetchResult{user: &models.UserRecord{ID: 3}}
	w.Wait()

	query, status := w.State()
	assert.Equal(t, "42", query)
	assert.Equal(t, models.LookupNotFound, status.State)
	assert.Equal(t, 1, f.callCount())
}

func TestWidget_FetchOutlivesRequestContext(t *testing.T) {
	f := newFakeFetcher()
	w := NewWidget(f, newTestLogger(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	w.Search(ctx, "6")
	cancel()

	f.ch(6) <- fetchResult{user: &models.UserRecord{ID: 6}}
	w.Wait()

	_, status := w.State()
	assert.Equal(t, models.LookupFound, status.State)
}

func TestWidget_Close(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	f := newFakeFetcher()
	changes := &changeCounter{}
	w := NewWidget(f, newTestLogger(), changes.inc)

	w.Search(context.Background(), "7")
	f.waitCalls(t, 1)
	w.Close()

	_, status := w.State()
	assert.Equal(t, models.LookupLoading, status.State)
	assert.Zero(t, changes.count())

	w.Search(context.Background(), "8")
	w.Wait()
	assert.Equal(t, 1, f.callCount(), "closed widget must not fetch")
}
