package lookup

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"twopane/internal/models"
)

// Fetcher loads one user record by id.
type Fetcher interface {
	FetchUser(ctx context.Context, id int) (*models.UserRecord, error)
}

// Widget runs the search flow of the user lookup pane. Each search takes a
// new sequence number and cancels the fetch still in flight; a completed
// fetch is applied only while its sequence number is the latest one.
type Widget struct {
	fetcher  Fetcher
	onChange func()
	log      *slog.Logger

	mu     sync.Mutex
	query  string
	status models.LookupStatus
	seq    uint64
	cancel context.CancelFunc
	closed bool

	wg sync.WaitGroup
}

// NewWidget creates an idle widget. onChange, if set, is called without any
// widget lock held after a fetch result has been applied.
func NewWidget(fetcher Fetcher, logger *slog.Logger, onChange func()) *Widget {
	return &Widget{
		fetcher:  fetcher,
		onChange: onChange,
		log:      logger.With("component", "lookup"),
		status:   models.LookupStatus{State: models.LookupIdle},
	}
}

// Search starts a lookup for raw and returns the status it moved to: not
// found for input outside MinID..MaxID, loading otherwise. The fetch runs
// in the background with ctx's values but not its cancellation.
func (w *Widget) Search(ctx context.Context, raw string) models.LookupStatus {
	id, valid := ParseID(raw)

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return w.status
	}

	w.query = raw
	w.seq++
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}

	if !valid {
		w.status = models.LookupStatus{State: models.LookupNotFound, Reason: models.ReasonInvalidInput}
		w.log.DebugContext(ctx, "lookup rejected", slog.String("query", raw))
		return w.status
	}

	fetchCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	w.cancel = cancel
	w.status = models.LookupStatus{State: models.LookupLoading}

	w.wg.Add(1)
	go w.fetch(fetchCtx, cancel, w.seq, id)

	return w.status
}

func (w *Widget) fetch(ctx context.Context, cancel context.CancelFunc, seq uint64, id int) {
	defer w.wg.Done()
	defer cancel()

	user, err := w.fetcher.FetchUser(ctx, id)
	status := resolve(user, err)

	w.mu.Lock()
	if seq != w.seq || w.closed {
		w.mu.Unlock()
		w.log.DebugContext(ctx, "stale lookup result dropped", slog.Int("user_id", id), slog.Uint64("seq", seq))
		return
	}
	w.status = status
	w.cancel = nil
	w.mu.Unlock()

	if err != nil {
		w.log.WarnContext(ctx, "lookup failed", slog.Int("user_id", id), slog.String("error", err.Error()))
	}

	if w.onChange != nil {
		w.onChange()
	}
}

func resolve(user *models.UserRecord, err error) models.LookupStatus {
	switch {
	case err != nil:
		return models.LookupStatus{State: models.LookupError, Message: errorMessage(err)}
	case user == nil || user.ID == 0:
		return models.LookupStatus{State: models.LookupNotFound, Reason: models.ReasonMissingID}
	default:
		return models.LookupStatus{State: models.LookupFound, User: user}
	}
}

func errorMessage(err error) string {
	if errors.Is(err, ErrBadStatus) {
		return "Network error"
	}
	return err.Error()
}

// State returns the last query and the current status.
func (w *Widget) State() (string, models.LookupStatus) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.query, w.status
}

// Wait blocks until every started fetch has returned.
func (w *Widget) Wait() {
	w.wg.Wait()
}

// Close cancels the fetch in flight and waits for it. Later searches are ignored.
func (w *Widget) Close() {
	w.mu.Lock()
	w.closed = true
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
	w.mu.Unlock()

	w.wg.Wait()
}
