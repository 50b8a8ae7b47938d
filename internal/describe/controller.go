package describe

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/five82/streetlens/internal/streetapi"
)

// Fetcher performs one description request. *streetapi.Client and
// *streetapi.CachedDescriptions implement it.
type Fetcher interface {
	Describe(ctx context.Context, kind streetapi.DescriptionKind, subjectID, lang string) (streetapi.Description, error)
}

// Network reports connectivity. *netstate.Monitor implements it.
type Network interface {
	Online() bool
	Subscribe(fn func(online bool)) (unsubscribe func())
}

type request struct {
	subjectID string
	lang      string
	kind      Kind
}

// Controller fetches the description of the current subject only. All
// methods are safe for concurrent use.
type Controller struct {
	fetcher Fetcher
	network Network
	opts    Options
	logger  *slog.Logger

	mu    sync.Mutex
	state State
	last  *request

	// generation changes whenever pending work must be abandoned; attempt
	// changes on every dispatch. Callbacks carry both and drop themselves
	// when either moved on.
	generation uint64
	attempt    uint64

	debounce *timer
	retry    *timer
	abort    context.CancelFunc
	closed   bool

	changes     chan struct{}
	unsubscribe func()
}

// New builds a controller. A nil network is treated as always online and a
// nil logger discards output.
func New(fetcher Fetcher, network Network, opts Options, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	opts = opts.normalized()
	c := &Controller{
		fetcher: fetcher,
		network: network,
		opts:    opts,
		logger:  logger.With("component", "describe"),
		state:   State{MaxRetries: opts.MaxRetries},
		changes: make(chan struct{}, 1),
	}
	if network != nil {
		c.unsubscribe = network.Subscribe(c.onNetworkChange)
	}
	return c
}

// RequestDescription asks for the standard description of subjectID.
func (c *Controller) RequestDescription(subjectID, lang string) error {
	return c.request(request{subjectID: subjectID, lang: lang, kind: KindStandard})
}

// RequestDetailedDescription asks for the extended description, which gets
// the longer time budget.
func (c *Controller) RequestDetailedDescription(subjectID, lang string) error {
	return c.request(request{subjectID: subjectID, lang: lang, kind: KindDetailed})
}

func (c *Controller) request(req request) error {
	req.subjectID = strings.TrimSpace(req.subjectID)
	if req.subjectID == "" {
		return ErrEmptySubject
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	same := c.last != nil && *c.last == req && c.state.SubjectID == req.subjectID
	c.last = &req

	// Single flight: the same subject is already in flight, waiting for a
	// retry, or already described.
	if same && c.debounce == nil && (c.state.IsLoading || (c.state.HasDescription && c.state.Err == nil)) {
		return nil
	}

	c.invalidateLocked()

	if !same {
		c.state = State{
			SubjectID:  req.subjectID,
			Language:   req.lang,
			Kind:       req.kind,
			MaxRetries: c.opts.MaxRetries,
		}
	}

	if !c.onlineLocked() {
		c.state.IsLoading = false
		c.state.Err = ErrNetworkUnavailable
		c.notifyLocked()
		return ErrNetworkUnavailable
	}

	gen := c.generation
	if c.opts.Debounce <= 0 {
		c.dispatchLocked(gen, true)
		return nil
	}
	c.debounce = startTimer(c.opts.Debounce, func() { c.fireDebounce(gen) })
	c.notifyLocked()
	return nil
}

// Retry re-runs the last request immediately with RetryCount reset to zero.
func (c *Controller) Retry() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if c.last == nil {
		return ErrNoSubject
	}

	c.invalidateLocked()
	if !c.onlineLocked() {
		c.state.IsLoading = false
		c.state.Err = ErrNetworkUnavailable
		c.notifyLocked()
		return ErrNetworkUnavailable
	}
	c.dispatchLocked(c.generation, true)
	return nil
}

// Cancel abandons the in-flight attempt and any pending timer. The current
// description is kept and no error is recorded.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	pending := c.state.IsLoading || c.debounce != nil || c.retry != nil
	c.invalidateLocked()
	if !pending {
		return
	}
	c.state.IsLoading = false
	c.state.LastAttemptErr = nil
	c.notifyLocked()
}

// State returns the current snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Changes delivers a coalesced signal after every state change. It is
// closed by Close.
func (c *Controller) Changes() <-chan struct{} {
	return c.changes
}

// Close tears the controller down. Pending work is abandoned.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.invalidateLocked()
	c.state.IsLoading = false
	unsubscribe := c.unsubscribe
	c.unsubscribe = nil
	close(c.changes)
	c.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

func (c *Controller) fireDebounce(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || gen != c.generation {
		return
	}
	c.debounce = nil
	c.dispatchLocked(gen, true)
}

func (c *Controller) fireRetry(gen, attempt uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || gen != c.generation || attempt != c.attempt {
		return
	}
	c.retry = nil
	c.dispatchLocked(gen, false)
}

// dispatchLocked starts one attempt for c.last. fresh resets the retry
// counter; automatic retries keep it.
func (c *Controller) dispatchLocked(gen uint64, fresh bool) {
	if !c.onlineLocked() {
		c.state.IsLoading = false
		c.state.Err = ErrNetworkUnavailable
		c.notifyLocked()
		return
	}

	req := *c.last
	if fresh {
		c.state.RetryCount = 0
		c.state.LastAttemptErr = nil
	}
	c.state.IsLoading = true
	c.state.Err = nil

	c.attempt++
	attempt := c.attempt
	ctx, cancel := context.WithTimeout(context.Background(), c.opts.timeoutFor(req.kind))
	c.abort = cancel
	c.notifyLocked()

	c.logger.Debug("dispatching description request",
		"subject", req.subjectID,
		"lang", req.lang,
		"kind", req.kind.String(),
		"retry", c.state.RetryCount)

	go c.run(ctx, cancel, gen, attempt, req)
}

type fetchResult struct {
	desc streetapi.Description
	err  error
}

// run races the fetch against the attempt context. Whichever settles first
// is reported; the loser is dropped.
func (c *Controller) run(ctx context.Context, cancel context.CancelFunc, gen, attempt uint64, req request) {
	defer cancel()

	done := make(chan fetchResult, 1)
	go func() {
		desc, err := c.fetcher.Describe(ctx, req.kind.apiKind(), req.subjectID, req.lang)
		done <- fetchResult{desc: desc, err: err}
	}()

	select {
	case res := <-done:
		c.settle(gen, attempt, res)
	case <-ctx.Done():
		err := ErrCancelled
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = ErrTimeout
		}
		c.settle(gen, attempt, fetchResult{err: err})
	}
}

func (c *Controller) settle(gen, attempt uint64, res fetchResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || gen != c.generation || attempt != c.attempt {
		return
	}
	c.abort = nil

	if res.err == nil {
		c.state.Description = res.desc.Text
		c.state.HasDescription = true
		c.state.IsLoading = false
		c.state.Err = nil
		c.state.RetryCount = 0
		c.state.LastAttemptErr = nil
		c.notifyLocked()
		return
	}

	err := classify(res.err)
	if errors.Is(err, ErrCancelled) {
		return
	}

	if !c.onlineLocked() || errors.Is(err, ErrNetworkUnavailable) {
		c.state.IsLoading = false
		c.state.Err = ErrNetworkUnavailable
		c.notifyLocked()
		return
	}

	if c.state.RetryCount < c.opts.MaxRetries {
		delay := c.opts.Backoff(c.state.RetryCount)
		c.state.RetryCount++
		c.state.LastAttemptErr = err
		c.retry = startTimer(delay, func() { c.fireRetry(gen, attempt) })
		c.logger.Info("description attempt failed, retrying",
			"subject", c.state.SubjectID,
			"error", err,
			"retry", c.state.RetryCount,
			"max_retries", c.opts.MaxRetries,
			"delay", delay)
		c.notifyLocked()
		return
	}

	c.logger.Warn("description request failed",
		"subject", c.state.SubjectID,
		"error", err,
		"retries", c.state.RetryCount)
	c.state.IsLoading = false
	c.state.Err = err
	c.notifyLocked()
}

func (c *Controller) onNetworkChange(online bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	if online {
		// Recovery is left to the caller, which decides whether to Retry.
		c.notifyLocked()
		return
	}
	if !c.state.IsLoading && c.debounce == nil {
		return
	}
	c.invalidateLocked()
	c.state.IsLoading = false
	c.state.Err = ErrNetworkUnavailable
	c.logger.Info("network went offline, abandoning description request", "subject", c.state.SubjectID)
	c.notifyLocked()
}

// invalidateLocked abandons everything pending: timers, the in-flight
// request and any callback already queued behind the lock.
func (c *Controller) invalidateLocked() {
	c.generation++
	c.attempt++
	c.debounce.cancel()
	c.debounce = nil
	c.retry.cancel()
	c.retry = nil
	if c.abort != nil {
		c.abort()
		c.abort = nil
	}
}

func (c *Controller) onlineLocked() bool {
	return c.network == nil || c.network.Online()
}

func (c *Controller) notifyLocked() {
	c.state.UpdatedAt = time.Now()
	select {
	case c.changes <- struct{}{}:
	default:
	}
}
