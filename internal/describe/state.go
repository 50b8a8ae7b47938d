package describe

import (
	"time"

	"github.com/five82/streetlens/internal/streetapi"
)

// Kind selects the description endpoint and its time budget.
type Kind int

const (
	KindStandard Kind = iota
	KindDetailed
)

func (k Kind) String() string {
	if k == KindDetailed {
		return "detailed"
	}
	return "standard"
}

func (k Kind) apiKind() streetapi.DescriptionKind {
	if k == KindDetailed {
		return streetapi.DetailedDescription
	}
	return streetapi.StandardDescription
}

// Phase is the coarse state machine position derived from a State.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseRetrying
	PhaseSuccess
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseRetrying:
		return "retrying"
	case PhaseSuccess:
		return "success"
	case PhaseFailed:
		return "failed"
	default:
		return "idle"
	}
}

// State is a read-only snapshot of the controller.
type State struct {
	SubjectID string
	Language  string
	Kind      Kind

	Description    string
	HasDescription bool

	IsLoading  bool
	Err        error
	RetryCount int
	MaxRetries int

	// LastAttemptErr is the failure that caused the pending automatic retry.
	// It is cleared together with RetryCount.
	LastAttemptErr error
	UpdatedAt      time.Time
}

// Phase reports where the snapshot sits in Idle -> Loading -> {Success,
// Retrying -> Loading, Failed}.
func (s State) Phase() Phase {
	switch {
	case s.IsLoading && s.RetryCount > 0:
		return PhaseRetrying
	case s.IsLoading:
		return PhaseLoading
	case s.Err != nil:
		return PhaseFailed
	case s.HasDescription:
		return PhaseSuccess
	default:
		return PhaseIdle
	}
}

// Options tune the controller. Zero durations fall back to defaults except
// Debounce, where zero dispatches immediately.
type Options struct {
	StandardTimeout time.Duration
	DetailedTimeout time.Duration
	MaxRetries      int
	Debounce        time.Duration
	RetryBase       time.Duration
	RetryCap        time.Duration
}

const (
	DefaultStandardTimeout = 10 * time.Second
	DefaultDetailedTimeout = 30 * time.Second
	DefaultMaxRetries      = 3
	DefaultDebounce        = 300 * time.Millisecond
	DefaultRetryBase       = 2 * time.Second
	DefaultRetryCap        = 5 * time.Second
)

// DefaultOptions mirrors the web client's constants.
func DefaultOptions() Options {
	return Options{
		StandardTimeout: DefaultStandardTimeout,
		DetailedTimeout: DefaultDetailedTimeout,
		MaxRetries:      DefaultMaxRetries,
		Debounce:        DefaultDebounce,
		RetryBase:       DefaultRetryBase,
		RetryCap:        DefaultRetryCap,
	}
}

func (o Options) normalized() Options {
	if o.StandardTimeout <= 0 {
		o.StandardTimeout = DefaultStandardTimeout
	}
	if o.DetailedTimeout <= 0 {
		o.DetailedTimeout = DefaultDetailedTimeout
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.Debounce < 0 {
		o.Debounce = 0
	}
	if o.RetryBase <= 0 {
		o.RetryBase = DefaultRetryBase
	}
	if o.RetryCap < o.RetryBase {
		o.RetryCap = o.RetryBase
	}
	return o
}

// Backoff returns the wait before automatic retry number retryCount+1:
// min(RetryBase*(retryCount+1), RetryCap).
func (o Options) Backoff(retryCount int) time.Duration {
	o = o.normalized()
	if retryCount < 0 {
		retryCount = 0
	}
	delay := o.RetryBase * time.Duration(retryCount+1)
	if delay > o.RetryCap {
		return o.RetryCap
	}
	return delay
}

func (o Options) timeoutFor(kind Kind) time.Duration {
	if kind == KindDetailed {
		return o.DetailedTimeout
	}
	return o.StandardTimeout
}
