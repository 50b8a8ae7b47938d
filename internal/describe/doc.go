// Package describe fetches the description of the panorama currently on
// screen.
//
// # Overview
//
// A Controller is handed a stream of "subject changed" calls from the UI and
// keeps exactly one State live: the description (or error) for the current
// subject only. It owns the request lifecycle:
//
//   - Debounce: calls within Options.Debounce of each other collapse into the
//     last one. Zero dispatches immediately.
//   - Timeout race: each attempt gets its own context deadline (10s standard,
//     30s detailed by default). Whichever of the fetch and the deadline
//     settles first wins.
//   - Retry: timeouts and server errors are retried up to MaxRetries times
//     after Backoff(n) = min(RetryBase*(n+1), RetryCap). IsLoading stays true
//     while waiting, and RetryCount tells the UI which retry is pending.
//   - Cancellation: a new subject, Cancel, Close or the network dropping
//     aborts the in-flight context and stops pending timers.
//   - Network gating: while Network.Online reports false no request is
//     dispatched and ErrNetworkUnavailable is surfaced. It is never retried
//     automatically; the caller decides whether to Retry once back online.
//
// # Staleness
//
// Every callback that resumes after a suspension (debounce fire, fetch
// result, deadline, retry fire) carries the generation and attempt tokens it
// was started under and re-checks them under the controller lock. A mismatch
// means the work was superseded and the callback returns without touching
// State. This is what keeps a slow answer for an old panorama from
// overwriting the current one.
//
// # State Machine
//
//	Idle -> Loading -> Success
//	               \-> Retrying -> Loading
//	               \-> Failed
//
// Retrying is Loading with RetryCount > 0. A new subject resets the State
// wholesale; Retry keeps the current description visible until it is
// replaced.
//
// # Errors
//
// State.Err only ever holds ErrNetworkUnavailable, ErrTimeout or a
// *ServerError. ErrCancelled is internal and never surfaces. The error of
// the attempt that triggered a pending retry is kept in LastAttemptErr.
//
// # Observing
//
// State returns a snapshot. Changes delivers a coalesced signal after every
// transition and is closed by Close, which makes it easy to drive from a
// bubbletea command:
//
//	func listen(c *describe.Controller) tea.Cmd {
//		return func() tea.Msg {
//			if _, ok := <-c.Changes(); !ok {
//				return nil
//			}
//			return describeChangedMsg(c.State())
//		}
//	}
package describe
