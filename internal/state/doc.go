// Package state holds the location currently on screen.
//
// # Overview
//
// Store is the coordination point between the goroutine fetching random
// locations and the UI rendering them. It also enforces the fetch policy:
//
//   - Single flight: Begin fails with ErrBusy while a fetch is in flight.
//   - Rate limit: Begin fails with *RateLimitError when called within
//     MinInterval of the previous Begin, so holding the "next" key does not
//     flood the API.
//
// # Update Semantics
//
//	// Success: replace the location
//	store.Update(&loc, nil)
//	→ snapshot.Location = loc
//	→ snapshot.LastError = nil
//	→ snapshot.ConsecutiveFailures = 0
//
//	// Error: keep the old location, record the error
//	store.Update(nil, err)
//	→ snapshot.Location = <unchanged>
//	→ snapshot.LastError = err
//	→ snapshot.ConsecutiveFailures++
//
// Snapshot returns a copy; the error is re-wrapped so callers never share
// the stored instance.
//
// # Usage Example
//
//	if err := store.Begin(); err != nil {
//		return err // ErrBusy or *RateLimitError
//	}
//	loc, err := client.FetchRandomLocation(ctx)
//	if err != nil {
//		store.Update(nil, err)
//		return err
//	}
//	store.Update(&loc, nil)
//
// The zero Store is ready to use and has no rate limit.
package state
