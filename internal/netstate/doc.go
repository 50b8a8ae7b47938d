// Package netstate tracks whether the exploration API is reachable.
//
// Monitor is the single online/offline flag shared by the process. The
// prober is its only writer in production: StartProber pings the API on a
// fixed cadence, flips the monitor offline after two consecutive failures and
// back online on the first success. Failed probes back off exponentially,
// capped at 30 seconds, so an unreachable API is not hammered.
//
// Readers either poll Online or Subscribe to transitions. The description
// controller does both: it gates dispatches on Online and abandons in-flight
// work when a subscription reports the network went away.
package netstate
