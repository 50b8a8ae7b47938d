package describe

import "time"

// timer is a cancellable one-shot callback. A cancelled timer may still have
// its callback in flight, so callbacks re-check controller tokens.
type timer struct {
	t *time.Timer
}

func startTimer(d time.Duration, fn func()) *timer {
	return &timer{t: time.AfterFunc(d, fn)}
}

func (t *timer) cancel() {
	if t == nil || t.t == nil {
		return
	}
	t.t.Stop()
}
