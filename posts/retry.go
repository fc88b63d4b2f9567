package posts

import (
	"context"
	"log"
	"strings"
	"time"
)

// RetryPolicy retries transient failures with a growing delay.
type RetryPolicy struct {
	Retries int
	Delay   time.Duration
	Factor  float64
}

var DefaultRetry = RetryPolicy{Retries: 3, Delay: time.Second, Factor: 1.5}

// transient reports whether err looks like a timeout or a network fault.
func transient(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "timeout") || strings.Contains(msg, "network")
}

// Do calls fn until it succeeds, fails with a non-transient error or the
// retries run out. Cancelling ctx stops the wait between attempts.
func (p RetryPolicy) Do(ctx context.Context, fn func() error) error {
	delay := p.Delay
	for attempt := 0; ; attempt++ {
		err := fn()
		if err == nil || attempt >= p.Retries || !transient(err) {
			return err
		}

		log.Printf("Retrying document creation (%d attempts remaining)...", p.Retries-attempt)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay = time.Duration(float64(delay) * p.Factor)
	}
}
