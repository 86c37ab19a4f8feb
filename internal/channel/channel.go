// Package channel delivers notifications over SMS, email and push. Senders
// fail soft: a rejected or suppressed delivery produces an Outcome value,
// never an error that could block sibling channels or the triggering write.
package channel

import (
	"context"
	"sync"

	"github.com/hashicorp/go-multierror"
)

// Channel names used in outcomes and logs.
const (
	SMS   = "sms"
	Email = "email"
	Push  = "push"
)

// Status classifies a delivery attempt.
type Status string

const (
	// StatusSent means the transport accepted the message.
	StatusSent Status = "sent"
	// StatusSuppressed means delivery was intentionally withheld
	// (test-mode sends are suppressed, not simulated).
	StatusSuppressed Status = "suppressed"
	// StatusSkipped means the recipient could not be messaged at all
	// (missing phone, empty body, blocked location).
	StatusSkipped Status = "skipped"
	// StatusFailed means the transport rejected the message.
	StatusFailed Status = "failed"
)

// Outcome reports one delivery attempt on one channel.
type Outcome struct {
	Channel   string
	Recipient string
	Status    Status
	Err       error
}

// Failed reports whether the transport rejected the delivery.
func (o Outcome) Failed() bool {
	return o.Status == StatusFailed
}

// Send is a single deferred delivery attempt.
type Send func(ctx context.Context) Outcome

// Dispatch runs every send concurrently and collects all outcomes. A failure
// in one channel never blocks or aborts another; ordering between sends is
// not guaranteed.
func Dispatch(ctx context.Context, sends ...Send) []Outcome {
	outcomes := make([]Outcome, len(sends))
	var wg sync.WaitGroup
	wg.Add(len(sends))
	for i := range sends {
		go func(i int) {
			defer wg.Done()
			outcomes[i] = sends[i](ctx)
		}(i)
	}
	wg.Wait()
	return outcomes
}

// Failures aggregates the errors of failed outcomes, or nil when every
// delivery either succeeded or was deliberately withheld.
func Failures(outcomes []Outcome) error {
	var result *multierror.Error
	for _, o := range outcomes {
		if o.Failed() && o.Err != nil {
			result = multierror.Append(result, o.Err)
		}
	}
	return result.ErrorOrNil()
}
