package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"financing-ledger/domain"
)

type Invoker interface {
	InvokeApproval(ctx context.Context, recordID uint64) (string, error)
}

// BreakerInvoker fails approvals fast while the ledger tool keeps failing.
// It does not retry; a rejected call is reported as a ledger failure.
type BreakerInvoker struct {
	next   Invoker
	cb     *gobreaker.CircuitBreaker
	logger logrus.FieldLogger
}

func NewBreakerInvoker(next Invoker, consecutiveFailures uint32, openTimeout time.Duration, logger logrus.FieldLogger) *BreakerInvoker {
	settings := gobreaker.Settings{
		Name:        "ledger-cli",
		MaxRequests: 1,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= consecutiveFailures
		},
		// A caller that gave up says nothing about the tool's health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"module":  "ledger",
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("ledger circuit breaker changed state")
		},
	}

	return &BreakerInvoker{
		next:   next,
		cb:     gobreaker.NewCircuitBreaker(settings),
		logger: logger,
	}
}

func (b *BreakerInvoker) InvokeApproval(ctx context.Context, recordID uint64) (string, error) {
	result, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.InvokeApproval(ctx, recordID)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", &domain.LedgerError{
			RecordID:   recordID,
			Diagnostic: "ledger tool unavailable (circuit breaker " + b.cb.State().String() + ")",
			Err:        err,
		}
	}
	if err != nil {
		return "", err
	}

	output, _ := result.(string)
	return output, nil
}

func (b *BreakerInvoker) State() gobreaker.State {
	return b.cb.State()
}

var (
	_ Invoker = (*CLIInvoker)(nil)
	_ Invoker = (*BreakerInvoker)(nil)
)
