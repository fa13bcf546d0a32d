package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/regulaite/internal/common"
	"github.com/Veraticus/regulaite/internal/engine"
)

// Runner runs the compliance pipeline for one transaction text.
type Runner interface {
	Run(ctx context.Context, text string) engine.Result
}

// Publisher delivers check results.
type Publisher interface {
	PublishResult(ctx context.Context, result CheckResult) error
}

// Processor turns request bodies into published results. It does not know
// about the broker, so it can be driven by any delivery loop.
type Processor struct {
	runner    Runner
	publisher Publisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewProcessor creates a processor.
func NewProcessor(runner Runner, publisher Publisher, logger *slog.Logger) *Processor {
	return &Processor{
		runner:    runner,
		publisher: publisher,
		logger:    common.OrDefault(logger),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Handle processes one request body. Errors wrapping ErrMalformedMessage
// mean the body should be dropped; any other error is worth a retry.
func (p *Processor) Handle(ctx context.Context, body []byte) error {
	req, err := ParseCheckRequest(body)
	if err != nil {
		return err
	}

	p.logger.Info("processing check request", "id", req.ID)

	res := p.runner.Run(ctx, req.Text)
	res.ID = req.ID

	out := CheckResult{
		ID:          req.ID,
		Result:      res,
		CompletedAt: p.now(),
	}
	if err := p.publisher.PublishResult(ctx, out); err != nil {
		return fmt.Errorf("publish result %s: %w", req.ID, err)
	}

	p.logger.Info("check request completed",
		"id", req.ID,
		"category", res.Transaction.Category,
		"status", res.Compliance.Status)
	return nil
}

// Settlement says how a delivery is acknowledged after Handle.
type Settlement int

const (
	// Ack removes the delivery from the queue.
	Ack Settlement = iota
	// Drop rejects the delivery without requeueing it.
	Drop
	// Requeue rejects the delivery and puts it back on the queue.
	Requeue
)

// Settle maps a Handle error to a settlement.
func Settle(err error) Settlement {
	switch {
	case err == nil:
		return Ack
	case errors.Is(err, ErrMalformedMessage):
		return Drop
	default:
		return Requeue
	}
}
