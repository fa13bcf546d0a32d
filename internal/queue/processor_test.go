package queue

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/Veraticus/regulaite/internal/classification"
	"github.com/Veraticus/regulaite/internal/common"
	"github.com/Veraticus/regulaite/internal/compliance"
	"github.com/Veraticus/regulaite/internal/engine"
	"github.com/Veraticus/regulaite/internal/explain"
	"github.com/Veraticus/regulaite/internal/model"
	"github.com/Veraticus/regulaite/internal/rules"
	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryPublisher struct {
	err     error
	results []CheckResult
}

func (m *memoryPublisher) PublishResult(_ context.Context, result CheckResult) error {
	if m.err != nil {
		return m.err
	}
	m.results = append(m.results, result)
	return nil
}

func newProcessor(pub Publisher) *Processor {
	e := engine.New(
		classification.NewDefaultPatternClassifier(),
		compliance.NewEvaluator(rules.Default()),
		explain.New(nil, nil),
		nil,
	)
	p := NewProcessor(e, pub, nil)
	p.now = func() time.Time { return time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC) }
	return p
}

func TestProcessorHandle(t *testing.T) {
	pub := &memoryPublisher{}
	p := newProcessor(pub)

	body, err := json.Marshal(CheckRequest{ID: "req-1", Text: "Paid rent amount 250000"})
	require.NoError(t, err)

	require.NoError(t, p.Handle(context.Background(), body))
	require.Len(t, pub.results, 1)

	got := pub.results[0]
	assert.Equal(t, "req-1", got.ID)
	assert.Equal(t, "req-1", got.Result.ID)
	assert.Equal(t, time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC), got.CompletedAt)
	assert.Equal(t, model.CategoryRent, got.Result.Transaction.Category)
	assert.Equal(t, model.StatusNonCompliant, got.Result.Compliance.Status)
	assert.Equal(t, explain.UnavailableMessage, got.Result.Explanation)
}

func TestProcessorHandleMalformed(t *testing.T) {
	pub := &memoryPublisher{}
	p := newProcessor(pub)

	for _, body := range []string{`not json`, `{"id":"x","text":"   "}`, `{}`} {
		err := p.Handle(context.Background(), []byte(body))
		require.ErrorIs(t, err, ErrMalformedMessage, body)
		assert.Equal(t, Drop, Settle(err))
	}
	assert.Empty(t, pub.results)
}

func TestProcessorHandlePublishFailure(t *testing.T) {
	pub := &memoryPublisher{err: errors.New("channel closed")}
	p := newProcessor(pub)

	err := p.Handle(context.Background(), []byte(`{"id":"r","text":"Sold goods amount 5000"}`))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMalformedMessage)
	assert.Equal(t, Requeue, Settle(err))
}

func TestParseCheckRequestAssignsID(t *testing.T) {
	req, err := ParseCheckRequest([]byte(`{"text":"rent amount 100000"}`))
	require.NoError(t, err)
	assert.NotEmpty(t, req.ID)

	orig := NewCheckRequest("audit fee of 45000")
	body, err := orig.ToJSON()
	require.NoError(t, err)

	parsed, err := ParseCheckRequest(body)
	require.NoError(t, err)
	assert.Equal(t, orig.ID, parsed.ID)
	assert.Equal(t, orig.Text, parsed.Text)
}

type fakeAcknowledger struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (f *fakeAcknowledger) Ack(uint64, bool) error {
	f.acked = true
	return nil
}

func (f *fakeAcknowledger) Nack(_ uint64, _ bool, requeue bool) error {
	f.nacked = true
	f.requeue = requeue
	return nil
}

func (f *fakeAcknowledger) Reject(_ uint64, requeue bool) error {
	return f.Nack(0, false, requeue)
}

func TestClientSettle(t *testing.T) {
	c := &Client{logger: slog.New(slog.DiscardHandler)}

	tests := []struct {
		name        string
		err         error
		wantAck     bool
		wantNack    bool
		wantRequeue bool
	}{
		{name: "success", wantAck: true},
		{name: "malformed", err: ErrMalformedMessage, wantNack: true},
		{name: "transient", err: errors.New("publish failed"), wantNack: true, wantRequeue: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ack := &fakeAcknowledger{}
			c.settle(amqp091.Delivery{Acknowledger: ack}, tt.err)

			assert.Equal(t, tt.wantAck, ack.acked)
			assert.Equal(t, tt.wantNack, ack.nacked)
			assert.Equal(t, tt.wantRequeue, ack.requeue)
		})
	}
}

func TestClientSettleLogsRequeue(t *testing.T) {
	var buf bytes.Buffer
	c := &Client{
		cfg:    Config{Queue: "regulaite.checks"},
		logger: common.NewLogger(&buf, slog.LevelDebug, "json"),
	}

	ack := &fakeAcknowledger{}
	c.settle(amqp091.Delivery{Acknowledger: ack, DeliveryTag: 42}, errors.New("publish failed"))

	require.True(t, ack.requeue)
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "check request failed, requeueing", entry["msg"])
	assert.Equal(t, "publish failed", entry["error"])
	assert.Equal(t, "regulaite.checks", entry["queue"])
	assert.InDelta(t, 42, entry["delivery_tag"], 0)
}
