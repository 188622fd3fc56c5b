// Package publisher relays committed ledger events from the consensus outbox
// to the configured consensus topic on the relay.
package publisher

import (
	"context"
	"sync"
	"time"

	otlp_util "github.com/bluexlab/otlp-util-go"
	"github.com/certchain/certchain/pkg/certchain/relay"
	"github.com/certchain/certchain/pkg/certchain/storage"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/metric"
)

type Option func(*Publisher)

func WithBatchSize(n int) Option {
	return func(p *Publisher) { p.batchSize = n }
}

// WithInterval sets how long an idle publisher waits before polling again.
func WithInterval(d time.Duration) Option {
	return func(p *Publisher) { p.interval = d }
}

func WithOutboxStorage(outbox storage.OutboxStorage) Option {
	return func(p *Publisher) { p.outbox = outbox }
}

func WithRelayClient(c relay.RelayClient) Option {
	return func(p *Publisher) { p.relay = c }
}

func WithPublishTimeout(d time.Duration) Option {
	return func(p *Publisher) { p.publishTimeout = d }
}

type Publisher struct {
	outbox         storage.OutboxStorage
	relay          relay.RelayClient
	batchSize      int
	interval       time.Duration
	publishTimeout time.Duration

	cancel context.CancelFunc
	done   sync.WaitGroup

	relayed metric.Int64Counter
	failed  metric.Int64Counter
}

func NewPublisher(options ...Option) *Publisher {
	p := &Publisher{
		batchSize:      10,
		interval:       5 * time.Second,
		publishTimeout: 10 * time.Second,
	}
	for _, opt := range options {
		opt(p)
	}

	p.relayed = otlp_util.NewInt64Counter("certchain.publisher.relayed.count", metric.WithDescription("Ledger events relayed to the consensus topic"))
	p.failed = otlp_util.NewInt64Counter("certchain.publisher.failed.count", metric.WithDescription("Relay attempts that failed and were left in the outbox"))
	return p
}

func (p *Publisher) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done.Add(1)
	go p.run(ctx)
}

func (p *Publisher) Stop() {
	if p.cancel == nil {
		return
	}
	p.cancel()
	p.done.Wait()
}

func (p *Publisher) run(ctx context.Context) {
	defer p.done.Done()
	logrus.Info("outbox publisher started")
	defer logrus.Info("outbox publisher stopped")

	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		// A full batch means more may be waiting, so go again right away.
		next := p.interval
		if p.drain(ctx) == p.batchSize {
			next = 0
		}
		timer.Reset(next)
	}
}

// drain relays one batch in outbox order and returns how many events were
// relayed. Publishing stops at the first failure; the events relayed before it
// are still removed so they are not sent twice.
func (p *Publisher) drain(ctx context.Context) int {
	tx, ctx, err := p.outbox.CreateTx(ctx, storage.TxOptionWithWrite(true))
	if err != nil {
		logrus.Errorf("outbox publisher: begin transaction: %v", err)
		return 0
	}
	defer tx.Rollback(ctx)

	pending, err := p.outbox.GetConsensusOutbox(ctx, tx, p.batchSize)
	if err != nil {
		logrus.Errorf("outbox publisher: read outbox: %v", err)
		return 0
	}
	if len(pending) == 0 {
		return 0
	}

	relayed := 0
	for _, ev := range pending {
		if err := p.publish(ctx, ev); err != nil {
			p.failed.Add(ctx, 1)
			logrus.WithField("topic", ev.Key).Warnf("outbox publisher: event %d kept for retry: %v", ev.RecID, err)
			break
		}
		relayed++
	}
	if relayed == 0 {
		return 0
	}

	done := lo.Map(pending[:relayed], func(ev storage.OutboxMsg, _ int) int64 { return ev.RecID })
	if err := p.outbox.DeleteConsensusOutbox(ctx, tx, done...); err != nil {
		logrus.Errorf("outbox publisher: remove relayed events: %v", err)
		return 0
	}
	if err := tx.Commit(ctx); err != nil {
		logrus.Errorf("outbox publisher: commit: %v", err)
		return 0
	}
	p.relayed.Add(ctx, int64(relayed))
	if relayed < len(pending) {
		return 0
	}
	return relayed
}

func (p *Publisher) publish(ctx context.Context, ev storage.OutboxMsg) error {
	ctx, cancel := context.WithTimeout(ctx, p.publishTimeout)
	defer cancel()
	return p.relay.Publish(ctx, ev.Key, ev.Kind, ev.Msg)
}
