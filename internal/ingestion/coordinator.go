package ingestion

import (
	"context"
	"sync"

	"github.com/brc20indexer/core/common/errs"
	"github.com/brc20indexer/core/internal/datagateway"
	"github.com/brc20indexer/core/internal/engine"
	"github.com/brc20indexer/core/internal/entity"
	"github.com/brc20indexer/core/pkg/logger"
	"github.com/brc20indexer/core/pkg/logger/slogx"
	"github.com/cockroachdb/errors"
)

// DefaultQueueDepth is the bound used when Config.QueueMaxDepth is unset.
// spec.md §4.5 leaves open whether 10 is policy or scaffold; we treat it
// as the former and make it configurable.
const DefaultQueueDepth = 10

// Decision is the admission outcome the Coordinator reports back to the
// collaborator for every on_block/on_rollback call.
type Decision int

const (
	// Accept means the delivery was enqueued and will be processed in
	// FIFO order relative to every other accepted delivery.
	Accept Decision = iota
	// Reject means the queue was full; the collaborator is expected to
	// re-offer the same delivery later.
	Reject
)

func (d Decision) String() string {
	if d == Accept {
		return "accept"
	}
	return "reject"
}

// maxApplyRetries bounds how many times the worker attempts a block (the
// first attempt included) while its transaction fails with a transient
// store error, before escalating to a fatal stop, per spec.md §7's error
// taxonomy.
const maxApplyRetries = 3

// Coordinator owns the bounded FIFO queue of pending block deliveries and
// the single worker goroutine that drains it into the Operation Engine.
// It never blocks a caller of OnBlock/OnRollback: admission is decided by
// a non-blocking channel send.
type Coordinator struct {
	queue chan delivery
	store datagateway.LedgerStore
	eng   *engine.Engine

	quit     chan struct{}
	quitDone chan struct{}
	quitOnce sync.Once

	// fatal is set once the worker stops due to an unrecoverable error;
	// further deliveries are rejected instead of silently dropped.
	mu    sync.Mutex
	fatal error
}

// New constructs a Coordinator with a queue bounded at depth (use
// DefaultQueueDepth when the caller has no override).
func New(store datagateway.LedgerStore, eng *engine.Engine, depth int) *Coordinator {
	if depth <= 0 {
		depth = DefaultQueueDepth
	}
	return &Coordinator{
		queue:    make(chan delivery, depth),
		store:    store,
		eng:      eng,
		quit:     make(chan struct{}),
		quitDone: make(chan struct{}),
	}
}

// OnBlock offers a block's inscription activity for application. It
// returns Reject immediately if the queue is at capacity or the worker
// has stopped after a fatal error; it never blocks.
func (c *Coordinator) OnBlock(b BlockApply) Decision {
	return c.offer(b)
}

// OnRollback offers notice that a block has been reverted.
func (c *Coordinator) OnRollback(b BlockRollback) Decision {
	return c.offer(b)
}

func (c *Coordinator) offer(d delivery) Decision {
	if c.stopped() {
		return Reject
	}
	select {
	case c.queue <- d:
		return Accept
	default:
		return Reject
	}
}

func (c *Coordinator) stopped() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fatal != nil
}

func (c *Coordinator) setFatal(err error) {
	c.mu.Lock()
	c.fatal = err
	c.mu.Unlock()
}

// Err returns the error that stopped the worker, or nil if it is still
// running (or was stopped cleanly via Stop).
func (c *Coordinator) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fatal
}

// Run drains the queue in FIFO order until ctx is cancelled or Stop is
// called. It is meant to be launched in its own goroutine by the caller.
func (c *Coordinator) Run(ctx context.Context) {
	defer close(c.quitDone)
	for {
		select {
		case <-c.quit:
			return
		case <-ctx.Done():
			return
		case d := <-c.queue:
			if err := c.process(ctx, d); err != nil {
				logger.ErrorContext(ctx, "ingestion worker stopping after fatal error", slogx.Error(err))
				c.setFatal(err)
				return
			}
		}
	}
}

// Stop requests the worker to exit after its current delivery finishes
// and waits for it to do so.
func (c *Coordinator) Stop() {
	c.quitOnce.Do(func() { close(c.quit) })
	<-c.quitDone
}

func (c *Coordinator) process(ctx context.Context, d delivery) error {
	switch v := d.(type) {
	case BlockApply:
		return c.applyBlock(ctx, v)
	case BlockRollback:
		return c.rollbackBlock(ctx, v)
	default:
		return errors.Mark(errors.Newf("unreachable: unknown delivery type %T", d), errs.Internal)
	}
}

func (c *Coordinator) applyBlock(ctx context.Context, b BlockApply) error {
	var lastErr error
	for attempt := 0; attempt < maxApplyRetries; attempt++ {
		if attempt > 0 {
			logger.WarnContext(ctx, "retrying block application after transient error",
				slogx.Int64("height", b.Height), slogx.Int("attempt", attempt))
		}
		if err := c.applyBlockOnce(ctx, b); err != nil {
			if !isTransient(err) {
				return errors.Wrapf(err, "apply block %d", b.Height)
			}
			lastErr = err
			continue
		}
		return nil
	}
	return errors.Wrapf(lastErr, "apply block %d: exhausted retries", b.Height)
}

func (c *Coordinator) applyBlockOnce(ctx context.Context, b BlockApply) (err error) {
	tx, err := c.store.BeginLedgerTx(ctx)
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	latest, ok, err := tx.GetLatestBlock(ctx)
	if err != nil {
		return errors.Wrap(err, "get latest block")
	}
	if ok && b.Height != latest.Height+1 {
		return errors.Mark(errors.Newf(
			"apply block %d out of order: tip is at height %d", b.Height, latest.Height), errs.Internal)
	}

	for _, item := range b.Inscriptions {
		switch v := item.(type) {
		case Genesis:
			insc := entity.InscriptionRef{ID: v.InscriptionID, Number: v.Number}
			if err = c.eng.ApplyGenesis(ctx, tx, insc, v.Mime, v.Payload, v.Location, v.Address); err != nil {
				return errors.Wrapf(err, "apply genesis for %s", v.InscriptionID)
			}
		case Transfer:
			insc := entity.InscriptionRef{ID: v.InscriptionID, Number: v.Number}
			if err = c.eng.ApplyTransfer(ctx, tx, insc, v.Location, v.Address); err != nil {
				return errors.Wrapf(err, "apply transfer for %s", v.InscriptionID)
			}
		default:
			return errors.Mark(errors.Newf("unreachable: unknown inscription event type %T", item), errs.Internal)
		}
	}

	if err = tx.RecordBlock(ctx, entity.Block{Height: b.Height, Hash: b.Hash}); err != nil {
		return errors.Wrap(err, "record block")
	}
	if err = tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "commit")
	}
	return nil
}

func (c *Coordinator) rollbackBlock(ctx context.Context, b BlockRollback) (err error) {
	tx, err := c.store.BeginLedgerTx(ctx)
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	latest, ok, err := tx.GetLatestBlock(ctx)
	if err != nil {
		return errors.Wrap(err, "get latest block")
	}
	if !ok || b.Height != latest.Height {
		return errors.Mark(errors.Newf(
			"rollback of unknown height %d: tip is %v (ok=%t)", b.Height, latest.Height, ok), errs.Internal)
	}

	if err = c.eng.Rollback(ctx, tx, b.Height); err != nil {
		return errors.Wrapf(err, "rollback block %d", b.Height)
	}
	if err = tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "commit")
	}
	return nil
}

// isTransient classifies a store error as retryable: only errors marked
// with errs.Transient (see MarkTransient) qualify; anything else is
// treated as fatal. The Postgres repository in this module does not mark
// any of its errors, so its connection-loss and deadlock errors are
// treated as fatal and are not retried.
func isTransient(err error) bool {
	return errors.Is(err, errs.Transient)
}

// MarkTransient wraps err so isTransient (and the worker's retry policy)
// recognizes it as retryable.
func MarkTransient(err error) error {
	return errors.Mark(err, errs.Transient)
}
