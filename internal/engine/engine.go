// Package engine implements the BRC-20 consensus rules: deploy, mint, and
// the two-phase inscribe-then-send transfer, plus exact rollback.
package engine

import (
	"context"

	"github.com/brc20indexer/core/common/errs"
	"github.com/brc20indexer/core/internal/datagateway"
	"github.com/brc20indexer/core/internal/entity"
	"github.com/brc20indexer/core/internal/numeric"
	"github.com/brc20indexer/core/internal/protocol"
	"github.com/brc20indexer/core/pkg/logger"
	"github.com/brc20indexer/core/pkg/logger/slogx"
	"github.com/cockroachdb/errors"
)

// maxTransferIntentsPerInscription bounds the lookup Engine makes before
// deciding whether an inscription's move is a fresh settlement or a
// repeat. The store keeps one row per inscription and settles it in
// place, so exactly one row is expected; the cap of two is enough to see
// that anything else is the case and ignore the move.
const maxTransferIntentsPerInscription = 2

// feeSpendAddress is the sentinel recorded as a transfer intent's
// recipient when an inscription is spent as a miner fee instead of moved
// to a new output; the amount is burned from transferable balance with
// no corresponding credit.
const feeSpendAddress = ""

// Engine applies and rolls back BRC-20 state transitions. It holds no
// state of its own: every call receives the store it should read from
// and write to, so the same Engine value is safe to reuse across
// concurrent transactions (though the Coordinator never does so).
type Engine struct{}

// New constructs an Engine.
func New() *Engine {
	return &Engine{}
}

// ApplyGenesis handles an inscription's first appearance: it parses the
// payload and, if it is a well-formed BRC-20 operation, dispatches on
// deploy/mint/transfer. A payload that fails to parse, or an inscription
// spent as a fee, is silently ignored — this is the expected outcome for
// the overwhelming majority of inscriptions on an indexed chain, not an
// error.
func (e *Engine) ApplyGenesis(ctx context.Context, tx datagateway.LedgerStoreTx, insc entity.InscriptionRef, mime string, body []byte, loc entity.Location, address string) error {
	payload, err := protocol.Parse(mime, body)
	if err != nil {
		logger.DebugContext(ctx, "not a brc-20 operation, skipping",
			slogx.Stringer("inscriptionId", insc.ID), slogx.Error(err))
		return nil
	}
	if address == "" {
		logger.DebugContext(ctx, "inscription spent as fee at genesis, skipping",
			slogx.Stringer("inscriptionId", insc.ID))
		return nil
	}

	switch payload.Op {
	case protocol.OperationDeploy:
		return e.applyDeploy(ctx, tx, insc, payload.Deploy, loc, address)
	case protocol.OperationMint:
		return e.applyMint(ctx, tx, insc, payload.MintOrTransfer, loc, address)
	case protocol.OperationTransfer:
		return e.applyInscribeTransfer(ctx, tx, insc, payload.MintOrTransfer, loc, address)
	default:
		return errors.Mark(errors.Newf("unreachable: unknown operation %q", payload.Op), errs.Internal)
	}
}

func (e *Engine) applyDeploy(ctx context.Context, tx datagateway.LedgerStoreTx, insc entity.InscriptionRef, d *protocol.Deploy, loc entity.Location, address string) error {
	token := entity.Token{
		Tick:          d.Tick,
		OriginalTick:  d.OriginalTick,
		MaxSupply:     d.Max,
		MintLimit:     d.Limit,
		HasMintLimit:  d.HasLimit,
		Decimals:      d.Decimals,
		MintedSupply:  numeric.Zero,
		Deploy:        insc,
		DeployLoc:     loc,
		DeployAddress: address,
	}
	created, err := tx.CreateTokenIfNotExists(ctx, token)
	if err != nil {
		return errors.Wrap(err, "create token")
	}
	if !created {
		logger.DebugContext(ctx, "deploy collides with existing ticker, skipping",
			slogx.String("tick", d.Tick), slogx.Stringer("inscriptionId", insc.ID))
		return nil
	}
	return tx.InsertEvent(ctx, entity.Event{
		Kind:        entity.EventDeploy,
		Tick:        d.Tick,
		Amount:      d.Max,
		Inscr:       insc,
		Loc:         loc,
		ToAddress:   address,
	})
}

func (e *Engine) applyMint(ctx context.Context, tx datagateway.LedgerStoreTx, insc entity.InscriptionRef, mt *protocol.MintOrTransfer, loc entity.Location, address string) error {
	token, ok, err := tx.GetToken(ctx, mt.Tick)
	if err != nil {
		return errors.Wrap(err, "get token")
	}
	if !ok {
		logger.DebugContext(ctx, "mint for unknown tick, skipping",
			slogx.String("tick", mt.Tick), slogx.Stringer("inscriptionId", insc.ID))
		return nil
	}
	if token.HasMintLimit && mt.Amount.GreaterThan(token.MintLimit) {
		logger.DebugContext(ctx, "mint exceeds per-mint limit, skipping",
			slogx.String("tick", mt.Tick), slogx.Stringer("inscriptionId", insc.ID))
		return nil
	}
	if mt.Amount.FractionalDigits() > token.Decimals {
		logger.DebugContext(ctx, "mint amount has too many fractional digits, skipping",
			slogx.String("tick", mt.Tick), slogx.Stringer("inscriptionId", insc.ID))
		return nil
	}
	remaining := token.RemainingSupply()
	if !remaining.IsPositive() {
		logger.DebugContext(ctx, "tick fully minted, skipping",
			slogx.String("tick", mt.Tick), slogx.Stringer("inscriptionId", insc.ID))
		return nil
	}
	effective := numeric.Min(mt.Amount, remaining)

	if err := tx.CreateMint(ctx, entity.Mint{
		Tick:    mt.Tick,
		Amount:  mt.Amount,
		Inscr:   insc,
		Loc:     loc,
		Address: address,
	}); err != nil {
		return errors.Wrap(err, "create mint")
	}
	if err := tx.InsertBalanceDelta(ctx, entity.BalanceDelta{
		Address:        address,
		Tick:           mt.Tick,
		AvailableDelta: effective,
		Kind:           entity.DeltaKindMint,
		Inscr:          insc,
		Loc:            loc,
	}); err != nil {
		return errors.Wrap(err, "insert mint balance delta")
	}
	return tx.InsertEvent(ctx, entity.Event{
		Kind:      entity.EventMint,
		Tick:      mt.Tick,
		Amount:    effective,
		Inscr:     insc,
		Loc:       loc,
		ToAddress: address,
	})
}

func (e *Engine) applyInscribeTransfer(ctx context.Context, tx datagateway.LedgerStoreTx, insc entity.InscriptionRef, mt *protocol.MintOrTransfer, loc entity.Location, address string) error {
	_, ok, err := tx.GetToken(ctx, mt.Tick)
	if err != nil {
		return errors.Wrap(err, "get token")
	}
	if !ok {
		logger.DebugContext(ctx, "inscribe-transfer for unknown tick, skipping",
			slogx.String("tick", mt.Tick), slogx.Stringer("inscriptionId", insc.ID))
		return nil
	}
	balance, err := tx.GetBalance(ctx, address, mt.Tick)
	if err != nil {
		return errors.Wrap(err, "get balance")
	}
	if mt.Amount.GreaterThan(balance.Available) {
		logger.DebugContext(ctx, "inscribe-transfer exceeds available balance, skipping",
			slogx.String("tick", mt.Tick), slogx.Stringer("inscriptionId", insc.ID))
		return nil
	}

	if err := tx.CreateTransferIntent(ctx, entity.TransferIntent{
		Tick:        mt.Tick,
		Amount:      mt.Amount,
		Inscr:       insc,
		InscribeLoc: loc,
		FromAddress: address,
		State:       entity.TransferStateInscribed,
	}); err != nil {
		return errors.Wrap(err, "create transfer intent")
	}
	if err := tx.InsertBalanceDelta(ctx, entity.BalanceDelta{
		Address:           address,
		Tick:              mt.Tick,
		AvailableDelta:    mt.Amount,
		AvailableIsNeg:    true,
		TransferableDelta: mt.Amount,
		Kind:              entity.DeltaKindTransferInscribe,
		Inscr:             insc,
		Loc:               loc,
	}); err != nil {
		return errors.Wrap(err, "insert inscribe-transfer balance delta")
	}
	return tx.InsertEvent(ctx, entity.Event{
		Kind:        entity.EventInscribeTransfer,
		Tick:        mt.Tick,
		Amount:      mt.Amount,
		Inscr:       insc,
		Loc:         loc,
		FromAddress: address,
	})
}

// ApplyTransfer handles any movement of an inscription after its genesis:
// it settles the inscription's reserved transfer amount onto the new
// owner, exactly once, per invariant 4. address is empty when the
// inscription was spent as a miner fee, in which case the reserved
// amount is burned rather than credited.
func (e *Engine) ApplyTransfer(ctx context.Context, tx datagateway.LedgerStoreTx, insc entity.InscriptionRef, loc entity.Location, address string) error {
	intents, err := tx.ListTransferIntentsByInscription(ctx, insc.ID, maxTransferIntentsPerInscription)
	if err != nil {
		return errors.Wrap(err, "list transfer intents")
	}
	if len(intents) != 1 {
		logger.DebugContext(ctx, "inscription move is not a fresh settlement, ignoring",
			slogx.Stringer("inscriptionId", insc.ID), slogx.Int("intents", len(intents)))
		return nil
	}
	intent := intents[0]
	if intent.State != entity.TransferStateInscribed {
		logger.DebugContext(ctx, "transfer intent already settled, ignoring",
			slogx.Stringer("inscriptionId", insc.ID))
		return nil
	}

	recipient := address
	if recipient == "" {
		recipient = feeSpendAddress
	}

	if err := tx.InsertBalanceDelta(ctx, entity.BalanceDelta{
		Address:           intent.FromAddress,
		Tick:              intent.Tick,
		TransferableDelta: intent.Amount,
		TransferableIsNeg: true,
		Kind:              entity.DeltaKindTransferSend,
		Inscr:             insc,
		Loc:               loc,
	}); err != nil {
		return errors.Wrap(err, "release sender transferable hold")
	}
	if address != "" {
		if err := tx.InsertBalanceDelta(ctx, entity.BalanceDelta{
			Address:        address,
			Tick:           intent.Tick,
			AvailableDelta: intent.Amount,
			Kind:           entity.DeltaKindTransferReceive,
			Inscr:          insc,
			Loc:            loc,
		}); err != nil {
			return errors.Wrap(err, "credit recipient available balance")
		}
	}

	settled, err := tx.SettleTransferIntent(ctx, insc.ID, recipient, loc)
	if err != nil {
		return errors.Wrap(err, "settle transfer intent")
	}
	if !settled {
		return errors.Mark(errors.Newf(
			"transfer intent for %s vanished between list and settle", insc.ID), errs.InvariantViolation)
	}

	return tx.InsertEvent(ctx, entity.Event{
		Kind:        entity.EventTransfer,
		Tick:        intent.Tick,
		Amount:      intent.Amount,
		Inscr:       insc,
		Loc:         loc,
		FromAddress: intent.FromAddress,
		ToAddress:   recipient,
	})
}

// Rollback deletes every ledger row recorded at or above height, exactly
// undoing every ApplyGenesis/ApplyTransfer call made for that block.
// Callers must invoke this in strictly decreasing height order from the
// current tip.
func (e *Engine) Rollback(ctx context.Context, store datagateway.LedgerStore, height int64) error {
	if err := store.RollbackFromHeight(ctx, height); err != nil {
		return errors.Wrapf(err, "rollback from height %d", height)
	}
	return nil
}
