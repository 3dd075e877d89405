package postgres

import (
	"context"

	"github.com/brc20indexer/core/internal/entity"
	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
)

func (r *Repository) CreateTokenIfNotExists(ctx context.Context, token entity.Token) (bool, error) {
	var mintLimit *decimal.Decimal
	if token.HasMintLimit {
		d := token.MintLimit.Decimal()
		mintLimit = &d
	}
	tag, err := r.db.Exec(ctx, `
		INSERT INTO brc20_deploys
			(tick, original_tick, max_supply, mint_limit, decimals,
			 deploy_tx_hash, deploy_inscr_index, deploy_inscr_number, deploy_address,
			 block_height, block_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (tick) DO NOTHING`,
		token.Tick, token.OriginalTick, token.MaxSupply.Decimal(), mintLimit, token.Decimals,
		token.Deploy.ID.TxHash[:], token.Deploy.ID.Index, token.Deploy.Number, token.DeployAddress,
		token.DeployLoc.BlockHeight, token.DeployLoc.BlockHash[:])
	if err != nil {
		return false, errors.Wrap(err, "insert token")
	}
	return tag.RowsAffected() == 1, nil
}

func (r *Repository) CreateMint(ctx context.Context, mint entity.Mint) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO brc20_mints
			(tick, amount, tx_hash, inscr_index, inscr_number, address, block_height, block_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		mint.Tick, mint.Amount.Decimal(), mint.Inscr.ID.TxHash[:], mint.Inscr.ID.Index, mint.Inscr.Number,
		mint.Address, mint.Loc.BlockHeight, mint.Loc.BlockHash[:])
	return errors.Wrap(err, "insert mint")
}

func (r *Repository) CreateTransferIntent(ctx context.Context, intent entity.TransferIntent) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO brc20_transfers
			(tick, amount, tx_hash, inscr_index, inscr_number, from_address, state,
			 inscribe_block_height, inscribe_block_hash, inscribe_tx_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		intent.Tick, intent.Amount.Decimal(), intent.Inscr.ID.TxHash[:], intent.Inscr.ID.Index, intent.Inscr.Number,
		intent.FromAddress, string(entity.TransferStateInscribed),
		intent.InscribeLoc.BlockHeight, intent.InscribeLoc.BlockHash[:], intent.InscribeLoc.TxHash[:])
	return errors.Wrap(err, "insert transfer intent")
}

func (r *Repository) SettleTransferIntent(ctx context.Context, id entity.InscriptionID, toAddress string, loc entity.Location) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE brc20_transfers
		SET to_address = $3, state = $4, send_block_height = $5, send_block_hash = $6, send_tx_hash = $7
		WHERE tx_hash = $1 AND inscr_index = $2 AND state = $8`,
		id.TxHash[:], id.Index, toAddress, string(entity.TransferStateSent),
		loc.BlockHeight, loc.BlockHash[:], loc.TxHash[:], string(entity.TransferStateInscribed))
	if err != nil {
		return false, errors.Wrap(err, "settle transfer intent")
	}
	return tag.RowsAffected() == 1, nil
}

func (r *Repository) InsertBalanceDelta(ctx context.Context, delta entity.BalanceDelta) error {
	avail := signedDecimal(delta.AvailableDelta.Decimal(), delta.AvailableIsNeg)
	trans := signedDecimal(delta.TransferableDelta.Decimal(), delta.TransferableIsNeg)
	_, err := r.db.Exec(ctx, `
		INSERT INTO brc20_balances
			(address, tick, available_delta, transferable_delta, kind, tx_hash, inscr_index, block_height, block_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		delta.Address, delta.Tick, avail, trans, string(delta.Kind),
		delta.Inscr.ID.TxHash[:], delta.Inscr.ID.Index, delta.Loc.BlockHeight, delta.Loc.BlockHash[:])
	return errors.Wrap(err, "insert balance delta")
}

func (r *Repository) InsertEvent(ctx context.Context, event entity.Event) error {
	var fromAddress, toAddress *string
	if event.FromAddress != "" {
		fromAddress = &event.FromAddress
	}
	if event.ToAddress != "" {
		toAddress = &event.ToAddress
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO brc20_events
			(kind, tick, amount, tx_hash, inscr_index, inscr_number, from_address, to_address, block_height, block_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		string(event.Kind), event.Tick, event.Amount.Decimal(), event.Inscr.ID.TxHash[:], event.Inscr.ID.Index, event.Inscr.Number,
		fromAddress, toAddress, event.Loc.BlockHeight, event.Loc.BlockHash[:])
	return errors.Wrap(err, "insert event")
}

func (r *Repository) RecordBlock(ctx context.Context, block entity.Block) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO indexed_blocks (height, block_hash) VALUES ($1, $2)
		ON CONFLICT (height) DO UPDATE SET block_hash = EXCLUDED.block_hash`,
		block.Height, block.Hash[:])
	return errors.Wrap(err, "record block")
}

func (r *Repository) RollbackFromHeight(ctx context.Context, height int64) error {
	// A settlement is an in-place UPDATE of the genesis row, keyed by the
	// send height rather than a new row, so deleting by inscribe height
	// alone would leave a rolled-back settlement's state/to_address
	// mutated. Reset those rows to Inscribed before the height-keyed
	// deletes below.
	if _, err := r.db.Exec(ctx, `
		UPDATE brc20_transfers
		SET to_address = NULL, state = $2, send_block_height = NULL, send_block_hash = NULL, send_tx_hash = NULL
		WHERE send_block_height >= $1`,
		height, string(entity.TransferStateInscribed)); err != nil {
		return errors.Wrap(err, "reset settled transfers above rollback height")
	}

	stmts := []string{
		`DELETE FROM brc20_events WHERE block_height >= $1`,
		`DELETE FROM brc20_balances WHERE block_height >= $1`,
		`DELETE FROM brc20_transfers WHERE inscribe_block_height >= $1`,
		`DELETE FROM brc20_mints WHERE block_height >= $1`,
		`DELETE FROM brc20_deploys WHERE block_height >= $1`,
		`DELETE FROM indexed_blocks WHERE height >= $1`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.Exec(ctx, stmt, height); err != nil {
			return errors.Wrapf(err, "rollback statement %q", stmt)
		}
	}
	return nil
}

// signedDecimal negates d when neg is set. Balance deltas model a
// direction (credit or debit) separately from their magnitude; the
// ledger table stores the signed value directly so SUM() over a
// (address, tick) reconstructs the current balance.
func signedDecimal(d decimal.Decimal, neg bool) decimal.Decimal {
	if neg {
		return d.Neg()
	}
	return d
}
