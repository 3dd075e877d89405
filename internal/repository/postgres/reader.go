package postgres

import (
	"context"

	"github.com/brc20indexer/core/internal/datagateway"
	"github.com/brc20indexer/core/internal/entity"
	"github.com/brc20indexer/core/internal/numeric"
	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

func (r *Repository) GetToken(ctx context.Context, tick string) (entity.Token, bool, error) {
	row := r.db.QueryRow(ctx, `
		SELECT d.tick, d.original_tick, d.max_supply, d.mint_limit, d.decimals,
		       d.deploy_tx_hash, d.deploy_inscr_index, d.deploy_inscr_number, d.deploy_address,
		       d.block_height, d.block_hash,
		       COALESCE((SELECT SUM(available_delta) FROM brc20_balances b WHERE b.tick = d.tick AND b.kind = $2), 0)
		FROM brc20_deploys d
		WHERE d.tick = $1`, tick, string(entity.DeltaKindMint))

	var (
		max, minted decimal.Decimal
		lim         *decimal.Decimal
		txHash      []byte
		blockHash   []byte
		token       entity.Token
	)
	err := row.Scan(&token.Tick, &token.OriginalTick, &max, &lim, &token.Decimals,
		&txHash, &token.Deploy.ID.Index, &token.Deploy.Number, &token.DeployAddress,
		&token.DeployLoc.BlockHeight, &blockHash, &minted)
	if errors.Is(err, pgx.ErrNoRows) {
		return entity.Token{}, false, nil
	}
	if err != nil {
		return entity.Token{}, false, errors.Wrap(err, "scan token")
	}
	copy(token.Deploy.ID.TxHash[:], txHash)
	copy(token.DeployLoc.BlockHash[:], blockHash)
	token.DeployLoc.TxHash = token.Deploy.ID.TxHash
	token.MaxSupply = numeric.FromDecimal(max)
	if lim != nil {
		token.MintLimit = numeric.FromDecimal(*lim)
		token.HasMintLimit = true
	}
	token.MintedSupply = numeric.FromDecimal(minted)
	return token, true, nil
}

func (r *Repository) GetBalance(ctx context.Context, address, tick string) (entity.Balance, error) {
	row := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(available_delta), 0), COALESCE(SUM(transferable_delta), 0)
		FROM brc20_balances WHERE address = $1 AND tick = $2`, address, tick)
	var avail, trans decimal.Decimal
	if err := row.Scan(&avail, &trans); err != nil {
		return entity.Balance{}, errors.Wrap(err, "scan balance")
	}
	return entity.Balance{
		Address:      address,
		Tick:         tick,
		Available:    numeric.FromDecimal(avail),
		Transferable: numeric.FromDecimal(trans),
	}, nil
}

func (r *Repository) ListTransferIntentsByInscription(ctx context.Context, id entity.InscriptionID, cap int32) ([]entity.TransferIntent, error) {
	rows, err := r.db.Query(ctx, `
		SELECT tick, amount, from_address, to_address, state,
		       inscribe_block_height, inscribe_block_hash, inscribe_tx_hash,
		       send_block_height, send_block_hash, send_tx_hash
		FROM brc20_transfers
		WHERE tx_hash = $1 AND inscr_index = $2
		ORDER BY inscribe_block_height DESC
		LIMIT $3`, id.TxHash[:], id.Index, cap)
	if err != nil {
		return nil, errors.Wrap(err, "query transfer intents")
	}
	defer rows.Close()

	var out []entity.TransferIntent
	for rows.Next() {
		var (
			amount                                       decimal.Decimal
			toAddress                                    *string
			state                                        string
			inscribeHeight                                int64
			inscribeBlockHash, inscribeTxHash            []byte
			sendHeight                                    *int64
			sendBlockHash, sendTxHash                     []byte
		)
		intent := entity.TransferIntent{Inscr: entity.InscriptionRef{ID: id}}
		if err := rows.Scan(&intent.Tick, &amount, &intent.FromAddress, &toAddress, &state,
			&inscribeHeight, &inscribeBlockHash, &inscribeTxHash,
			&sendHeight, &sendBlockHash, &sendTxHash); err != nil {
			return nil, errors.Wrap(err, "scan transfer intent")
		}
		intent.Amount = numeric.FromDecimal(amount)
		intent.State = entity.TransferState(state)
		intent.InscribeLoc = entity.Location{BlockHeight: inscribeHeight}
		copy(intent.InscribeLoc.BlockHash[:], inscribeBlockHash)
		copy(intent.InscribeLoc.TxHash[:], inscribeTxHash)
		if toAddress != nil {
			intent.ToAddress = *toAddress
		}
		if sendHeight != nil {
			intent.SendLoc = entity.Location{BlockHeight: *sendHeight}
			copy(intent.SendLoc.BlockHash[:], sendBlockHash)
			copy(intent.SendLoc.TxHash[:], sendTxHash)
		}
		out = append(out, intent)
	}
	return out, errors.Wrap(rows.Err(), "iterate transfer intents")
}

func (r *Repository) GetLatestBlock(ctx context.Context) (entity.Block, bool, error) {
	row := r.db.QueryRow(ctx, `SELECT height, block_hash FROM indexed_blocks ORDER BY height DESC LIMIT 1`)
	var (
		block     entity.Block
		blockHash []byte
	)
	err := row.Scan(&block.Height, &blockHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return entity.Block{}, false, nil
	}
	if err != nil {
		return entity.Block{}, false, errors.Wrap(err, "scan latest block")
	}
	copy(block.Hash[:], blockHash)
	return block, true, nil
}

func (r *Repository) ListTokens(ctx context.Context, tickFilter string, page datagateway.Page) ([]entity.Token, int64, error) {
	rows, err := r.db.Query(ctx, `
		SELECT tick, original_tick, max_supply, mint_limit, decimals,
		       deploy_tx_hash, deploy_inscr_index, deploy_inscr_number, deploy_address, block_height, block_hash,
		       COUNT(*) OVER()
		FROM brc20_deploys
		WHERE $1 = '' OR tick LIKE '%' || $1 || '%'
		ORDER BY block_height ASC
		LIMIT $2 OFFSET $3`, tickFilter, page.Limit, page.Offset)
	if err != nil {
		return nil, 0, errors.Wrap(err, "query tokens")
	}
	defer rows.Close()

	var (
		tokens []entity.Token
		total  int64
	)
	for rows.Next() {
		var (
			token     entity.Token
			max       decimal.Decimal
			lim       *decimal.Decimal
			txHash    []byte
			blockHash []byte
		)
		if err := rows.Scan(&token.Tick, &token.OriginalTick, &max, &lim, &token.Decimals,
			&txHash, &token.Deploy.ID.Index, &token.Deploy.Number, &token.DeployAddress,
			&token.DeployLoc.BlockHeight, &blockHash, &total); err != nil {
			return nil, 0, errors.Wrap(err, "scan token")
		}
		copy(token.Deploy.ID.TxHash[:], txHash)
		copy(token.DeployLoc.BlockHash[:], blockHash)
		token.MaxSupply = numeric.FromDecimal(max)
		if lim != nil {
			token.MintLimit = numeric.FromDecimal(*lim)
			token.HasMintLimit = true
		}
		tokens = append(tokens, token)
	}
	return tokens, total, errors.Wrap(rows.Err(), "iterate tokens")
}

func (r *Repository) ListBalances(ctx context.Context, address, tickFilter string, page datagateway.Page) ([]entity.Balance, int64, error) {
	rows, err := r.db.Query(ctx, `
		SELECT tick, SUM(available_delta), SUM(transferable_delta), COUNT(*) OVER()
		FROM brc20_balances
		WHERE address = $1 AND ($2 = '' OR tick LIKE '%' || $2 || '%')
		GROUP BY tick
		HAVING SUM(available_delta) + SUM(transferable_delta) > 0
		ORDER BY tick
		LIMIT $3 OFFSET $4`, address, tickFilter, page.Limit, page.Offset)
	if err != nil {
		return nil, 0, errors.Wrap(err, "query balances")
	}
	defer rows.Close()

	var (
		balances []entity.Balance
		total    int64
	)
	for rows.Next() {
		var avail, trans decimal.Decimal
		balance := entity.Balance{Address: address}
		if err := rows.Scan(&balance.Tick, &avail, &trans, &total); err != nil {
			return nil, 0, errors.Wrap(err, "scan balance")
		}
		balance.Available = numeric.FromDecimal(avail)
		balance.Transferable = numeric.FromDecimal(trans)
		balances = append(balances, balance)
	}
	return balances, total, errors.Wrap(rows.Err(), "iterate balances")
}

func (r *Repository) MintedSupply(ctx context.Context, tick string) (numeric.Amount, error) {
	row := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(available_delta), 0) FROM brc20_balances WHERE tick = $1 AND kind = $2`,
		tick, string(entity.DeltaKindMint))
	var minted decimal.Decimal
	if err := row.Scan(&minted); err != nil {
		return numeric.Zero, errors.Wrap(err, "scan minted supply")
	}
	return numeric.FromDecimal(minted), nil
}

func (r *Repository) CountHolders(ctx context.Context, tick string) (int64, error) {
	row := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM (
			SELECT address FROM brc20_balances WHERE tick = $1
			GROUP BY address
			HAVING SUM(available_delta) + SUM(transferable_delta) > 0
		) holders`, tick)
	var count int64
	if err := row.Scan(&count); err != nil {
		return 0, errors.Wrap(err, "scan holder count")
	}
	return count, nil
}

func (r *Repository) ListHolders(ctx context.Context, tick string, page datagateway.Page) ([]entity.Balance, int64, error) {
	rows, err := r.db.Query(ctx, `
		SELECT address, SUM(available_delta), SUM(transferable_delta), COUNT(*) OVER()
		FROM brc20_balances
		WHERE tick = $1
		GROUP BY address
		HAVING SUM(available_delta) + SUM(transferable_delta) > 0
		ORDER BY SUM(available_delta) + SUM(transferable_delta) DESC
		LIMIT $2 OFFSET $3`, tick, page.Limit, page.Offset)
	if err != nil {
		return nil, 0, errors.Wrap(err, "query holders")
	}
	defer rows.Close()

	var (
		holders []entity.Balance
		total   int64
	)
	for rows.Next() {
		var avail, trans decimal.Decimal
		balance := entity.Balance{Tick: tick}
		if err := rows.Scan(&balance.Address, &avail, &trans, &total); err != nil {
			return nil, 0, errors.Wrap(err, "scan holder")
		}
		balance.Available = numeric.FromDecimal(avail)
		balance.Transferable = numeric.FromDecimal(trans)
		holders = append(holders, balance)
	}
	return holders, total, errors.Wrap(rows.Err(), "iterate holders")
}

func (r *Repository) ListHistory(ctx context.Context, tick string, page datagateway.Page) ([]entity.Event, int64, error) {
	rows, err := r.db.Query(ctx, `
		SELECT kind, tick, amount, tx_hash, inscr_index, inscr_number,
		       from_address, to_address, block_height, block_hash, COUNT(*) OVER()
		FROM brc20_events
		WHERE tick = $1
		ORDER BY inscr_number DESC
		LIMIT $2 OFFSET $3`, tick, page.Limit, page.Offset)
	if err != nil {
		return nil, 0, errors.Wrap(err, "query history")
	}
	defer rows.Close()

	var (
		events []entity.Event
		total  int64
	)
	for rows.Next() {
		var (
			kind, tickOut                string
			amount                       decimal.Decimal
			txHash                       []byte
			fromAddress, toAddress       *string
			blockHash                    []byte
		)
		event := entity.Event{}
		if err := rows.Scan(&kind, &tickOut, &amount, &txHash, &event.Inscr.ID.Index, &event.Inscr.Number,
			&fromAddress, &toAddress, &event.Loc.BlockHeight, &blockHash, &total); err != nil {
			return nil, 0, errors.Wrap(err, "scan event")
		}
		event.Kind = entity.EventKind(kind)
		event.Tick = tickOut
		event.Amount = numeric.FromDecimal(amount)
		copy(event.Inscr.ID.TxHash[:], txHash)
		copy(event.Loc.BlockHash[:], blockHash)
		event.Loc.TxHash = event.Inscr.ID.TxHash
		if fromAddress != nil {
			event.FromAddress = *fromAddress
		}
		if toAddress != nil {
			event.ToAddress = *toAddress
		}
		events = append(events, event)
	}
	return events, total, errors.Wrap(rows.Err(), "iterate history")
}
