// Package datagateway declares the storage contract the Operation Engine
// and Query Surface use to read and mutate ledger state. It never
// prescribes an implementation; internal/repository/postgres provides
// the one this module ships.
package datagateway

import (
	"context"

	"github.com/brc20indexer/core/internal/entity"
	"github.com/brc20indexer/core/internal/numeric"
)

// Page bounds a result set the way every Query Surface method requires:
// a max row count and an offset, both non-negative.
type Page struct {
	Limit  int32
	Offset int32
}

// LedgerStore is the full read/write contract over BRC-20 ledger state.
type LedgerStore interface {
	LedgerReader
	LedgerWriter

	// BeginLedgerTx returns a LedgerStoreTx bound to a new database
	// transaction with snapshot isolation. All writes performed through
	// it are invisible to other sessions until Commit.
	BeginLedgerTx(ctx context.Context) (LedgerStoreTx, error)
}

// LedgerStoreTx is a LedgerStore bound to an in-flight transaction.
type LedgerStoreTx interface {
	LedgerStore
	Tx
}

// LedgerReader exposes every lookup the Engine and Query Surface need.
// None of these require a transaction; callers needing a consistent
// snapshot across several reads should obtain one through BeginLedgerTx
// and read from the returned LedgerStoreTx instead.
type LedgerReader interface {
	// GetToken returns the token deployed under the given lower-cased
	// ticker. ok is false if no such token exists.
	GetToken(ctx context.Context, tick string) (token entity.Token, ok bool, err error)

	// GetBalance returns the current (available, transferable) balance
	// for an (address, tick) pair, computed by summing delta rows.
	GetBalance(ctx context.Context, address, tick string) (entity.Balance, error)

	// ListTransferIntentsByInscription returns, newest first, up to cap
	// transfer-intent rows recorded against an inscription. In practice
	// at most one inscribe-transfer is ever ignored per invariant 4, but
	// the cap bounds a pathological or adversarial input.
	ListTransferIntentsByInscription(ctx context.Context, id entity.InscriptionID, cap int32) ([]entity.TransferIntent, error)

	// GetLatestBlock returns the highest block height and hash the store
	// has recorded as applied. ok is false before the first block.
	GetLatestBlock(ctx context.Context) (block entity.Block, ok bool, err error)

	// ListTokens returns deployed tokens ordered by deploy height
	// ascending, optionally filtered by a case-insensitive ticker
	// substring, plus the total matching row count for pagination.
	ListTokens(ctx context.Context, tickFilter string, page Page) ([]entity.Token, int64, error)

	// ListBalances returns every (tick, available, transferable) row for
	// an address with a positive total balance, optionally filtered by
	// ticker, plus the total matching row count.
	ListBalances(ctx context.Context, address, tickFilter string, page Page) ([]entity.Balance, int64, error)

	// MintedSupply returns the sum of effective mint amounts credited so
	// far for a token.
	MintedSupply(ctx context.Context, tick string) (numeric.Amount, error)

	// CountHolders returns the number of distinct addresses with a
	// positive total balance for a token.
	CountHolders(ctx context.Context, tick string) (int64, error)

	// ListHolders returns addresses holding a token ordered by total
	// balance descending, plus the total matching row count.
	ListHolders(ctx context.Context, tick string, page Page) ([]entity.Balance, int64, error)

	// ListHistory returns the event log for a token ordered by
	// inscription number descending, plus the total matching row count.
	ListHistory(ctx context.Context, tick string, page Page) ([]entity.Event, int64, error)
}

// LedgerWriter exposes every mutation the Engine performs while applying
// or rolling back a block.
type LedgerWriter interface {
	// CreateTokenIfNotExists inserts a deploy row unless a token already
	// exists under the same lower-cased ticker, in which case it is a
	// no-op. created reports whether the insert happened.
	CreateTokenIfNotExists(ctx context.Context, token entity.Token) (created bool, err error)

	// CreateMint inserts a mint row.
	CreateMint(ctx context.Context, mint entity.Mint) error

	// CreateTransferIntent inserts an inscribe-transfer row in the
	// Inscribed state.
	CreateTransferIntent(ctx context.Context, intent entity.TransferIntent) error

	// SettleTransferIntent marks the inscribe-transfer row for id as
	// Sent and records the recipient. ok is false if no Inscribed row
	// exists for id, which the Engine treats as "nothing to settle".
	SettleTransferIntent(ctx context.Context, id entity.InscriptionID, toAddress string, loc entity.Location) (ok bool, err error)

	// InsertBalanceDelta appends a balance delta row. Balances are never
	// updated in place.
	InsertBalanceDelta(ctx context.Context, delta entity.BalanceDelta) error

	// InsertEvent appends an event row.
	InsertEvent(ctx context.Context, event entity.Event) error

	// RecordBlock records height/hash as the new tip. The Coordinator
	// reads it back through GetLatestBlock before every apply/rollback to
	// enforce strictly increasing apply / exact-tip rollback heights,
	// rejecting anything else as a fatal "unknown height" error.
	RecordBlock(ctx context.Context, block entity.Block) error

	// RollbackFromHeight deletes every ledger row recorded at or above
	// height: deploys, mints, transfer intents, balance deltas, events,
	// and block records. It is the sole mechanism invariant 5 relies on.
	RollbackFromHeight(ctx context.Context, height int64) error
}
