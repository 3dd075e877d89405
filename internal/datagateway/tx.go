package datagateway

import "context"

// Tx is embedded by any data gateway obtained through BeginLedgerTx. Commit
// persists every write made since the transaction began; Rollback discards
// them. Rollback must be safe to call unconditionally after Commit, so a
// deferred Rollback is always correct.
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
