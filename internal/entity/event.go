package entity

import "github.com/brc20indexer/core/internal/numeric"

// EventKind identifies the four observable BRC-20 actions the history
// query surface reports, in the order they can occur for a given
// inscription: a deploy opens a ticker, a mint credits an address, an
// inscribe-transfer reserves an amount, and a transfer settles it onto a
// recipient.
type EventKind string

const (
	EventDeploy            EventKind = "deploy"
	EventMint              EventKind = "mint"
	EventInscribeTransfer  EventKind = "inscribe_transfer"
	EventTransfer          EventKind = "transfer"
)

// Event is a single row in the append-only event log, the source of truth
// for the History query. Rows are never mutated; a rollback deletes every
// row at or above the rolled-back height.
type Event struct {
	Kind        EventKind
	Tick        string
	Amount      numeric.Amount
	Inscr       InscriptionRef
	Loc         Location
	FromAddress string
	ToAddress   string
}
