package entity

import "github.com/brc20indexer/core/internal/numeric"

// BalanceDeltaKind identifies why a balance delta row was appended.
type BalanceDeltaKind string

const (
	DeltaKindMint             BalanceDeltaKind = "mint"
	DeltaKindTransferInscribe BalanceDeltaKind = "transfer_inscribe"
	DeltaKindTransferSend     BalanceDeltaKind = "transfer_send"
	DeltaKindTransferReceive  BalanceDeltaKind = "transfer_receive"
)

// BalanceDelta is a single append-only ledger row recording a change to one
// address's available and/or transferable balance for a token. The store
// never updates a balance in place; current balance is always the sum of
// every delta row for the (address, tick) pair up to a given height. This
// is what makes Rollback exact: deleting every delta row above a height
// restores the balance to exactly what it was before.
type BalanceDelta struct {
	Address         string
	Tick            string
	AvailableDelta  numeric.Amount
	AvailableIsNeg  bool
	TransferableDelta numeric.Amount
	TransferableIsNeg bool
	Kind            BalanceDeltaKind
	Inscr           InscriptionRef
	Loc             Location
}

// Balance is a materialized (address, tick) balance, typically computed by
// summing BalanceDelta rows up to a height.
type Balance struct {
	Address      string
	Tick         string
	Available    numeric.Amount
	Transferable numeric.Amount
}

// Total returns the address's full holding: available plus transferable.
func (b Balance) Total() numeric.Amount {
	return b.Available.Add(b.Transferable)
}
