// Package ingestion owns the bounded single-consumer queue that decouples
// the native block source (an external collaborator) from the Operation
// Engine, and defines the contract that collaborator delivers against.
package ingestion

import (
	"github.com/brc20indexer/core/internal/entity"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// InscriptionEvent is either a Genesis or a Transfer, the two shapes the
// collaborator reports for an inscription observed within a block.
type InscriptionEvent interface {
	isInscriptionEvent()
}

// Genesis is an inscription's first appearance: its content, declared
// MIME, and current owning address (empty if spent as a fee).
type Genesis struct {
	InscriptionID entity.InscriptionID
	Number        int64
	Payload       []byte
	Mime          string
	Location      entity.Location
	Address       string
}

func (Genesis) isInscriptionEvent() {}

// Transfer is any subsequent movement of an already-genesis'd
// inscription. Address is empty if the inscription was spent as a fee.
type Transfer struct {
	InscriptionID entity.InscriptionID
	Number        int64
	Location      entity.Location
	Address       string
}

func (Transfer) isInscriptionEvent() {}

// BlockApply is one block's worth of inscription activity, delivered in
// the collaborator's consensus order.
type BlockApply struct {
	Height       int64
	Hash         chainhash.Hash
	PrevHash     chainhash.Hash
	Inscriptions []InscriptionEvent
}

// BlockRollback notifies that a previously applied block has been
// reverted and must be undone.
type BlockRollback struct {
	Height int64
	Hash   chainhash.Hash
}

// delivery is the union of the two kinds the Coordinator's queue carries.
// Sharing one queue for both keeps their relative order exactly as the
// collaborator produced it.
type delivery interface {
	isDelivery()
}

func (BlockApply) isDelivery()    {}
func (BlockRollback) isDelivery() {}
