package entity

import "github.com/btcsuite/btcd/chaincfg/chainhash"

// Location identifies where in the chain an event was observed: the block
// that contained it and the transaction within that block. Height and
// hash travel together everywhere; the ingestion Coordinator checks block
// heights against the recorded tip and does not compare hashes.
type Location struct {
	BlockHeight int64
	BlockHash   chainhash.Hash
	TxHash      chainhash.Hash
	TxIndex     uint32
}

// Block identifies a single block by height and hash, the unit the
// ingestion coordinator applies and rolls back.
type Block struct {
	Height int64
	Hash   chainhash.Hash
}
