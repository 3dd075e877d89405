package entity

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/cockroachdb/errors"
)

// InscriptionID is the opaque key the collaborator (the native ordinal
// indexer) uses to identify an inscription: the genesis transaction hash
// plus the output index within that transaction's reveal.
type InscriptionID struct {
	TxHash chainhash.Hash
	Index  uint32
}

func (id InscriptionID) String() string {
	return fmt.Sprintf("%si%d", id.TxHash.String(), id.Index)
}

var ErrInvalidInscriptionID = errors.New("invalid inscription id: must contain exactly one 'i' separator")

// ParseInscriptionID parses the canonical "<txhash>i<index>" representation.
func ParseInscriptionID(s string) (InscriptionID, error) {
	parts := strings.SplitN(s, "i", 2)
	if len(parts) != 2 {
		return InscriptionID{}, errors.WithStack(ErrInvalidInscriptionID)
	}
	txHash, err := chainhash.NewHashFromStr(parts[0])
	if err != nil {
		return InscriptionID{}, errors.Wrap(err, "invalid inscription id: cannot parse tx hash")
	}
	index, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return InscriptionID{}, errors.Wrap(err, "invalid inscription id: cannot parse index")
	}
	return InscriptionID{TxHash: *txHash, Index: uint32(index)}, nil
}

// InscriptionRef is the collaborator-owned inscription the core treats as
// an opaque key plus its inscription number; the current owning address
// travels separately with each genesis/transfer event. The core never computes
// ordinal-theory state itself; it only reacts to genesis/transfer events
// the collaborator emits.
type InscriptionRef struct {
	ID     InscriptionID
	Number int64
}
