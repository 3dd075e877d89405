package entity

import "github.com/brc20indexer/core/internal/numeric"

// Mint is a single successful mint inscription crediting an address's
// available balance for a token.
type Mint struct {
	Tick      string
	Amount    numeric.Amount
	Inscr     InscriptionRef
	Loc       Location
	Address   string
}
