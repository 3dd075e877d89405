package entity

import "github.com/brc20indexer/core/internal/numeric"

// Token is the deploy-time record for a ticker. Tickers are compared
// case-insensitively everywhere in the engine and the store; Tick always
// holds the normalized (lower-cased) form and OriginalTick preserves the
// bytes exactly as inscribed for display.
type Token struct {
	Tick         string
	OriginalTick string
	MaxSupply    numeric.Amount
	// MintLimit is the per-mint cap declared at deploy time. It is only
	// meaningful when HasMintLimit is true; a deploy that omits lim has
	// no per-mint cap at all, only the remaining-supply clamp.
	MintLimit     numeric.Amount
	HasMintLimit  bool
	Decimals      uint16
	MintedSupply  numeric.Amount
	Deploy        InscriptionRef
	DeployLoc     Location
	DeployAddress string
}

// RemainingSupply returns how much of MaxSupply has not yet been minted.
func (t Token) RemainingSupply() numeric.Amount {
	return t.MaxSupply.Sub(t.MintedSupply)
}
