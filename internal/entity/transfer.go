package entity

import "github.com/brc20indexer/core/internal/numeric"

// TransferState tracks where a transfer inscription sits in the two-phase
// inscribe-then-send protocol.
type TransferState string

const (
	// TransferStateInscribed means the inscription exists and its amount
	// has been reserved out of the inscriber's available balance, but it
	// has not yet been sent to a recipient.
	TransferStateInscribed TransferState = "inscribed"
	// TransferStateSent means the inscription has moved to a new output
	// in a later transaction and the reserved amount has settled into the
	// recipient's available balance.
	TransferStateSent TransferState = "sent"
)

// TransferIntent is a transfer inscription: the reservation created at
// inscribe time, and (once observed) the settlement that followed it.
type TransferIntent struct {
	Tick         string
	Amount       numeric.Amount
	Inscr        InscriptionRef
	InscribeLoc  Location
	FromAddress  string
	State        TransferState
	SendLoc      Location
	ToAddress    string
}
