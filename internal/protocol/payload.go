// Package protocol parses inscription bodies into BRC-20 operations. It
// never returns a partial result: a body either is a well-formed BRC-20
// operation, or Parse reports it is not one and the caller moves
// on without further interpretation.
package protocol

import (
	"encoding/json"
	"unicode/utf8"

	"github.com/brc20indexer/core/internal/numeric"
	"github.com/cockroachdb/errors"
)

// ErrNotBRC20 is the sentinel every rejection wraps. Callers that only
// care whether a body was a BRC-20 operation can use errors.Is(err,
// ErrNotBRC20); callers that want the specific reason can inspect the
// wrapped message.
var ErrNotBRC20 = errors.New("not a brc-20 operation")

const protocolID = "brc-20"

// tickByteLength is the exact byte length BRC-20 requires of a tick.
const tickByteLength = 4

const defaultDecimals = 18
const maxDecimals = 18

type rawPayload struct {
	P    string  `json:"p"`
	Op   string  `json:"op"`
	Tick string  `json:"tick"`
	Max  string  `json:"max"`
	Lim  *string `json:"lim"`
	Dec  *string `json:"dec"`
	Amt  string  `json:"amt"`
}

// Deploy carries the fields of a parsed deploy operation.
type Deploy struct {
	Tick         string
	OriginalTick string
	Max          numeric.Amount
	Limit        numeric.Amount
	HasLimit     bool
	Decimals     uint16
}

// MintOrTransfer carries the fields shared by mint and transfer operations.
type MintOrTransfer struct {
	Tick         string
	OriginalTick string
	Amount       numeric.Amount
}

// Payload is the result of successfully parsing a BRC-20 operation body.
// Exactly one of Deploy or MintOrTransfer is non-nil, selected by Op.
type Payload struct {
	Op             Operation
	Deploy         *Deploy
	MintOrTransfer *MintOrTransfer
}

// Parse parses an inscription's declared MIME type and raw body into a
// BRC-20 Payload. Any failure of the MIME check, JSON decode, or field
// validation returns an error wrapping ErrNotBRC20; callers should treat
// that as "ignore this inscription", not as a processing failure.
func Parse(mime string, body []byte) (*Payload, error) {
	if !isAcceptedMIME(mime) {
		return nil, errors.Wrapf(ErrNotBRC20, "unsupported mime type %q", mime)
	}

	var raw rawPayload
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, errors.Wrap(ErrNotBRC20, err.Error())
	}
	if !utf8.Valid(body) {
		return nil, errors.Wrap(ErrNotBRC20, "body is not valid utf-8")
	}

	if !equalFoldASCII(raw.P, protocolID) {
		return nil, errors.Wrapf(ErrNotBRC20, "unexpected protocol %q", raw.P)
	}
	op, ok := parseOperation(raw.Op)
	if !ok {
		return nil, errors.Wrapf(ErrNotBRC20, "unexpected op %q", raw.Op)
	}
	if utf8.RuneCountInString(raw.Tick) == 0 || len([]byte(raw.Tick)) != tickByteLength {
		return nil, errors.Wrapf(ErrNotBRC20, "tick must be exactly %d bytes", tickByteLength)
	}
	originalTick := raw.Tick
	tick := toLowerASCII(originalTick)

	switch op {
	case OperationDeploy:
		deploy, err := parseDeploy(raw, tick, originalTick)
		if err != nil {
			return nil, errors.Wrap(ErrNotBRC20, err.Error())
		}
		return &Payload{Op: op, Deploy: deploy}, nil
	case OperationMint, OperationTransfer:
		mt, err := parseMintOrTransfer(raw, tick, originalTick)
		if err != nil {
			return nil, errors.Wrap(ErrNotBRC20, err.Error())
		}
		return &Payload{Op: op, MintOrTransfer: mt}, nil
	default:
		return nil, errors.Wrapf(ErrNotBRC20, "unexpected op %q", raw.Op)
	}
}

func parseDeploy(raw rawPayload, tick, originalTick string) (*Deploy, error) {
	if raw.Max == "" {
		return nil, errors.New("missing max")
	}
	decimals := uint16(defaultDecimals)
	if raw.Dec != nil {
		dec, err := numeric.Parse(*raw.Dec)
		if err != nil {
			return nil, errors.Wrap(err, "invalid dec")
		}
		if !dec.IsZero() && dec.FractionalDigits() > 0 {
			return nil, errors.New("dec must be an integer")
		}
		decU64 := dec.Decimal().IntPart()
		if decU64 < 0 || decU64 > maxDecimals {
			return nil, errors.Newf("dec must be in [0, %d]", maxDecimals)
		}
		decimals = uint16(decU64)
	}

	max, err := numeric.Parse(raw.Max)
	if err != nil {
		return nil, errors.Wrap(err, "invalid max")
	}
	if !max.IsPositive() {
		return nil, errors.New("max must be > 0")
	}
	if max.FractionalDigits() > decimals {
		return nil, errors.New("max has more fractional digits than dec allows")
	}

	d := &Deploy{
		Tick:         tick,
		OriginalTick: originalTick,
		Max:          max,
		Decimals:     decimals,
	}
	if raw.Lim != nil {
		lim, err := numeric.Parse(*raw.Lim)
		if err != nil {
			return nil, errors.Wrap(err, "invalid lim")
		}
		if !lim.IsPositive() {
			return nil, errors.New("lim must be > 0")
		}
		if lim.FractionalDigits() > decimals {
			return nil, errors.New("lim has more fractional digits than dec allows")
		}
		d.Limit = lim
		d.HasLimit = true
	}
	return d, nil
}

func parseMintOrTransfer(raw rawPayload, tick, originalTick string) (*MintOrTransfer, error) {
	if raw.Amt == "" {
		return nil, errors.New("missing amt")
	}
	amt, err := numeric.Parse(raw.Amt)
	if err != nil {
		return nil, errors.Wrap(err, "invalid amt")
	}
	if !amt.IsPositive() {
		return nil, errors.New("amt must be > 0")
	}
	return &MintOrTransfer{
		Tick:         tick,
		OriginalTick: originalTick,
		Amount:       amt,
	}, nil
}

func equalFoldASCII(a, b string) bool {
	return toLowerASCII(a) == toLowerASCII(b)
}

func toLowerASCII(s string) string {
	buf := []byte(s)
	for i, c := range buf {
		if c >= 'A' && c <= 'Z' {
			buf[i] = c + ('a' - 'A')
		}
	}
	return string(buf)
}
