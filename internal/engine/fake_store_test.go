package engine_test

import (
	"context"
	"sort"
	"strings"

	"github.com/brc20indexer/core/internal/datagateway"
	"github.com/brc20indexer/core/internal/entity"
	"github.com/brc20indexer/core/internal/numeric"
	"github.com/cockroachdb/errors"
)

// fakeStore is a hand-written in-memory stand-in for the Ledger Store
// interface, used in place of generated mocks. It implements the same
// append-only-delta-rows discipline the Postgres store is required to:
// Rollback deletes rows by height rather than mutating balances.
type fakeStore struct {
	tokens    map[string]entity.Token
	mints     []entity.Mint
	intents   []entity.TransferIntent
	deltas    []entity.BalanceDelta
	events    []entity.Event
	blocks    []entity.Block
	inTx      bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{tokens: map[string]entity.Token{}}
}

var _ datagateway.LedgerStoreTx = (*fakeStore)(nil)

func (f *fakeStore) GetToken(_ context.Context, tick string) (entity.Token, bool, error) {
	t, ok := f.tokens[strings.ToLower(tick)]
	return t, ok, nil
}

func (f *fakeStore) GetBalance(_ context.Context, address, tick string) (entity.Balance, error) {
	bal := entity.Balance{Address: address, Tick: strings.ToLower(tick)}
	for _, d := range f.deltas {
		if d.Address != address || d.Tick != bal.Tick {
			continue
		}
		if d.AvailableIsNeg {
			bal.Available = bal.Available.Sub(d.AvailableDelta)
		} else {
			bal.Available = bal.Available.Add(d.AvailableDelta)
		}
		if d.TransferableIsNeg {
			bal.Transferable = bal.Transferable.Sub(d.TransferableDelta)
		} else {
			bal.Transferable = bal.Transferable.Add(d.TransferableDelta)
		}
	}
	return bal, nil
}

func (f *fakeStore) ListTransferIntentsByInscription(_ context.Context, id entity.InscriptionID, cap int32) ([]entity.TransferIntent, error) {
	var out []entity.TransferIntent
	for _, in := range f.intents {
		if in.Inscr.ID == id {
			out = append(out, in)
		}
	}
	if int32(len(out)) > cap {
		out = out[:cap]
	}
	return out, nil
}

func (f *fakeStore) GetLatestBlock(_ context.Context) (entity.Block, bool, error) {
	if len(f.blocks) == 0 {
		return entity.Block{}, false, nil
	}
	return f.blocks[len(f.blocks)-1], true, nil
}

func (f *fakeStore) ListTokens(_ context.Context, _ string, _ datagateway.Page) ([]entity.Token, int64, error) {
	return nil, 0, errors.New("not implemented in fake")
}

func (f *fakeStore) ListBalances(_ context.Context, _, _ string, _ datagateway.Page) ([]entity.Balance, int64, error) {
	return nil, 0, errors.New("not implemented in fake")
}

func (f *fakeStore) MintedSupply(_ context.Context, tick string) (numeric.Amount, error) {
	t, ok := f.tokens[strings.ToLower(tick)]
	if !ok {
		return numeric.Zero, nil
	}
	return t.MintedSupply, nil
}

func (f *fakeStore) CountHolders(_ context.Context, _ string) (int64, error) {
	return 0, errors.New("not implemented in fake")
}

func (f *fakeStore) ListHolders(_ context.Context, _ string, _ datagateway.Page) ([]entity.Balance, int64, error) {
	return nil, 0, errors.New("not implemented in fake")
}

func (f *fakeStore) ListHistory(_ context.Context, _ string, _ datagateway.Page) ([]entity.Event, int64, error) {
	return nil, 0, errors.New("not implemented in fake")
}

func (f *fakeStore) CreateTokenIfNotExists(_ context.Context, token entity.Token) (bool, error) {
	key := strings.ToLower(token.Tick)
	if _, ok := f.tokens[key]; ok {
		return false, nil
	}
	token.Tick = key
	f.tokens[key] = token
	return true, nil
}

func (f *fakeStore) CreateMint(_ context.Context, mint entity.Mint) error {
	f.mints = append(f.mints, mint)
	token := f.tokens[mint.Tick]
	effective := numeric.Min(mint.Amount, token.RemainingSupply())
	token.MintedSupply = token.MintedSupply.Add(effective)
	f.tokens[mint.Tick] = token
	return nil
}

func (f *fakeStore) CreateTransferIntent(_ context.Context, intent entity.TransferIntent) error {
	f.intents = append(f.intents, intent)
	return nil
}

func (f *fakeStore) SettleTransferIntent(_ context.Context, id entity.InscriptionID, toAddress string, loc entity.Location) (bool, error) {
	for i, in := range f.intents {
		if in.Inscr.ID == id && in.State == entity.TransferStateInscribed {
			f.intents[i].State = entity.TransferStateSent
			f.intents[i].ToAddress = toAddress
			f.intents[i].SendLoc = loc
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) InsertBalanceDelta(_ context.Context, delta entity.BalanceDelta) error {
	f.deltas = append(f.deltas, delta)
	return nil
}

func (f *fakeStore) InsertEvent(_ context.Context, event entity.Event) error {
	f.events = append(f.events, event)
	return nil
}

func (f *fakeStore) RecordBlock(_ context.Context, block entity.Block) error {
	f.blocks = append(f.blocks, block)
	return nil
}

func (f *fakeStore) RollbackFromHeight(_ context.Context, height int64) error {
	for tick, token := range f.tokens {
		if token.DeployLoc.BlockHeight >= height {
			delete(f.tokens, tick)
		}
	}
	f.mints = filterBelow(f.mints, func(m entity.Mint) int64 { return m.Loc.BlockHeight }, height)

	intents := f.intents[:0]
	for _, in := range f.intents {
		if in.InscribeLoc.BlockHeight >= height {
			continue
		}
		if in.State == entity.TransferStateSent && in.SendLoc.BlockHeight >= height {
			in.State = entity.TransferStateInscribed
			in.ToAddress = ""
			in.SendLoc = entity.Location{}
		}
		intents = append(intents, in)
	}
	f.intents = intents

	f.deltas = filterBelow(f.deltas, func(d entity.BalanceDelta) int64 { return d.Loc.BlockHeight }, height)
	f.events = filterBelow(f.events, func(e entity.Event) int64 { return e.Loc.BlockHeight }, height)

	idx := sort.Search(len(f.blocks), func(i int) bool { return f.blocks[i].Height >= height })
	f.blocks = f.blocks[:idx]
	return nil
}

func filterBelow[T any](rows []T, heightOf func(T) int64, height int64) []T {
	out := rows[:0]
	for _, r := range rows {
		if heightOf(r) < height {
			out = append(out, r)
		}
	}
	return out
}

func (f *fakeStore) BeginLedgerTx(_ context.Context) (datagateway.LedgerStoreTx, error) {
	f.inTx = true
	return f, nil
}

func (f *fakeStore) Commit(_ context.Context) error   { f.inTx = false; return nil }
func (f *fakeStore) Rollback(_ context.Context) error { f.inTx = false; return nil }
