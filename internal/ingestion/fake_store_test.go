package ingestion_test

import (
	"context"
	"strings"
	"sync"

	"github.com/brc20indexer/core/internal/datagateway"
	"github.com/brc20indexer/core/internal/entity"
	"github.com/brc20indexer/core/internal/numeric"
	"github.com/cockroachdb/errors"
)

// fakeStore is a minimal in-memory LedgerStore used to exercise the
// Coordinator without a real database. It is safe for concurrent use
// since the worker goroutine and test assertions both touch it.
type fakeStore struct {
	mu      sync.Mutex
	tokens  map[string]entity.Token
	deltas  []entity.BalanceDelta
	intents []entity.TransferIntent
	blocks  []entity.Block
}

func newBlockingFakeStore() *fakeStore {
	return &fakeStore{tokens: map[string]entity.Token{}}
}

var _ datagateway.LedgerStore = (*fakeStore)(nil)

func (f *fakeStore) GetToken(_ context.Context, tick string) (entity.Token, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tokens[strings.ToLower(tick)]
	return t, ok, nil
}

func (f *fakeStore) GetBalance(_ context.Context, address, tick string) (entity.Balance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
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
	f.mu.Lock()
	defer f.mu.Unlock()
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
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.blocks) == 0 {
		return entity.Block{}, false, nil
	}
	return f.blocks[len(f.blocks)-1], true, nil
}

func (f *fakeStore) ListTokens(context.Context, string, datagateway.Page) ([]entity.Token, int64, error) {
	return nil, 0, errors.New("not implemented in fake")
}

func (f *fakeStore) ListBalances(context.Context, string, string, datagateway.Page) ([]entity.Balance, int64, error) {
	return nil, 0, errors.New("not implemented in fake")
}

func (f *fakeStore) MintedSupply(_ context.Context, tick string) (numeric.Amount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tokens[strings.ToLower(tick)]
	if !ok {
		return numeric.Zero, nil
	}
	return t.MintedSupply, nil
}

func (f *fakeStore) CountHolders(context.Context, string) (int64, error) {
	return 0, errors.New("not implemented in fake")
}

func (f *fakeStore) ListHolders(context.Context, string, datagateway.Page) ([]entity.Balance, int64, error) {
	return nil, 0, errors.New("not implemented in fake")
}

func (f *fakeStore) ListHistory(context.Context, string, datagateway.Page) ([]entity.Event, int64, error) {
	return nil, 0, errors.New("not implemented in fake")
}

func (f *fakeStore) CreateTokenIfNotExists(_ context.Context, token entity.Token) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := strings.ToLower(token.Tick)
	if _, ok := f.tokens[key]; ok {
		return false, nil
	}
	token.Tick = key
	f.tokens[key] = token
	return true, nil
}

func (f *fakeStore) CreateMint(_ context.Context, mint entity.Mint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	token := f.tokens[mint.Tick]
	effective := numeric.Min(mint.Amount, token.RemainingSupply())
	token.MintedSupply = token.MintedSupply.Add(effective)
	f.tokens[mint.Tick] = token
	return nil
}

func (f *fakeStore) CreateTransferIntent(_ context.Context, intent entity.TransferIntent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.intents = append(f.intents, intent)
	return nil
}

func (f *fakeStore) SettleTransferIntent(_ context.Context, id entity.InscriptionID, toAddress string, loc entity.Location) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
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
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deltas = append(f.deltas, delta)
	return nil
}

func (f *fakeStore) InsertEvent(context.Context, entity.Event) error {
	return nil
}

func (f *fakeStore) RecordBlock(_ context.Context, block entity.Block) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blocks = append(f.blocks, block)
	return nil
}

func (f *fakeStore) RollbackFromHeight(_ context.Context, height int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for tick, token := range f.tokens {
		if token.DeployLoc.BlockHeight >= height {
			delete(f.tokens, tick)
		}
	}
	f.deltas = filterBelow(f.deltas, func(d entity.BalanceDelta) int64 { return d.Loc.BlockHeight }, height)

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

	kept := f.blocks[:0]
	for _, b := range f.blocks {
		if b.Height < height {
			kept = append(kept, b)
		}
	}
	f.blocks = kept
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

func (f *fakeStore) BeginLedgerTx(context.Context) (datagateway.LedgerStoreTx, error) {
	return &fakeStoreTx{fakeStore: f}, nil
}

// fakeStoreTx wraps fakeStore with no-op Commit/Rollback: fakeStore
// writes are applied immediately rather than buffered, which is
// sufficient for exercising the Coordinator's control flow.
type fakeStoreTx struct {
	*fakeStore
}

func (f *fakeStoreTx) Commit(context.Context) error   { return nil }
func (f *fakeStoreTx) Rollback(context.Context) error { return nil }
