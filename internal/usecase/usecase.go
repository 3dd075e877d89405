// Package usecase implements the read-only Query Surface over ledger
// state: every method is a snapshot aggregation, never a transaction.
package usecase

import (
	"context"
	"strings"

	"github.com/brc20indexer/core/internal/datagateway"
	"github.com/brc20indexer/core/internal/entity"
	"github.com/brc20indexer/core/internal/numeric"
	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"
)

// Page bounds a result with a stable (limit, offset) pager.
type Page = datagateway.Page

// Usecase answers read queries over ledger state maintained by the
// Operation Engine. It never mutates state.
type Usecase struct {
	store datagateway.LedgerReader
}

// New constructs a Usecase reading from store.
func New(store datagateway.LedgerReader) *Usecase {
	return &Usecase{store: store}
}

// ListTokens returns deployed tokens, optionally filtered by a
// case-insensitive ticker substring, plus the total matching count.
func (u *Usecase) ListTokens(ctx context.Context, tickerFilter string, page Page) ([]entity.Token, int64, error) {
	tokens, total, err := u.store.ListTokens(ctx, strings.ToLower(tickerFilter), page)
	if err != nil {
		return nil, 0, errors.Wrap(err, "list tokens")
	}
	return tokens, total, nil
}

// Balances returns an address's (available, transferable, total)
// balance per token, optionally filtered by ticker, plus total count.
func (u *Usecase) Balances(ctx context.Context, address, tickerFilter string, page Page) ([]entity.Balance, int64, error) {
	balances, total, err := u.store.ListBalances(ctx, address, strings.ToLower(tickerFilter), page)
	if err != nil {
		return nil, 0, errors.Wrap(err, "list balances")
	}
	return balances, total, nil
}

// Supply is (max supply, minted supply, distinct holders with positive
// balance) for a token. The minted-sum and holder-count lookups are
// independent reads, so they fan out concurrently the way the teacher's
// GetTokenInfo handler fans out its deploy/entry/balance lookups.
type Supply struct {
	Max              numeric.Amount
	Minted           numeric.Amount
	DistinctHolders  int64
}

// Supply aggregates a token's max supply, minted supply, and distinct
// positive-balance holder count.
func (u *Usecase) Supply(ctx context.Context, tick string) (Supply, error) {
	tick = strings.ToLower(tick)
	token, ok, err := getToken(ctx, u.store, tick)
	if err != nil {
		return Supply{}, errors.Wrap(err, "get token")
	}
	if !ok {
		return Supply{}, errors.Newf("unknown tick %q", tick)
	}

	group, groupCtx := errgroup.WithContext(ctx)
	var minted numeric.Amount
	var holders int64
	group.Go(func() error {
		var err error
		minted, err = u.store.MintedSupply(groupCtx, tick)
		return errors.Wrap(err, "minted supply")
	})
	group.Go(func() error {
		var err error
		holders, err = u.store.CountHolders(groupCtx, tick)
		return errors.Wrap(err, "count holders")
	})
	if err := group.Wait(); err != nil {
		return Supply{}, err
	}

	return Supply{Max: token.MaxSupply, Minted: minted, DistinctHolders: holders}, nil
}

// Holders returns a token's holders ordered by total balance descending,
// plus the total matching count.
func (u *Usecase) Holders(ctx context.Context, tick string, page Page) ([]entity.Balance, int64, error) {
	holders, total, err := u.store.ListHolders(ctx, strings.ToLower(tick), page)
	if err != nil {
		return nil, 0, errors.Wrap(err, "list holders")
	}
	return holders, total, nil
}

// History returns a token's event log ordered by inscription number
// descending, plus the total matching count.
func (u *Usecase) History(ctx context.Context, tick string, page Page) ([]entity.Event, int64, error) {
	events, total, err := u.store.ListHistory(ctx, strings.ToLower(tick), page)
	if err != nil {
		return nil, 0, errors.Wrap(err, "list history")
	}
	return events, total, nil
}

func getToken(ctx context.Context, store datagateway.LedgerReader, tick string) (entity.Token, bool, error) {
	return store.GetToken(ctx, tick)
}
