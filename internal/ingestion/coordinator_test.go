package ingestion_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/brc20indexer/core/internal/engine"
	"github.com/brc20indexer/core/internal/entity"
	"github.com/brc20indexer/core/internal/ingestion"
	"github.com/stretchr/testify/require"
)

func TestCoordinator_RejectsWhenQueueFull(t *testing.T) {
	store := newBlockingFakeStore()
	c := ingestion.New(store, engine.New(), 1)

	// No worker running: the single slot fills on the first OnBlock,
	// then the next must be rejected rather than block the caller.
	require.Equal(t, ingestion.Accept, c.OnBlock(ingestion.BlockApply{Height: 1}))
	require.Equal(t, ingestion.Reject, c.OnBlock(ingestion.BlockApply{Height: 2}))
}

func TestCoordinator_DrainsFIFO(t *testing.T) {
	store := newBlockingFakeStore()
	c := ingestion.New(store, engine.New(), 10)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.Run(ctx)
	}()

	deploy := []byte(`{"p":"brc-20","op":"deploy","tick":"ordi","max":"1000","lim":"100"}`)
	mint := []byte(`{"p":"brc-20","op":"mint","tick":"ordi","amt":"50"}`)

	require.Equal(t, ingestion.Accept, c.OnBlock(ingestion.BlockApply{
		Height: 100,
		Inscriptions: []ingestion.InscriptionEvent{
			ingestion.Genesis{InscriptionID: testInscID(1), Mime: "text/plain", Payload: deploy, Address: "deployer", Location: entity.Location{BlockHeight: 100}},
		},
	}))
	require.Equal(t, ingestion.Accept, c.OnBlock(ingestion.BlockApply{
		Height: 101,
		Inscriptions: []ingestion.InscriptionEvent{
			ingestion.Genesis{InscriptionID: testInscID(2), Mime: "text/plain", Payload: mint, Address: "A", Location: entity.Location{BlockHeight: 101}},
		},
	}))

	require.Eventually(t, func() bool {
		balance, err := store.GetBalance(context.Background(), "A", "ordi")
		return err == nil && balance.Available.String() == "50"
	}, time.Second, 5*time.Millisecond)

	c.Stop()
	wg.Wait()
	require.NoError(t, c.Err())
}

func testInscID(seed byte) entity.InscriptionID {
	var id entity.InscriptionID
	id.TxHash[0] = seed
	return id
}
