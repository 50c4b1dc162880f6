package storage

import (
	"context"
	"errors"
	"math"
	"os"
	"testing"
	"time"

	"solarcalc/internal/domain/entity"
)

func sealedReport(address string, startedAt time.Time) entity.RunReport {
	r := entity.NewRunReport(entity.NewLocation(address), entity.DefaultAssumptions())
	r.StartedAt = startedAt
	r.Metrics = entity.ValidMetrics(6120)
	r.Profitability = &entity.ProfitabilityReport{
		AnnualSavings:       918,
		EstimatedSystemCost: 6000,
		PaybackYears:        6000.0 / 918.0,
		LifetimeSavings:     12360,
	}
	r.Seal(entity.RunStateCompleted, "")
	return *r
}

func TestFileStoreRoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	ctx := context.Background()

	want := sealedReport("Rome, Italy", time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Get(ctx, want.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.ID != want.ID || got.State != want.State {
		t.Errorf("Get() = %+v, want %+v", got, want)
	}
	if got.Profitability == nil || got.Profitability.AnnualSavings != 918 {
		t.Errorf("profitability lost in round trip: %+v", got.Profitability)
	}
}

func TestFileStorePreservesInfinitePayback(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	ctx := context.Background()

	r := sealedReport("Rome, Italy", time.Now().UTC())
	r.Profitability.AnnualSavings = 0
	r.Profitability.PaybackYears = math.Inf(1)

	if err := store.Save(ctx, r); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := store.Get(ctx, r.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !math.IsInf(got.Profitability.PaybackYears, 1) {
		t.Errorf("payback = %v, want +Inf", got.Profitability.PaybackYears)
	}
}

func TestFileStoreListNewestFirst(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	ctx := context.Background()

	older := sealedReport("Oslo, Norway", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	newer := sealedReport("Rome, Italy", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	for _, r := range []entity.RunReport{older, newer} {
		if err := store.Save(ctx, r); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	reports, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("List() returned %d reports, want 2", len(reports))
	}
	if reports[0].ID != newer.ID {
		t.Errorf("first report = %s, want the newest run", reports[0].ID)
	}
}

func TestFileStoreSaveConvergesOnSealedState(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	ctx := context.Background()

	inFlight := entity.NewRunReport(entity.NewLocation("Rome, Italy"), entity.DefaultAssumptions())
	inFlight.StartedAt = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	inFlight.SetState(entity.RunStatePublishing)
	if err := store.Save(ctx, *inFlight); err != nil {
		t.Fatalf("Save(in flight) error = %v", err)
	}

	inFlight.Seal(entity.RunStateCompleted, "")
	if err := store.Save(ctx, *inFlight); err != nil {
		t.Fatalf("Save(sealed) error = %v", err)
	}

	reports, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(reports) != 1 {
		t.Fatalf("List() returned %d reports, want the re-save to overwrite", len(reports))
	}

	got, err := store.Get(ctx, inFlight.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !got.Sealed || got.State != entity.RunStateCompleted {
		t.Errorf("stored report = state %s sealed %v, want the terminal state", got.State, got.Sealed)
	}
}

func TestFileStoreGetMissing(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	_, err = store.Get(context.Background(), "no-such-id")
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Get() error = %v, want ErrNotExist", err)
	}
}
