package storage

import (
	"testing"

	"github.com/san-kum/primordial/internal/spectrum"
)

func testSource(t *testing.T) spectrum.Source {
	t.Helper()
	ctx := &spectrum.Context{
		KMin: 1e-4, KMax: 1., KPivot: 0.05,
		HasScalars: true, HasTensors: true,
	}
	lnk, err := spectrum.LnKGrid(ctx.KMin, ctx.KMax, 10.)
	if err != nil {
		t.Fatal(err)
	}
	src, err := spectrum.NewAnalyticSource(ctx, spectrum.AnalyticParams{
		As: 2.1e-9, Ns: 0.96, R: 0.1,
	}, lnk)
	if err != nil {
		t.Fatal(err)
	}
	return src
}

func TestSaveAndLoad(t *testing.T) {
	store := New(t.TempDir())
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}

	src := testSource(t)
	derived, err := spectrum.DeriveParams(src, 10.)
	if err != nil {
		t.Fatal(err)
	}

	runID, err := store.Save("analytic_Pk", 10., src, derived)
	if err != nil {
		t.Fatal(err)
	}

	meta, err := store.Load(runID)
	if err != nil {
		t.Fatal(err)
	}
	if meta.Type != "analytic_Pk" {
		t.Errorf("type = %q", meta.Type)
	}
	if meta.Derived["n_s"] == 0 {
		t.Error("derived parameters missing from metadata")
	}

	k, cols, header, err := store.LoadSpectrum(runID)
	if err != nil {
		t.Fatal(err)
	}
	if len(k) != len(src.Table().LnK()) {
		t.Errorf("got %d samples, want %d", len(k), len(src.Table().LnK()))
	}
	if len(header) != 2 || len(cols) != 2 {
		t.Errorf("got %d columns, want 2", len(cols))
	}
}

func TestListEmpty(t *testing.T) {
	store := New(t.TempDir() + "/nonexistent")
	runs, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Errorf("got %d runs, want 0", len(runs))
	}
}

func TestList(t *testing.T) {
	store := New(t.TempDir())
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}
	src := testSource(t)
	if _, err := store.Save("analytic_Pk", 10., src, nil); err != nil {
		t.Fatal(err)
	}

	runs, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}
}
