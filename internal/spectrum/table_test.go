package spectrum

import (
	"math"
	"testing"
)

func TestLnKGrid(t *testing.T) {
	lnk, err := LnKGrid(1e-5, 10., 10.)
	if err != nil {
		t.Fatal(err)
	}
	want := int(math.Log(10./1e-5)/math.Log(10.)*10.) + 2
	if len(lnk) != want {
		t.Errorf("grid size = %d, want %d", len(lnk), want)
	}
	if lnk[0] > math.Log(1e-5) {
		t.Errorf("grid starts at %g, above ln(k_min) = %g", lnk[0], math.Log(1e-5))
	}
	if lnk[len(lnk)-1] < math.Log(10.) {
		t.Errorf("grid ends at %g, below ln(k_max) = %g", lnk[len(lnk)-1], math.Log(10.))
	}
	for i := 1; i < len(lnk); i++ {
		if lnk[i] <= lnk[i-1] {
			t.Fatalf("grid not increasing at %d", i)
		}
	}
}

func TestTableRangeError(t *testing.T) {
	ctx := &Context{KMin: 1e-4, KMax: 1., KPivot: 0.05, HasScalars: true}
	lnk, err := LnKGrid(ctx.KMin, ctx.KMax, 10.)
	if err != nil {
		t.Fatal(err)
	}
	src, err := NewAnalyticSource(ctx, AnalyticParams{As: 2.1e-9, Ns: 0.96}, lnk)
	if err != nil {
		t.Fatal(err)
	}

	out := make([]float64, 1)
	if err := src.Table().At(Scalar, Linear, 1e3, out); err == nil {
		t.Fatal("expected range error above tabulated k")
	} else if _, ok := err.(*RangeError); !ok {
		t.Fatalf("got %T, want *RangeError", err)
	}
	if err := src.Table().At(Scalar, Linear, -1., out); err == nil {
		t.Fatal("expected error for negative wavenumber")
	}
}

func TestTableAtBeforeFinalize(t *testing.T) {
	ctx := &Context{KMin: 1e-4, KMax: 1., KPivot: 0.05, HasScalars: true}
	lnk, err := LnKGrid(ctx.KMin, ctx.KMax, 10.)
	if err != nil {
		t.Fatal(err)
	}
	table, err := NewTable(ctx, lnk)
	if err != nil {
		t.Fatal(err)
	}
	for ik := range lnk {
		table.set(Scalar, ik, 0, math.Log(2.1e-9), true)
	}

	out := make([]float64, 1)
	if err := table.At(Scalar, Log, lnk[0], out); err == nil {
		t.Fatal("expected an error before the spline is finalized")
	}

	if err := table.finalize(); err != nil {
		t.Fatal(err)
	}
	if err := table.At(Scalar, Log, lnk[0], out); err != nil {
		t.Fatal(err)
	}
	if out[0] != math.Log(2.1e-9) {
		t.Errorf("ln P = %g, want %g", out[0], math.Log(2.1e-9))
	}
}

func TestTableInterpolationMatchesAnalytic(t *testing.T) {
	ctx := &Context{KMin: 1e-4, KMax: 1., KPivot: 0.05, HasScalars: true, HasTensors: true}
	lnk, err := LnKGrid(ctx.KMin, ctx.KMax, 10.)
	if err != nil {
		t.Fatal(err)
	}
	p := AnalyticParams{As: 2.1e-9, Ns: 0.96, AlphaS: -0.01, R: 0.1, Nt: -0.0125}
	src, err := NewAnalyticSource(ctx, p, lnk)
	if err != nil {
		t.Fatal(err)
	}

	// query between grid points and compare against the closed form
	out := make([]float64, 1)
	for _, k := range []float64{3.3e-4, 0.0123, 0.05, 0.77} {
		if err := src.Table().At(Scalar, Linear, k, out); err != nil {
			t.Fatal(err)
		}
		x := math.Log(k / ctx.KPivot)
		want := p.As * math.Exp((p.Ns-1.)*x+0.5*p.AlphaS*x*x)
		if math.Abs(out[0]/want-1.) > 1e-5 {
			t.Errorf("P_s(%g) = %e, want %e", k, out[0], want)
		}

		if err := src.Table().At(Tensor, Linear, k, out); err != nil {
			t.Fatal(err)
		}
		want = p.As * p.R * math.Exp(p.Nt*x)
		if math.Abs(out[0]/want-1.) > 1e-6 {
			t.Errorf("P_t(%g) = %e, want %e", k, out[0], want)
		}
	}
}
