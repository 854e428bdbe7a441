package spectrum

import (
	"math"
	"testing"
)

func TestAnalyticDiagonal(t *testing.T) {
	ctx := &Context{KMin: 1e-4, KMax: 1., KPivot: 0.05, HasScalars: true}
	lnk, err := LnKGrid(ctx.KMin, ctx.KMax, 10.)
	if err != nil {
		t.Fatal(err)
	}
	p := AnalyticParams{As: 2.1e-9, Ns: 0.96}
	src, err := NewAnalyticSource(ctx, p, lnk)
	if err != nil {
		t.Fatal(err)
	}

	out := make([]float64, 1)
	if err := src.At(Scalar, Linear, ctx.KPivot, out); err != nil {
		t.Fatal(err)
	}
	if math.Abs(out[0]/p.As-1.) > 1e-6 {
		t.Errorf("P_s(k_pivot) = %e, want %e", out[0], p.As)
	}
}

func TestAnalyticCrossCorrelation(t *testing.T) {
	ctx := &Context{KMin: 1e-4, KMax: 1., KPivot: 0.05, HasScalars: true, HasCdi: true}
	lnk, err := LnKGrid(ctx.KMin, ctx.KMax, 10.)
	if err != nil {
		t.Fatal(err)
	}
	p := AnalyticParams{
		As: 2.1e-9, Ns: 0.96,
		FCdi: 0.3, NCdi: 1.1,
		CAdCdi: -0.5,
	}
	src, err := NewAnalyticSource(ctx, p, lnk)
	if err != nil {
		t.Fatal(err)
	}

	n := ctx.ICSize(Scalar)
	if n != 2 {
		t.Fatalf("ICSize = %d, want 2", n)
	}
	out := make([]float64, PairSize(n))
	for _, k := range []float64{1e-3, 0.05, 0.5} {
		if err := src.At(Scalar, Linear, k, out); err != nil {
			t.Fatal(err)
		}
		pAd := out[Pack(0, 0, n)]
		pCdi := out[Pack(1, 1, n)]
		pX := out[Pack(0, 1, n)]
		want := p.CAdCdi * math.Sqrt(pAd*pCdi)
		if math.Abs(pX-want) > 1e-4*math.Abs(want) {
			t.Errorf("P_ad,cdi(%g) = %e, want %e", k, pX, want)
		}
	}
}

func TestAnalyticZeroCorrelation(t *testing.T) {
	ctx := &Context{KMin: 1e-4, KMax: 1., KPivot: 0.05, HasScalars: true, HasNid: true}
	lnk, err := LnKGrid(ctx.KMin, ctx.KMax, 10.)
	if err != nil {
		t.Fatal(err)
	}
	p := AnalyticParams{As: 2.1e-9, Ns: 0.96, FNid: 0.2, NNid: 1.}
	src, err := NewAnalyticSource(ctx, p, lnk)
	if err != nil {
		t.Fatal(err)
	}

	n := ctx.ICSize(Scalar)
	out := make([]float64, PairSize(n))
	if err := src.At(Scalar, Linear, 0.01, out); err != nil {
		t.Fatal(err)
	}
	if out[Pack(0, 1, n)] != 0 {
		t.Errorf("uncorrelated pair spectrum = %e, want 0", out[Pack(0, 1, n)])
	}
}

func TestAnalyticRejectsBadParams(t *testing.T) {
	ctx := &Context{KMin: 1e-4, KMax: 1., KPivot: 0.05, HasScalars: true, HasBi: true}
	lnk, err := LnKGrid(ctx.KMin, ctx.KMax, 10.)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		p    AnalyticParams
	}{
		{"zero amplitude", AnalyticParams{As: 0, Ns: 0.96, FBi: 0.1, NBi: 1.}},
		{"zero isocurvature fraction", AnalyticParams{As: 2.1e-9, Ns: 0.96, NBi: 1.}},
		{"correlation above one", AnalyticParams{As: 2.1e-9, Ns: 0.96, FBi: 0.1, NBi: 1., CAdBi: 1.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewAnalyticSource(ctx, tt.p, lnk); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestAnalyticOutOfRangeFallsBack(t *testing.T) {
	ctx := &Context{KMin: 1e-4, KMax: 1., KPivot: 0.05, HasScalars: true}
	lnk, err := LnKGrid(ctx.KMin, ctx.KMax, 10.)
	if err != nil {
		t.Fatal(err)
	}
	p := AnalyticParams{As: 2.1e-9, Ns: 0.96}
	src, err := NewAnalyticSource(ctx, p, lnk)
	if err != nil {
		t.Fatal(err)
	}

	// far outside the tabulated range only the closed form can answer
	out := make([]float64, 1)
	k := 1e3
	if err := src.At(Scalar, Linear, k, out); err != nil {
		t.Fatal(err)
	}
	x := math.Log(k / ctx.KPivot)
	want := p.As * math.Exp((p.Ns-1.)*x)
	if math.Abs(out[0]/want-1.) > 1e-12 {
		t.Errorf("P_s(%g) = %e, want %e", k, out[0], want)
	}
}

func TestDeriveParamsRecoversAnalytic(t *testing.T) {
	ctx := &Context{KMin: 1e-5, KMax: 10., KPivot: 0.05, HasScalars: true, HasTensors: true}
	lnk, err := LnKGrid(ctx.KMin, ctx.KMax, 10.)
	if err != nil {
		t.Fatal(err)
	}
	p := AnalyticParams{As: 2.1e-9, Ns: 0.9649, AlphaS: -0.005, R: 0.06, Nt: -0.0075}
	src, err := NewAnalyticSource(ctx, p, lnk)
	if err != nil {
		t.Fatal(err)
	}

	d, err := DeriveParams(src, 10.)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(d.As/p.As-1.) > 1e-4 {
		t.Errorf("A_s = %e, want %e", d.As, p.As)
	}
	if math.Abs(d.Ns-p.Ns) > 1e-4 {
		t.Errorf("n_s = %g, want %g", d.Ns, p.Ns)
	}
	if math.Abs(d.AlphaS-p.AlphaS) > 1e-4 {
		t.Errorf("alpha_s = %g, want %g", d.AlphaS, p.AlphaS)
	}
	if math.Abs(d.R-p.R) > 1e-3 {
		t.Errorf("r = %g, want %g", d.R, p.R)
	}
	if math.Abs(d.Nt-p.Nt) > 1e-4 {
		t.Errorf("n_t = %g, want %g", d.Nt, p.Nt)
	}
}
