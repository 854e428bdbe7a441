package inflation

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/primordial/internal/integrate"
	"github.com/san-kum/primordial/internal/potential"
)

func slowRollSolver(t *testing.T) *Solver {
	t.Helper()
	pot, err := potential.New("polynomial", potential.Params{V0: 1e-10, V1: -1e-12})
	if err != nil {
		t.Fatal(err)
	}
	s, err := NewPotentialSolver(SpecV, pot, 0., Precision{})
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestPrecisionWithDefaults(t *testing.T) {
	p := Precision{}.withDefaults()
	if p.KPerDecade != 10 || p.BGStepsize != 0.01 || p.Workers != 1 {
		t.Errorf("zero precision not filled: %+v", p)
	}

	p = Precision{TolIntegration: 1e-6}.withDefaults()
	if p.TolIntegration != 1e-6 {
		t.Error("explicit tolerance overwritten")
	}
	if p.RatioMin != 100 {
		t.Error("other fields not defaulted")
	}
}

func TestNewPotentialSolverRejectsHubbleType(t *testing.T) {
	pot, _ := potential.New("polynomial", potential.Params{V0: 1e-10, V1: -1e-12})
	if _, err := NewPotentialSolver(SpecH, pot, 0., Precision{}); err == nil {
		t.Error("expected error for SpecH")
	}
}

func TestCheckPotentialShape(t *testing.T) {
	tests := []struct {
		name    string
		params  potential.Params
		wantErr bool
	}{
		{"decreasing", potential.Params{V0: 1e-10, V1: -1e-12}, false},
		{"negative", potential.Params{V0: -1e-10, V1: -1e-12}, true},
		{"increasing", potential.Params{V0: 1e-10, V1: 1e-12}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pot, _ := potential.New("polynomial", tt.params)
			s, err := NewPotentialSolver(SpecV, pot, 0., Precision{})
			if err != nil {
				t.Fatal(err)
			}
			_, _, _, err = s.checkPotential(0.)
			if (err != nil) != tt.wantErr {
				t.Errorf("checkPotential error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if _, ok := err.(*ShapeError); !ok {
					t.Errorf("got %T, want *ShapeError", err)
				}
			}
		})
	}
}

func TestLayout(t *testing.T) {
	lv := newLayout(SpecV)
	if lv.bgSize != 3 || lv.size != 11 || lv.dphi != 2 {
		t.Errorf("potential layout: %+v", lv)
	}
	lh := newLayout(SpecH)
	if lh.bgSize != 2 || lh.size != 10 || lh.dphi != -1 {
		t.Errorf("hubble layout: %+v", lh)
	}
}

func TestFindAttractor(t *testing.T) {
	s := slowRollSolver(t)

	h0, dphidt0, err := s.FindAttractor(0., s.prec.AttractorPrecisionPivot)
	if err != nil {
		t.Fatal(err)
	}

	// for a nearly flat potential the kinetic energy is negligible
	wantH := math.Sqrt(8. * math.Pi / 3. * 1e-10)
	if math.Abs(h0/wantH-1.) > 1e-2 {
		t.Errorf("H = %e, want about %e", h0, wantH)
	}

	// the attractor sits close to the slow-roll value -V'/3H
	wantDphi := 1e-12 / (3. * wantH)
	if math.Abs(dphidt0/wantDphi-1.) > 0.1 {
		t.Errorf("dphi/dt = %e, want about %e", dphidt0, wantDphi)
	}
}

func TestEpsilon(t *testing.T) {
	s := slowRollSolver(t)
	want := 1. / 16. / math.Pi * 1e-4
	if got := s.Epsilon(0.); math.Abs(got/want-1.) > 1e-12 {
		t.Errorf("epsilon = %e, want %e", got, want)
	}
}

func TestSpectraSlowRoll(t *testing.T) {
	if testing.Short() {
		t.Skip("full mode integration")
	}
	s := slowRollSolver(t)

	kPivot := 0.05
	nk := 7
	lnk := make([]float64, nk)
	for i := range lnk {
		// two decades around the pivot
		lnk[i] = math.Log(5e-3) + float64(i)*math.Log(100.)/float64(nk-1)
	}

	res, err := s.Spectra(lnk, kPivot, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.LnPScalar) != nk || len(res.LnPTensor) != nk {
		t.Fatalf("got %d/%d samples, want %d", len(res.LnPScalar), len(res.LnPTensor), nk)
	}

	// slow-roll predictions for this potential
	wantAs := 128. * math.Pi / 3. * math.Pow(1e-10, 3) / math.Pow(1e-12, 2)
	wantR := math.Pow(1e-12/1e-10, 2) / math.Pi

	mid := nk / 2
	as := math.Exp(res.LnPScalar[mid])
	if math.Abs(as/wantAs-1.) > 0.5 {
		t.Errorf("A_s = %e, slow-roll prediction %e", as, wantAs)
	}

	r := math.Exp(res.LnPTensor[mid] - res.LnPScalar[mid])
	if math.Abs(r/wantR-1.) > 0.5 {
		t.Errorf("r = %e, slow-roll prediction %e", r, wantR)
	}

	// the spectrum is nearly scale invariant
	tilt := (res.LnPScalar[nk-1] - res.LnPScalar[0]) / (lnk[nk-1] - lnk[0])
	if math.Abs(tilt) > 0.01 {
		t.Errorf("tilt %e, expected near scale invariance", tilt)
	}

	if s.PhiMin >= s.PhiMax {
		t.Errorf("horizon-crossing range [%e, %e] not increasing", s.PhiMin, s.PhiMax)
	}
}

func TestOneKKeepsUnderflowError(t *testing.T) {
	s := slowRollSolver(t)

	_, dphidt, err := s.FindAttractor(0., s.prec.AttractorPrecisionPivot)
	if err != nil {
		t.Fatal(err)
	}

	l := s.lay
	y := make(integrateState, l.size)
	y[l.a] = 1.
	y[l.phi] = 0.
	y[l.dphi] = dphidt

	// an unattainable tolerance forces the substep to shrink until it
	// underflows inside the mode integration
	s.prec.TolIntegration = 1e-300

	_, _, err = s.oneK(0.05, y)
	if err == nil {
		t.Fatal("expected an integration failure")
	}
	var underflow *integrate.StepUnderflowError
	if !errors.As(err, &underflow) {
		t.Errorf("got %v, want a wrapped step underflow", err)
	}
}

func TestSpectraParallelMatchesSequential(t *testing.T) {
	if testing.Short() {
		t.Skip("full mode integration")
	}

	lnk := []float64{math.Log(0.01), math.Log(0.05), math.Log(0.2)}

	seq := slowRollSolver(t)
	resSeq, err := seq.Spectra(lnk, 0.05, nil)
	if err != nil {
		t.Fatal(err)
	}

	par := slowRollSolver(t)
	par.prec.Workers = 3
	resPar, err := par.Spectra(lnk, 0.05, nil)
	if err != nil {
		t.Fatal(err)
	}

	for i := range lnk {
		if resSeq.LnPScalar[i] != resPar.LnPScalar[i] {
			t.Errorf("k index %d: sequential %e, parallel %e", i, resSeq.LnPScalar[i], resPar.LnPScalar[i])
		}
	}
}

// a quadratic potential whose epsilon stays below 1 all the way to phi_end,
// so inflation stops abruptly there
func endOfInflationSolver(t *testing.T) *Solver {
	t.Helper()
	pot, err := potential.New("polynomial", potential.Params{
		V0: 1.5e-11, V1: -2.4e-12, V2: 3.6e-13, PhiPivot: 15.,
	})
	if err != nil {
		t.Fatal(err)
	}
	s, err := NewPotentialSolver(SpecVEnd, pot, 15., Precision{})
	if err != nil {
		t.Fatal(err)
	}
	s.PhiEnd = 16.5
	s.LnAHRatio = 50.
	return s
}

func TestFindPhiStopHybrid(t *testing.T) {
	s := endOfInflationSolver(t)

	phi, hybrid, err := s.findPhiStop()
	if err != nil {
		t.Fatal(err)
	}
	if !hybrid {
		t.Error("expected an abrupt stop at phi_end")
	}
	if phi >= s.PhiEnd || s.PhiEnd-phi > 1e-6 {
		t.Errorf("phi_stop = %e, want just below phi_end = %e", phi, s.PhiEnd)
	}
}

func TestFindPhiPivotHybrid(t *testing.T) {
	s := endOfInflationSolver(t)

	if err := s.findPhiPivot(); err != nil {
		t.Fatal(err)
	}
	if math.IsNaN(s.PhiPivot) || s.PhiPivot <= 15.5 || s.PhiPivot >= s.PhiEnd {
		t.Errorf("phi_pivot = %e, want within (15.5, %g)", s.PhiPivot, s.PhiEnd)
	}

	// the requested e-fold budget must fit between the pivot and phi_end
	eps := s.Epsilon(s.PhiPivot)
	if eps >= 1 {
		t.Errorf("epsilon = %e at the pivot, inflation not slow-rolling", eps)
	}
}

func TestSpectraEndOfInflation(t *testing.T) {
	if testing.Short() {
		t.Skip("full mode integration")
	}
	s := endOfInflationSolver(t)

	lnk := []float64{math.Log(0.02), math.Log(0.05), math.Log(0.1)}
	res, err := s.Spectra(lnk, 0.05, nil)
	if err != nil {
		t.Fatal(err)
	}

	for i, lp := range res.LnPScalar {
		if math.IsNaN(lp) || math.IsInf(lp, 0) {
			t.Fatalf("ln P_s[%d] = %v", i, lp)
		}
		if res.LnPTensor[i] >= lp {
			t.Errorf("k index %d: tensor power above scalar power", i)
		}
	}

	// nearly scale invariant across the narrow window
	tilt := (res.LnPScalar[2] - res.LnPScalar[0]) / (lnk[2] - lnk[0])
	if math.Abs(tilt) > 0.05 {
		t.Errorf("tilt %e, expected near scale invariance", tilt)
	}

	if s.PhiMin >= s.PhiMax {
		t.Errorf("horizon-crossing range [%e, %e] not increasing", s.PhiMin, s.PhiMax)
	}
}
