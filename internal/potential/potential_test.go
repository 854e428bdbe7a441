package potential

import (
	"math"
	"testing"
)

func TestPolynomialEvaluate(t *testing.T) {
	p := Params{V0: 1e-10, V1: -1e-12, V2: 2e-14, PhiPivot: 1.}

	v, dv, ddv := Polynomial(p).Evaluate(1.)
	if v != p.V0 || dv != p.V1 || ddv != p.V2 {
		t.Errorf("at pivot got (%e, %e, %e), want coefficients", v, dv, ddv)
	}

	// finite-difference check away from the pivot
	phi := 2.5
	h := 1e-6
	vp, _, _ := Polynomial(p).Evaluate(phi + h)
	vm, _, _ := Polynomial(p).Evaluate(phi - h)
	_, dv, _ = Polynomial(p).Evaluate(phi)
	num := (vp - vm) / (2. * h)
	if math.Abs(num-dv) > 1e-8*math.Abs(dv) {
		t.Errorf("dV = %e, finite difference %e", dv, num)
	}
}

func TestNaturalEvaluate(t *testing.T) {
	n := Natural{Lambda4: 1e-10, F: 3.}

	v, dv, _ := n.Evaluate(0.)
	if math.Abs(v-2e-10) > 1e-25 {
		t.Errorf("V(0) = %e, want %e", v, 2e-10)
	}
	if math.Abs(dv) > 1e-25 {
		t.Errorf("dV(0) = %e, want 0", dv)
	}

	// minimum at phi = pi f
	v, _, _ = n.Evaluate(math.Pi * n.F)
	if math.Abs(v) > 1e-25 {
		t.Errorf("V(pi f) = %e, want 0", v)
	}
}

func TestNewUnknownModel(t *testing.T) {
	_, err := New("bogus", Params{V0: 1e-10})
	if err == nil {
		t.Fatal("expected error for unknown model")
	}
	if _, ok := err.(*InvalidModelError); !ok {
		t.Errorf("got %T, want *InvalidModelError", err)
	}
}

func TestHubbleEvaluate(t *testing.T) {
	h := Hubble{H0: 1e-5, H1: -1e-7, H2: 1e-9, PhiPivot: 2.}

	hv, dh, _, _ := h.Evaluate(2.)
	if hv != h.H0 || dh != h.H1 {
		t.Errorf("at pivot got (%e, %e), want coefficients", hv, dh)
	}

	phi := 3.7
	step := 1e-6
	hp, _, _, _ := h.Evaluate(phi + step)
	hm, _, _, _ := h.Evaluate(phi - step)
	_, dh, _, _ = h.Evaluate(phi)
	num := (hp - hm) / (2. * step)
	if math.Abs(num-dh) > 1e-8*math.Abs(dh) {
		t.Errorf("dH = %e, finite difference %e", dh, num)
	}
}

func TestEpsilonV(t *testing.T) {
	p := Params{V0: 1e-10, V1: -1e-12}
	pot := Polynomial(p)

	want := 1. / 16. / math.Pi * 1e-4
	got := EpsilonV(pot, 0.)
	if math.Abs(got-want) > 1e-18 {
		t.Errorf("epsilon_V = %e, want %e", got, want)
	}
}
