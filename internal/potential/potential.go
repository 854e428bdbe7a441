// Package potential provides the inflaton potential V(phi) and Hubble-flow
// H(phi) parametrizations used by the inflation solver. Evaluators are pure;
// field values are in units of the Planck mass, potentials in Mp^4.
package potential

import (
	"fmt"
	"math"
)

// InvalidModelError reports an unrecognized model tag in the configuration.
type InvalidModelError struct {
	Name string
}

func (e *InvalidModelError) Error() string {
	return fmt.Sprintf("unknown potential model %q", e.Name)
}

// Params carries the model coefficients. For the polynomial shape the Vi are
// Taylor coefficients about PhiPivot; for the natural shape V0 is Lambda^4
// and V1 the decay constant f.
type Params struct {
	V0       float64 `yaml:"v0"`
	V1       float64 `yaml:"v1"`
	V2       float64 `yaml:"v2"`
	V3       float64 `yaml:"v3"`
	V4       float64 `yaml:"v4"`
	PhiPivot float64 `yaml:"phi_pivot"`
	// PhiEnd bounds the inflaton range when the pivot is located
	// backward from the end of inflation; ignored otherwise.
	PhiEnd float64 `yaml:"phi_end"`
}

// Potential evaluates V(phi) and its first two derivatives.
type Potential interface {
	Evaluate(phi float64) (v, dv, ddv float64)
}

// New builds a potential from its configuration tag.
func New(model string, p Params) (Potential, error) {
	switch model {
	case "polynomial":
		return Polynomial(p), nil
	case "natural":
		return Natural{Lambda4: p.V0, F: p.V1}, nil
	default:
		return nil, &InvalidModelError{Name: model}
	}
}

// Polynomial is a quartic expansion of V about the pivot field value.
type Polynomial Params

func (p Polynomial) Evaluate(phi float64) (v, dv, ddv float64) {
	x := phi - p.PhiPivot
	v = p.V0 + x*p.V1 + x*x/2.*p.V2 + x*x*x/6.*p.V3 + x*x*x*x/24.*p.V4
	dv = p.V1 + x*p.V2 + x*x/2.*p.V3 + x*x*x/6.*p.V4
	ddv = p.V2 + x*p.V3 + x*x/2.*p.V4
	return v, dv, ddv
}

// Natural is the natural-inflation cosine, V = Lambda^4 (1 + cos(phi/f)).
type Natural struct {
	Lambda4 float64
	F       float64
}

func (n Natural) Evaluate(phi float64) (v, dv, ddv float64) {
	v = n.Lambda4 * (1. + math.Cos(phi/n.F))
	dv = -n.Lambda4 / n.F * math.Sin(phi/n.F)
	ddv = -n.Lambda4 / n.F / n.F * math.Cos(phi/n.F)
	return v, dv, ddv
}

// Hubble is a quartic expansion of H(phi). Only the polynomial shape exists.
type Hubble struct {
	H0       float64 `yaml:"h0"`
	H1       float64 `yaml:"h1"`
	H2       float64 `yaml:"h2"`
	H3       float64 `yaml:"h3"`
	H4       float64 `yaml:"h4"`
	PhiPivot float64 `yaml:"phi_pivot"`
}

// Evaluate returns H and its first three derivatives with respect to phi.
func (h Hubble) Evaluate(phi float64) (hv, dh, ddh, dddh float64) {
	x := phi - h.PhiPivot
	hv = h.H0 + x*h.H1 + x*x/2.*h.H2 + x*x*x/6.*h.H3 + x*x*x*x/24.*h.H4
	dh = h.H1 + x*h.H2 + x*x/2.*h.H3 + x*x*x/6.*h.H4
	ddh = h.H2 + x*h.H3 + x*x/2.*h.H4
	dddh = h.H3 + x*h.H4
	return hv, dh, ddh, dddh
}

// EpsilonV is the first slow-roll parameter for a potential-based model.
func EpsilonV(p Potential, phi float64) float64 {
	v, dv, _ := p.Evaluate(phi)
	return 1. / 16. / math.Pi * (dv / v) * (dv / v)
}

// EpsilonH is the first slow-roll parameter for a Hubble-based model.
func EpsilonH(h Hubble, phi float64) float64 {
	hv, dh, _, _ := h.Evaluate(phi)
	return 1. / 4. / math.Pi * (dh / hv) * (dh / hv)
}
