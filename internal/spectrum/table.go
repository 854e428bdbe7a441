package spectrum

import (
	"fmt"
	"math"
)

// RangeError reports a query outside the tabulated wavenumber range.
type RangeError struct {
	K        float64
	Min, Max float64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("k=%e out of tabulated range [%e, %e]", e.K, e.Min, e.Max)
}

// modeTable holds the packed spectra of one mode type: for each lnk sample,
// PairSize(icSize) entries in log-format storage (diagonal ln P, off-diagonal
// correlation angle), plus spline second derivatives.
type modeTable struct {
	icSize    int
	pairSize  int
	lnPK      []float64
	ddLnPK    []float64
	isNonZero []bool
}

// Table is the tabulated primordial spectrum for all active modes. It is
// built once in a single pass and read-only afterwards.
type Table struct {
	ctx     *Context
	lnk     []float64
	modes   []modeTable
	splined bool
}

// LnKGrid samples ln k with the given density per decade, covering
// [kmin, kmax] inclusive.
func LnKGrid(kmin, kmax, kPerDecade float64) ([]float64, error) {
	if kmin <= 0 || kmax <= kmin {
		return nil, fmt.Errorf("inconsistent values kmin=%e, kmax=%e", kmin, kmax)
	}
	if kPerDecade <= 0 {
		return nil, fmt.Errorf("k_per_decade must be positive, got %g", kPerDecade)
	}

	n := int(math.Log(kmax/kmin)/math.Ln10*kPerDecade) + 2
	lnk := make([]float64, n)
	for i := range lnk {
		lnk[i] = math.Log(kmin) + float64(i)*math.Ln10/kPerDecade
	}
	return lnk, nil
}

// NewTable allocates an empty table over the lnk grid for the modes and
// initial conditions of ctx. lnk must be strictly increasing.
func NewTable(ctx *Context, lnk []float64) (*Table, error) {
	if err := ctx.validate(); err != nil {
		return nil, err
	}
	for i := 1; i < len(lnk); i++ {
		if lnk[i] <= lnk[i-1] {
			return nil, fmt.Errorf("lnk grid not strictly increasing at index %d", i)
		}
	}

	t := &Table{ctx: ctx, lnk: lnk, modes: make([]modeTable, ctx.Modes())}
	for _, m := range []Mode{Scalar, Tensor} {
		idx := ctx.ModeIndex(m)
		if idx < 0 {
			continue
		}
		ic := ctx.ICSize(m)
		ps := PairSize(ic)
		t.modes[idx] = modeTable{
			icSize:    ic,
			pairSize:  ps,
			lnPK:      make([]float64, len(lnk)*ps),
			ddLnPK:    make([]float64, len(lnk)*ps),
			isNonZero: make([]bool, ps),
		}
	}
	return t, nil
}

// LnK exposes the sampling grid.
func (t *Table) LnK() []float64 { return t.lnk }

// Context exposes the perturbation context the table was built for.
func (t *Table) Context() *Context { return t.ctx }

// PairCount returns the number of IC pairs stored for a mode.
func (t *Table) PairCount(m Mode) int {
	idx := t.ctx.ModeIndex(m)
	if idx < 0 {
		return 0
	}
	return t.modes[idx].pairSize
}

// set stores one log-format entry; construction only.
func (t *Table) set(m Mode, ik, pair int, v float64, nonZero bool) {
	mt := &t.modes[t.ctx.ModeIndex(m)]
	mt.lnPK[ik*mt.pairSize+pair] = v
	mt.isNonZero[pair] = nonZero
	t.splined = false
}

// finalize computes the spline second derivatives of every mode table.
func (t *Table) finalize() error {
	for i := range t.modes {
		mt := &t.modes[i]
		if err := splineTable(t.lnk, mt.lnPK, mt.pairSize, mt.ddLnPK); err != nil {
			return err
		}
	}
	t.splined = true
	return nil
}

// At interpolates the stored spectra of mode m at the given point. In Linear
// format the input is k and the output P(k) per IC pair; in Log format the
// input is ln k and the output ln P(k), with off-diagonal entries holding
// the correlation angle. out must have PairCount(m) entries. Queries outside
// the tabulated range return a RangeError.
func (t *Table) At(m Mode, f Format, input float64, out []float64) error {
	if !t.splined {
		return fmt.Errorf("table queried before its spline was finalized")
	}
	idx := t.ctx.ModeIndex(m)
	if idx < 0 {
		return fmt.Errorf("mode %d not active in this table", m)
	}
	mt := &t.modes[idx]
	if len(out) != mt.pairSize {
		return fmt.Errorf("output buffer has %d entries, want %d", len(out), mt.pairSize)
	}

	var lnk float64
	if f == Linear {
		if input <= 0 {
			return fmt.Errorf("k = %e must be positive in linear format", input)
		}
		lnk = math.Log(input)
	} else {
		lnk = input
	}

	if lnk < t.lnk[0] || lnk > t.lnk[len(t.lnk)-1] {
		return &RangeError{K: math.Exp(lnk), Min: math.Exp(t.lnk[0]), Max: math.Exp(t.lnk[len(t.lnk)-1])}
	}

	splineAt(t.lnk, mt.lnPK, mt.ddLnPK, mt.pairSize, lnk, out)

	if f == Linear {
		t.logToLinear(mt, out)
	}
	return nil
}

// logToLinear converts an interpolated log-format row in place: diagonal
// entries are exponentiated, off-diagonal correlation angles are rescaled by
// the geometric mean of the corresponding diagonals.
func (t *Table) logToLinear(mt *modeTable, out []float64) {
	n := mt.icSize
	for i := 0; i < n; i++ {
		out[Pack(i, i, n)] = math.Exp(out[Pack(i, i, n)])
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			p := Pack(i, j, n)
			if mt.isNonZero[p] {
				out[p] *= math.Sqrt(out[Pack(i, i, n)] * out[Pack(j, j, n)])
			} else {
				out[p] = 0.
			}
		}
	}
}
