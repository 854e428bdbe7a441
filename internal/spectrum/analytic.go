package spectrum

import (
	"fmt"
	"math"
)

// AnalyticParams parametrizes the analytic spectra: amplitude, tilt and
// running for each initial condition, and correlation/tilt/running triples
// for each scalar IC pair. Isocurvature amplitudes are fractions of A_s.
type AnalyticParams struct {
	As     float64 `yaml:"a_s"`
	Ns     float64 `yaml:"n_s"`
	AlphaS float64 `yaml:"alpha_s"`

	R      float64 `yaml:"r"`
	Nt     float64 `yaml:"n_t"`
	AlphaT float64 `yaml:"alpha_t"`

	FBi     float64 `yaml:"f_bi"`
	NBi     float64 `yaml:"n_bi"`
	AlphaBi float64 `yaml:"alpha_bi"`

	FCdi     float64 `yaml:"f_cdi"`
	NCdi     float64 `yaml:"n_cdi"`
	AlphaCdi float64 `yaml:"alpha_cdi"`

	FNid     float64 `yaml:"f_nid"`
	NNid     float64 `yaml:"n_nid"`
	AlphaNid float64 `yaml:"alpha_nid"`

	FNiv     float64 `yaml:"f_niv"`
	NNiv     float64 `yaml:"n_niv"`
	AlphaNiv float64 `yaml:"alpha_niv"`

	CAdBi     float64 `yaml:"c_ad_bi"`
	NAdBi     float64 `yaml:"n_ad_bi"`
	AlphaAdBi float64 `yaml:"alpha_ad_bi"`

	CAdCdi     float64 `yaml:"c_ad_cdi"`
	NAdCdi     float64 `yaml:"n_ad_cdi"`
	AlphaAdCdi float64 `yaml:"alpha_ad_cdi"`

	CAdNid     float64 `yaml:"c_ad_nid"`
	NAdNid     float64 `yaml:"n_ad_nid"`
	AlphaAdNid float64 `yaml:"alpha_ad_nid"`

	CAdNiv     float64 `yaml:"c_ad_niv"`
	NAdNiv     float64 `yaml:"n_ad_niv"`
	AlphaAdNiv float64 `yaml:"alpha_ad_niv"`

	CBiCdi     float64 `yaml:"c_bi_cdi"`
	NBiCdi     float64 `yaml:"n_bi_cdi"`
	AlphaBiCdi float64 `yaml:"alpha_bi_cdi"`

	CBiNid     float64 `yaml:"c_bi_nid"`
	NBiNid     float64 `yaml:"n_bi_nid"`
	AlphaBiNid float64 `yaml:"alpha_bi_nid"`

	CBiNiv     float64 `yaml:"c_bi_niv"`
	NBiNiv     float64 `yaml:"n_bi_niv"`
	AlphaBiNiv float64 `yaml:"alpha_bi_niv"`

	CCdiNid     float64 `yaml:"c_cdi_nid"`
	NCdiNid     float64 `yaml:"n_cdi_nid"`
	AlphaCdiNid float64 `yaml:"alpha_cdi_nid"`

	CCdiNiv     float64 `yaml:"c_cdi_niv"`
	NCdiNiv     float64 `yaml:"n_cdi_niv"`
	AlphaCdiNiv float64 `yaml:"alpha_cdi_niv"`

	CNidNiv     float64 `yaml:"c_nid_niv"`
	NNidNiv     float64 `yaml:"n_nid_niv"`
	AlphaNidNiv float64 `yaml:"alpha_nid_niv"`
}

// packedAnalytic is the condensed per-pair form: once built, the spectrum of
// any pair is a single closed-form evaluation.
type packedAnalytic struct {
	amplitude []float64
	tilt      []float64
	running   []float64
	nonZero   []bool
}

// AnalyticSource serves spectra of the parametric form
// P(k) = A exp[(n-1) ln(k/k_pivot) + alpha/2 ln^2(k/k_pivot)]. Queries
// outside the tabulated range fall back to the closed form.
type AnalyticSource struct {
	ctx    *Context
	params AnalyticParams
	packed []packedAnalytic
	table  *Table
}

// NewAnalyticSource condenses the input parameters into per-pair triples,
// fills the table over the lnk grid and splines it.
func NewAnalyticSource(ctx *Context, params AnalyticParams, lnk []float64) (*AnalyticSource, error) {
	table, err := NewTable(ctx, lnk)
	if err != nil {
		return nil, err
	}

	s := &AnalyticSource{ctx: ctx, params: params, table: table}
	if err := s.condense(); err != nil {
		return nil, err
	}
	if err := s.fill(); err != nil {
		return nil, err
	}
	return s, nil
}

type icTriple struct{ amplitude, tilt, running float64 }
type crossTriple struct{ correlation, tilt, running float64 }

// condense builds the packed amplitude/tilt/running arrays for each mode.
// Diagonal entries come from the physical parameters, off-diagonal entries
// from correlation coefficients with the symmetric combination rules.
func (s *AnalyticSource) condense() error {
	p := s.params
	s.packed = make([]packedAnalytic, s.ctx.Modes())

	for _, m := range []Mode{Scalar, Tensor} {
		idx := s.ctx.ModeIndex(m)
		if idx < 0 {
			continue
		}
		n := s.ctx.ICSize(m)
		pk := packedAnalytic{
			amplitude: make([]float64, PairSize(n)),
			tilt:      make([]float64, PairSize(n)),
			running:   make([]float64, PairSize(n)),
			nonZero:   make([]bool, PairSize(n)),
		}

		diag := make([]icTriple, n)
		var cross map[[2]int]crossTriple

		if m == Scalar {
			ad, bi, cdi, nid, niv := s.ctx.scalarICIndices()
			diag[ad] = icTriple{p.As, p.Ns, p.AlphaS}
			if bi >= 0 {
				diag[bi] = icTriple{p.As * p.FBi * p.FBi, p.NBi, p.AlphaBi}
			}
			if cdi >= 0 {
				diag[cdi] = icTriple{p.As * p.FCdi * p.FCdi, p.NCdi, p.AlphaCdi}
			}
			if nid >= 0 {
				diag[nid] = icTriple{p.As * p.FNid * p.FNid, p.NNid, p.AlphaNid}
			}
			if niv >= 0 {
				diag[niv] = icTriple{p.As * p.FNiv * p.FNiv, p.NNiv, p.AlphaNiv}
			}

			cross = map[[2]int]crossTriple{}
			put := func(i, j int, c crossTriple) {
				if i >= 0 && j >= 0 {
					cross[[2]int{i, j}] = c
				}
			}
			put(ad, bi, crossTriple{p.CAdBi, p.NAdBi, p.AlphaAdBi})
			put(ad, cdi, crossTriple{p.CAdCdi, p.NAdCdi, p.AlphaAdCdi})
			put(ad, nid, crossTriple{p.CAdNid, p.NAdNid, p.AlphaAdNid})
			put(ad, niv, crossTriple{p.CAdNiv, p.NAdNiv, p.AlphaAdNiv})
			put(bi, cdi, crossTriple{p.CBiCdi, p.NBiCdi, p.AlphaBiCdi})
			put(bi, nid, crossTriple{p.CBiNid, p.NBiNid, p.AlphaBiNid})
			put(bi, niv, crossTriple{p.CBiNiv, p.NBiNiv, p.AlphaBiNiv})
			put(cdi, nid, crossTriple{p.CCdiNid, p.NCdiNid, p.AlphaCdiNid})
			put(cdi, niv, crossTriple{p.CCdiNiv, p.NCdiNiv, p.AlphaCdiNiv})
			put(nid, niv, crossTriple{p.CNidNiv, p.NNidNiv, p.AlphaNidNiv})
		} else {
			// +1 matches the usual convention for n_t (analogous to n_s-1)
			diag[0] = icTriple{p.As * p.R, p.Nt + 1., p.AlphaT}
		}

		for i := 0; i < n; i++ {
			if diag[i].amplitude <= 0 {
				return fmt.Errorf("inconsistent primordial amplitude %g for mode %d, ic %d", diag[i].amplitude, m, i)
			}
			d := Pack(i, i, n)
			pk.amplitude[d] = diag[i].amplitude
			pk.tilt[d] = diag[i].tilt
			pk.running[d] = diag[i].running
			pk.nonZero[d] = true
		}

		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				c := cross[[2]int{i, j}]
				if c.correlation < -1 || c.correlation > 1 {
					return fmt.Errorf("cross-correlation %g for ic pair (%d,%d) outside [-1,1]", c.correlation, i, j)
				}
				off := Pack(i, j, n)
				if c.correlation == 0 {
					continue
				}
				ii, jj := Pack(i, i, n), Pack(j, j, n)
				pk.amplitude[off] = math.Sqrt(pk.amplitude[ii]*pk.amplitude[jj]) * c.correlation
				pk.tilt[off] = 0.5*(pk.tilt[ii]+pk.tilt[jj]) + c.tilt
				pk.running[off] = 0.5*(pk.running[ii]+pk.running[jj]) + c.running
				pk.nonZero[off] = true
			}
		}

		s.packed[idx] = pk
	}
	return nil
}

// evaluate returns the analytic P(k) of one packed pair.
func (s *AnalyticSource) evaluate(m Mode, pair int, k float64) float64 {
	pk := &s.packed[s.ctx.ModeIndex(m)]
	if !pk.nonZero[pair] {
		return 0.
	}
	x := math.Log(k / s.ctx.KPivot)
	return pk.amplitude[pair] * math.Exp((pk.tilt[pair]-1.)*x+0.5*pk.running[pair]*x*x)
}

// fill tabulates the analytic spectra in log-format storage: diagonal
// entries hold ln P, off-diagonal entries the correlation angle
// P_12/sqrt(P_11 P_22) clamped to [-1, 1].
func (s *AnalyticSource) fill() error {
	lnk := s.table.LnK()
	for ik, lk := range lnk {
		k := math.Exp(lk)
		for _, m := range []Mode{Scalar, Tensor} {
			idx := s.ctx.ModeIndex(m)
			if idx < 0 {
				continue
			}
			n := s.ctx.ICSize(m)
			pk := &s.packed[idx]

			for i := 0; i < n; i++ {
				for j := i; j < n; j++ {
					pair := Pack(i, j, n)
					if !pk.nonZero[pair] {
						s.table.set(m, ik, pair, 0., false)
						continue
					}
					v := s.evaluate(m, pair, k)
					if i == j {
						s.table.set(m, ik, pair, math.Log(v), true)
						continue
					}
					p1 := s.evaluate(m, Pack(i, i, n), k)
					p2 := s.evaluate(m, Pack(j, j, n), k)
					// enforce a positive-definite correlation matrix
					cos := v / math.Sqrt(p1*p2)
					if cos > 1. {
						cos = 1.
					} else if cos < -1. {
						cos = -1.
					}
					s.table.set(m, ik, pair, cos, true)
				}
			}
		}
	}
	return s.table.finalize()
}

// Table exposes the tabulated form.
func (s *AnalyticSource) Table() *Table { return s.table }

// At serves the spectrum at any wavenumber: inside the tabulated range it
// interpolates, outside it evaluates the closed form directly.
func (s *AnalyticSource) At(m Mode, f Format, input float64, out []float64) error {
	err := s.table.At(m, f, input, out)
	if err == nil {
		return nil
	}
	if _, outside := err.(*RangeError); !outside {
		return err
	}

	idx := s.ctx.ModeIndex(m)
	if idx < 0 {
		return err
	}
	n := s.ctx.ICSize(m)

	var k float64
	if f == Linear {
		k = input
	} else {
		k = math.Exp(input)
	}

	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			out[Pack(i, j, n)] = s.evaluate(m, Pack(i, j, n), k)
		}
	}

	if f == Log {
		pk := &s.packed[idx]
		for i := 0; i < n; i++ {
			d := Pack(i, i, n)
			out[d] = math.Log(out[d])
		}
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				p := Pack(i, j, n)
				if pk.nonZero[p] {
					out[p] = s.evaluate(m, p, k) /
						math.Sqrt(s.evaluate(m, Pack(i, i, n), k)*s.evaluate(m, Pack(j, j, n), k))
				}
			}
		}
	}
	return nil
}
