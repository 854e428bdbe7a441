package inflation

import (
	"math"
	"sync"

	"github.com/san-kum/primordial/internal/integrate"
)

// Progress is invoked after each wavenumber completes. It may be called from
// the goroutine that finished the wavenumber when Workers > 1.
type Progress func(done, total int)

// Result holds the primordial spectra on the lnk grid.
type Result struct {
	LnK       []float64
	LnPScalar []float64
	LnPTensor []float64
}

// clone returns a solver sharing the immutable model but owning its own
// integrator scratch space, for per-worker use.
func (s *Solver) clone() *Solver {
	c := *s
	c.rk = integrate.NewRK45()
	c.log = nil
	return &c
}

// Spectra runs the full inflation pipeline: find the attractor at the pivot,
// validate that inflation lasts past k_max, shoot backward and forward for
// an initial field value early enough for k_min, then integrate the mode
// equations for every wavenumber of the lnk grid. kPivot fixes the absolute
// normalization of the scale factor (a_pivot = k_pivot / H_pivot).
func (s *Solver) Spectra(lnk []float64, kPivot float64, progress Progress) (*Result, error) {
	l := s.lay

	if s.typ == SpecVEnd {
		if err := s.findPhiPivot(); err != nil {
			return nil, err
		}
	}

	// H at the pivot field value
	var hPivot, dphidtPivot float64
	switch s.typ {
	case SpecV, SpecVEnd:
		s.logf(" (search attractor at pivot)\n")
		var err error
		hPivot, dphidtPivot, err = s.FindAttractor(s.PhiPivot, s.prec.AttractorPrecisionPivot)
		if err != nil {
			return nil, err
		}
	case SpecH:
		var err error
		hPivot, _, _, _, err = s.checkHubble(s.PhiPivot)
		if err != nil {
			return nil, err
		}
	}

	// scale factor when k_pivot crosses the horizon at phi=phi_pivot
	aPivot := kPivot / hPivot

	kMin := math.Exp(lnk[0])
	kMax := math.Exp(lnk[len(lnk)-1])

	// check inflation holds after the pivot until k_max is deep inside
	// the horizon; a slow-roll violation here is fatal
	s.logf(" (check inflation duration after phi_pivot=%e)\n", s.PhiPivot)

	y := make(integrateState, l.size)
	y[l.a] = aPivot
	y[l.phi] = s.PhiPivot
	if l.dphi >= 0 {
		y[l.dphi] = aPivot * dphidtPivot
	}
	if _, err := s.evolveBackground(y, TargetAH, kMax/s.prec.RatioMax, true, Forward); err != nil {
		return nil, err
	}

	// locate an initial time early enough that k_min is deep inside the
	// horizon
	s.logf(" (check inflation duration before pivot)\n")

	aHIni := kMin / s.prec.RatioMin
	yIni := make(integrateState, l.size)

	switch s.typ {
	case SpecV, SpecVEnd:
		var aTry, hTry, phiTry, dphidtTry float64

		y[l.a] = aPivot
		y[l.phi] = s.PhiPivot

		counter := 0
		for {
			counter++
			if counter >= s.prec.PhiIniMaxIter {
				return nil, &PhiIniError{Iterations: counter}
			}

			// approximate backward shot toward the target aH; the
			// exact forward integration below decides whether it was
			// early enough
			if _, err := s.evolveBackground(y, TargetAH, aHIni*s.prec.AHIniTarget, true, Backward); err != nil {
				return nil, err
			}
			phiTry = y[l.phi]

			var err error
			hTry, dphidtTry, err = s.FindAttractor(phiTry, s.prec.AttractorPrecisionInitial)
			if err != nil {
				return nil, err
			}

			// normalize a so that a=a_pivot at phi=phi_pivot
			y[l.a] = 1.
			y[l.phi] = phiTry
			y[l.dphi] = y[l.a] * dphidtTry
			if _, err := s.evolveBackground(y, TargetPhi, s.PhiPivot, true, Forward); err != nil {
				return nil, err
			}
			aTry = aPivot / y[l.a]

			if aTry*hTry <= aHIni {
				break
			}

			// not early enough: shoot backward again from here
			y[l.a] = aTry
			y[l.phi] = phiTry
		}

		yIni[l.a] = aTry
		yIni[l.phi] = phiTry
		yIni[l.dphi] = aTry * dphidtTry

	case SpecH:
		y[l.a] = aPivot
		y[l.phi] = s.PhiPivot
		if _, err := s.evolveBackground(y, TargetAH, aHIni, true, Backward); err != nil {
			return nil, err
		}
		yIni[l.a] = y[l.a]
		yIni[l.phi] = y[l.phi]
	}

	// per-k mode integration
	s.logf(" (compute spectrum)\n")

	res := &Result{
		LnK:       lnk,
		LnPScalar: make([]float64, len(lnk)),
		LnPTensor: make([]float64, len(lnk)),
	}
	if err := s.perK(lnk, yIni, res, progress); err != nil {
		return nil, err
	}

	// diagnostics: field values at horizon crossing of k_min and k_max
	copy(y, yIni)
	if _, err := s.evolveBackground(y, TargetAH, kMin, false, Forward); err != nil {
		return nil, err
	}
	s.PhiMin = y[l.phi]

	if _, err := s.evolveBackground(y, TargetAH, kMax, false, Forward); err != nil {
		return nil, err
	}
	s.PhiMax = y[l.phi]

	s.logf(" (observable window spans phi in [%e, %e])\n", s.PhiMin, s.PhiMax)

	return res, nil
}

// spectrumOneK evolves the background from yIni to the initial time for k,
// then integrates the mode equations through horizon crossing.
func (s *Solver) spectrumOneK(k float64, yIni integrateState) (curvature, tensor float64, err error) {
	l := s.lay

	y := make(integrateState, l.size)
	y[l.a] = yIni[l.a]
	y[l.phi] = yIni[l.phi]
	if l.dphi >= 0 {
		y[l.dphi] = yIni[l.dphi]
	}

	if _, err := s.evolveBackground(y, TargetAH, k/s.prec.RatioMin, false, Forward); err != nil {
		return 0, 0, err
	}

	curvature, tensor, err = s.oneK(k, y)
	if err != nil {
		return 0, 0, err
	}

	if curvature <= 0 {
		return 0, 0, &NegativeSpectrumError{K: k}
	}
	if tensor <= 0 {
		return 0, 0, &NegativeSpectrumError{K: k, Tensor: true}
	}
	return curvature, tensor, nil
}

// perK runs spectrumOneK over the grid, sequentially or fanned out over a
// worker pool. Wavenumbers are independent: workers share only the
// read-only model and yIni, and own all evolving state.
func (s *Solver) perK(lnk []float64, yIni integrateState, res *Result, progress Progress) error {
	if s.prec.Workers <= 1 || len(lnk) < 2 {
		for i, lk := range lnk {
			sc, tn, err := s.spectrumOneK(math.Exp(lk), yIni)
			if err != nil {
				return err
			}
			res.LnPScalar[i] = math.Log(sc)
			res.LnPTensor[i] = math.Log(tn)
			if progress != nil {
				progress(i+1, len(lnk))
			}
		}
		return nil
	}

	workers := s.prec.Workers
	if workers > len(lnk) {
		workers = len(lnk)
	}

	jobs := make(chan int, len(lnk))
	for i := range lnk {
		jobs <- i
	}
	close(jobs)

	errs := make([]error, workers)
	var done int64
	var mu sync.Mutex
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			ws := s.clone()
			for i := range jobs {
				sc, tn, err := ws.spectrumOneK(math.Exp(lnk[i]), yIni)
				if err != nil {
					errs[w] = err
					return
				}
				res.LnPScalar[i] = math.Log(sc)
				res.LnPTensor[i] = math.Log(tn)
				if progress != nil {
					mu.Lock()
					done++
					progress(int(done), len(lnk))
					mu.Unlock()
				}
			}
		}(w)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
