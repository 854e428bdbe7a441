package injection

import "math"

// Deposition tracks the volumic energy deposition rate through the
// recombination history. When deposition is not on the spot, injected
// photons Compton-cool at a rate dE/dt = -0.1 n_H c sigma_T E, which is
// valid for photon energies around an MeV.
type Deposition struct {
	params *Params
	rate   float64
}

// NewDeposition starts the history at zero deposited energy.
func NewDeposition(p *Params) *Deposition {
	return &Deposition{params: p}
}

// Rate is the current volumic deposition rate in eV/cm^3/s.
func (d *Deposition) Rate() float64 { return d.rate }

// Update advances the deposition rate by one step dlna in e-folds, given
// the state of the plasma at the new redshift: ionized fraction xe, gas
// temperature tgas, hydrogen density nH in cm^-3 and Hubble rate h in 1/s.
func (d *Deposition) Update(z, dlna, xe, tgas, nH, h float64) float64 {
	inj := Rate(z, xe, tgas, d.params)

	if d.params.OnTheSpot {
		d.rate = inj
		return d.rate
	}

	// 0.1 c sigma_T = 2e-15 in cgs
	w := 2e-15 * dlna * nH / h
	d.rate = (d.rate*math.Exp(-7.*dlna) + w*inj) / (1. + w)
	return d.rate
}
