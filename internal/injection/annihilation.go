package injection

import "math"

// AnnihilationRate is the volumic energy injection rate from dark matter
// annihilation in the smooth background and in haloes, following
// Giesen et al 1209.0247. The efficiency pann varies with redshift as a
// log-normal bump around ann_zmax, frozen below ann_zmin.
func AnnihilationRate(z float64, p *Params) float64 {
	zp1 := z + 1.
	zp1Ann := p.AnnZ + 1.
	zp1Max := p.AnnZmax + 1.
	zp1Min := p.AnnZmin + 1.
	v := p.AnnVar

	pannTot := 0.

	if p.Pann > 0. {
		switch {
		case zp1 > zp1Max:
			pannTot = p.Pann * math.Exp(-v*sq(math.Log(zp1Ann/zp1Max)))
		case zp1 > zp1Min:
			pannTot = p.Pann * math.Exp(v*(-sq(math.Log(zp1Ann/zp1Max))+sq(math.Log(zp1/zp1Max))))
		default:
			pannTot = p.Pann * math.Exp(v*(-sq(math.Log(zp1Ann/zp1Max))+sq(math.Log(zp1Min/zp1Max))))
		}
		pannTot *= zp1 * zp1 * zp1
	}

	if p.PannHalo > 0. {
		u := zp1 / (p.AnnZHalo + 1.)
		// rational fit to erfc, Abramowitz & Stegun 7.1.27
		erfc := math.Pow(1.+0.278393*u+0.230389*u*u+0.000972*u*u*u+0.078108*u*u*u*u, -4)
		pannTot += p.PannHalo * erfc
	}

	// prefactor is 3 H100^2/(8 pi G) c^2 in eV/cm^3; the 1e-9 converts
	// pann from cm^3/s/GeV to cm^3/s/eV
	return sq(10537.4*p.OdmH2) * zp1 * zp1 * zp1 * 1e-9 * pannTot
}

func sq(x float64) float64 { return x * x }

func cube(x float64) float64 { return x * x * x }
