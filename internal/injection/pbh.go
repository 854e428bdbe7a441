package injection

import "math"

// Accretion onto primordial black holes, following Ali-Haimoud & Kamionkowski
// 1612.05644. Best-fit cosmological parameters are assumed throughout and
// Helium is neglected. Masses are in solar masses, Teff in Kelvin.

// bondiSpeed in cm/s.
func bondiSpeed(xe, teff float64) float64 {
	return 9.09e3 * math.Sqrt((1.+xe)*teff)
}

// betaPBH is the dimensionless Compton drag rate.
func betaPBH(mpbh, z, xe, teff float64) float64 {
	a := 1. / (1. + z)
	vB := bondiSpeed(xe, teff)
	tB := 1.33e26 * mpbh / (vB * vB * vB) // Bondi timescale in sec
	return 7.45e-24 * xe / (a * a * a * a) * tB
}

// gammaPBH is the dimensionless Compton cooling rate.
func gammaPBH(mpbh, z, xe, teff float64) float64 {
	return 3.67e3 / (1. + xe) * betaPBH(mpbh, z, xe, teff)
}

// lambdaPBH is the dimensionless accretion rate, interpolating between the
// adiabatic and isothermal limits with the Ricotti 2007 drag suppression.
func lambdaPBH(mpbh, z, xe, teff float64) float64 {
	beta := betaPBH(mpbh, z, xe, teff)
	gamma := gammaPBH(mpbh, z, xe, teff)

	lamRicotti := math.Exp(4.5/(3.+math.Pow(beta, 0.75))) / sq(math.Sqrt(1.+beta)+1.)
	lamAd := math.Pow(0.6, 1.5) / 4.
	lamIso := math.Exp(1.5) / 4.
	lamNoDrag := lamAd + (lamIso-lamAd)*math.Pow(gamma*gamma/(88.+gamma*gamma), 0.22)

	return lamRicotti * lamNoDrag / lamIso
}

// accretionRate in g/s, assuming Omega_b h^2 = 0.022.
func accretionRate(mpbh, z, xe, teff float64) float64 {
	vB := bondiSpeed(xe, teff)
	return 9.15e22 * mpbh * mpbh * cube((1.+z)/vB) * lambdaPBH(mpbh, z, xe, teff)
}

// tsOverMe is the flow temperature near the Schwarzschild radius in units
// of the electron mass.
func tsOverMe(mpbh, z, xe, teff float64, collIon bool) float64 {
	gamma := gammaPBH(mpbh, z, xe, teff)
	tau := 1.5 / (5. + math.Pow(gamma, 2./3.))
	ys := 2. / (1. + xe) * tau / 4. * math.Pow(1.-2.5*tau, 1./3.) * 1836.
	if collIon {
		ys *= math.Pow((1.+xe)/2., 8.)
	}
	return ys / math.Pow(1.+ys/0.27, 1./3.)
}

// epsOverMdot is the radiative efficiency divided by the dimensionless
// accretion rate.
func epsOverMdot(mpbh, z, xe, teff float64, collIon bool) float64 {
	x := tsOverMe(mpbh, z, xe, teff, collIon)

	// fit to the (e-e + e-p) free-free Gaunt factor
	var g float64
	if x < 1 {
		g = 4. / math.Pi * math.Sqrt(2./math.Pi/x) * (1. + 5.5*math.Pow(x, 1.25))
	} else {
		g = 13.5 / math.Pi * (math.Log(2.*x*0.56146+0.08) + 4./3.)
	}

	return x / 1836. / 137. * g
}

// luminosity of a single PBH in erg/s.
func luminosity(mpbh, z, xe, teff float64, collIon bool) float64 {
	mDot := accretionRate(mpbh, z, xe, teff)
	mdot := mDot / (1.4e17 * mpbh) // Mdot c^2 / L_Eddington
	eff := mdot * epsOverMdot(mpbh, z, xe, teff, collIon)
	return eff * mDot * 9e20
}

// vbcRMS is the rms baryon-dark matter relative velocity in cm/s.
func vbcRMS(z float64) float64 {
	if z < 1e3 {
		return 3e6 * (1. + z) / 1e3
	}
	return 3e6
}

// averageLuminosity averages the PBH luminosity over the Maxwellian
// distribution of relative velocities.
func averageLuminosity(mpbh, z, xe, tgas float64, collIon bool) float64 {
	const nvbc = 50

	rms := vbcRMS(z)
	vbcMax := 5. * rms

	num, denom := 0., 0.
	for i := 0; i < nvbc; i++ {
		vbc := float64(i) * vbcMax / (nvbc - 1.)
		x := vbc / rms
		pVbc := x * x * math.Exp(-1.5*x*x)
		denom += pVbc

		teff := tgas + 1.21e-8*vbc*vbc/(1.+xe)
		num += luminosity(mpbh, z, xe, teff, collIon) * pVbc
	}

	return num / denom
}

// PBHRate is the volumic energy injection rate from accreting primordial
// black holes making up a fraction fpbh of the dark matter, assuming
// Omega_c h^2 = 0.12.
func PBHRate(z, xe, tgas float64, p *Params) float64 {
	if p.Fpbh <= 0. {
		return 0.
	}
	// Helium is not accounted for
	xeUsed := math.Min(xe, 1.)
	return 7.07e-52 / p.Mpbh * cube(1.+z) * p.Fpbh * averageLuminosity(p.Mpbh, z, xeUsed, tgas, p.CollIon)
}
