// Package injection models exotic energy injection into the primordial
// plasma: dark matter annihilation in the smooth background and in haloes,
// and accretion onto primordial black holes. Rates are volumic injection
// rates in eV/cm^3/s.
package injection

// Params collects the injection channels. Annihilation efficiencies pann
// are in cm^3/s/GeV, the PBH mass in solar masses.
type Params struct {
	Pann     float64 `yaml:"pann"`
	PannHalo float64 `yaml:"pann_halo"`
	AnnZ     float64 `yaml:"ann_z"`
	AnnZmax  float64 `yaml:"ann_zmax"`
	AnnZmin  float64 `yaml:"ann_zmin"`
	AnnVar   float64 `yaml:"ann_var"`
	AnnZHalo float64 `yaml:"ann_z_halo"`
	OdmH2    float64 `yaml:"odmh2"`

	Fpbh float64 `yaml:"fpbh"`
	Mpbh float64 `yaml:"m_pbh"`

	// CollIon switches the PBH accretion flow from photoionization to
	// collisional ionization equilibrium.
	CollIon   bool `yaml:"coll_ion"`
	OnTheSpot bool `yaml:"on_the_spot"`
}

// DefaultParams returns all channels switched off, with the shape
// parameters of the annihilation history at their customary values.
func DefaultParams() Params {
	return Params{
		AnnZ:      1000.,
		AnnZmax:   2500.,
		AnnZmin:   30.,
		AnnZHalo:  30.,
		OdmH2:     0.12,
		Mpbh:      1.,
		OnTheSpot: true,
	}
}

// Rate is the total volumic energy injection rate at redshift z, for
// ionized fraction xe and gas temperature tgas in Kelvin.
func Rate(z, xe, tgas float64, p *Params) float64 {
	return AnnihilationRate(z, p) + PBHRate(z, xe, tgas, p)
}

// ChiHeat is the fraction of deposited energy going into heat
// (Chen & Kamionkowski 2004 approximation).
func ChiHeat(xe float64) float64 { return (1. + 2.*xe) / 3. }

// ChiIon is the fraction of deposited energy going into ionizations.
func ChiIon(xe float64) float64 { return (1. - xe) / 3. }

// ChiExc is the fraction of deposited energy going into excitations.
func ChiExc(xe float64) float64 { return 1. - ChiIon(xe) - ChiHeat(xe) }
