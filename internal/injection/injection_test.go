package injection_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/primordial/internal/injection"
)

var _ = Describe("Deposition fractions", func() {
	It("sum to one at any ionized fraction", func() {
		for _, xe := range []float64{0., 0.1, 0.5, 1.} {
			sum := injection.ChiHeat(xe) + injection.ChiIon(xe) + injection.ChiExc(xe)
			Expect(sum).To(BeNumerically("~", 1., 1e-15))
		}
	})

	It("send everything into heat in a fully ionized plasma", func() {
		Expect(injection.ChiHeat(1.)).To(BeNumerically("~", 1., 1e-15))
		Expect(injection.ChiIon(1.)).To(BeZero())
	})
})

var _ = Describe("Dark matter annihilation", func() {
	var p injection.Params

	BeforeEach(func() {
		p = injection.DefaultParams()
	})

	It("vanishes when both channels are off", func() {
		Expect(injection.AnnihilationRate(600., &p)).To(BeZero())
	})

	It("is continuous across the redshift pieces", func() {
		p.Pann = 1e-27
		p.AnnVar = 0.05
		for _, edge := range []float64{p.AnnZmax, p.AnnZmin} {
			lo := injection.AnnihilationRate(edge-1e-6, &p)
			hi := injection.AnnihilationRate(edge+1e-6, &p)
			Expect(hi).To(BeNumerically("~", lo, 1e-5*lo))
		}
	})

	It("scales as (1+z)^6 for constant efficiency", func() {
		p.Pann = 1e-27
		r1 := injection.AnnihilationRate(199., &p)
		r2 := injection.AnnihilationRate(399., &p)
		Expect(r2 / r1).To(BeNumerically("~", 64., 1e-10))
	})

	It("adds a halo contribution that fades with redshift", func() {
		p.PannHalo = 1e-27
		near := injection.AnnihilationRate(10., &p)
		far := injection.AnnihilationRate(600., &p)
		Expect(near).To(BeNumerically(">", 0.))
		// the erfc cutoff suppresses haloes well before recombination,
		// faster than the (1+z)^3 volume factor grows
		Expect(far / math.Pow(601./11., 3.)).To(BeNumerically("<", near))
	})
})

var _ = Describe("Primordial black holes", func() {
	var p injection.Params

	BeforeEach(func() {
		p = injection.DefaultParams()
		p.Fpbh = 1e-3
		p.Mpbh = 100.
	})

	It("injects nothing when the PBH fraction is zero", func() {
		p.Fpbh = 0.
		Expect(injection.PBHRate(600., 1e-3, 300., &p)).To(BeZero())
	})

	It("injects a positive rate for a nonzero fraction", func() {
		Expect(injection.PBHRate(600., 1e-3, 300., &p)).To(BeNumerically(">", 0.))
	})

	It("caps the ionized fraction at one", func() {
		capped := injection.PBHRate(900., 1., 3000., &p)
		over := injection.PBHRate(900., 1.1, 3000., &p)
		Expect(over).To(Equal(capped))
	})

	It("grows with the PBH fraction", func() {
		r1 := injection.PBHRate(600., 1e-3, 300., &p)
		p.Fpbh *= 10.
		r2 := injection.PBHRate(600., 1e-3, 300., &p)
		Expect(r2).To(BeNumerically("~", 10.*r1, 1e-10*r2))
	})
})

var _ = Describe("Deposition history", func() {
	var p injection.Params

	BeforeEach(func() {
		p = injection.DefaultParams()
		p.Pann = 1e-27
	})

	It("equals the injection rate on the spot", func() {
		dep := injection.NewDeposition(&p)
		got := dep.Update(600., 1e-2, 1e-3, 300., 1e2, 1e-15)
		Expect(got).To(Equal(injection.Rate(600., 1e-3, 300., &p)))
	})

	It("relaxes towards the injection rate otherwise", func() {
		p.OnTheSpot = false
		dep := injection.NewDeposition(&p)

		inj := injection.Rate(600., 1e-3, 300., &p)
		prev := 0.
		for i := 0; i < 200; i++ {
			prev = dep.Rate()
			dep.Update(600., 1e-2, 1e-3, 300., 1e2, 1e-15)
		}
		Expect(dep.Rate()).To(BeNumerically(">", prev-1e-30))
		Expect(dep.Rate()).To(BeNumerically("<", inj))
		Expect(dep.Rate()).To(BeNumerically(">", 0.))
	})
})
