package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/primordial/internal/config"
	"github.com/san-kum/primordial/internal/export"
	"github.com/san-kum/primordial/internal/injection"
	"github.com/san-kum/primordial/internal/spectrum"
	"github.com/san-kum/primordial/internal/storage"
	"github.com/san-kum/primordial/internal/tui"
)

var (
	dataDir    string
	configFile string
	preset     string
	live       bool
	verbose    bool
	kMin       float64
	kMax       float64
	kPivot     float64
	kPerDecade float64
	workers    int
	pngPath    string
	jsonPath   string
	// analytic shortcuts
	aS float64
	nS float64
	r  float64
	// injection sweep
	zMin float64
	zMax float64
	pann float64
	fpbh float64
	mpbh float64
	xe   float64
	tgas float64
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "primordial",
		Short: "primordial power spectrum lab",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".primordial", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [type]",
		Short: "compute a primordial spectrum",
		Long: `Compute a primordial spectrum. The type is one of analytic_Pk,
inflation_V, inflation_V_end, inflation_H or external_Pk; it defaults to
the configured or preset type.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runSpectrum,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	runCmd.Flags().BoolVar(&live, "live", false, "show live progress during mode integration")
	runCmd.Flags().BoolVar(&verbose, "verbose", false, "print solver progress messages")
	runCmd.Flags().Float64Var(&kMin, "kmin", config.DefaultKMin, "smallest wavenumber [1/Mpc]")
	runCmd.Flags().Float64Var(&kMax, "kmax", config.DefaultKMax, "largest wavenumber [1/Mpc]")
	runCmd.Flags().Float64Var(&kPivot, "kpivot", config.DefaultKPivot, "pivot scale [1/Mpc]")
	runCmd.Flags().Float64Var(&kPerDecade, "k-per-decade", config.DefaultKPerDecade, "sampling density in k")
	runCmd.Flags().IntVar(&workers, "workers", 1, "parallel workers for the mode integration")
	runCmd.Flags().Float64Var(&aS, "a-s", config.DefaultAs, "scalar amplitude (analytic)")
	runCmd.Flags().Float64Var(&nS, "n-s", config.DefaultNs, "scalar tilt (analytic)")
	runCmd.Flags().Float64Var(&r, "r", 0., "tensor-to-scalar ratio (analytic)")
	runCmd.Flags().StringVar(&pngPath, "png", "", "write a log-log plot to this file")
	runCmd.Flags().StringVar(&jsonPath, "json", "", "write spectra and derived parameters to this file")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export-csv [run_id] [file]",
		Short: "copy the tabulated spectra of a stored run",
		Long:  "Copy the spectrum table of a stored run to a file, or to stdout when no file is given.",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  exportRun,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "print run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	injectionCmd := &cobra.Command{
		Use:   "injection",
		Short: "tabulate exotic energy injection rates",
		RunE:  runInjection,
	}
	injectionCmd.Flags().Float64Var(&zMin, "zmin", 10., "lowest redshift")
	injectionCmd.Flags().Float64Var(&zMax, "zmax", 2000., "highest redshift")
	injectionCmd.Flags().Float64Var(&pann, "pann", 0., "annihilation efficiency [cm^3/s/GeV]")
	injectionCmd.Flags().Float64Var(&fpbh, "fpbh", 0., "PBH fraction of dark matter")
	injectionCmd.Flags().Float64Var(&mpbh, "mpbh", 1., "PBH mass [solar masses]")
	injectionCmd.Flags().Float64Var(&xe, "xe", 1e-3, "ionized fraction")
	injectionCmd.Flags().Float64Var(&tgas, "tgas", 300., "gas temperature [K]")
	injectionCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")

	presetsCmd := &cobra.Command{
		Use:   "presets [type]",
		Short: "list available presets for a spectrum type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for type: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd, showCmd, injectionCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()

	kind := cfg.Type
	if len(args) > 0 {
		kind = args[0]
	}

	if preset != "" {
		p := config.GetPreset(kind, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(kind))
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if len(args) > 0 {
		cfg.Type = args[0]
	}
	if cmd.Flags().Changed("kmin") {
		cfg.Context.KMin = kMin
	}
	if cmd.Flags().Changed("kmax") {
		cfg.Context.KMax = kMax
	}
	if cmd.Flags().Changed("kpivot") {
		cfg.Context.KPivot = kPivot
	}
	if cmd.Flags().Changed("k-per-decade") {
		cfg.KPerDecade = kPerDecade
	}
	if cmd.Flags().Changed("workers") {
		cfg.Precision.Workers = workers
	}
	if cmd.Flags().Changed("a-s") {
		cfg.Analytic.As = aS
	}
	if cmd.Flags().Changed("n-s") {
		cfg.Analytic.Ns = nS
	}
	if cmd.Flags().Changed("r") {
		cfg.Analytic.R = r
		cfg.Context.HasTensors = r > 0
	}
	if verbose {
		cfg.Log = os.Stderr
	}

	return cfg, nil
}

func runSpectrum(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	fmt.Printf("computing %s spectrum...\n", cfg.Type)
	start := time.Now()

	var src spectrum.Source
	if live {
		src, err = tui.RunLive(cfg)
	} else {
		src, err = cfg.Source(nil)
	}
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	derived, err := spectrum.DeriveParams(src, cfg.KPerDecade)
	if err != nil {
		return err
	}

	runID, err := st.Save(cfg.Type, cfg.KPerDecade, src, derived)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("samples: %d\n\n", len(src.Table().LnK()))
	fmt.Print(tui.Summary(derived))

	if err := terminalPlot(src); err != nil {
		return err
	}

	if pngPath != "" {
		if err := export.PlotPNG(pngPath, src); err != nil {
			return err
		}
		fmt.Printf("plot written to %s\n", pngPath)
	}
	if jsonPath != "" {
		if err := export.ExportJSON(jsonPath, cfg.Type, src, derived); err != nil {
			return err
		}
		fmt.Printf("data written to %s\n", jsonPath)
	}

	return nil
}

func terminalPlot(src spectrum.Source) error {
	table := src.Table()
	ctx := table.Context()
	if !ctx.HasScalars {
		return nil
	}

	out := make([]float64, table.PairCount(spectrum.Scalar))
	data := make([]float64, len(table.LnK()))
	for i, lnk := range table.LnK() {
		if err := src.At(spectrum.Scalar, spectrum.Log, lnk, out); err != nil {
			return err
		}
		data[i] = out[0]
	}

	fmt.Println()
	graph := asciigraph.Plot(data,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("ln P_s over ln k"),
	)
	fmt.Println(graph)
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tTIME\tK_MIN\tK_MAX\tA_S\tN_S")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.1e\t%.1e\t%.3e\t%.4f\n",
			run.ID,
			run.Type,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.KMin,
			run.KMax,
			run.Derived["A_s"],
			run.Derived["n_s"],
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	k, cols, header, err := st.LoadSpectrum(runID)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("type: %s\n", meta.Type)
	fmt.Printf("samples: %d\n\n", len(k))

	for c, name := range header {
		data := make([]float64, len(cols[c]))
		for i, v := range cols[c] {
			data[i] = math.Log(v)
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("ln %s over ln k", name)),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)

	src, err := os.Open(st.SpectrumPath(args[0]))
	if err != nil {
		return err
	}
	defer src.Close()

	out := os.Stdout
	if len(args) > 1 {
		f, err := os.Create(args[1])
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	if _, err := io.Copy(out, src); err != nil {
		return err
	}
	if len(args) > 1 {
		fmt.Printf("spectrum written to %s\n", args[1])
	}
	return nil
}

func showRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("id: %s\n", meta.ID)
	fmt.Printf("type: %s\n", meta.Type)
	fmt.Printf("time: %s\n", meta.Timestamp.Format(time.RFC3339))
	fmt.Printf("range: [%e, %e], pivot %e\n", meta.KMin, meta.KMax, meta.KPivot)
	for name, v := range meta.Derived {
		fmt.Printf("  %s: %g\n", name, v)
	}
	return nil
}

func runInjection(cmd *cobra.Command, args []string) error {
	params := injection.DefaultParams()
	if configFile != "" {
		cfg, err := config.Load(configFile)
		if err != nil {
			return err
		}
		params = cfg.Injection
	}
	if cmd.Flags().Changed("pann") {
		params.Pann = pann
	}
	if cmd.Flags().Changed("fpbh") {
		params.Fpbh = fpbh
	}
	if cmd.Flags().Changed("mpbh") {
		params.Mpbh = mpbh
	}

	if params.Pann == 0 && params.PannHalo == 0 && params.Fpbh == 0 {
		return fmt.Errorf("all injection channels are off; set --pann or --fpbh")
	}

	const samples = 40
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Z\tINJECTION [eV/cm^3/s]\tCHI_HEAT\tCHI_ION")

	data := make([]float64, samples)
	for i := 0; i < samples; i++ {
		z := zMin * math.Pow(zMax/zMin, float64(i)/(samples-1))
		rate := injection.Rate(z, xe, tgas, &params)
		data[i] = math.Log10(math.Max(rate, 1e-300))
		fmt.Fprintf(w, "%.1f\t%.4e\t%.3f\t%.3f\n",
			z, rate, injection.ChiHeat(xe), injection.ChiIon(xe))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println()
	graph := asciigraph.Plot(data,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("log10 injection rate over log z"),
	)
	fmt.Println(graph)
	return nil
}
