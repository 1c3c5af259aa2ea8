// Command psfinfo prints the exposure-weighted mean PSF of a sky position
// for a simulated sky survey.
//
// Usage:
//
//	psfinfo [flags]
//
// The survey scans right ascension while rocking the instrument axis north
// and south. For each energy the tool prints the exposure, the PSF peak and
// the 68% and 95% containment radii.
//
// Examples:
//
//	psfinfo -ra 83.63 -dec 22.01
//	psfinfo -emin 30 -emax 3e5 -n 12
//	psfinfo -plot profile.png
//	psfinfo -v
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	likelihood "github.com/cwbudde/algo-likelihood"
	"github.com/cwbudde/algo-likelihood/dsp/interp"
	"github.com/cwbudde/algo-likelihood/response/irf"
	"github.com/cwbudde/algo-likelihood/response/psf"
	"github.com/cwbudde/algo-likelihood/sky/coord"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	ra, dec    float64
	emin, emax float64
	energies   int
	intervals  int
	step       float64
	rock       float64
	livetime   float64
	plotPath   string
	verbose    bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("psfinfo", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Float64Var(&o.ra, "ra", 83.63, "source right ascension (deg)")
	fs.Float64Var(&o.dec, "dec", 22.01, "source declination (deg)")
	fs.Float64Var(&o.emin, "emin", 30, "lowest energy (MeV)")
	fs.Float64Var(&o.emax, "emax", 3e5, "highest energy (MeV)")
	fs.IntVar(&o.energies, "n", 9, "number of log-spaced energies")
	fs.IntVar(&o.intervals, "intervals", 96, "number of survey pointing intervals")
	fs.Float64Var(&o.step, "step", 1800, "duration of each pointing interval (s)")
	fs.Float64Var(&o.rock, "rock", 50, "rocking angle (deg)")
	fs.Float64Var(&o.livetime, "livetime", 0.9, "livetime fraction")
	fs.StringVar(&o.plotPath, "plot", "", "write a PNG of the PSF profiles to this path")
	fs.BoolVar(&o.verbose, "v", false, "log progress to stderr")
	fs.Usage = func() {
		_, _ = fmt.Fprintf(stderr, "Usage: psfinfo [flags]\n\n")
		_, _ = fmt.Fprintf(stderr, "Prints the exposure-weighted mean PSF of a sky position.\n\n")
		_, _ = fmt.Fprintf(stderr, "Flags:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if fs.NArg() > 0 {
		return o, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return o, nil
}

func run(args []string, stdout, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	if o.verbose {
		likelihood.SetLogger(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	energies, err := interp.LogSpace(o.emin, o.emax, o.energies)
	if err != nil {
		return fmt.Errorf("energy grid: %w", err)
	}
	hist, err := irf.SurveyTimeline(o.intervals, o.step, o.rock, o.livetime)
	if err != nil {
		return fmt.Errorf("survey: %w", err)
	}
	reg, err := irf.NewRegistry(map[int]irf.Response{0: irf.DefaultAnalytic()},
		irf.WithName("analytic"))
	if err != nil {
		return err
	}
	src := coord.NewEquatorial(o.ra, o.dec)
	table, err := psf.New(src, energies, reg, hist)
	if err != nil {
		return fmt.Errorf("mean psf: %w", err)
	}

	if err := printTable(stdout, table); err != nil {
		return err
	}
	if o.plotPath != "" {
		if err := savePlot(o.plotPath, table); err != nil {
			return fmt.Errorf("plot: %w", err)
		}
	}
	return nil
}

func printTable(w io.Writer, table *psf.Table) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(tw, "Energy [MeV]\tExposure [cm2 s]\tPeak [1/sr]\tR68 [deg]\tR95 [deg]\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(tw, "------------\t----------------\t-----------\t---------\t---------\n"); err != nil {
		return err
	}
	exposures := table.Exposures()
	for k, e := range table.Energies() {
		peak, err := table.PeakValue(e)
		if err != nil {
			return err
		}
		r68, err := table.ContainmentRadius(e, 0.68, 1e-4)
		if err != nil {
			return err
		}
		r95, err := table.ContainmentRadius(e, 0.95, 1e-4)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(tw, "%.4g\t%.4e\t%.4e\t%.4f\t%.4f\n", e, exposures[k], peak, r68, r95); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func savePlot(path string, table *psf.Table) error {
	p := plot.New()
	p.Title.Text = "Mean PSF"
	p.X.Label.Text = "Separation (deg)"
	p.Y.Label.Text = "PSF (1/sr)"
	p.X.Scale = plot.LogScale{}
	p.X.Tick.Marker = plot.LogTicks{}
	p.Y.Scale = plot.LogScale{}
	p.Y.Tick.Marker = plot.LogTicks{}

	seps := table.Separations()
	for i, e := range table.Energies() {
		pts := make(plotter.XYs, 0, len(seps))
		for _, s := range seps {
			v, err := table.Response(e, s)
			if err != nil {
				return err
			}
			// Log axes cannot show zeros.
			if v > 0 {
				pts = append(pts, plotter.XY{X: s, Y: v})
			}
		}
		if len(pts) == 0 {
			continue
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("%.3g MeV", e), line)
	}
	p.Legend.Top = true
	return p.Save(8*vg.Inch, 6*vg.Inch, path)
}
