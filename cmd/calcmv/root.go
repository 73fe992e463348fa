package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	calcmv "github.com/njchilds90/gocalcmv"
	"github.com/njchilds90/gocalcmv/history"
	"github.com/njchilds90/gocalcmv/internal/config"
	"github.com/njchilds90/gocalcmv/internal/render"
)

// app carries what every subcommand needs once the configuration is loaded.
type app struct {
	configPath string
	save       bool

	cfg    *config.Config
	log    *slog.Logger
	engine *calcmv.Engine
	store  *history.Store
}

func newRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:   "calcmv",
		Short: "Symbolic multivariable calculus",
		Long: `calcmv evaluates triple integrals in rectangular, cylindrical and spherical
coordinates and checks the theorems of Green, Gauss (divergence) and Stokes
over a catalog of regions, printing every step.

Configuration is read from calcmv.yaml (or --config / CALCMV_CONFIG), a .env
file and CALCMV_* environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.ErrOrStderr())
		},
	}
	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "configuration file (default calcmv.yaml)")
	cmd.PersistentFlags().BoolVarP(&a.save, "save", "s", false, "append each result to the history file")

	cmd.AddCommand(
		newTripleCmd(a),
		newGreenCmd(a),
		newDivergenceCmd(a),
		newStokesCmd(a),
		newRunCmd(a),
		newHistoryCmd(a),
		newCatalogCmd(a),
		newServeCmd(a),
	)
	return cmd
}

func (a *app) setup(stderr io.Writer) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	a.engine = calcmv.New(
		calcmv.WithLogger(a.log),
		calcmv.WithJacobianHeuristic(cfg.JacobianHeuristic),
	)
	a.store = history.NewStore(cfg.HistoryPath)
	return nil
}

func (a *app) renderer(out io.Writer) *render.Renderer {
	return render.New(out, render.Options{
		Precision: a.cfg.Precision,
		Color:     useColor(a.cfg.Color, out),
	})
}

func useColor(mode string, out io.Writer) bool {
	switch strings.ToLower(mode) {
	case "always":
		return true
	case "never":
		return false
	}
	f, ok := out.(*os.File)
	return ok && f == os.Stdout && !color.NoColor
}

// present prints a result, records it when --save is set and returns err.
// A non-nil res with a non-nil err is a partial result and is still shown.
func (a *app) present(cmd *cobra.Command, res *calcmv.Result, err error) error {
	if res == nil {
		return err
	}
	a.renderer(cmd.OutOrStdout()).Result(res)
	if a.save {
		rec, serr := a.store.Append(res)
		if serr != nil {
			return errors.Join(err, serr)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\nsaved as %s\n", rec.ID)
	}
	return err
}

// parseParams turns key=value pairs into a shape parameter map.
func parseParams(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("%w: parameter %q must be name=value", calcmv.ErrValidation, p)
		}
		if _, dup := out[k]; dup {
			return nil, fmt.Errorf("%w: parameter %q given twice", calcmv.ErrValidation, k)
		}
		out[k] = strings.TrimSpace(v)
	}
	return out, nil
}
