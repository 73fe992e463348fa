package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	calcmv "github.com/njchilds90/gocalcmv"
)

func newTripleCmd(a *app) *cobra.Command {
	var (
		system   string
		order    []string
		limits   []string
		included bool
	)
	cmd := &cobra.Command{
		Use:   "triple INTEGRAND",
		Short: "Evaluate a triple integral",
		Long: `Evaluate a triple integral. Limits are given as var=lower:upper and are
integrated innermost first in --order (default: the order of the --limit flags).

  calcmv triple "x*y*z" -l x=0:1 -l y=0:2 -l z=0:3
  calcmv triple r --system cylindrical -l r=0:1 -l theta=0:2*pi -l z=0:1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := calcmv.TripleRequest{
				Integrand: args[0],
				System:    system,
				Order:     order,
			}
			for _, l := range limits {
				lim, err := parseLimit(l)
				if err != nil {
					return err
				}
				req.Limits = append(req.Limits, lim)
			}
			if cmd.Flags().Changed("jacobian-included") {
				req.JacobianIncluded = &included
			}
			res, err := a.engine.SolveTriple(req)
			return a.present(cmd, res, err)
		},
	}
	cmd.Flags().StringVar(&system, "system", "rectangular", "coordinate system: rectangular, cylindrical or spherical")
	cmd.Flags().StringSliceVarP(&order, "order", "o", nil, "integration order, innermost first (e.g. z,y,x)")
	cmd.Flags().StringArrayVarP(&limits, "limit", "l", nil, "integration limit var=lower:upper (repeatable)")
	cmd.Flags().BoolVar(&included, "jacobian-included", false, "the integrand already contains the Jacobian; unset means guess")
	return cmd
}

func parseLimit(s string) (calcmv.Limit, error) {
	v, bounds, ok := strings.Cut(s, "=")
	lo, hi, ok2 := strings.Cut(bounds, ":")
	if !ok || !ok2 || strings.TrimSpace(v) == "" {
		return calcmv.Limit{}, fmt.Errorf("%w: limit %q must be var=lower:upper", calcmv.ErrValidation, s)
	}
	return calcmv.Limit{
		Var:   strings.TrimSpace(v),
		Lower: strings.TrimSpace(lo),
		Upper: strings.TrimSpace(hi),
	}, nil
}

// theoremCmd builds green, divergence and stokes; they differ only in the
// field arity and the evaluator.
func theoremCmd(a *app, use, short, defaultShape string, fields int, regions []string,
	eval func(e *calcmv.Engine, field []string, shape calcmv.Shape) (*calcmv.Result, error),
) *cobra.Command {
	var (
		shape  string
		params []string
	)
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Long: fmt.Sprintf("%s.\n\nShapes: %s\nParameters are given as -p name=value; see 'calcmv catalog'.\n"+
			"Put -- before components that start with a minus sign.",
			short, strings.Join(regions, ", ")),
		Args: cobra.ExactArgs(fields),
		RunE: func(cmd *cobra.Command, args []string) error {
			prm, err := parseParams(params)
			if err != nil {
				return err
			}
			res, err := eval(a.engine, args, calcmv.Shape{Tag: shape, Params: prm})
			return a.present(cmd, res, err)
		},
	}
	cmd.Flags().StringVar(&shape, "shape", defaultShape, "region or surface")
	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "shape parameter name=value (repeatable)")
	return cmd
}

func newGreenCmd(a *app) *cobra.Command {
	return theoremCmd(a, "green P Q", "Check Green's theorem for F = (P, Q)", "disco", 2, calcmv.GreenRegions(),
		func(e *calcmv.Engine, f []string, s calcmv.Shape) (*calcmv.Result, error) {
			return e.ApplyGreen(f[0], f[1], s)
		})
}

func newDivergenceCmd(a *app) *cobra.Command {
	cmd := theoremCmd(a, "divergence FX FY FZ", "Check the divergence theorem for F = (FX, FY, FZ)", "esfera", 3, calcmv.DivergenceRegions(),
		func(e *calcmv.Engine, f []string, s calcmv.Shape) (*calcmv.Result, error) {
			return e.ApplyDivergence(f[0], f[1], f[2], s)
		})
	cmd.Aliases = []string{"gauss"}
	return cmd
}

func newStokesCmd(a *app) *cobra.Command {
	return theoremCmd(a, "stokes FX FY FZ", "Check Stokes' theorem for F = (FX, FY, FZ)", "disco", 3, calcmv.StokesSurfaces(),
		func(e *calcmv.Engine, f []string, s calcmv.Shape) (*calcmv.Result, error) {
			return e.ApplyStokes(f[0], f[1], f[2], s)
		})
}

func newCatalogCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List the supported regions and surfaces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.renderer(cmd.OutOrStdout()).Catalog(calcmv.Catalog())
			return nil
		},
	}
}
