package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	calcmv "github.com/njchilds90/gocalcmv"
)

// problemFile is the YAML document read by "calcmv run".
type problemFile struct {
	Problems []calcmv.Problem `yaml:"problems"`
}

type outcome struct {
	res *calcmv.Result
	err error
}

func newRunCmd(a *app) *cobra.Command {
	var (
		parallel int
		failFast bool
	)
	cmd := &cobra.Command{
		Use:   "run FILE",
		Short: "Evaluate every problem in a YAML file",
		Long: `Evaluate every problem listed under "problems:" in a YAML file. Problems run
concurrently (batch.parallel in the configuration, or --parallel) and are
printed in file order.

  problems:
    - title: unit disk rotation
      kind: green
      field: ["-y", "x"]
      shape: {tag: disco}
    - kind: triple
      integrand: "1"
      limits:
        - {var: x, lower: "0", upper: "1"}
        - {var: y, lower: "0", upper: "2"}
        - {var: z, lower: "0", upper: "3"}`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			problems, err := loadProblems(args[0])
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("parallel") {
				parallel = a.cfg.Batch.Parallel
			}
			outcomes, err := a.solveAll(cmd.Context(), problems, parallel, failFast)
			if err != nil {
				return err
			}

			r := a.renderer(cmd.OutOrStdout())
			var failed []error
			for i, o := range outcomes {
				fmt.Fprintf(cmd.OutOrStdout(), "\n[%d/%d] %s\n", i+1, len(problems), problems[i])
				if perr := a.present(cmd, o.res, o.err); perr != nil {
					r.Error(perr)
					failed = append(failed, fmt.Errorf("problem %d: %w", i+1, perr))
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\n%d of %d problems solved\n", len(problems)-len(failed), len(problems))
			return errors.Join(failed...)
		},
	}
	cmd.Flags().IntVarP(&parallel, "parallel", "j", 0, "number of problems evaluated at once")
	cmd.Flags().BoolVar(&failFast, "fail-fast", false, "stop at the first failing problem")
	return cmd
}

func loadProblems(path string) ([]calcmv.Problem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read problem file: %w", err)
	}
	var f problemFile
	if err := yaml.UnmarshalWithOptions(data, &f, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", calcmv.ErrValidation, path, err)
	}
	if len(f.Problems) == 0 {
		return nil, fmt.Errorf("%w: %s lists no problems", calcmv.ErrValidation, path)
	}
	return f.Problems, nil
}

// solveAll evaluates problems with at most parallel in flight. Outcomes keep
// the input order. With failFast the first failure cancels problems not yet
// started and is returned.
func (a *app) solveAll(ctx context.Context, problems []calcmv.Problem, parallel int, failFast bool) ([]outcome, error) {
	if parallel < 1 {
		parallel = 1
	}
	if ctx == nil {
		ctx = context.Background()
	}
	outcomes := make([]outcome, len(problems))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i, p := range problems {
		i, p := i, p // per-iteration copies (go directive is 1.21)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := a.engine.Solve(p)
			outcomes[i] = outcome{res: res, err: err}
			a.log.Debug("problem solved", "index", i+1, "kind", p.Kind, "error", err)
			if err != nil && failFast {
				return fmt.Errorf("problem %d (%s): %w", i+1, p, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}
