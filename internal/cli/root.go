// Package cli is the command tree of the batch solver.
package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/preston-bernstein/mister-service/internal/app/teams"
	"github.com/preston-bernstein/mister-service/internal/batch"
)

// NewRootCommand builds the mister command. Results go to out and logs to errOut.
func NewRootCommand(out, errOut io.Writer) *cobra.Command {
	return newRootCommand(NewOptions(), out, errOut)
}

func newRootCommand(opts *Options, out, errOut io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "mister",
		Short: "Split a pool of rated players into balanced teams",
		Long: `mister partitions players into equally sized teams whose rating totals
are as close as possible, honouring an optional D-M-F formation.

Each configuration directory holds a scenario.json; solve writes the
resulting teams next to it as solution.json.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.SetErr(errOut)
	opts.AddGlobalFlags(root.PersistentFlags())

	root.AddCommand(newSolveCommand(opts), newValidateCommand(opts))
	return root
}

func newSolveCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "solve <conf-dir>",
		Short: "Solve <conf-dir>/scenario.json into <conf-dir>/solution.json",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			scenario, err := batch.LoadScenario(dir)
			if err != nil {
				return err
			}
			if opts.Optimal {
				scenario.Optimal = true
			}

			logger := opts.logger(cmd.ErrOrStderr())
			rng, err := opts.rand()
			if err != nil {
				return err
			}
			svc := teams.NewService(opts.newEngine(opts.Timeout, logger), rng, logger, nil)

			solution, err := svc.MakeTeams(cmd.Context(), scenario)
			if err != nil {
				return err
			}
			path, err := batch.WriteSolution(dir, solution)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d teams written to %s (balance %.3f)\n", len(solution.Teams), path, solution.Balance)
			return nil
		},
	}
	opts.AddSolveFlags(cmd.Flags())
	return cmd
}

func newValidateCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <conf-dir>",
		Short: "Check that <conf-dir>/scenario.json can be solved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scenario, err := batch.LoadScenario(args[0])
			if err != nil {
				return err
			}
			svc := teams.NewService(nil, nil, opts.logger(cmd.ErrOrStderr()), nil)
			if err := svc.Validate(scenario); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is valid: %d players, %d teams\n",
				batch.ScenarioPath(args[0]), len(scenario.Players), scenario.NTeams)
			return nil
		},
	}
}
