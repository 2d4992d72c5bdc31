package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexander-akhmetov/devcyclesim/internal/tui"
)

func newViewCmd() *cobra.Command {
	opts := &scenarioFlags{}
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Step through a simulation day by day in the terminal",
		Long: `Run a simulation and open an interactive day stepper: the sidebar shows
the queues and capacity of every step, the main pane lists what happened
on the selected day.

Keys: ←/→ change day, home/end jump to the first/last day, ↑/↓ scroll,
s toggles the markdown summary, q quits.

Examples:
  devcyclesim view -s stories.json -r "3-6:1,1,3,1"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts.configFlags(cmd))
			if err != nil {
				return err
			}
			sim, err := buildSimulation(cfg, *opts)
			if err != nil {
				return err
			}

			rec := &tui.Recorder{}
			p, err := sim.Build(rec.Handler())
			if err != nil {
				return err
			}
			if err := p.Start(); err != nil {
				return fmt.Errorf("simulation failed: %w", err)
			}

			model := tui.NewModel(p.Statistics(), rec.Events(), tui.Options{
				Title:           describeScenario(cfg, *opts),
				Days:            sim.Days,
				SummaryTemplate: summaryTemplate(cfg),
			})
			return tui.Run(cmd.Context(), model)
		},
	}
	opts.register(cmd)
	return cmd
}
