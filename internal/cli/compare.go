package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/alexander-akhmetov/devcyclesim/internal/report"
	"github.com/alexander-akhmetov/devcyclesim/internal/scenario"
	"github.com/alexander-akhmetov/devcyclesim/internal/stats"
)

type compareOptions struct {
	scenarioFlags
	candidatePlans      []string
	candidatePlansFile  string
	candidateCapacities string
}

func newCompareCmd() *cobra.Command {
	opts := &compareOptions{}
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare a baseline and a candidate resource allocation",
		Long: `Run the same stories twice, once with the baseline resource plans
(--resource-plan, --resource-plans-file, --capacities) and once with the
candidate ones (--candidate-plan, --candidate-plans-file,
--candidate-capacities), and print a unified diff of the two text reports
followed by the change in finished stories, backlog and completed tasks.

Examples:
  devcyclesim compare -s stories.json -r "1-10:2,3,3,1" --candidate-plan "1-10:1,4,3,1"
  devcyclesim compare -g 20 --seed 3 --candidate-capacities 2,4,4,1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd)
		},
	}

	opts.scenarioFlags.register(cmd)
	fs := cmd.Flags()
	fs.StringArrayVar(&opts.candidatePlans, "candidate-plan", nil, "Candidate resource plan \""+scenario.PlanFlagFormat+"\" (repeatable)")
	fs.StringVar(&opts.candidatePlansFile, "candidate-plans-file", "", "JSON or YAML file with candidate resource plans")
	fs.StringVar(&opts.candidateCapacities, "candidate-capacities", "", "Candidate default capacities \"spec,dev,test,rollout\"")
	return cmd
}

func (o *compareOptions) run(cmd *cobra.Command) error {
	cfg, err := loadConfig(o.configFlags(cmd))
	if err != nil {
		return err
	}
	baseline, err := buildSimulation(cfg, o.scenarioFlags)
	if err != nil {
		return err
	}
	candidate, err := o.candidate(baseline)
	if err != nil {
		return err
	}

	baseHistory, candHistory, err := runPair(baseline, candidate)
	if err != nil {
		return err
	}

	diff, err := report.Compare("baseline", baseHistory, "candidate", candHistory)
	if err != nil {
		return err
	}
	delta, err := report.CompareFinal(baseHistory, candHistory)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	isTTY, width := terminalInfo(out)
	w := NewWriter(out, isTTY, width)
	if diff == "" {
		fmt.Fprintln(out, "No differences.")
	} else {
		w.WriteDiff(diff)
	}
	fmt.Fprintf(out, "\nCandidate vs baseline: %s\n", delta)
	return nil
}

// candidate derives the candidate simulation from the baseline: same days
// and stories, its own capacities and plans. Without any candidate plan
// flag the baseline plans are kept.
func (o *compareOptions) candidate(baseline Simulation) (Simulation, error) {
	sim := baseline
	if o.candidateCapacities != "" {
		caps, err := scenario.ParseCapacities(o.candidateCapacities)
		if err != nil {
			return Simulation{}, fmt.Errorf("--candidate-capacities: %w", err)
		}
		sim.Capacities = caps
	}

	if o.candidatePlansFile == "" && len(o.candidatePlans) == 0 {
		return sim, nil
	}
	sim.Plans = nil
	if o.candidatePlansFile != "" {
		plans, err := scenario.LoadPlans(o.candidatePlansFile)
		if err != nil {
			return Simulation{}, fmt.Errorf("load candidate resource plans: %w", err)
		}
		sim.Plans = append(sim.Plans, plans...)
	}
	for _, s := range o.candidatePlans {
		plan, err := scenario.ParsePlanFlag(s)
		if err != nil {
			return Simulation{}, err
		}
		sim.Plans = append(sim.Plans, plan)
	}
	return sim, nil
}

// runPair runs both simulations concurrently. Each builds its own process
// from cloned stories.
func runPair(baseline, candidate Simulation) ([]stats.ProcessStatistic, []stats.ProcessStatistic, error) {
	var baseHistory, candHistory []stats.ProcessStatistic
	var g errgroup.Group
	g.Go(func() error {
		var err error
		baseHistory, err = baseline.History()
		if err != nil {
			return fmt.Errorf("baseline: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		candHistory, err = candidate.History()
		if err != nil {
			return fmt.Errorf("candidate: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return baseHistory, candHistory, nil
}
