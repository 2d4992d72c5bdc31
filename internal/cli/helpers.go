package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/alexander-akhmetov/devcyclesim/internal/config"
	"github.com/alexander-akhmetov/devcyclesim/internal/domain"
	"github.com/alexander-akhmetov/devcyclesim/internal/engine"
	"github.com/alexander-akhmetov/devcyclesim/internal/scenario"
)

var errStorySource = errors.New("use either --stories-file or --generate-stories, not both")

// scenarioFlags are the flags shared by every command that runs a simulation.
type scenarioFlags struct {
	days        int
	plans       []string
	plansFile   string
	storiesFile string
	generate    int
	features    int
	seed        uint64
	capacities  string
}

func (f *scenarioFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.IntVarP(&f.days, "duration", "d", 0, "Simulation duration in days (default from config: 14)")
	fs.StringArrayVarP(&f.plans, "resource-plan", "r", nil, "Resource plan \""+scenario.PlanFlagFormat+"\" (repeatable)")
	fs.StringVar(&f.plansFile, "resource-plans-file", "", "JSON or YAML file with resource plans")
	fs.StringVarP(&f.storiesFile, "stories-file", "s", "", "JSON or YAML file with user stories")
	fs.IntVarP(&f.generate, "generate-stories", "g", 0, "Generate N random stories (per feature with --features)")
	fs.IntVar(&f.features, "features", 0, "Group generated stories into N features")
	fs.Uint64Var(&f.seed, "seed", 0, "Random seed for generated stories and missing task counts")
	fs.StringVar(&f.capacities, "capacities", "", "Default capacities \"spec,dev,test,rollout\"")
}

// configFlags converts the scenario flags to config overrides.
func (f *scenarioFlags) configFlags(cmd *cobra.Command) config.Flags {
	return config.Flags{
		Days:       f.days,
		Seed:       f.seed,
		SeedSet:    cmd.Flags().Changed("seed"),
		Capacities: f.capacities,
	}
}

// loadConfig loads the layered config and applies CLI overrides.
func loadConfig(flags config.Flags) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.ApplyCLIFlags(flags); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildSimulation resolves capacities, plans and stories.
func buildSimulation(cfg *config.Config, f scenarioFlags) (Simulation, error) {
	caps, err := cfg.EngineCapacities()
	if err != nil {
		return Simulation{}, err
	}
	sim := Simulation{Days: cfg.SimulationDays, Capacities: caps}

	if f.plansFile != "" {
		plans, err := scenario.LoadPlans(f.plansFile)
		if err != nil {
			return Simulation{}, fmt.Errorf("load resource plans: %w", err)
		}
		sim.Plans = append(sim.Plans, plans...)
	}
	for _, s := range f.plans {
		plan, err := scenario.ParsePlanFlag(s)
		if err != nil {
			return Simulation{}, err
		}
		sim.Plans = append(sim.Plans, plan)
	}

	sim.Stories, err = loadStories(cfg, f)
	if err != nil {
		return Simulation{}, err
	}
	return sim, nil
}

func loadStories(cfg *config.Config, f scenarioFlags) ([]*domain.UserStory, error) {
	if f.storiesFile != "" && f.generate > 0 {
		return nil, errStorySource
	}
	gen, err := cfg.NewGenerator()
	if err != nil {
		return nil, err
	}

	switch {
	case f.storiesFile != "":
		stories, err := scenario.LoadStories(f.storiesFile, gen)
		if err != nil {
			return nil, fmt.Errorf("load stories: %w", err)
		}
		return stories, nil
	case f.generate > 0 && f.features > 0:
		return gen.FeatureStories(f.features, f.generate)
	case f.generate > 0:
		return gen.Stories(f.generate)
	}
	return nil, nil
}

// describeScenario is the one-line story source written to the run log.
func describeScenario(cfg *config.Config, f scenarioFlags) string {
	switch {
	case f.storiesFile != "":
		return "stories file " + f.storiesFile
	case f.generate > 0 && f.features > 0:
		return fmt.Sprintf("%d features x %d generated stories (seed %d)", f.features, f.generate, cfg.Seed)
	case f.generate > 0:
		return fmt.Sprintf("%d generated stories (seed %d)", f.generate, cfg.Seed)
	}
	return "no stories"
}

func planStrings(plans []engine.ResourcePlan) []string {
	out := make([]string, len(plans))
	for i, p := range plans {
		out[i] = p.String()
	}
	return out
}

// terminalInfo reports whether w is a terminal and its width.
func terminalInfo(w io.Writer) (bool, int) {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return false, 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return true, 0
	}
	return true, width
}

func formatElapsed(d time.Duration) string {
	total := int(d.Seconds())
	if total < 60 {
		return fmt.Sprintf("%ds", total)
	}
	m := total / 60
	s := total % 60
	if m < 60 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	h := m / 60
	m %= 60
	return fmt.Sprintf("%dh %dm", h, m)
}
