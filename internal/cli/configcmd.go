package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexander-akhmetov/devcyclesim/internal/config"
	"github.com/alexander-akhmetov/devcyclesim/internal/dirs"
	"github.com/alexander-akhmetov/devcyclesim/internal/domain"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage devcyclesim configuration",
		Long:  `View and manage devcyclesim configuration.`,
	}
	cmd.AddCommand(newConfigShowCmd(), newConfigInitCmd())
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show resolved configuration with source annotations",
		Long: `Show the fully resolved configuration with annotations indicating
where each value came from.

Configuration is loaded from multiple sources with the following precedence:
  1. Embedded defaults (built into binary)
  2. Global config (~/.config/devcyclesim/config.yaml)
  3. Environment (DEVCYCLESIM_DAYS, DEVCYCLESIM_SEED, DEVCYCLESIM_FORMAT,
     DEVCYCLESIM_LOGS_DIR, DEVCYCLESIM_CAPACITIES)
  4. Local config (.devcyclesim/config.yaml)
  5. CLI flags (highest precedence)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			printConfig(cmd, cfg)
			return nil
		},
	}
}

func newConfigInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write the default config to the global config directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir := dirs.ConfigDir()
			if err := config.InstallDefaults(dir); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Config installed in %s\n", dir)
			return nil
		},
	}
}

func printConfig(cmd *cobra.Command, cfg *config.Config) {
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "# devcyclesim configuration")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "## Sources (in order of precedence)")
	for _, src := range cfg.Sources() {
		fmt.Fprintf(out, "  - %s\n", src)
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "## Directories")
	fmt.Fprintf(out, "  Global config: %s\n", cfg.ConfigDir())
	if cfg.LocalDir() != "" {
		fmt.Fprintf(out, "  Local config:  %s\n", cfg.LocalDir())
	} else {
		fmt.Fprintf(out, "  Local config:  (none detected)\n")
	}
	fmt.Fprintf(out, "  Logs:          %s\n", cfg.ResolvedLogsDir())
	fmt.Fprintln(out)

	fmt.Fprintln(out, "## Simulation")
	fmt.Fprintf(out, "  simulation_days: %d\n", cfg.SimulationDays)
	fmt.Fprintf(out, "  seed:            %d\n", cfg.Seed)
	fmt.Fprintf(out, "  output_format:   %s\n", cfg.OutputFormat)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "## Capacities")
	caps, err := cfg.EngineCapacities()
	if err != nil {
		fmt.Fprintf(out, "  (error: %v)\n", err)
	} else {
		for _, phase := range domain.Phases {
			fmt.Fprintf(out, "  %-8s %d\n", phase.Key()+":", caps[phase])
		}
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "## Generator")
	ranges, err := cfg.GeneratorRanges()
	if err != nil {
		fmt.Fprintf(out, "  (error: %v)\n", err)
		return
	}
	for _, phase := range domain.Phases {
		r := ranges[phase]
		fmt.Fprintf(out, "  %-8s %d-%d\n", phase.Key()+":", r.Min, r.Max)
	}
}
