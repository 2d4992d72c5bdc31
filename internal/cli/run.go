package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/alexander-akhmetov/devcyclesim/internal/config"
	"github.com/alexander-akhmetov/devcyclesim/internal/metrics"
	"github.com/alexander-akhmetov/devcyclesim/internal/progress"
	"github.com/alexander-akhmetov/devcyclesim/internal/report"
	"github.com/alexander-akhmetov/devcyclesim/internal/stats"
	"github.com/alexander-akhmetov/devcyclesim/internal/timing"
)

type runOptions struct {
	scenarioFlags
	format      string
	outputFile  string
	verbose     bool
	metricsFile string
	noLog       bool
	logsDir     string
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a simulation and print the report",
		Long: `Run a simulation of the spec -> dev -> test -> rollout pipeline and
print the day-by-day statistics.

Stories come from a JSON or YAML file (--stories-file) or are generated
(--generate-stories). Capacities default to the config values and can be
changed for day windows with resource plans.

Examples:
  devcyclesim run -s stories.json -d 20
  devcyclesim run -g 10 --seed 7 -r "1-5:2,3,3,1" -r "6-10:1,1,3,1"
  devcyclesim run -s stories.yaml --resource-plans-file plans.yaml -t csv -o out.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd)
		},
	}

	opts.scenarioFlags.register(cmd)
	fs := cmd.Flags()
	fs.StringVarP(&opts.format, "output-format", "t", "", "Output format: text, json, csv or markdown (default from config: text)")
	fs.StringVarP(&opts.outputFile, "output-file", "o", "", "Write the report to a file instead of stdout")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "Print engine events while simulating")
	fs.StringVar(&opts.metricsFile, "metrics-file", "", "Write Prometheus metrics in text format to this file")
	fs.BoolVar(&opts.noLog, "no-log", false, "Do not write a run log file")
	fs.StringVar(&opts.logsDir, "logs-dir", "", "Directory for run log files")
	return cmd
}

func (o *runOptions) run(cmd *cobra.Command) error {
	flags := o.configFlags(cmd)
	flags.Format = o.format
	flags.LogsDir = o.logsDir

	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	format, err := report.ParseFormat(cfg.OutputFormat)
	if err != nil {
		return err
	}
	timing.Log("config loaded")
	sim, err := buildSimulation(cfg, o.scenarioFlags)
	if err != nil {
		return err
	}
	timing.Log("scenario loaded")

	stdout := cmd.OutOrStdout()
	if o.verbose {
		fmt.Fprintf(stdout, "Starting simulation for %d days\n", sim.Days)
	}

	runCfg := RunConfig{Out: cmd.ErrOrStderr(), Verbose: o.verbose}
	runCfg.IsTTY, runCfg.TermWidth = terminalInfo(runCfg.Out)

	if !o.noLog {
		logger, err := progress.NewLogger(progress.Config{
			LogsDir:  cfg.ResolvedLogsDir(),
			Scenario: describeScenario(cfg, o.scenarioFlags),
			Days:     sim.Days,
			Plans:    planStrings(sim.Plans),
		})
		if err != nil {
			return err
		}
		defer logger.Close()
		runCfg.Logger = logger
	}

	reg, m := metrics.NewRegistry()
	if o.metricsFile != "" {
		runCfg.Metrics = m
	}

	result, err := Run(cmd.Context(), sim, runCfg)
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}
	timing.Log("simulation finished")

	if o.metricsFile != "" {
		if err := metrics.WriteTextfile(o.metricsFile, reg); err != nil {
			return err
		}
	}

	if err := writeReport(stdout, o.outputFile, cfg, format, result.Statistics); err != nil {
		return err
	}
	timing.Log("report written")

	if o.verbose {
		fmt.Fprintln(stdout, "\nSimulation completed!")
	}
	return nil
}

// writeReport renders history to outputFile, or to stdout when it is empty.
// Terminal styling is only applied to stdout.
func writeReport(stdout io.Writer, outputFile string, cfg *config.Config, format report.Format, history []stats.ProcessStatistic) error {
	opts := report.Options{Format: format, Days: cfg.SimulationDays, SummaryTemplate: summaryTemplate(cfg)}

	if outputFile == "" {
		opts.Styled, opts.Width = terminalInfo(stdout)
		return report.Render(stdout, history, opts)
	}

	var buf bytes.Buffer
	if err := report.Render(&buf, history, opts); err != nil {
		return err
	}
	if err := os.WriteFile(outputFile, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("could not write to output file: %s: %w", outputFile, err)
	}
	return nil
}

func summaryTemplate(cfg *config.Config) string {
	if cfg.Templates == nil {
		return ""
	}
	return cfg.Templates.Summary
}
