package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/alexander-akhmetov/devcyclesim/internal/config"
	"github.com/alexander-akhmetov/devcyclesim/internal/report"
	"github.com/alexander-akhmetov/devcyclesim/internal/stats"
	"github.com/alexander-akhmetov/devcyclesim/internal/watch"
)

var errNothingToWatch = errors.New("watch needs --stories-file or --resource-plans-file")

type watchOptions struct {
	scenarioFlags
	format   string
	debounce time.Duration
}

func newWatchCmd() *cobra.Command {
	opts := &watchOptions{}
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-run the simulation whenever its input files change",
		Long: `Run a simulation, print the report, then watch the stories file, the
resource plans file and the local config file. Every change re-runs the
simulation and prints the new report followed by how the final day moved
compared to the previous run.

Examples:
  devcyclesim watch -s stories.yaml --resource-plans-file plans.yaml -t markdown`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd)
		},
	}
	opts.scenarioFlags.register(cmd)
	fs := cmd.Flags()
	fs.StringVarP(&opts.format, "output-format", "t", "", "Output format: text, json, csv or markdown (default from config: text)")
	fs.DurationVar(&opts.debounce, "debounce", watch.DefaultDebounce, "Wait this long for more changes before re-running")
	return cmd
}

func (o *watchOptions) run(cmd *cobra.Command) error {
	if o.storiesFile == "" && o.plansFile == "" {
		return errNothingToWatch
	}
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()

	r := &rerunner{opts: o, cmd: cmd, out: out}
	cfg, err := r.run()
	if err != nil {
		return err
	}

	files := o.watchedFiles(cfg)
	w, err := watch.New(files, o.debounce)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	fmt.Fprintf(errOut, "\nWatching %s (Ctrl+C to stop)\n", strings.Join(files, ", "))
	return w.Run(ctx, func(paths []string) {
		fmt.Fprintf(errOut, "\nChanged: %s, re-running\n\n", strings.Join(paths, ", "))
		if _, err := r.run(); err != nil {
			fmt.Fprintf(errOut, "Error: %v\n", err)
		}
	})
}

func (o *watchOptions) watchedFiles(cfg *config.Config) []string {
	var files []string
	if o.storiesFile != "" {
		files = append(files, o.storiesFile)
	}
	if o.plansFile != "" {
		files = append(files, o.plansFile)
	}
	if dir := cfg.LocalDir(); dir != "" {
		files = append(files, filepath.Join(dir, "config.yaml"))
	}
	return files
}

// rerunner reloads config and inputs on every run and remembers the
// previous history for the comparison line.
type rerunner struct {
	opts *watchOptions
	cmd  *cobra.Command
	out  io.Writer
	prev []stats.ProcessStatistic
}

func (r *rerunner) run() (*config.Config, error) {
	flags := r.opts.configFlags(r.cmd)
	flags.Format = r.opts.format
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, err
	}
	format, err := report.ParseFormat(cfg.OutputFormat)
	if err != nil {
		return nil, err
	}
	sim, err := buildSimulation(cfg, r.opts.scenarioFlags)
	if err != nil {
		return nil, err
	}
	history, err := sim.History()
	if err != nil {
		return nil, fmt.Errorf("simulation failed: %w", err)
	}

	if err := writeReport(r.out, "", cfg, format, history); err != nil {
		return nil, err
	}
	if r.prev != nil {
		if delta, err := report.CompareFinal(r.prev, history); err == nil {
			fmt.Fprintf(r.out, "\nChange vs previous run: %s\n", delta)
		}
	}
	r.prev = history
	return cfg, nil
}
