package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/alexander-akhmetov/devcyclesim/internal/config"
	"github.com/alexander-akhmetov/devcyclesim/internal/progress"
)

type logsOptions struct {
	list   bool
	recent int
}

func newLogsCmd() *cobra.Command {
	opts := &logsOptions{}
	cmd := &cobra.Command{
		Use:   "logs [run-id]",
		Short: "Show run logs",
		Long: `Show the log file of a previous run. Without a run id the most recent
log is printed. A run id argument matches any run whose id contains it.

Examples:
  devcyclesim logs            # Show the latest run log
  devcyclesim logs -l         # List recent run logs
  devcyclesim logs 3f2a       # Show the latest log whose run id contains 3f2a`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			filter := ""
			if len(args) == 1 {
				filter = args[0]
			}
			if opts.list {
				return listLogs(cmd.OutOrStdout(), cfg.ResolvedLogsDir(), filter, opts.recent, time.Now())
			}
			return showLog(cmd.OutOrStdout(), cfg.ResolvedLogsDir(), filter)
		},
	}
	cmd.Flags().BoolVarP(&opts.list, "list", "l", false, "List recent log files")
	cmd.Flags().IntVar(&opts.recent, "recent", 10, "Number of recent logs to list")
	return cmd
}

// listLogs lists recent log files, newest first.
func listLogs(out io.Writer, logsDir, filter string, recent int, now time.Time) error {
	logs, err := progress.FindLogs(logsDir, filter)
	if err != nil {
		return fmt.Errorf("failed to find logs: %w", err)
	}

	if len(logs) == 0 {
		fmt.Fprintln(out, "No log files found.")
		fmt.Fprintf(out, "Log directory: %s\n", logsDir)
		return nil
	}

	fmt.Fprintf(out, "Recent log files (showing %d):\n", min(recent, len(logs)))
	fmt.Fprintln(out, strings.Repeat("-", 60))

	for i, lf := range logs {
		if i >= recent {
			break
		}
		fmt.Fprintf(out, "  %s  %-36s  %s ago\n",
			lf.Timestamp.Format("2006-01-02 15:04:05"),
			lf.RunID,
			formatElapsed(now.Sub(lf.Timestamp)),
		)
		fmt.Fprintf(out, "    %s\n", lf.Path)
	}
	return nil
}

// showLog prints the most recent log file matching filter.
func showLog(out io.Writer, logsDir, filter string) error {
	lf, err := progress.FindLatestLog(logsDir, filter)
	if err != nil {
		return fmt.Errorf("failed to find log: %w", err)
	}
	if lf == nil {
		if filter != "" {
			fmt.Fprintf(out, "No logs found for run: %s\n", filter)
		} else {
			fmt.Fprintln(out, "No logs found.")
		}
		fmt.Fprintln(out, "Tip: Use 'devcyclesim logs -l' to list all logs")
		return nil
	}

	fmt.Fprintf(out, "Log for run %s (%s):\n", lf.RunID, lf.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Fprintln(out, strings.Repeat("-", 60))

	data, err := os.ReadFile(lf.Path)
	if err != nil {
		return fmt.Errorf("failed to read log: %w", err)
	}
	_, err = out.Write(data)
	return err
}
