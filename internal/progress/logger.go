// Package progress writes a persistent, timestamped log for every simulation
// run. Each run gets its own file under the logs directory with the run
// header, one section per simulated day, errors and an exit summary.
package progress

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alexander-akhmetov/devcyclesim/internal/dirs"
	"github.com/alexander-akhmetov/devcyclesim/internal/event"
)

const timestampFormat = "2006-01-02 15:04:05"

// Logger writes timestamped progress to a log file and an optional io.Writer.
type Logger struct {
	file      *os.File
	writer    io.Writer
	startTime time.Time
	runID     string
	logPath   string
	days      int
}

// Config holds logger configuration.
type Config struct {
	LogsDir  string    // default: dirs.LogsDir()
	RunID    string    // default: a random UUID
	Scenario string    // short description of the stories source
	Days     int       // configured simulation length
	Plans    []string  // resource plans in flag syntax
	Writer   io.Writer // optional mirror for live output
}

// NewLogger creates <timestamp>-<run-id>.log in the logs directory and writes
// the run header.
func NewLogger(cfg Config) (*Logger, error) {
	logsDir := cfg.LogsDir
	if logsDir == "" {
		logsDir = dirs.LogsDir()
	}
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create logs dir: %w", err)
	}

	runID := cfg.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	now := time.Now()
	logPath := filepath.Join(logsDir, fmt.Sprintf("%s-%s.log", now.Format("20060102-150405"), sanitizeFilename(runID)))
	f, err := os.Create(logPath)
	if err != nil {
		return nil, fmt.Errorf("create log file: %w", err)
	}

	l := &Logger{
		file:      f,
		writer:    cfg.Writer,
		startTime: now,
		runID:     runID,
		logPath:   logPath,
		days:      cfg.Days,
	}

	l.writef("# devcyclesim run log\n")
	l.writef("Run: %s\n", runID)
	if cfg.Scenario != "" {
		l.writef("Scenario: %s\n", cfg.Scenario)
	}
	l.writef("Days: %d\n", cfg.Days)
	if len(cfg.Plans) > 0 {
		l.writef("Resource plans: %s\n", strings.Join(cfg.Plans, " "))
	}
	l.writef("Started: %s\n", now.Format(timestampFormat))
	l.writef("%s\n", strings.Repeat("-", 60))

	return l, nil
}

// Path returns the log file path.
func (l *Logger) Path() string {
	return l.logPath
}

// RunID returns the run identifier.
func (l *Logger) RunID() string {
	return l.runID
}

// Printf writes a timestamped message to the log.
func (l *Logger) Printf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	l.writef("[%s] %s\n", time.Now().Format(timestampFormat), msg)
}

// Section writes a section header to the log.
func (l *Logger) Section(title string) {
	l.writef("\n--- %s ---\n", title)
}

// Day opens the section for a simulated day.
func (l *Logger) Day(day int) {
	if l.days > 0 {
		l.Section(fmt.Sprintf("Day %d/%d", day, l.days))
		return
	}
	l.Section(fmt.Sprintf("Day %d", day))
}

// Event records one engine event.
func (l *Logger) Event(e event.Event) {
	if e.Kind == event.KindDayStarted {
		l.Day(e.Day)
		return
	}
	l.Printf("%s: %s", e.Kind, e.Text)
}

// Handler returns an event handler that records into the log.
func (l *Logger) Handler() event.Handler {
	return l.Event
}

// Errorf logs an error message.
func (l *Logger) Errorf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	l.writef("[%s] ERROR: %s\n", time.Now().Format(timestampFormat), msg)
}

// Summary holds the figures written by Exit.
type Summary struct {
	Reason   string
	Message  string
	Days     int
	Stories  int
	Finished int
}

// Exit logs the outcome of the run and its duration.
func (l *Logger) Exit(s Summary) {
	l.writef("\n%s\n", strings.Repeat("-", 60))
	l.writef("Exit reason: %s\n", s.Reason)
	if s.Message != "" {
		l.writef("Exit message: %s\n", s.Message)
	}
	l.writef("Days simulated: %d\n", s.Days)
	l.writef("Stories finished: %d/%d\n", s.Finished, s.Stories)
	l.writef("Duration: %s\n", l.elapsed())
	l.writef("Completed: %s\n", time.Now().Format(timestampFormat))
}

// Close closes the log file.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	if err != nil {
		return fmt.Errorf("close log file: %w", err)
	}
	return nil
}

func (l *Logger) writef(format string, args ...any) {
	if l.file != nil {
		fmt.Fprintf(l.file, format, args...)
	}
	if l.writer != nil {
		fmt.Fprintf(l.writer, format, args...)
	}
}

func (l *Logger) elapsed() string {
	d := time.Since(l.startTime).Round(time.Millisecond)
	if d < time.Second {
		return d.String()
	}
	return d.Round(time.Second).String()
}

// sanitizeFilename converts a run ID to a safe filename component.
func sanitizeFilename(s string) string {
	s = strings.NewReplacer("/", "-", "\\", "-", ":", "-", " ", "-").Replace(s)

	var clean strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '-' || r == '_' || r == '.' {
			clean.WriteRune(r)
		}
	}
	result := clean.String()

	for strings.Contains(result, "--") {
		result = strings.ReplaceAll(result, "--", "-")
	}
	result = strings.Trim(result, "-")

	if len(result) > 100 {
		result = strings.TrimRight(result[:100], "-")
	}
	if result == "" {
		return "unnamed"
	}
	return result
}
