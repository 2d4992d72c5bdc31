package progress

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/alexander-akhmetov/devcyclesim/internal/dirs"
)

// LogFile describes one run log on disk.
type LogFile struct {
	Path      string
	RunID     string
	Timestamp time.Time
}

// FindLogs lists run logs in logsDir, newest first. A non-empty filter keeps
// only runs whose ID contains it.
func FindLogs(logsDir, filter string) ([]LogFile, error) {
	if logsDir == "" {
		logsDir = dirs.LogsDir()
	}

	entries, err := os.ReadDir(logsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var logs []LogFile
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".log") {
			continue
		}
		lf := parseLogFilename(logsDir, entry.Name())
		if lf == nil {
			continue
		}
		if filter != "" && !strings.Contains(strings.ToLower(lf.RunID), strings.ToLower(filter)) {
			continue
		}
		logs = append(logs, *lf)
	}

	sort.Slice(logs, func(i, j int) bool {
		return logs[i].Timestamp.After(logs[j].Timestamp)
	})
	return logs, nil
}

// FindLatestLog returns the most recent run log matching filter, or nil.
func FindLatestLog(logsDir, filter string) (*LogFile, error) {
	logs, err := FindLogs(logsDir, filter)
	if err != nil || len(logs) == 0 {
		return nil, err
	}
	return &logs[0], nil
}

// parseLogFilename parses YYYYMMDD-HHMMSS-<run-id>.log.
func parseLogFilename(dir, name string) *LogFile {
	base := strings.TrimSuffix(name, ".log")
	if len(base) < 16 {
		return nil
	}

	t, err := time.ParseInLocation("20060102-150405", base[:15], time.Local)
	if err != nil {
		return nil
	}

	return &LogFile{
		Path:      filepath.Join(dir, name),
		RunID:     base[16:],
		Timestamp: t,
	}
}
