package timing

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLog(t *testing.T) {
	var buf bytes.Buffer
	Enable(&buf)
	t.Cleanup(Disable)

	Log("config loaded")
	Log("simulation built")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 2)
	assert.Regexp(t, `^\[TIMING\] config loaded: \+\d+ms \(total: \d+ms\)$`, lines[0])
	assert.Contains(t, lines[1], "simulation built")
}

func TestLog_Disabled(t *testing.T) {
	var buf bytes.Buffer
	Enable(&buf)
	Disable()

	Log("ignored")
	assert.Empty(t, buf.String())
}
