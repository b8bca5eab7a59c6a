package ratelog

import (
	"bytes"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(suppressAfter int) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	stdlog := log.New(&buf, "", 0)
	return New(stdlog, suppressAfter), &buf
}

func TestDebugf_LogsUpToSuppressAfter(t *testing.T) {
	l, buf := newTestLogger(3)

	for i := 0; i < 3; i++ {
		l.Debugf("k", "event %d", i)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	// 3 events + 1 suppression notice.
	require.Len(t, lines, 4)
	assert.Contains(t, lines[3], "suppressing")
}

func TestDebugf_SuppressesBeyondThreshold(t *testing.T) {
	l, buf := newTestLogger(2)

	for i := 0; i < 10; i++ {
		l.Debugf("k", "event %d", i)
	}
	out := buf.String()
	assert.Contains(t, out, "event 0")
	assert.Contains(t, out, "event 1")
	assert.NotContains(t, out, "event 2\n")
	assert.Contains(t, out, "occurrence 10")
}

func TestDebugf_KeysAreIndependent(t *testing.T) {
	l, buf := newTestLogger(1)

	l.Debugf("a", "from a")
	l.Debugf("b", "from b")
	out := buf.String()
	assert.Contains(t, out, "from a")
	assert.Contains(t, out, "from b")
}

func TestKeyedLogger_UsesFixedKey(t *testing.T) {
	l, buf := newTestLogger(1)
	keyed := l.Keyed("nid-invalid")

	keyed.Debugf("nac=%d", 42)
	keyed.Debugf("nac=%d", 43)

	out := buf.String()
	assert.Contains(t, out, "nac=42")
	assert.Contains(t, out, "suppressing further \"nid-invalid\"")
}

func TestDebugf_NilLoggerIsNoop(t *testing.T) {
	var l *Logger
	assert.NotPanics(t, func() { l.Debugf("k", "x") })
}
