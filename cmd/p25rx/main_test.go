package main

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scramblr/sdrtrunk-decode-decrypt/internal/duid"
	"github.com/scramblr/sdrtrunk-decode-decrypt/internal/symbol"
)

// recordingSamplesListener counts Receive calls (one per dibit the
// processor emits), which is enough to prove run() actually drove the
// processor instead of silently discarding input.
type recordingSamplesListener func()

func (f recordingSamplesListener) Receive(symbol.Dibit) { f() }
func (f recordingSamplesListener) SyncDetected(nac int, id duid.DUID, validNID bool) {}

func TestRun_FeedsAllSamplesFromReader(t *testing.T) {
	var buf bytes.Buffer
	values := []float32{0.1, -0.2, 0.3, -0.4, 0.5}
	for _, v := range values {
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, v))
	}

	var received int
	listener := recordingSamplesListener(func() { received++ })

	proc, err := symbol.NewProcessor(48000, listener)
	require.NoError(t, err)

	require.NoError(t, run(proc, &buf))
	require.Greater(t, received, 0)
}
