package symbol

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/scramblr/sdrtrunk-decode-decrypt/internal/duid"
)

type recordingListener struct {
	dibits []Dibit
	syncs  []syncEvent
}

type syncEvent struct {
	nac      int
	duid     duid.DUID
	validNID bool
}

func (l *recordingListener) Receive(d Dibit) {
	l.dibits = append(l.dibits, d)
}

func (l *recordingListener) SyncDetected(nac int, id duid.DUID, validNID bool) {
	l.syncs = append(l.syncs, syncEvent{nac: nac, duid: id, validNID: validNID})
}

type bitErrorRecordingListener struct {
	recordingListener
	bitErrorReports []int
}

func (l *bitErrorRecordingListener) NIDBitErrors(count int) {
	l.bitErrorReports = append(l.bitErrorReports, count)
}

func TestProcessNID_ReportsBitErrorsBeforeSyncDetected(t *testing.T) {
	listener := &bitErrorRecordingListener{}
	p, err := NewProcessor(48000, listener)
	require.NoError(t, err)

	// An all-zero NID is a valid BCH(63,16,23) codeword (zero syndromes):
	// DUID field 0 resolves to HDU, NAC 0, with zero corrected bit errors.
	for i := 0; i < nidDibitDelayLength; i++ {
		p.delayLine.GetAndPut(D00Plus1)
	}

	p.processNID()

	require.Len(t, listener.bitErrorReports, 1)
	assert.Equal(t, 0, listener.bitErrorReports[0])
	require.Len(t, listener.syncs, 1)
	assert.Equal(t, duid.HDU, listener.syncs[0].duid)
	assert.True(t, listener.syncs[0].validNID)
}

func TestToDibit_QuadrantBoundaries(t *testing.T) {
	assert.Equal(t, D10Minus1, ToDibit(0))
	assert.Equal(t, D00Plus1, ToDibit(math.Pi/2))
	assert.Equal(t, D01Plus3, ToDibit(math.Pi/2+0.0001))
	assert.Equal(t, D10Minus1, ToDibit(-math.Pi/2))
	assert.Equal(t, D11Minus3, ToDibit(-math.Pi/2-0.0001))
}

func TestSetSamplesPerSymbol_RejectsLowRate(t *testing.T) {
	p := &Processor{delayLine: NewDibitDelayLine(), byteAssembler: NewByteAssembler(256)}
	err := p.SetSamplesPerSymbol(9600)
	assert.Error(t, err)
	err = p.SetSamplesPerSymbol(4800)
	assert.Error(t, err)
}

func TestSamplePointInvariant_HoldsAcrossRandomStreams(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		listener := &recordingListener{}
		p, err := NewProcessor(48000, listener)
		require.NoError(rt, err)

		n := rapid.IntRange(1, 4000).Draw(rt, "n")
		samples := make([]float64, n)
		for i := range samples {
			samples[i] = rapid.Float64Range(-math.Pi, math.Pi).Draw(rt, "sample")
		}

		p.Receive(samples)

		assert.GreaterOrEqual(rt, p.samplePoint, 0.0)
		assert.Less(rt, p.samplePoint, 1.0)
	})
}

func TestInterpolate_WrapsAcrossDiscontinuity(t *testing.T) {
	// Straddling +pi/-pi: blending should go the short way, not through 0.
	v := interpolate(3.0, -3.0, 0.5)
	assert.InDelta(t, math.Pi, math.Abs(v), 0.2)
}

func TestDriftUpdate_ExactFormula(t *testing.T) {
	p, err := NewProcessor(48000, nil)
	require.NoError(t, err)

	p.syncLock = true
	p.symbolsSinceLastSync = 100
	before := p.observedSamplesPerSymbol

	// This does not call optimize(): it applies the documented drift formula
	// (adjustment * 0.2 / symbolsSinceLastSync) directly to the processor's
	// field and checks the resulting value.
	adjustment := 0.2
	k := float64(p.symbolsSinceLastSync)
	expectedDelta := adjustment * 0.2 / k

	p.observedSamplesPerSymbol += adjustment * 0.2 / k
	assert.InDelta(t, before+expectedDelta, p.observedSamplesPerSymbol, 1e-12)
}
