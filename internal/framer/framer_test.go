package framer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scramblr/sdrtrunk-decode-decrypt/internal/duid"
	"github.com/scramblr/sdrtrunk-decode-decrypt/internal/symbol"
)

type recordingSink struct {
	payloads  []FramedPayload
	syncLosts []SyncLoss
}

func (s *recordingSink) DeliverPayload(p FramedPayload)   { s.payloads = append(s.payloads, p) }
func (s *recordingSink) DeliverSyncLoss(l SyncLoss)        { s.syncLosts = append(s.syncLosts, l) }

func feedDibits(f *Framer, n int) {
	for i := 0; i < n; i++ {
		f.Receive(symbol.D00Plus1)
	}
}

func TestSyncLoss_EmittedEvery4800Dibits(t *testing.T) {
	sink := &recordingSink{}
	f := NewFramer(sink)

	feedDibits(f, 9600)

	require.Len(t, sink.syncLosts, 2)
	assert.Equal(t, 9600, sink.syncLosts[0].BitCount)
	assert.Equal(t, 9600, sink.syncLosts[1].BitCount)
	assert.Equal(t, ProtocolAPCO25, sink.syncLosts[0].Protocol)
}

func TestCleanHDU_EmitsOneFramedPayload(t *testing.T) {
	sink := &recordingSink{}
	f := NewFramer(sink)

	f.SyncDetected(0x123, duid.HDU, true)
	feedDibits(f, 400) // > ceil(678/2) dibits, accounting for skipped status dibits

	require.Len(t, sink.payloads, 1)
	got := sink.payloads[0]
	assert.Equal(t, 0x123, got.NAC)
	assert.Equal(t, duid.HDU, got.DUID)
	assert.True(t, got.ValidNID)
	assert.GreaterOrEqual(t, got.BitCount, duid.HDU.PayloadLength())
}

func TestLDU1ThenLDU2_NoSyncLossBetween(t *testing.T) {
	sink := &recordingSink{}
	f := NewFramer(sink)

	f.SyncDetected(0x1, duid.LDU1, true)
	feedDibits(f, 800)
	f.SyncDetected(0x1, duid.LDU2, true)
	feedDibits(f, 800)
	f.SyncDetected(0x1, duid.LDU1, true)

	require.Len(t, sink.payloads, 2)
	assert.Equal(t, duid.LDU1, sink.payloads[0].DUID)
	assert.Equal(t, duid.LDU2, sink.payloads[1].DUID)
	assert.Empty(t, sink.syncLosts)
}

func TestForceCompletion_BoundaryBitCounts(t *testing.T) {
	cases := []struct {
		pointer  int
		previous duid.DUID
		want     duid.DUID
	}{
		{144, duid.Unknown, duid.TDU},
		{288, duid.Unknown, duid.TDU},
		{360, duid.Unknown, duid.TSBK1},
		{434, duid.Unknown, duid.TDULC},
		{576, duid.Unknown, duid.TSBK2},
		{720, duid.Unknown, duid.TSBK3},
		{792, duid.Unknown, duid.HDU},
		{1728, duid.LDU1, duid.LDU2},
		{1728, duid.HDU, duid.LDU1},
	}

	for _, c := range cases {
		a := NewAssembler(1, duid.Placeholder, false)
		a.bitsProcessedCount = c.pointer
		a.ForceCompletion(c.previous)
		assert.Equalf(t, c.want, a.DUID, "pointer=%d previous=%s", c.pointer, c.previous)
	}
}

func TestTSBK3Downgrade(t *testing.T) {
	a := NewAssembler(1, duid.TSBK3, true)
	a.bitsProcessedCount = 200
	a.DowngradeTSBK3IfNeeded()
	assert.Equal(t, duid.TSBK1, a.DUID)

	a2 := NewAssembler(1, duid.TSBK3, true)
	a2.bitsProcessedCount = 400
	a2.DowngradeTSBK3IfNeeded()
	assert.Equal(t, duid.TSBK2, a2.DUID)

	a3 := NewAssembler(1, duid.TSBK3, true)
	a3.bitsProcessedCount = 700
	a3.DowngradeTSBK3IfNeeded()
	assert.Equal(t, duid.TSBK3, a3.DUID)
}

func TestSyncDetected_TSBK1UpgradesToTSBK3(t *testing.T) {
	sink := &recordingSink{}
	f := NewFramer(sink)
	f.SyncDetected(0x1, duid.TSBK1, true)
	require.NotNil(t, f.assembler)
	assert.Equal(t, duid.TSBK3, f.assembler.DUID)
}

func TestCorruptedNIDCorrectLength_ResolvesViaForceCompletion(t *testing.T) {
	sink := &recordingSink{}
	f := NewFramer(sink)

	// A clean LDU1 first, completing naturally, so previousDUID == LDU1.
	f.SyncDetected(0x1, duid.LDU1, true)
	feedDibits(f, 784)
	require.Len(t, sink.payloads, 1)

	// The next message's NID is uncorrectable: the assembler is PLACEHOLDER
	// (capacity 1800) and 800 dibits (1600 bits) isn't enough to complete
	// it naturally — it only resolves when the *following* sync forces it.
	f.SyncDetected(0x1, duid.Placeholder, false)
	feedDibits(f, 800)
	require.Len(t, sink.payloads, 1)

	f.SyncDetected(0x1, duid.LDU1, true)

	require.Len(t, sink.payloads, 2)
	assert.Equal(t, duid.LDU2, sink.payloads[1].DUID)
	assert.False(t, sink.payloads[1].ValidNID)
}
