package framer

import (
	"time"

	"github.com/google/uuid"

	"github.com/scramblr/sdrtrunk-decode-decrypt/internal/duid"
	"github.com/scramblr/sdrtrunk-decode-decrypt/internal/symbol"
)

// idleCounterSyncDeduction is 48 (sync) + 64 (NID) + 2 (status) + 2 (the
// initial dibit already elapsed before sync recognition), subtracted from
// the idle dibit counter whenever a sync event arrives.
const idleCounterSyncDeduction = 116

// dibitsPerSecond is 4800 dibits at 4800 baud: one second of idle channel
// with no sync triggers a SyncLoss.
const dibitsPerSecond = 4800

// Framer orchestrates sync events and assembler lifecycle: it implements
// symbol.MessageListener, so a symbol.Processor can drive it directly.
type Framer struct {
	StreamID uuid.UUID

	sink Sink
	now  func() time.Time

	assembler        *Assembler
	previousDUID     duid.DUID
	idleDibitCounter int

	logger interface {
		Debugf(format string, args ...interface{})
	}
}

var _ symbol.MessageListener = (*Framer)(nil)

// NewFramer constructs a Framer delivering to sink, identified by a fresh
// StreamID.
func NewFramer(sink Sink) *Framer {
	return &Framer{
		StreamID:     uuid.New(),
		sink:         sink,
		now:          time.Now,
		previousDUID: duid.Unknown,
	}
}

// SetLogger installs a rate-limited debug logger for capacity-violation
// warnings forwarded from the active assembler.
func (f *Framer) SetLogger(logger interface {
	Debugf(format string, args ...interface{})
}) {
	f.logger = logger
	if f.assembler != nil {
		f.wireCapacityHook(f.assembler)
	}
}

// Receive forwards one dibit to the active assembler, or counts idle dibits
// toward the next SyncLoss when no message is in progress.
func (f *Framer) Receive(d symbol.Dibit) {
	if f.assembler != nil {
		f.assembler.Receive(d)
		if f.assembler.IsComplete() {
			a := f.assembler
			f.assembler = nil
			f.complete(a)
		}
		return
	}

	f.idleDibitCounter++
	if f.idleDibitCounter >= dibitsPerSecond {
		f.idleDibitCounter -= dibitsPerSecond
		f.emitSyncLoss(dibitsPerSecond * 2)
	}
}

// SyncDetected starts a new assembler for a sync event, finishing off
// whatever assembler was still active (the previous message ran longer
// than it should have and must be force-completed).
func (f *Framer) SyncDetected(nac int, id duid.DUID, validNID bool) {
	f.idleDibitCounter -= idleCounterSyncDeduction
	if f.idleDibitCounter > 0 {
		f.emitSyncLoss(f.idleDibitCounter * 2)
	}
	f.idleDibitCounter = 0

	if f.assembler != nil {
		stale := f.assembler
		f.assembler = nil
		stale.ForceCompletion(f.previousDUID)
		f.previousDUID = stale.DUID
		f.deliver(stale)
	}

	resolved := id
	if !resolved.IsValidPrimary() {
		resolved = duid.Placeholder
	}
	if resolved == duid.TSBK1 {
		resolved = duid.TSBK3
	}

	a := NewAssembler(nac, resolved, validNID)
	f.wireCapacityHook(a)
	f.assembler = a
}

func (f *Framer) wireCapacityHook(a *Assembler) {
	logger := f.logger
	a.SetCapacityExceededHook(func() {
		if logger != nil {
			logger.Debugf("assembler full: nac=%d duid=%s bits_processed=%d", a.NAC, a.DUID, a.BitCount())
		}
	})
}

// complete finishes an assembler that reached IsComplete() on its own: a
// PLACEHOLDER assembler gets one last length-based guess via
// ForceCompletion, and a provisional TSBK3 gets downgraded if the observed
// length shows it was really a TSBK1/TSBK2.
func (f *Framer) complete(a *Assembler) {
	switch a.DUID {
	case duid.Placeholder:
		a.ForceCompletion(f.previousDUID)
	case duid.TSBK3:
		a.DowngradeTSBK3IfNeeded()
	}

	f.previousDUID = a.DUID
	f.deliver(a)
}

func (f *Framer) deliver(a *Assembler) {
	if f.sink == nil {
		return
	}
	f.sink.DeliverPayload(FramedPayload{
		StreamID:  f.StreamID,
		NAC:       a.NAC,
		DUID:      a.DUID,
		ValidNID:  a.ValidNID,
		Bits:      a.Bits(),
		BitCount:  a.BitCount(),
		Timestamp: f.now(),
	})
}

func (f *Framer) emitSyncLoss(bitCount int) {
	if f.sink == nil {
		return
	}
	f.sink.DeliverSyncLoss(SyncLoss{
		StreamID:  f.StreamID,
		Timestamp: f.now(),
		BitCount:  bitCount,
		Protocol:  ProtocolAPCO25,
	})
}
