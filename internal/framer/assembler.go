// Package framer glues sync/NID events from the symbol processor to the
// lifecycle of one in-progress message at a time: an Assembler accumulates
// payload bits for a single DUID, and a Framer decides when to start, force,
// and finish one.
package framer

import (
	"github.com/scramblr/sdrtrunk-decode-decrypt/bit"
	"github.com/scramblr/sdrtrunk-decode-decrypt/internal/duid"
	"github.com/scramblr/sdrtrunk-decode-decrypt/internal/symbol"
)

// maxPayloadBits is the largest payload length in the DUID table
// (PLACEHOLDER, 1800 bits) — the fixed capacity every Assembler allocates
// up front. Per the design note, DUID reassignment mid-assembly (via
// ForceCompletion or the TSBK3 downgrade) only ever needs to change the
// logical length, never reallocate.
const maxPayloadBits = 1800

// Assembler accumulates one message's payload bits, skipping the
// interleaved status dibit every 35 payload dibits.
type Assembler struct {
	NAC      int
	DUID     duid.DUID
	ValidNID bool

	bitBuffer bit.Bits
	length    int

	bitsProcessedCount     int
	statusSymbolBitCounter int

	onCapacityExceeded func()
}

// NewAssembler starts accumulation for a freshly detected sync. The status
// symbol counter starts at 42 (bits already elapsed since the last status
// dibit was consumed as part of sync+NID processing).
func NewAssembler(nac int, id duid.DUID, validNID bool) *Assembler {
	return &Assembler{
		NAC:                    nac,
		DUID:                   id,
		ValidNID:               validNID,
		bitBuffer:              make(bit.Bits, maxPayloadBits),
		statusSymbolBitCounter: 42,
	}
}

// SetCapacityExceededHook installs a callback invoked (at most once per
// appended-bit-while-full event) when a dibit arrives after the buffer's
// logical capacity is already reached — the hook is where a rate-limited
// warning gets logged; Capacity Violation per the error-handling design.
func (a *Assembler) SetCapacityExceededHook(hook func()) {
	a.onCapacityExceeded = hook
}

// Receive processes one payload dibit: every 35th dibit (70th bit) since
// the last status dibit was consumed is itself a status dibit and is
// skipped rather than appended.
func (a *Assembler) Receive(d symbol.Dibit) {
	a.bitsProcessedCount += 2
	a.statusSymbolBitCounter += 2

	if a.statusSymbolBitCounter == 70 {
		a.statusSymbolBitCounter = 0
		return
	}

	a.appendBit(d.Bit1())
	a.appendBit(d.Bit2())
}

func (a *Assembler) appendBit(set bool) {
	capacity := a.DUID.PayloadLength()
	if capacity < 0 {
		capacity = 0
	}
	if capacity > len(a.bitBuffer) {
		capacity = len(a.bitBuffer)
	}

	if a.length >= capacity {
		if a.onCapacityExceeded != nil {
			a.onCapacityExceeded()
		}
		return
	}

	if set {
		a.bitBuffer[a.length] = 1
	} else {
		a.bitBuffer[a.length] = 0
	}
	a.length++
}

// IsComplete reports whether enough payload bits (including skipped status
// dibits) have elapsed to satisfy the DUID's nominal payload length.
func (a *Assembler) IsComplete() bool {
	return a.bitsProcessedCount >= a.DUID.PayloadLength()
}

// Bits returns the accumulated payload bits, truncated to however many were
// actually written. Skipped status dibits are not stored, so this is usually
// shorter than BitCount(); after a DUID reassignment it is also cut to the
// new DUID's PayloadLength().
func (a *Assembler) Bits() bit.Bits {
	return a.bitBuffer[:a.length]
}

// BitCount is the total elapsed bit count (bits_processed_count),
// including skipped status bits — this is the value reported on
// FramedPayload and used by ForceCompletion's length ladder.
func (a *Assembler) BitCount() int {
	return a.bitsProcessedCount
}

// ForceCompletion reassigns DUID from the elapsed bit count using the
// length ladder, for use when the NID could not be validated (DUID was
// PLACEHOLDER) or when a new sync arrives before this message reached its
// nominal length.
func (a *Assembler) ForceCompletion(previousDUID duid.DUID) {
	pointer := a.bitsProcessedCount

	switch {
	case pointer <= 144:
		a.DUID = duid.TDU
	case pointer <= 288:
		a.DUID = duid.TDU
	case pointer == 360:
		a.DUID = duid.TSBK1
	case pointer <= 434:
		a.DUID = duid.TDULC
	case pointer == 576:
		a.DUID = duid.TSBK2
	case pointer == 720:
		a.DUID = duid.TSBK3
	case pointer <= 792:
		a.DUID = duid.HDU
	case pointer <= 1728:
		if previousDUID == duid.LDU1 {
			a.DUID = duid.LDU2
		} else {
			a.DUID = duid.LDU1
		}
	default:
		a.DUID = duid.TDU
	}

	a.clampLength()
}

// DowngradeTSBK3IfNeeded narrows a provisional TSBK3 assignment (the
// longest TSBK variant, used as a placeholder whenever the NID reports
// TSBK1 since the true sub-type isn't known until the message's observed
// length is in) down to TSBK1 or TSBK2 once the elapsed bit count shows the
// real message was shorter. A no-op for any other DUID.
func (a *Assembler) DowngradeTSBK3IfNeeded() {
	if a.DUID != duid.TSBK3 {
		return
	}

	switch {
	case a.bitsProcessedCount < 248:
		a.DUID = duid.TSBK1
	case a.bitsProcessedCount < 464:
		a.DUID = duid.TSBK2
	}

	a.clampLength()
}

// clampLength keeps the logical length from exceeding the (possibly
// smaller) new DUID's nominal payload length after reassignment.
func (a *Assembler) clampLength() {
	capacity := a.DUID.PayloadLength()
	if capacity < 0 {
		capacity = 0
	}
	if capacity > len(a.bitBuffer) {
		capacity = len(a.bitBuffer)
	}
	if a.length > capacity {
		a.length = capacity
	}
}
