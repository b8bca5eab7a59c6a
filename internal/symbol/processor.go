package symbol

import (
	"fmt"
	"math"

	"github.com/scramblr/sdrtrunk-decode-decrypt/internal/bch"
	"github.com/scramblr/sdrtrunk-decode-decrypt/internal/duid"
)

const (
	bufferProtectedRegionDibits = 26
	bufferWorkspaceDibits       = 25

	// nidTriggerSymbolCount is NID_DIBIT_LENGTH (57) - 24 (sync): the NID
	// occupies 33 dibits of payload following the 24-dibit sync once the
	// interleaved status symbol is accounted for.
	nidTriggerSymbolCount = nidDibitDelayLength - 24

	maxSymbolsForFineSync     = 890
	minSymbolsForTimingAdjust = 72

	syncScoreThreshold     = 65.0
	optimizeScoreThreshold = 95.0
	optimizeStepFloor      = 0.03
	lockedAdjustmentClamp  = 0.5
)

// MessageListener receives the dibit stream and sync/NID decisions from a
// Processor. Implemented by the framer package; defined here (rather than
// there) so this package never imports its consumer.
type MessageListener interface {
	Receive(d Dibit)
	SyncDetected(nac int, id duid.DUID, validNID bool)
}

// NIDBitErrorReporter is an optional interface a MessageListener may also
// implement to receive the BCH-corrected bit-error count for each
// successfully decoded NID, ahead of the matching SyncDetected call.
type NIDBitErrorReporter interface {
	NIDBitErrors(count int)
}

// DebugLogger is the minimal rate-limited logging surface a Processor needs;
// satisfied by internal/ratelog.KeyedLogger. A nil DebugLogger is valid and
// silences debug output entirely.
type DebugLogger interface {
	Debugf(format string, args ...interface{})
}

// Processor is the decision-feedback symbol-timing and sync-correlation
// loop: it turns a stream of phase samples into dibits, tracks fine symbol
// timing against the 24-dibit P25 sync pattern, and drives NID decoding at
// the point in each frame where the NID has fully arrived.
type Processor struct {
	buf             []float64
	loadPointer     int
	readPointer     int
	samplePoint     float64
	protectedSamples int
	workspaceSamples int

	observedSamplesPerSymbol float64

	primaryCorrelator correlator
	lag1Correlator    correlator
	lag2Correlator    correlator

	delayLine     *DibitDelayLine
	byteAssembler *ByteAssembler

	syncLock                    bool
	symbolsSinceLastSync        int
	previousMessageSymbolLength int

	previousDUID duid.DUID
	previousNAC  int

	listener MessageListener
	logger   DebugLogger

	// TotalSymbols and TotalSamples are exported instrumentation counters,
	// the Go-side equivalent of the original's debug symbol/sample counts,
	// kept as fields instead of console prints. internal/metrics does not
	// read them.
	TotalSymbols uint64
	TotalSamples uint64
}

// NewProcessor constructs a Processor for the given sample rate (Hz),
// feeding decoded dibits and sync events to listener.
func NewProcessor(sampleRate float64, listener MessageListener) (*Processor, error) {
	p := &Processor{
		delayLine:     NewDibitDelayLine(),
		byteAssembler: NewByteAssembler(256),
		listener:      listener,
		previousDUID:  duid.Unknown,
	}
	if err := p.SetSamplesPerSymbol(sampleRate); err != nil {
		return nil, err
	}
	return p, nil
}

// SetLogger installs a rate-limited debug logger. Passing nil disables
// debug output.
func (p *Processor) SetLogger(logger DebugLogger) {
	p.logger = logger
}

// SetRawListener registers the callback that receives byte-aligned raw
// dibit data ejected from the delay line. Passing nil disables the byte
// assembler's per-dibit work entirely (HasRawListener becomes false).
func (p *Processor) SetRawListener(listener func([]byte)) {
	p.byteAssembler.SetListener(listener)
}

// HasRawListener reports whether a raw-bitstream consumer is registered.
func (p *Processor) HasRawListener() bool {
	return p.byteAssembler.HasListener()
}

// SetSamplesPerSymbol reconfigures the processor for a new input sample
// rate, resizing the sample buffer and resetting all timing state. sr must
// exceed 2*4800 (the Nyquist floor for 4800-baud symbols); otherwise this is
// a configuration error and no state is changed.
func (p *Processor) SetSamplesPerSymbol(sr float64) error {
	if sr <= 2*4800 {
		return fmt.Errorf("symbol: sample rate %.2f must exceed %d", sr, 2*4800)
	}

	sps := sr / 4800

	p.protectedSamples = int(math.Ceil(bufferProtectedRegionDibits * sps))
	p.workspaceSamples = int(math.Ceil(bufferWorkspaceDibits * sps))
	p.buf = make([]float64, p.protectedSamples+p.workspaceSamples)

	p.loadPointer = 0
	p.readPointer = 0
	p.samplePoint = 0
	p.observedSamplesPerSymbol = sps

	p.primaryCorrelator = correlator{}
	p.lag1Correlator = correlator{}
	p.lag2Correlator = correlator{}

	p.delayLine = NewDibitDelayLine()
	p.syncLock = false
	p.symbolsSinceLastSync = 0
	p.previousMessageSymbolLength = 0

	return nil
}

// Receive appends a batch of demodulated phase samples (radians) and
// processes every symbol that becomes available, synchronously emitting
// dibits and sync/NID decisions to the registered listener.
func (p *Processor) Receive(samples []float64) {
	for _, s := range samples {
		p.appendSample(s)
		p.TotalSamples++
	}
	p.processAvailableSymbols()
}

func (p *Processor) appendSample(s float64) {
	if p.loadPointer >= len(p.buf) {
		shift := p.workspaceSamples
		if shift > len(p.buf) {
			shift = len(p.buf)
		}
		copy(p.buf, p.buf[shift:])
		for i := len(p.buf) - shift; i < len(p.buf); i++ {
			p.buf[i] = 0
		}
		p.loadPointer -= shift
		p.readPointer -= shift
		if p.readPointer < 0 {
			p.readPointer = 0
		}
	}
	p.buf[p.loadPointer] = s
	p.loadPointer++
}

// sampleAt reads buf[idx], clamping to the currently valid range so
// out-of-range lag correlator lookups near the edges of the buffer degrade
// gracefully instead of panicking.
func (p *Processor) sampleAt(idx int) float64 {
	if p.loadPointer == 0 {
		return 0
	}
	if idx < 0 {
		idx = 0
	}
	if idx >= p.loadPointer {
		idx = p.loadPointer - 1
	}
	return p.buf[idx]
}

func splitPos(pos float64) (int, float64) {
	i := int(math.Floor(pos))
	return i, pos - float64(i)
}

func (p *Processor) processAvailableSymbols() {
	for p.readPointer+1 < p.loadPointer {
		p.processOneSymbol()
	}
}

func (p *Processor) processOneSymbol() {
	intP := p.readPointer
	frac := p.samplePoint

	primarySoft := interpolate(p.sampleAt(intP), p.sampleAt(intP+1), frac)
	dibit := ToDibit(primarySoft)

	if p.listener != nil {
		p.listener.Receive(dibit)
	}

	ejected := p.delayLine.GetAndPut(dibit)
	if p.byteAssembler.HasListener() {
		p.byteAssembler.Receive(ejected)
	}

	sps := p.observedSamplesPerSymbol
	lag1Offset := sps / 3
	lag2Offset := 2 * sps / 3

	lag1P, lag1Frac := splitPos(float64(intP) + frac - lag1Offset)
	lag2P, lag2Frac := splitPos(float64(intP) + frac - lag2Offset)

	primaryScore := p.primaryCorrelator.process(primarySoft)
	lag1Score := p.lag1Correlator.process(interpolate(p.sampleAt(lag1P), p.sampleAt(lag1P+1), lag1Frac))
	lag2Score := p.lag2Correlator.process(interpolate(p.sampleAt(lag2P), p.sampleAt(lag2P+1), lag2Frac))

	p.symbolsSinceLastSync++
	p.TotalSymbols++

	accepted := false
	switch {
	case p.syncLock && primaryScore > syncScoreThreshold && p.optimize(0):
		accepted = true
	case lag1Score > primaryScore && primaryScore > lag2Score && lag1Score > syncScoreThreshold &&
		p.symbolsSinceLastSync > 1 && p.optimize(-lag1Offset):
		accepted = true
	case lag2Score > primaryScore && lag2Score > syncScoreThreshold && p.optimize(-lag2Offset):
		accepted = true
	case primaryScore > syncScoreThreshold && p.optimize(0):
		accepted = true
	}

	if accepted {
		p.previousMessageSymbolLength = p.symbolsSinceLastSync
		p.symbolsSinceLastSync = 0
	}

	if p.symbolsSinceLastSync == nidTriggerSymbolCount {
		p.processNID()
	}

	newPos := float64(p.readPointer) + p.samplePoint + p.observedSamplesPerSymbol
	p.readPointer, p.samplePoint = splitPos(newPos)
}

// optimize refines the sample offset around a provisional sync acceptance
// and reports whether the refined position scores highly enough to accept.
// additionalOffset distinguishes which correlator triggered arbitration:
// 0 for the primary correlator, -lagOffset for a lagging one.
func (p *Processor) optimize(additionalOffset float64) bool {
	sps := p.observedSamplesPerSymbol
	offset := float64(p.readPointer) + p.samplePoint + additionalOffset - 23*sps

	var step float64
	if p.syncLock {
		step = sps / 40
	} else {
		step = sps / 10
	}

	center := offset
	for {
		cP, cFrac := splitPos(center)
		centerScore := p.score(cP, cFrac, sps)

		leftPos := center - step
		rightPos := center + step
		lP, lFrac := splitPos(leftPos)
		rP, rFrac := splitPos(rightPos)
		leftScore := p.score(lP, lFrac, sps)
		rightScore := p.score(rP, rFrac, sps)

		switch {
		case leftScore > centerScore && leftScore >= rightScore:
			center = leftPos
		case rightScore > centerScore && rightScore >= leftScore:
			center = rightPos
		default:
			step /= 2
		}

		adjustment := center - offset
		if step <= optimizeStepFloor || math.Abs(adjustment) > sps/2 {
			break
		}
	}

	finalP, finalFrac := splitPos(center)
	if p.score(finalP, finalFrac, sps) < optimizeScoreThreshold {
		return false
	}

	adjustment := center - offset
	if p.syncLock {
		if adjustment > lockedAdjustmentClamp {
			adjustment = lockedAdjustmentClamp
		} else if adjustment < -lockedAdjustmentClamp {
			adjustment = -lockedAdjustmentClamp
		}
	}

	newPos := float64(p.readPointer) + p.samplePoint + adjustment
	p.readPointer, p.samplePoint = splitPos(newPos)

	if p.syncLock && math.Abs(adjustment) < lockedAdjustmentClamp &&
		p.symbolsSinceLastSync >= minSymbolsForTimingAdjust && p.symbolsSinceLastSync <= maxSymbolsForFineSync {
		p.observedSamplesPerSymbol += (adjustment / float64(p.symbolsSinceLastSync)) * 0.2
	}

	return true
}

// score correlates the 24-symbol sync pattern against the buffer starting
// at the real position (integerP, fractional), advancing by sps symbols at
// a time (with carry from fractional into integerP) for each of the 24
// terms.
func (p *Processor) score(integerP int, fractional, sps float64) float64 {
	var total float64
	for x := 0; x < 24; x++ {
		v := clampSoftSymbol(interpolate(p.sampleAt(integerP), p.sampleAt(integerP+1), fractional))
		total += v * SyncPatternSymbols[x]

		pos := float64(integerP) + fractional + sps
		integerP, fractional = splitPos(pos)
	}
	return total
}

// processNID runs at nidTriggerSymbolCount symbols past sync: it pulls the
// 63-bit NID vector from the delay line, attempts BCH correction, and
// reports the outcome to the listener.
func (p *Processor) processNID() {
	raw := p.delayLine.NID()

	var cw bch.Codeword
	copy(cw[:], raw[:])

	corrected, bitErrors, irrecoverable := bch.Decode(cw)

	if !irrecoverable {
		p.syncLock = true
		nac := extractNAC(corrected[:])
		duidValue := extractDUID(corrected[:])
		resolved := duid.FromValue(duidValue)

		p.previousNAC = nac
		p.previousDUID = resolved

		if p.logger != nil && bitErrors > 0 {
			p.logger.Debugf("NID corrected %d bit error(s): nac=%d duid=%s", bitErrors, nac, resolved)
		}
		if reporter, ok := p.listener.(NIDBitErrorReporter); ok {
			reporter.NIDBitErrors(bitErrors)
		}
		if p.listener != nil {
			p.listener.SyncDetected(nac, resolved, true)
		}
		return
	}

	bestEffortDUID := extractDUID(raw[:])
	if p.logger != nil {
		p.logger.Debugf("NID uncorrectable, raw bits=%v best-effort duid value=%d", raw, bestEffortDUID)
	}
	if p.listener != nil {
		p.listener.SyncDetected(p.previousNAC, duid.Placeholder, false)
	}
}

// extractNAC reads the 12-bit NAC field (bits 51..62, LSB-first: bit 51
// weighs 1, bit 62 weighs 2048).
func extractNAC(bits []int) int {
	nac := 0
	for i := 51; i <= 62; i++ {
		if bits[i] != 0 {
			nac |= 1 << uint(i-51)
		}
	}
	return nac
}

// extractDUID reads the 4-bit DUID field (bits 47..50, LSB-first: bit 47
// weighs 1, bit 50 weighs 8).
func extractDUID(bits []int) int {
	v := 0
	for i := 47; i <= 50; i++ {
		if bits[i] != 0 {
			v |= 1 << uint(i-47)
		}
	}
	return v
}
