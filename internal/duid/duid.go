// Package duid defines the P25 Phase 1 Data Unit ID enumeration: the 4-bit
// message-type selector carried in the NID, its nominal payload length in
// bits, and whether it carries a trailing status dibit.
package duid

// DUID identifies the type of message framed after a sync+NID event.
type DUID int

const (
	Unknown DUID = iota
	HDU
	TDU
	LDU1
	TSBK1
	LDU2
	PDU1
	TDULC
	// TSBK2 and TSBK3 are not independently signaled by the NID (both share
	// the TSBK1 value), but are used by the assembler/framer to represent
	// the observed length of a trunking signaling block once the number of
	// elapsed symbols is known.
	TSBK2
	TSBK3
	// Placeholder stands in for a message type while the true type is still
	// unknown: either the NID failed error correction, or its DUID value
	// didn't map to a known primary type. Its payload length (1800) is
	// larger than any real primary type's, including the longest
	// (LDU1/LDU2 at 1568), so the assembler never underruns before the
	// next sync event resolves the real type via forceCompletion.
	Placeholder
)

type info struct {
	value         int
	payloadLength int
	statusDibit   bool
	label         string
}

var table = map[DUID]info{
	HDU:         {value: 0, payloadLength: 678, statusDibit: true, label: "HDU"},
	TDU:         {value: 3, payloadLength: 30, statusDibit: true, label: "TDU"},
	LDU1:        {value: 5, payloadLength: 1568, statusDibit: true, label: "LDU1"},
	TSBK1:       {value: 7, payloadLength: 248, statusDibit: true, label: "TSBK1"},
	LDU2:        {value: 10, payloadLength: 1568, statusDibit: true, label: "LDU2"},
	PDU1:        {value: 12, payloadLength: 1200, statusDibit: true, label: "PDU1"},
	TDULC:       {value: 15, payloadLength: 432, statusDibit: true, label: "TDULC"},
	TSBK2:       {value: 7, payloadLength: 464, statusDibit: false, label: "TSBK2"},
	TSBK3:       {value: 7, payloadLength: 720, statusDibit: false, label: "TSBK3"},
	Placeholder: {value: -1, payloadLength: 1800, statusDibit: false, label: "PLACEHOLDER"},
	Unknown:     {value: -1, payloadLength: -1, statusDibit: false, label: "UNKNOWN"},
}

// validPrimary is the set of DUIDs a decoded NID may directly carry.
var validPrimary = map[DUID]bool{
	HDU: true, TDU: true, LDU1: true, TSBK1: true, LDU2: true, PDU1: true, TDULC: true,
}

// FromValue maps a 4-bit NID DUID field value to its primary DUID, or
// Unknown if the value isn't one of the seven standard primary values.
func FromValue(value int) DUID {
	switch value {
	case 0:
		return HDU
	case 3:
		return TDU
	case 5:
		return LDU1
	case 7:
		return TSBK1
	case 10:
		return LDU2
	case 12:
		return PDU1
	case 15:
		return TDULC
	default:
		return Unknown
	}
}

// Value returns the 4-bit NID field value for d: TSBK2 and TSBK3 report
// TSBK1's value (7), and Placeholder and Unknown report -1.
func (d DUID) Value() int {
	return table[d].value
}

// PayloadLength returns the nominal message payload length in bits
// following the NID.
func (d DUID) PayloadLength() int {
	return table[d].payloadLength
}

// HasTrailingStatusDibit reports whether this DUID's payload carries a
// trailing status dibit.
func (d DUID) HasTrailingStatusDibit() bool {
	return table[d].statusDibit
}

// IsValidPrimary reports whether d is one of the seven DUIDs a NID can
// directly signal.
func (d DUID) IsValidPrimary() bool {
	return validPrimary[d]
}

func (d DUID) String() string {
	if info, ok := table[d]; ok {
		return info.label
	}
	return "UNKNOWN"
}
