package framer

import (
	"time"

	"github.com/google/uuid"

	"github.com/scramblr/sdrtrunk-decode-decrypt/bit"
	"github.com/scramblr/sdrtrunk-decode-decrypt/internal/duid"
)

// FramedPayload is one complete, length-delimited message: a clean decode,
// or a best-effort PLACEHOLDER/ForceCompletion guess when the NID could not
// be validated.
type FramedPayload struct {
	StreamID  uuid.UUID
	NAC       int
	DUID      duid.DUID
	ValidNID  bool
	Bits      bit.Bits
	BitCount  int
	Timestamp time.Time
}

// SyncLoss reports a gap of one full second (4800 dibits) with no sync
// lock, or a shorter gap detected at the moment a new sync arrives.
type SyncLoss struct {
	StreamID  uuid.UUID
	Timestamp time.Time
	BitCount  int
	Protocol  string
}

// ProtocolAPCO25 is the Protocol value stamped on every SyncLoss this
// package emits.
const ProtocolAPCO25 = "APCO25"

// Sink receives the message stream a Framer produces. StreamID lets a
// multi-channel deployment multiplex several Framers onto one Sink without
// losing provenance.
type Sink interface {
	DeliverPayload(FramedPayload)
	DeliverSyncLoss(SyncLoss)
}
