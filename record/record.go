// Package record defines the tagged-union record type ingested,
// buffered, sorted, and emitted by the rest of this module. A Record
// is a timestamped payload belonging to one of a fixed set of source
// variants; the total order among records is defined solely by
// Timestamp, with Seq breaking ties deterministically so that a
// stable sort is reproducible across runs.
//
// This package treats the payload as opaque beyond what is needed to
// serialize and compare it: producing records is someone else's job.
package record

import "fmt"

// Timestamp is a monotonic integer used to totally order records.
// Identity of the originating source plays no role in ordering: two
// records with equal Timestamp from different sources compare equal
// under Less, modulo the Seq tiebreaker.
type Timestamp uint64

// Kind identifies which of the NumKinds source variants a Record
// carries.
type Kind uint8

const (
	Alpha Kind = iota
	Beta
	Gamma
	Delta
	Epsilon

	// NumKinds is the number of source variants. The fan-in (package
	// fanin) expects exactly this many input channels.
	NumKinds = int(Epsilon) + 1
)

func (k Kind) String() string {
	switch k {
	case Alpha:
		return "alpha"
	case Beta:
		return "beta"
	case Gamma:
		return "gamma"
	case Delta:
		return "delta"
	case Epsilon:
		return "epsilon"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Payload is implemented by each of the five variant structs. It
// carries no behavior of its own; Record.Kind is the discriminant
// used to decide which concrete type a decoded Payload holds.
type Payload interface {
	isPayload()
}

// AlphaData is the payload carried by an Alpha-variant record.
type AlphaData struct {
	Foo string
}

func (AlphaData) isPayload() {}

// BetaData is the payload carried by a Beta-variant record.
type BetaData struct {
	Bar bool
}

func (BetaData) isPayload() {}

// GammaData is the payload carried by a Gamma-variant record.
type GammaData struct {
	Baz0, Baz1 uint32
}

func (GammaData) isPayload() {}

// DeltaData is the payload carried by a Delta-variant record; it has
// no fields of its own.
type DeltaData struct{}

func (DeltaData) isPayload() {}

// EpsilonData is the payload carried by an Epsilon-variant record.
type EpsilonData struct {
	Def []uint16
}

func (EpsilonData) isPayload() {}

// Record is a single timestamped, tagged value flowing through the
// sink.
type Record struct {
	Kind      Kind
	Timestamp Timestamp
	// Seq is assigned once, at fan-in time, by a single-threaded
	// monotonic counter (see fanin.Loop.Run). It exists solely to make
	// heap/merge ordering deterministic when two records share a
	// Timestamp; it plays no role in the record's identity otherwise.
	Seq     uint64
	Payload Payload
}

// Less reports whether a sorts before b: by Timestamp, then by Seq.
func Less(a, b Record) bool {
	if a.Timestamp != b.Timestamp {
		return a.Timestamp < b.Timestamp
	}
	return a.Seq < b.Seq
}

func New(kind Kind, ts Timestamp, seq uint64, payload Payload) Record {
	return Record{Kind: kind, Timestamp: ts, Seq: seq, Payload: payload}
}
