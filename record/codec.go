package record

import (
	"encoding/json"
	"fmt"
)

// wireForm is the on-the-wire shape of a Record: the payload is kept
// as a raw JSON message so that Unmarshal can dispatch on Kind before
// decoding it into a concrete type.
type wireForm struct {
	Kind      Kind
	Timestamp Timestamp
	Seq       uint64
	Payload   json.RawMessage
}

// Marshal encodes r into its self-delimiting wire representation
// (JSON, framed separately by package wire for byte-precise framing
// on disk). Marshal never fails for a value constructed through New
// or the package's own decoding path, so a returned error here always
// indicates an unexpected Payload implementation.
func Marshal(r Record) ([]byte, error) {
	payload, err := json.Marshal(r.Payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wireForm{
		Kind:      r.Kind,
		Timestamp: r.Timestamp,
		Seq:       r.Seq,
		Payload:   payload,
	})
}

// Unmarshal decodes a Record previously produced by Marshal.
func Unmarshal(data []byte) (Record, error) {
	var w wireForm
	if err := json.Unmarshal(data, &w); err != nil {
		return Record{}, err
	}
	payload, err := decodePayload(w.Kind, w.Payload)
	if err != nil {
		return Record{}, err
	}
	return Record{Kind: w.Kind, Timestamp: w.Timestamp, Seq: w.Seq, Payload: payload}, nil
}

func decodePayload(kind Kind, raw json.RawMessage) (Payload, error) {
	switch kind {
	case Alpha:
		var p AlphaData
		err := json.Unmarshal(raw, &p)
		return p, err
	case Beta:
		var p BetaData
		err := json.Unmarshal(raw, &p)
		return p, err
	case Gamma:
		var p GammaData
		err := json.Unmarshal(raw, &p)
		return p, err
	case Delta:
		var p DeltaData
		err := json.Unmarshal(raw, &p)
		return p, err
	case Epsilon:
		var p EpsilonData
		err := json.Unmarshal(raw, &p)
		return p, err
	default:
		return nil, fmt.Errorf("record: unknown kind %d", kind)
	}
}
