// Package fanin multiplexes the five typed source channels into a
// single record stream, tracks each source's last-seen timestamp,
// and drives the merge-sort buffer's DumpSafe calls from the
// resulting watermark.
//
// The watermark is the minimum of the sources' last-seen timestamps.
// It bounds future records from below only if every source sends
// nondecreasing timestamps: a source that later sends a record older
// than an earlier watermark has that record emitted by a later dump,
// after records with larger timestamps. Config.Delta lowers the
// watermark by a fixed margin to absorb such jitter.
package fanin

import (
	"sync"

	"github.com/grailbio/streamsort/buffer"
	"github.com/grailbio/streamsort/log"
	"github.com/grailbio/streamsort/record"
)

// AlphaInput, BetaInput, GammaInput, DeltaInput, and EpsilonInput are
// the values a source sends on its typed channel: a timestamp paired
// with that source's payload. Record.Seq is not part of the input;
// it is assigned once a record is received by the fan-in loop.
type AlphaInput struct {
	Timestamp record.Timestamp
	Data      record.AlphaData
}

type BetaInput struct {
	Timestamp record.Timestamp
	Data      record.BetaData
}

type GammaInput struct {
	Timestamp record.Timestamp
	Data      record.GammaData
}

type DeltaInput struct {
	Timestamp record.Timestamp
	Data      record.DeltaData
}

type EpsilonInput struct {
	Timestamp record.Timestamp
	Data      record.EpsilonData
}

// Sources bundles one typed channel per record variant. Closing a
// channel signals that its source has produced its last value.
type Sources struct {
	Alpha   <-chan AlphaInput
	Beta    <-chan BetaInput
	Gamma   <-chan GammaInput
	Delta   <-chan DeltaInput
	Epsilon <-chan EpsilonInput
}

// Config configures a Loop.
type Config struct {
	// Delta is subtracted from the computed watermark before it is
	// used to dump the buffer, as a safety margin against sources
	// whose timestamps are not strictly nondecreasing (see the
	// package doc's note on the watermark's global-ordering
	// limitation). Zero disables the margin.
	Delta record.Timestamp
}

// NewRecordsAvailable announces that Count records were just
// appended to the output, immediately before this notification.
type NewRecordsAvailable struct {
	Count int
}

// Loop owns one fan-in/merge-sort cycle: it reads from Sources until
// every channel is closed, feeding Buffer and notifying Notify of
// newly-available output.
type Loop struct {
	Sources Sources
	Buffer  *buffer.Buffer
	Notify  chan<- NewRecordsAvailable
	Config  Config

	// Done, if non-nil, is closed by the caller to signal that the
	// notification consumer is gone; Run then stops rather than
	// blocking forever on a send nobody will receive.
	Done <-chan struct{}
}

// Run consumes from Sources until all five channels are closed,
// pushing every record into Buffer and, once every source has been
// seen, calling DumpSafe with the current watermark after each record.
// It returns the first error from Buffer, if any.
func (l *Loop) Run() error {
	unified := make(chan record.Record)
	var wg sync.WaitGroup
	wg.Add(5)
	go forward(&wg, unified, l.Sources.Alpha, func(in AlphaInput) record.Record {
		return record.New(record.Alpha, in.Timestamp, 0, in.Data)
	})
	go forward(&wg, unified, l.Sources.Beta, func(in BetaInput) record.Record {
		return record.New(record.Beta, in.Timestamp, 0, in.Data)
	})
	go forward(&wg, unified, l.Sources.Gamma, func(in GammaInput) record.Record {
		return record.New(record.Gamma, in.Timestamp, 0, in.Data)
	})
	go forward(&wg, unified, l.Sources.Delta, func(in DeltaInput) record.Record {
		return record.New(record.Delta, in.Timestamp, 0, in.Data)
	})
	go forward(&wg, unified, l.Sources.Epsilon, func(in EpsilonInput) record.Record {
		return record.New(record.Epsilon, in.Timestamp, 0, in.Data)
	})
	go func() {
		wg.Wait()
		close(unified)
	}()

	var lastTS [record.NumKinds]record.Timestamp
	var seen [record.NumKinds]bool
	var seq uint64

	for rec := range unified {
		rec.Seq = seq
		seq++

		idx := int(rec.Kind)
		lastTS[idx] = rec.Timestamp
		seen[idx] = true

		if err := l.Buffer.Push(rec); err != nil {
			return err
		}

		wm, ok := watermark(lastTS, seen, l.Config.Delta)
		if !ok {
			continue
		}

		count, err := l.Buffer.DumpSafe(wm)
		if err != nil {
			return err
		}
		if count == 0 {
			continue
		}

		log.Debug.Printf("fanin: notifying %d newly available records", count)
		select {
		case l.Notify <- NewRecordsAvailable{Count: count}:
		case <-l.Done:
			return nil
		}
	}
	return nil
}

// watermark returns min(lastTS), minus delta, iff every source has
// been seen at least once.
func watermark(lastTS [record.NumKinds]record.Timestamp, seen [record.NumKinds]bool, delta record.Timestamp) (record.Timestamp, bool) {
	var min record.Timestamp
	for i := range lastTS {
		if !seen[i] {
			return 0, false
		}
		if i == 0 || lastTS[i] < min {
			min = lastTS[i]
		}
	}
	if min < delta {
		return 0, true
	}
	return min - delta, true
}

func forward[T any](wg *sync.WaitGroup, out chan<- record.Record, in <-chan T, toRecord func(T) record.Record) {
	defer wg.Done()
	for v := range in {
		out <- toRecord(v)
	}
}
