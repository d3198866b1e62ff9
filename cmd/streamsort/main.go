// Command streamsort is a minimal demonstration binary that wires up
// the fan-in, merge-sort buffer, and output stream against five
// synthetic jittered sources and verifies that the output is read
// back in nondecreasing timestamp order. It is not part of the
// library's contract; it exists to exercise the pieces end-to-end the
// way a human would run them.
package main

import (
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"

	"github.com/grailbio/streamsort/buffer"
	"github.com/grailbio/streamsort/fanin"
	"github.com/grailbio/streamsort/log"
	"github.com/grailbio/streamsort/must"
	"github.com/grailbio/streamsort/output"
	"github.com/grailbio/streamsort/record"
)

func main() {
	var (
		outputPath  = flag.String("output", "", "output file path (default: a temp file)")
		spillDir    = flag.String("spill-dir", "", "spill directory (default: a temp dir)")
		maxInMemory = flag.Int("max-in-memory", 1000, "in-memory run capacity, in records")
		readBufSize = flag.Int("read-buf-bytes", 64<<10, "per-run read buffer size, in bytes")
		numRecords  = flag.Int("records", 100_000, "number of synthetic records to generate, per source")
		jitter      = flag.Int("jitter", 50, "maximum timestamp jitter applied to each synthetic record")
		delta       = flag.Uint64("delta", 0, "watermark safety margin")
	)
	log.AddFlags()
	flag.Parse()
	must.Truef(*maxInMemory > 0, "-max-in-memory must be positive, got %d", *maxInMemory)
	must.Truef(*readBufSize > 0, "-read-buf-bytes must be positive, got %d", *readBufSize)
	must.Truef(*numRecords > 0, "-records must be positive, got %d", *numRecords)

	if err := run(*outputPath, *spillDir, *maxInMemory, *readBufSize, *numRecords, *jitter, *delta); err != nil {
		log.Error.Printf("streamsort: %v", err)
		os.Exit(1)
	}
}

func run(outputPath, spillDir string, maxInMemory, readBufSize, numRecords, jitter int, delta uint64) error {
	if outputPath == "" {
		f, err := os.CreateTemp("", "streamsort-output-")
		if err != nil {
			return err
		}
		outputPath = f.Name()
		f.Close()
		defer os.Remove(outputPath)
	}
	if spillDir == "" {
		dir, err := os.MkdirTemp("", "streamsort-spill-")
		if err != nil {
			return err
		}
		spillDir = dir
		defer os.RemoveAll(spillDir)
	}

	w, err := output.Create(outputPath)
	if err != nil {
		return err
	}

	b := buffer.New(spillDir, w, buffer.Config{
		MaxInMemory:         maxInMemory,
		FileReadBufCapacity: readBufSize,
	})

	alphaCh := make(chan fanin.AlphaInput)
	betaCh := make(chan fanin.BetaInput)
	gammaCh := make(chan fanin.GammaInput)
	deltaCh := make(chan fanin.DeltaInput)
	epsilonCh := make(chan fanin.EpsilonInput)
	notify := make(chan fanin.NewRecordsAvailable, 64)

	loop := &fanin.Loop{
		Sources: fanin.Sources{
			Alpha:   alphaCh,
			Beta:    betaCh,
			Gamma:   gammaCh,
			Delta:   deltaCh,
			Epsilon: epsilonCh,
		},
		Buffer: b,
		Notify: notify,
		Config: fanin.Config{Delta: record.Timestamp(delta)},
	}

	rnd := rand.New(rand.NewSource(1))
	go produce(rnd, numRecords, jitter, alphaCh, betaCh, gammaCh, deltaCh, epsilonCh)

	loopErr := make(chan error, 1)
	go func() {
		err := loop.Run()
		close(notify)
		loopErr <- err
	}()

	r, err := output.Open(outputPath)
	if err != nil {
		return err
	}
	defer r.Close()

	var (
		prev     record.Timestamp
		total    int
		haveSeen bool
	)
	for n := range notify {
		log.Info.Printf("reading next %d records, checking order", n.Count)
		for i := 0; i < n.Count; i++ {
			rec, err := r.Read()
			if err != nil {
				return err
			}
			if haveSeen && rec.Timestamp < prev {
				return fmt.Errorf("streamsort: out-of-order output: %d after %d", rec.Timestamp, prev)
			}
			prev = rec.Timestamp
			haveSeen = true
			total++
		}
	}
	if err := <-loopErr; err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	if _, err := r.Read(); err != io.EOF {
		return fmt.Errorf("streamsort: unexpected unread output after the last notification")
	}

	fmt.Printf("checked %d records, all in nondecreasing order\n", total)
	return nil
}

func produce(rnd *rand.Rand, n, jitter int, alphaCh chan<- fanin.AlphaInput, betaCh chan<- fanin.BetaInput, gammaCh chan<- fanin.GammaInput, deltaCh chan<- fanin.DeltaInput, epsilonCh chan<- fanin.EpsilonInput) {
	defer close(alphaCh)
	defer close(betaCh)
	defer close(gammaCh)
	defer close(deltaCh)
	defer close(epsilonCh)

	jittered := func(base int) record.Timestamp {
		j := rnd.Intn(2*jitter+1) - jitter
		ts := base + j
		if ts < 0 {
			ts = 0
		}
		return record.Timestamp(ts)
	}

	for i := 0; i < n; i++ {
		alphaCh <- fanin.AlphaInput{Timestamp: jittered(i), Data: record.AlphaData{Foo: "alpha"}}
		betaCh <- fanin.BetaInput{Timestamp: jittered(i), Data: record.BetaData{Bar: i%2 == 0}}
		gammaCh <- fanin.GammaInput{Timestamp: jittered(i), Data: record.GammaData{Baz0: uint32(i), Baz1: uint32(i + 1)}}
		deltaCh <- fanin.DeltaInput{Timestamp: jittered(i), Data: record.DeltaData{}}
		epsilonCh <- fanin.EpsilonInput{Timestamp: jittered(i), Data: record.EpsilonData{Def: []uint16{uint16(i)}}}
	}
}
