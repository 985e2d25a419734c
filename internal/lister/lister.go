package lister

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"

	"gputrace/internal/capture"
	"gputrace/internal/common"
	"gputrace/internal/gfx"
	"gputrace/internal/pm4"
	"gputrace/internal/printers"
	"gputrace/internal/recorder"
	"gputrace/internal/tracewriter"
)

// Config holds the pm4_lister options.
type Config struct {
	CaptureDir string
	Generation string // overrides the descriptor when set
	Buffer     string // list only this buffer
	TracePath  string // JSON-lines trace output, empty for none
	Compress   bool   // lz4-compress the trace output
	ShowRaw    bool
	Stats      bool
	Jobs       int // parallel buffer decodes, <= 0 for unbounded

	Logger       common.Logger
	OutputWriter io.Writer
}

// Run lists every packet of a capture.
func Run(cfg Config) error {
	return RunContext(context.Background(), cfg)
}

// RunContext loads the capture, decodes its buffers in parallel and prints
// them in descriptor order, then replays and prints the call log if the
// capture has one.
func RunContext(ctx context.Context, cfg Config) error {
	w := cfg.OutputWriter
	if w == nil {
		w = os.Stdout
	}
	logger := common.NewErrorLogger(cfg.Logger)

	fmt.Fprintln(w, "PM4 Packet Lister")
	fmt.Fprintln(w, "-----------------")
	fmt.Fprintf(w, "PM4 Packet Lister : reading capture from path %s\n", cfg.CaptureDir)

	capt, err := capture.Load(cfg.CaptureDir, capture.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to read capture: %w", err)
	}

	gen := capt.Generation
	if cfg.Generation != "" {
		if gen, err = gfx.ParseGeneration(cfg.Generation); err != nil {
			return common.Errorf(gfx.ErrInvalidParamVal, "%v", err)
		}
	}

	buffers := capt.Buffers
	if cfg.Buffer != "" {
		buffers = nil
		for _, b := range capt.Buffers {
			if b.Name == cfg.Buffer {
				buffers = append(buffers, b)
			}
		}
		if len(buffers) == 0 {
			return common.Errorf(gfx.ErrInvalidParamVal, "buffer %q not found in capture", cfg.Buffer)
		}
	}
	if len(buffers) == 0 && len(capt.Calls) == 0 {
		return common.NewErrorMsg(gfx.ErrSevError, gfx.ErrCaptureParse, "capture lists no buffers")
	}
	fmt.Fprintf(w, "Generation: %s; buffers: %d\n", gen, len(buffers))

	words := make([][]uint32, len(buffers))
	for i, b := range buffers {
		words[i] = b.Dwords
	}
	dec := pm4.NewDecoder(pm4.WithLogger(logger))
	results, err := dec.DecodeAll(ctx, words, gen, cfg.Jobs)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	for i, b := range buffers {
		dec.MarkTrailing(&results[i], len(b.Dwords), b.TrailingBytes, gen)
	}

	var session *recorder.CaptureSession
	if len(capt.Calls) != 0 {
		session = recorder.NewCaptureSession(recorder.WithLogger(logger))
	}

	var tw *tracewriter.Writer
	if cfg.TracePath != "" {
		f, err := os.Create(cfg.TracePath)
		if err != nil {
			return fmt.Errorf("create trace: %w", err)
		}
		defer f.Close()
		var opts []tracewriter.Option
		if cfg.Compress {
			opts = append(opts, tracewriter.WithLZ4())
		}
		if tw, err = tracewriter.New(f, opts...); err != nil {
			return err
		}
		hdr := tracewriter.Header{Generation: gen, Buffers: len(buffers), Calls: len(capt.Calls)}
		if session != nil {
			hdr.Session = session.ID().String()
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
	}

	pp := printers.NewPacketPrinter(w)
	pp.SetShowRaw(cfg.ShowRaw)
	if cfg.Stats {
		pp.SetCollectStats()
	}

	var size int64
	for i, b := range buffers {
		size += int64(len(b.Dwords))*4 + int64(b.TrailingBytes)
		fmt.Fprintf(w, "Buffer %s (%s, %d dwords)\n", b.Name, humanize.Bytes(uint64(len(b.Dwords)*4+b.TrailingBytes)), len(b.Dwords))
		pp.PacketsIn(b.Name, results[i].Packets)
		if tw == nil {
			continue
		}
		if err := tw.WriteBufferStart(tracewriter.BufferStart{Name: b.Name, Dwords: len(b.Dwords)}); err != nil {
			return err
		}
		if err := tw.WritePackets(results[i].Packets); err != nil {
			return err
		}
	}

	if cfg.Stats {
		pp.PrintStats()
	}

	var records []recorder.Record
	var submits []recorder.Submit
	if session != nil {
		records = session.Replay(capt.Calls)
		submits = recorder.GroupSubmits(records)
		fmt.Fprintf(w, "API calls (%d)\n", len(records))
		cp := printers.NewCallPrinter(w)
		if cfg.Stats {
			cp.SetCollectStats()
		}
		for i := range records {
			cp.RecordIn(&records[i])
		}
		for i := range submits {
			cp.SubmitIn(&submits[i])
		}
		if cfg.Stats {
			cp.PrintStats()
		}
		if tw != nil {
			if err := tw.WriteCalls(records); err != nil {
				return err
			}
		}
	}

	sum := pm4.Total(results)
	fmt.Fprintf(w, "Decoded %s packets from %d buffers (%s): ok=%d opaque=%d unknown=%d reserved=%d truncated=%v\n",
		humanize.Comma(int64(sum.Packets)), len(buffers), humanize.Bytes(uint64(size)),
		sum.Ok, sum.Opaque, sum.UnknownOpcodes, sum.ReservedBitsSet, sum.Truncated)
	if session != nil {
		anomalies := 0
		for _, n := range session.Anomalies() {
			anomalies += n
		}
		fmt.Fprintf(w, "Replayed %s calls in %d submits: anomalies=%d\n",
			humanize.Comma(int64(len(records))), len(submits), anomalies)
	}
	if n := logger.Count(gfx.ErrInvalidParamVal); n != 0 {
		fmt.Fprintf(w, "Call log errors: %d (last: %v)\n", n, logger.LastError())
	}

	if tw != nil {
		if err := tw.Close(); err != nil {
			return err
		}
		logger.Logf(common.SeverityInfo, "wrote %d trace blocks (%s) to %s", tw.Blocks(), humanize.Bytes(uint64(tw.Written())), cfg.TracePath)
	}
	return nil
}
