// Package tracewriter serializes recorded API calls and decoded PM4 packets
// as JSON lines, one block per line, optionally inside an lz4 frame.
package tracewriter

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/goccy/go-json"
	"github.com/pierrec/lz4/v4"

	"gputrace/internal/common"
	"gputrace/internal/gfx"
	"gputrace/internal/pm4"
	"gputrace/internal/recorder"
	"gputrace/internal/tracetree"
)

// Option configures a Writer.
type Option func(*Writer)

// WithLZ4 wraps the output in an lz4 frame.
func WithLZ4() Option {
	return func(w *Writer) { w.compress = true }
}

// WithLevel sets the lz4 compression level. It implies WithLZ4.
func WithLevel(level lz4.CompressionLevel) Option {
	return func(w *Writer) {
		w.compress = true
		w.level = level
	}
}

// Writer is safe for concurrent use; blocks never interleave.
type Writer struct {
	compress bool
	level    lz4.CompressionLevel

	mu      sync.Mutex
	lz      *lz4.Writer
	out     *bufio.Writer
	line    []byte
	blocks  int
	written int64
	closed  bool
}

// New creates a writer on dst. Close must be called to flush the output;
// it does not close dst.
func New(dst io.Writer, opts ...Option) (*Writer, error) {
	w := &Writer{level: lz4.Fast}
	for _, opt := range opts {
		opt(w)
	}
	if w.compress {
		w.lz = lz4.NewWriter(dst)
		if err := w.lz.Apply(lz4.CompressionLevelOption(w.level)); err != nil {
			return nil, fmt.Errorf("tracewriter: lz4 options: %w", err)
		}
		dst = w.lz
	}
	w.out = bufio.NewWriterSize(dst, 64*1024)
	return w, nil
}

// Header describes the capture a trace was produced from.
type Header struct {
	Session    string         `json:"session,omitempty"`
	Generation gfx.Generation `json:"-"`
	GenName    string         `json:"generation"`
	Buffers    int            `json:"buffers"`
	Calls      int            `json:"calls,omitempty"`
}

// BufferStart announces the packets of one command buffer.
type BufferStart struct {
	Name   string `json:"name"`
	Dwords int    `json:"dwords"`
}

// WriteHeader writes the {"capture":{...}} block.
func (w *Writer) WriteHeader(h Header) error {
	h.GenName = h.Generation.String()
	b, err := json.Marshal(struct {
		Capture Header `json:"capture"`
	}{h})
	if err != nil {
		return common.Errorf(gfx.ErrWriteFailed, "encode header: %v", err)
	}
	return w.writeLine(b)
}

// WriteBufferStart writes the {"buffer":{...}} block.
func (w *Writer) WriteBufferStart(b BufferStart) error {
	line, err := json.Marshal(struct {
		Buffer BufferStart `json:"buffer"`
	}{b})
	if err != nil {
		return common.Errorf(gfx.ErrWriteFailed, "encode buffer %s: %v", b.Name, err)
	}
	return w.writeLine(line)
}

// WriteCall writes {"index":N,"function":{...}} for one record.
func (w *Writer) WriteCall(r *recorder.Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	line := append(w.line[:0], `{"index":`...)
	line = strconv.AppendUint(line, r.CallIndex, 10)
	line = append(line, `,"function":`...)
	line, err := CallObject(r).AppendJSON(line)
	if err != nil {
		return common.Errorf(gfx.ErrWriteFailed, "encode call %d: %v", r.CallIndex, err)
	}
	w.line = append(line, '}')
	return w.emitLocked(w.line)
}

// WritePacket writes {"pm4":{...}} for one decoded packet.
func (w *Writer) WritePacket(p *pm4.Packet) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	line := append(w.line[:0], `{"pm4":`...)
	line, err := p.Value().AppendJSON(line)
	if err != nil {
		return common.Errorf(gfx.ErrWriteFailed, "encode packet at %d: %v", p.Offset, err)
	}
	w.line = append(line, '}')
	return w.emitLocked(w.line)
}

// WriteCalls writes every record in order and stops at the first error.
func (w *Writer) WriteCalls(records []recorder.Record) error {
	for i := range records {
		if err := w.WriteCall(&records[i]); err != nil {
			return err
		}
	}
	return nil
}

// WritePackets writes every packet in order and stops at the first error.
func (w *Writer) WritePackets(pkts []pm4.Packet) error {
	for i := range pkts {
		if err := w.WritePacket(&pkts[i]); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) writeLine(b []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.emitLocked(b)
}

func (w *Writer) emitLocked(b []byte) error {
	if w.closed {
		return common.NewErrorMsg(gfx.ErrSevError, gfx.ErrWriteFailed, "write on closed trace writer")
	}
	n, err := w.out.Write(b)
	if err == nil {
		err = w.out.WriteByte('\n')
		n++
	}
	w.written += int64(n)
	if err != nil {
		return fmt.Errorf("tracewriter: %w", err)
	}
	w.blocks++
	return nil
}

// Blocks returns the number of blocks written.
func (w *Writer) Blocks() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.blocks
}

// Written returns the uncompressed byte count.
func (w *Writer) Written() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.written
}

// Close flushes buffered blocks and terminates the lz4 frame.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.out.Flush(); err != nil {
		return fmt.Errorf("tracewriter: flush: %w", err)
	}
	if w.lz != nil {
		if err := w.lz.Close(); err != nil {
			return fmt.Errorf("tracewriter: close lz4 frame: %w", err)
		}
	}
	return nil
}

// CallObject renders the "function" object of a record.
func CallObject(r *recorder.Record) *tracetree.Object {
	o := tracetree.NewObject()
	o.SetString("name", r.Name)
	o.SetString("thread", strconv.FormatUint(r.ThreadID, 10))
	if r.HasHandle {
		o.SetString("handle", r.Handle.String())
	}
	if idx, ok := r.RecordIndexOf(); ok {
		o.SetString("record_index", strconv.FormatUint(uint64(idx), 10))
	}
	if r.Anomalies != 0 {
		arr := o.GetOrInsert("anomalies").Array()
		for _, name := range r.Anomalies.Names() {
			arr.AppendString(name)
		}
	}
	if r.Return != nil {
		o.Set("return", r.Return)
	}
	args := r.Args
	if args == nil {
		args = tracetree.NewObject()
	}
	o.Set("args", tracetree.Wrap(args))
	return o
}
