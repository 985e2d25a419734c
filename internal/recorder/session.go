// Package recorder assigns a global order to intercepted API calls and ties
// command-buffer commands to the Begin/End recording they were made in.
//
// A CaptureSession is owned by the capture host and shared by all recording
// threads. Call indices come from one atomic counter; per-handle recording
// state lives in a sharded CorrelationIndex.
package recorder

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"gputrace/internal/common"
	"gputrace/internal/tracetree"
)

// ArgsBuilder fills the argument object of one call.
type ArgsBuilder func(args *tracetree.Object)

// Record is one intercepted call. The session keeps its own copy, so the
// logged record never changes after it is appended.
type Record struct {
	CallIndex uint64
	Name      string
	ThreadID  uint64

	HasHandle bool
	Handle    Identity

	HasRecordIndex bool
	RecordIndex    uint32

	Args      *tracetree.Object
	Return    *tracetree.Value // nil when the call has no return value
	Anomalies Anomaly
}

// RecordIndexOf returns the record index, if the call belongs to a recording.
func (r *Record) RecordIndexOf() (uint32, bool) {
	return r.RecordIndex, r.HasRecordIndex
}

func (r *Record) String() string {
	s := fmt.Sprintf("Idx:%d; %s", r.CallIndex, r.Name)
	if r.HasHandle {
		s += "; cb=" + r.Handle.String()
	}
	if r.HasRecordIndex {
		s += fmt.Sprintf("; rec=%d", r.RecordIndex)
	}
	if r.Anomalies != 0 {
		s += "; anomaly=" + r.Anomalies.String()
	}
	return s
}

// clone copies r with its own argument and return trees.
func (r Record) clone() Record {
	if r.Args != nil {
		r.Args = r.Args.Clone()
	}
	if r.Return != nil {
		r.Return = r.Return.Clone()
	}
	return r
}

// RecordOption adjusts a record before it is appended.
type RecordOption func(*Record)

// WithReturn attaches the call's return value.
func WithReturn(v *tracetree.Value) RecordOption {
	return func(r *Record) { r.Return = v }
}

// WithThreadID tags the record with the calling thread.
func WithThreadID(id uint64) RecordOption {
	return func(r *Record) { r.ThreadID = id }
}

// SessionOption configures a CaptureSession.
type SessionOption func(*CaptureSession)

// WithLogger sets the logger anomalies are reported to.
func WithLogger(l common.Logger) SessionOption {
	return func(s *CaptureSession) { s.logger = l }
}

// WithShards sets the number of correlation index shards.
func WithShards(n int) SessionOption {
	return func(s *CaptureSession) { s.shards = n }
}

// WithSessionID overrides the random session id.
func WithSessionID(id uuid.UUID) SessionOption {
	return func(s *CaptureSession) { s.id = id }
}

// CaptureSession is the recording context of one capture.
type CaptureSession struct {
	id     uuid.UUID
	logger common.Logger
	shards int
	next   atomic.Uint64
	index  *CorrelationIndex

	mu  sync.Mutex
	log []Record
}

// NewCaptureSession creates a session whose call indices start at 0.
func NewCaptureSession(opts ...SessionOption) *CaptureSession {
	s := &CaptureSession{
		id:     uuid.New(),
		logger: common.NewNoOpLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.index = NewCorrelationIndex(s.shards)
	return s
}

func (s *CaptureSession) ID() uuid.UUID { return s.id }

// Index exposes the correlation index for read-only queries.
func (s *CaptureSession) Index() *CorrelationIndex { return s.index }

// NextCallIndex allocates the next global call index.
func (s *CaptureSession) NextCallIndex() uint64 {
	return s.next.Add(1) - 1
}

// GetCommandBufferRecordIndex returns the record index of the recording
// currently open on h.
func (s *CaptureSession) GetCommandBufferRecordIndex(h Handle) (uint32, bool) {
	return s.index.Current(h)
}

// RecordApiCall appends a call that is not tied to a command buffer.
func (s *CaptureSession) RecordApiCall(name string, build ArgsBuilder, opts ...RecordOption) Record {
	r := Record{CallIndex: s.NextCallIndex(), Name: name}
	return s.finish(r, build, opts)
}

// RecordCommand appends a command recorded into h. A command on a closed
// handle is kept with no record index and the OrphanedCommand flag.
func (s *CaptureSession) RecordCommand(h Handle, name string, build ArgsBuilder, opts ...RecordOption) Record {
	r := Record{CallIndex: s.NextCallIndex(), Name: name}
	s.stamp(&r, s.index.Command(h))
	return s.finish(r, build, opts)
}

// BeginCommandBuffer opens a new recording on h.
func (s *CaptureSession) BeginCommandBuffer(h Handle, name string, build ArgsBuilder, opts ...RecordOption) Record {
	r := Record{CallIndex: s.NextCallIndex(), Name: name}
	s.stamp(&r, s.index.Begin(h))
	return s.finish(r, build, opts)
}

// EndCommandBuffer closes the recording on h. The record carries the index
// of the recording it closed.
func (s *CaptureSession) EndCommandBuffer(h Handle, name string, build ArgsBuilder, opts ...RecordOption) Record {
	r := Record{CallIndex: s.NextCallIndex(), Name: name}
	s.stamp(&r, s.index.End(h))
	return s.finish(r, build, opts)
}

// ResetCommandBuffer returns h to the closed state.
func (s *CaptureSession) ResetCommandBuffer(h Handle, name string, build ArgsBuilder, opts ...RecordOption) Record {
	r := Record{CallIndex: s.NextCallIndex(), Name: name}
	s.stamp(&r, s.index.Reset(h))
	return s.finish(r, build, opts)
}

// FreeCommandBuffers retires every handle in hs as one call.
func (s *CaptureSession) FreeCommandBuffers(hs []Handle, name string, build ArgsBuilder, opts ...RecordOption) Record {
	r := Record{CallIndex: s.NextCallIndex(), Name: name}
	for _, h := range hs {
		s.index.Free(h)
	}
	return s.finish(r, build, opts)
}

func (s *CaptureSession) stamp(r *Record, t Transition) {
	r.HasHandle = true
	r.Handle = t.ID
	r.HasRecordIndex = t.Recording
	r.RecordIndex = t.RecordIndex
	r.Anomalies |= t.Anomaly
}

func (s *CaptureSession) finish(r Record, build ArgsBuilder, opts []RecordOption) Record {
	r.Args = tracetree.NewObject()
	if build != nil && !s.build(&r, build) {
		r.Anomalies |= AnomalyArgsIncomplete
	}
	for _, opt := range opts {
		opt(&r)
	}
	if r.Anomalies != 0 {
		s.logAnomaly(&r)
	}

	logged := r.clone()
	s.mu.Lock()
	s.log = append(s.log, logged)
	s.mu.Unlock()
	return r
}

// build runs the caller's builder; a panic leaves a partial argument tree.
func (s *CaptureSession) build(r *Record, build ArgsBuilder) (ok bool) {
	defer func() {
		if p := recover(); p != nil {
			s.logger.Error(fmt.Errorf("recorder: argument builder for %s (call %d) panicked: %v", r.Name, r.CallIndex, p))
			ok = false
		}
	}()
	build(r.Args)
	return true
}

func (s *CaptureSession) logAnomaly(r *Record) {
	if zl := zerologOf(s.logger); zl != nil {
		ev := zl.Warn().
			Str("session", s.id.String()).
			Uint64("call", r.CallIndex).
			Str("function", r.Name).
			Strs("anomalies", r.Anomalies.Names())
		if r.HasHandle {
			ev = ev.Str("handle", r.Handle.String())
		}
		if r.HasRecordIndex {
			ev = ev.Uint32("record_index", r.RecordIndex)
		}
		ev.Msg("api call anomaly")
		return
	}
	s.logger.Logf(common.SeverityWarning, "recorder: %s", r.String())
}

func zerologOf(l common.Logger) *zerolog.Logger {
	if zl, ok := l.(interface{ Zerolog() *zerolog.Logger }); ok {
		return zl.Zerolog()
	}
	return nil
}

// Len returns the number of records appended so far.
func (s *CaptureSession) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.log)
}

// Records returns a copy of the log ordered by call index. Changes to the
// returned records do not reach the log.
func (s *CaptureSession) Records() []Record {
	s.mu.Lock()
	out := make([]Record, len(s.log))
	for i := range s.log {
		out[i] = s.log[i].clone()
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CallIndex < out[j].CallIndex })
	return out
}

// Anomalies counts records per anomaly flag.
func (s *CaptureSession) Anomalies() map[Anomaly]int {
	counts := make(map[Anomaly]int)
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.log {
		for _, a := range AllAnomalies() {
			if s.log[i].Anomalies.Has(a) {
				counts[a]++
			}
		}
	}
	return counts
}
