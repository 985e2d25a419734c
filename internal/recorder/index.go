package recorder

import "sync"

const defaultShards = 32

type handleState struct {
	generation uint32
	recording  bool
	current    uint32
	next       uint32
}

type shard struct {
	mu      sync.Mutex
	handles map[Handle]*handleState
}

// CorrelationIndex tracks the recording state of every command buffer.
// State is sharded by handle so threads recording different command
// buffers rarely contend.
type CorrelationIndex struct {
	shards []shard
}

// NewCorrelationIndex creates an index with n shards (n <= 0 selects the default).
func NewCorrelationIndex(n int) *CorrelationIndex {
	if n <= 0 {
		n = defaultShards
	}
	idx := &CorrelationIndex{shards: make([]shard, n)}
	for i := range idx.shards {
		idx.shards[i].handles = make(map[Handle]*handleState)
	}
	return idx
}

func (c *CorrelationIndex) shardFor(h Handle) *shard {
	x := uint64(h)
	x ^= x >> 33
	x *= 0xff51afd7ed558ccd
	x ^= x >> 33
	return &c.shards[x%uint64(len(c.shards))]
}

// with runs fn on the state of h while holding its shard lock.
func (c *CorrelationIndex) with(h Handle, fn func(st *handleState)) {
	s := c.shardFor(h)
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.handles[h]
	if !ok {
		st = &handleState{}
		s.handles[h] = st
	}
	fn(st)
}

// Transition is the outcome of one state change.
type Transition struct {
	ID          Identity
	RecordIndex uint32
	Recording   bool // RecordIndex is meaningful
	Anomaly     Anomaly
}

// Begin opens a new recording. Beginning a handle that is already
// recording closes the old recording first and flags ImplicitReopen.
func (c *CorrelationIndex) Begin(h Handle) Transition {
	var t Transition
	c.with(h, func(st *handleState) {
		t.ID = Identity{h, st.generation}
		if st.recording {
			t.Anomaly = AnomalyImplicitReopen
		}
		st.recording = true
		st.current = st.next
		st.next++
		t.RecordIndex, t.Recording = st.current, true
	})
	return t
}

// End closes the current recording. The returned record index is the one
// being closed.
func (c *CorrelationIndex) End(h Handle) Transition {
	var t Transition
	c.with(h, func(st *handleState) {
		t.ID = Identity{h, st.generation}
		if !st.recording {
			t.Anomaly = AnomalyUnmatchedEnd
			return
		}
		t.RecordIndex, t.Recording = st.current, true
		st.recording = false
	})
	return t
}

// Command resolves the recording a command on h belongs to.
func (c *CorrelationIndex) Command(h Handle) Transition {
	var t Transition
	c.with(h, func(st *handleState) {
		t.ID = Identity{h, st.generation}
		if !st.recording {
			t.Anomaly = AnomalyOrphanedCommand
			return
		}
		t.RecordIndex, t.Recording = st.current, true
	})
	return t
}

// Reset returns h to the closed state without retiring its identity.
func (c *CorrelationIndex) Reset(h Handle) Transition {
	var t Transition
	c.with(h, func(st *handleState) {
		t.ID = Identity{h, st.generation}
		st.recording = false
	})
	return t
}

// Free closes h and retires its identity. The record index sequence keeps
// counting so a recycled handle value never repeats an index.
func (c *CorrelationIndex) Free(h Handle) Transition {
	var t Transition
	c.with(h, func(st *handleState) {
		t.ID = Identity{h, st.generation}
		st.recording = false
		st.generation++
	})
	return t
}

// Current returns the record index of the open recording on h.
func (c *CorrelationIndex) Current(h Handle) (uint32, bool) {
	s := c.shardFor(h)
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.handles[h]
	if !ok || !st.recording {
		return 0, false
	}
	return st.current, true
}

// Identity returns the live identity of h.
func (c *CorrelationIndex) Identity(h Handle) Identity {
	s := c.shardFor(h)
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.handles[h]; ok {
		return Identity{h, st.generation}
	}
	return Identity{Handle: h}
}
