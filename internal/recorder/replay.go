package recorder

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"

	"gputrace/internal/common"
	"gputrace/internal/gfx"
	"gputrace/internal/tracetree"
)

// Event is one intercepted call as the capture layer logs it, before a
// session orders it. Handle names the command buffer of vkCmd* calls and of
// vkBegin/End/ResetCommandBuffer; Handles lists the buffers released by
// vkFreeCommandBuffers.
type Event struct {
	Thread   uint64          `json:"thread,omitempty"`
	Function string          `json:"function"`
	Handle   uint64          `json:"handle,omitempty"`
	Handles  []uint64        `json:"handles,omitempty"`
	Args     json.RawMessage `json:"args,omitempty"`
	Return   string          `json:"return,omitempty"`
}

// ReadEvents reads a JSON-lines call log. Blank lines are skipped.
func ReadEvents(r io.Reader) ([]Event, error) {
	var out []Event
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16<<20)
	for line := 1; sc.Scan(); line++ {
		b := bytes.TrimSpace(sc.Bytes())
		if len(b) == 0 {
			continue
		}
		var ev Event
		if err := json.Unmarshal(b, &ev); err != nil {
			return nil, common.Errorf(gfx.ErrInvalidParamVal, "call log line %d: %v", line, err)
		}
		if ev.Function == "" {
			return nil, common.Errorf(gfx.ErrInvalidParamVal, "call log line %d: missing function", line)
		}
		out = append(out, ev)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("call log: %w", err)
	}
	return out, nil
}

// WriteEvents writes events as a JSON-lines call log.
func WriteEvents(w io.Writer, events []Event) error {
	bw := bufio.NewWriter(w)
	for i := range events {
		b, err := json.Marshal(&events[i])
		if err != nil {
			return err
		}
		bw.Write(b)
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// Replay records events in order, dispatching on the function name the way
// the capture layer does for live calls. Arguments that are not a JSON
// object are reported to the session logger; the call is still recorded,
// with empty arguments and the ArgsIncomplete flag.
func (s *CaptureSession) Replay(events []Event) []Record {
	out := make([]Record, 0, len(events))
	for i := range events {
		out = append(out, s.replay(i, &events[i]))
	}
	return out
}

func (s *CaptureSession) replay(n int, ev *Event) Record {
	opts := []RecordOption{WithThreadID(ev.Thread)}
	if ev.Return != "" {
		opts = append(opts, WithReturn(tracetree.Str(ev.Return)))
	}

	var build ArgsBuilder
	if len(ev.Args) != 0 {
		args, err := eventArgs(ev.Args)
		if err != nil {
			s.logger.Error(common.NewErrorWithIdxMsg(gfx.ErrSevError, gfx.ErrInvalidParamVal, gfx.Index(n),
				fmt.Sprintf("%s: arguments: %v", ev.Function, err)))
			opts = append(opts, func(r *Record) { r.Anomalies |= AnomalyArgsIncomplete })
		} else {
			build = func(o *tracetree.Object) {
				for k, v := range args.All() {
					o.Set(k, v)
				}
			}
		}
	}

	h := Handle(ev.Handle)
	switch ev.Function {
	case "vkBeginCommandBuffer":
		return s.BeginCommandBuffer(h, ev.Function, build, opts...)
	case "vkEndCommandBuffer":
		return s.EndCommandBuffer(h, ev.Function, build, opts...)
	case "vkResetCommandBuffer":
		return s.ResetCommandBuffer(h, ev.Function, build, opts...)
	case "vkFreeCommandBuffers":
		hs := make([]Handle, len(ev.Handles))
		for i, v := range ev.Handles {
			hs[i] = Handle(v)
		}
		return s.FreeCommandBuffers(hs, ev.Function, build, opts...)
	}
	if strings.HasPrefix(ev.Function, "vkCmd") {
		return s.RecordCommand(h, ev.Function, build, opts...)
	}
	return s.RecordApiCall(ev.Function, build, opts...)
}

func eventArgs(raw []byte) (*tracetree.Object, error) {
	v, err := tracetree.ParseJSON(raw)
	if err != nil {
		return nil, err
	}
	o, ok := v.AsObject()
	if !ok {
		return nil, fmt.Errorf("%s is not an object", v.Kind())
	}
	return o, nil
}
