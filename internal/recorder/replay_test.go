package recorder

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"gputrace/internal/common"
	"gputrace/internal/gfx"
)

const callLog = `{"thread":7,"function":"vkCreateCommandPool","args":{"flags":"0x2","queueFamilyIndex":0},"return":"VK_SUCCESS"}
{"thread":7,"function":"vkBeginCommandBuffer","handle":192}

{"thread":7,"function":"vkCmdDraw","handle":192,"args":{"vertexCount":3,"instanceCount":1}}
{"thread":7,"function":"vkCmdBindPipeline","handle":192,"args":[1,2]}
{"thread":7,"function":"vkEndCommandBuffer","handle":192}
{"thread":7,"function":"vkQueueSubmit","args":{"submitCount":1}}
{"thread":7,"function":"vkFreeCommandBuffers","handles":[192]}
{"thread":7,"function":"vkBeginCommandBuffer","handle":192}
`

func TestReplay(t *testing.T) {
	events, err := ReadEvents(strings.NewReader(callLog))
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 8 {
		t.Fatalf("read %d events, want 8", len(events))
	}

	el := common.NewErrorLogger(nil)
	s := NewCaptureSession(WithLogger(el))
	recs := s.Replay(events)

	want := []recView{
		{"vkCreateCommandPool", false, 0, 0},
		{"vkBeginCommandBuffer", true, 0, 0},
		{"vkCmdDraw", true, 0, 0},
		{"vkCmdBindPipeline", true, 0, AnomalyArgsIncomplete},
		{"vkEndCommandBuffer", true, 0, 0},
		{"vkQueueSubmit", false, 0, 0},
		{"vkFreeCommandBuffers", false, 0, 0},
		{"vkBeginCommandBuffer", true, 1, 0},
	}
	if diff := cmp.Diff(want, view(recs...)); diff != "" {
		t.Errorf("replayed records (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(recs, s.Records(), cmp.Comparer(func(a, b Record) bool {
		return a.CallIndex == b.CallIndex && a.Name == b.Name && a.Args.Equal(b.Args)
	})); diff != "" {
		t.Errorf("session log differs from replay result (-replay +log):\n%s", diff)
	}

	if got := recs[0].Return; got == nil || got.String() != "VK_SUCCESS" || recs[0].ThreadID != 7 {
		t.Errorf("first record return/thread: %v %d", got, recs[0].ThreadID)
	}
	args, err := recs[2].Args.AppendJSON(nil)
	if err != nil {
		t.Fatal(err)
	}
	if want := `{"vertexCount":"3","instanceCount":"1"}`; string(args) != want {
		t.Errorf("vkCmdDraw args = %s, want %s", args, want)
	}
	if recs[3].Args.Len() != 0 {
		t.Errorf("unreadable args kept %d keys", recs[3].Args.Len())
	}
	if id := recs[7].Handle; id != (Identity{Handle: 192, Generation: 1}) {
		t.Errorf("reused handle identity = %v", id)
	}

	if n := el.Count(gfx.ErrInvalidParamVal); n != 1 {
		t.Errorf("logged %d argument errors, want 1", n)
	}
	if err := el.LastError(); err == nil || !strings.Contains(err.Error(), "vkCmdBindPipeline: arguments") {
		t.Errorf("LastError() = %v", err)
	}

	subs := GroupSubmits(recs)
	if len(subs) != 1 || subs[0].CommandBufferCount != 1 || subs[0].Commands[0].DrawCount != 1 {
		t.Errorf("submits = %+v", subs)
	}
}

func TestWriteEventsReadBack(t *testing.T) {
	in := []Event{
		{Thread: 1, Function: "vkBeginCommandBuffer", Handle: 0xC0},
		{Thread: 1, Function: "vkCmdDraw", Handle: 0xC0, Args: []byte(`{"vertexCount":3}`)},
		{Function: "vkFreeCommandBuffers", Handles: []uint64{0xC0, 0xC1}},
	}
	var buf bytes.Buffer
	if err := WriteEvents(&buf, in); err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(buf.String(), "\n"); got != len(in) {
		t.Errorf("wrote %d lines, want %d", got, len(in))
	}
	out, err := ReadEvents(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
}

func TestReadEventsErrors(t *testing.T) {
	for _, in := range []string{
		"{\"function\":\"vkCmdDraw\"}\n{not json}\n",
		"{\"thread\":1}\n",
	} {
		_, err := ReadEvents(strings.NewReader(in))
		if !errors.Is(err, common.ErrInvalidParamVal) {
			t.Errorf("ReadEvents(%q) = %v, want InvalidParamVal", in, err)
		}
	}
}
