package printers

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"gputrace/internal/common"
	"gputrace/internal/gfx"
	"gputrace/internal/pm4"
	"gputrace/internal/recorder"
)

func TestItemPrinter(t *testing.T) {
	var buf, logged bytes.Buffer
	p := NewItemPrinter(&buf)
	p.SetMute(true)
	if !p.IsMuted() {
		t.Error("expected muted")
	}
	p.MuteIDPrint(true)
	if !p.IDPrintMuted() {
		t.Error("expected id print muted")
	}

	p.SetMessageLogger(common.NewZeroLogger(&logged, common.SeverityInfo))
	p.ItemPrintLine("Hello Test\n")
	if buf.String() != "Hello Test\n" {
		t.Errorf("buf string mismatch: %q", buf.String())
	}
	if !strings.Contains(logged.String(), `"message":"Hello Test\n"`) {
		t.Errorf("logger output mismatch: %q", logged.String())
	}
}

func decode(t *testing.T, words ...uint32) []pm4.Packet {
	t.Helper()
	pkts, _ := pm4.NewDecoder().Decode(words, gfx.Gen9)
	return pkts
}

func TestPacketPrinter(t *testing.T) {
	pkts := decode(t,
		pm4.MakeType3(pm4.OpNumInstances, 1), 2,
		pm4.MakeType3(pm4.OpNumInstances, 1), 4,
		pm4.MakeType3(pm4.OpIndexType, 1), 1,
		0x00000000,
		pm4.MakeType3(pm4.OpNop, 3), 1,
	)

	var buf bytes.Buffer
	pp := NewPacketPrinter(&buf)
	pp.SetCollectStats()

	pp.SetMute(true)
	pp.PacketIn("ib0", &pkts[0])
	if buf.Len() != 0 {
		t.Errorf("muted printer wrote %q", buf.String())
	}
	pp.SetMute(false)

	pp.PacketIn("ib0", &pkts[0])
	if want := "Buf:ib0; Idx:0; NUM_INSTANCES; len=2; num_instances=2\n"; buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}

	buf.Reset()
	pp.MuteIDPrint(true)
	pp.SetShowRaw(true)
	pp.PacketIn("ib0", &pkts[1])
	if want := "Idx:2; NUM_INSTANCES; len=2; num_instances=4\n    c0002f00 00000004 \n"; buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
	pp.SetShowRaw(false)

	buf.Reset()
	pp.PacketsIn("ib0", pkts[2:])
	buf.Reset()
	pp.PrintStats()
	want := strings.Join([]string{
		"PM4 packets processed:-",
		"Ok : 4",
		"Opaque : 1",
		"Truncated : 1",
		"Opcodes:-",
		"INDEX_TYPE (0x2A) : 1",
		"NUM_INSTANCES (0x2F) : 3",
		"", "",
	}, "\n")
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}
}

func TestRawDwords(t *testing.T) {
	words := make([]uint32, 9)
	for i := range words {
		words[i] = uint32(i)
	}
	want := "    00000000 00000001 00000002 00000003 00000004 00000005 00000006 00000007 \n    00000008 \n"
	if got := rawDwords(words); got != want {
		t.Errorf("rawDwords = %q, want %q", got, want)
	}
	if got := rawDwords(words[:8]); strings.Count(got, "\n") != 1 {
		t.Errorf("full line dump = %q", got)
	}
}

func TestCallPrinter(t *testing.T) {
	s := recorder.NewCaptureSession()
	s.BeginCommandBuffer(0xC0, "vkBeginCommandBuffer", nil, recorder.WithThreadID(3))
	s.RecordCommand(0xC0, "vkCmdDraw", nil, recorder.WithThreadID(3))
	s.EndCommandBuffer(0xC0, "vkEndCommandBuffer", nil, recorder.WithThreadID(3))
	s.EndCommandBuffer(0xC0, "vkEndCommandBuffer", nil, recorder.WithThreadID(3))
	s.RecordApiCall("vkQueueSubmit", nil, recorder.WithThreadID(3))
	records := s.Records()

	var buf bytes.Buffer
	cp := NewCallPrinter(&buf)
	cp.SetCollectStats()
	for i := range records {
		cp.RecordIn(&records[i])
	}
	for _, sub := range recorder.GroupSubmits(records) {
		cp.SubmitIn(&sub)
	}
	cp.PrintStats()

	want := strings.Join([]string{
		"Thr:3; Idx:0; vkBeginCommandBuffer; cb=0xC0#0; rec=0",
		"Thr:3; Idx:1; vkCmdDraw; cb=0xC0#0; rec=0",
		"Thr:3; Idx:2; vkEndCommandBuffer; cb=0xC0#0; rec=0",
		"Thr:3; Idx:3; vkEndCommandBuffer; cb=0xC0#0; anomaly=unmatched_end",
		"Thr:3; Idx:4; vkQueueSubmit",
		"Submit: vkQueueSubmit; Idx:4; command buffers=1; commands=2; draws=1",
		"    Idx:0; vkBeginCommandBuffer; rec=0",
		"    Idx:1; vkCmdDraw; rec=0",
		"API calls processed:-",
		"calls : 5",
		"implicit_reopen : 0",
		"orphaned_command : 0",
		"unmatched_end : 1",
		"args_incomplete : 0",
		"", "",
	}, "\n")
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}
