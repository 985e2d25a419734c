package lister

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pierrec/lz4/v4"

	"gputrace/internal/capture"
	"gputrace/internal/common"
	"gputrace/internal/gfx"
	"gputrace/internal/pm4"
	"gputrace/internal/recorder"
)

func writeCapture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	c := &capture.Capture{
		Generation: gfx.Gen9,
		Buffers: []capture.Buffer{
			{BufferInfo: capture.BufferInfo{Name: "gfx"}, Dwords: []uint32{pm4.MakeType3(pm4.OpNumInstances, 1), 5}},
			{BufferInfo: capture.BufferInfo{Name: "compute"}, Dwords: []uint32{pm4.MakeType3(pm4.OpPfpSyncMe, 1), 0}},
		},
	}
	if err := capture.Save(dir, c, true); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestRunWritesTrace(t *testing.T) {
	dir := writeCapture(t)
	tracePath := filepath.Join(t.TempDir(), "trace.jsonl.lz4")

	var out bytes.Buffer
	err := Run(Config{CaptureDir: dir, TracePath: tracePath, Compress: true, OutputWriter: &out})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Buf:gfx; Idx:0; NUM_INSTANCES; len=2; num_instances=5\n") {
		t.Errorf("listing missing packet line:\n%s", out.String())
	}

	f, err := os.Open(tracePath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	var lines []string
	sc := bufio.NewScanner(lz4.NewReader(f))
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		t.Fatal(err)
	}

	want := []string{
		`{"capture":{"generation":"gfx9","buffers":2}}`,
		`{"buffer":{"name":"gfx","dwords":2}}`,
		`{"pm4":{"offset":"0","opcode":"0x2F"`,
		`{"buffer":{"name":"compute","dwords":2}}`,
		`{"pm4":{"offset":"0","opcode":"0x42","mnemonic":"PFP_SYNC_ME"`,
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d trace lines, want %d:\n%s", len(lines), len(want), strings.Join(lines, "\n"))
	}
	for i, prefix := range want {
		if !strings.HasPrefix(lines[i], prefix) {
			t.Errorf("line %d = %s, want prefix %s", i, lines[i], prefix)
		}
	}
}

func TestRunTrailingBytes(t *testing.T) {
	dir := t.TempDir()
	ini := "[capture]\ngeneration=gfx9\n[buffer.gfx]\nfile=gfx.bin\n"
	if err := os.WriteFile(filepath.Join(dir, capture.DescriptorFilename), []byte(ini), 0o644); err != nil {
		t.Fatal(err)
	}
	var data []byte
	for _, v := range []uint32{pm4.MakeType3(pm4.OpNumInstances, 1), 5} {
		data = binary.LittleEndian.AppendUint32(data, v)
	}
	data = append(data, 0xAA, 0xBB)
	if err := os.WriteFile(filepath.Join(dir, "gfx.bin"), data, 0o644); err != nil {
		t.Fatal(err)
	}
	tracePath := filepath.Join(t.TempDir(), "trace.jsonl")

	var out bytes.Buffer
	if err := Run(Config{CaptureDir: dir, TracePath: tracePath, OutputWriter: &out}); err != nil {
		t.Fatal(err)
	}
	got := out.String()
	for _, want := range []string{
		"Buf:gfx; Idx:0; NUM_INSTANCES; len=2; num_instances=5\n",
		"Buf:gfx; Idx:2; - [Truncated: 2 trailing bytes]; len=0\n",
		"Decoded 2 packets from 1 buffers (10 B): ok=1 opaque=0 unknown=0 reserved=0 truncated=true\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}

	trace, err := os.ReadFile(tracePath)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(trace)), "\n")
	if last := lines[len(lines)-1]; !strings.Contains(last, `"status":"Truncated","reason":"2 trailing bytes"`) {
		t.Errorf("last trace line = %s", last)
	}
}

func TestRunReplaysCalls(t *testing.T) {
	dir := t.TempDir()
	c := &capture.Capture{
		Generation: gfx.Gen9,
		Buffers: []capture.Buffer{
			{BufferInfo: capture.BufferInfo{Name: "gfx"}, Dwords: []uint32{pm4.MakeType3(pm4.OpNumInstances, 1), 5}},
		},
		Calls: []recorder.Event{
			{Thread: 3, Function: "vkBeginCommandBuffer", Handle: 0xC0},
			{Thread: 3, Function: "vkCmdDraw", Handle: 0xC0, Args: []byte(`{"vertexCount":3}`)},
			{Thread: 3, Function: "vkCmdDispatch", Handle: 0xC0, Args: []byte(`"oops"`)},
			{Thread: 3, Function: "vkEndCommandBuffer", Handle: 0xC0},
			{Thread: 3, Function: "vkEndCommandBuffer", Handle: 0xC0},
			{Thread: 3, Function: "vkQueueSubmit", Return: "VK_SUCCESS"},
		},
	}
	if err := capture.Save(dir, c, true); err != nil {
		t.Fatal(err)
	}
	tracePath := filepath.Join(t.TempDir(), "trace.jsonl")

	var out bytes.Buffer
	if err := Run(Config{CaptureDir: dir, TracePath: tracePath, Stats: true, OutputWriter: &out}); err != nil {
		t.Fatal(err)
	}
	got := out.String()
	for _, want := range []string{
		"API calls (6)\n",
		"Thr:3; Idx:0; vkBeginCommandBuffer; cb=0xC0#0; rec=0\n",
		"Thr:3; Idx:2; vkCmdDispatch; cb=0xC0#0; rec=0; anomaly=args_incomplete\n",
		"Thr:3; Idx:4; vkEndCommandBuffer; cb=0xC0#0; anomaly=unmatched_end\n",
		"Submit: vkQueueSubmit; Idx:5; command buffers=1; commands=3; draws=1\n",
		"calls : 6\n",
		"unmatched_end : 1\n",
		"args_incomplete : 1\n",
		"Replayed 6 calls in 1 submits: anomalies=2\n",
		"Call log errors: 1 (last: ",
		"vkCmdDispatch: arguments: string is not an object",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}

	trace, err := os.ReadFile(tracePath)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(trace)), "\n")
	if len(lines) != 9 {
		t.Fatalf("got %d trace lines, want 9:\n%s", len(lines), trace)
	}
	if !strings.HasPrefix(lines[0], `{"capture":{"session":"`) || !strings.HasSuffix(lines[0], `"generation":"gfx9","buffers":1,"calls":6}}`) {
		t.Errorf("header = %s", lines[0])
	}
	want := `{"index":1,"function":{"name":"vkCmdDraw","thread":"3","handle":"0xC0#0","record_index":"0","args":{"vertexCount":"3"}}}`
	if lines[4] != want {
		t.Errorf("call line = %s, want %s", lines[4], want)
	}
	if !strings.HasPrefix(lines[8], `{"index":5,"function":{"name":"vkQueueSubmit","thread":"3","return":"VK_SUCCESS"`) {
		t.Errorf("last call line = %s", lines[8])
	}
}

func TestRunOptions(t *testing.T) {
	dir := writeCapture(t)

	var out bytes.Buffer
	err := Run(Config{CaptureDir: dir, Buffer: "compute", Generation: "gfx11", ShowRaw: true, OutputWriter: &out})
	if err != nil {
		t.Fatal(err)
	}
	got := out.String()
	for _, want := range []string{
		"Generation: gfx11; buffers: 1\n",
		"Buf:compute; Idx:0; PFP_SYNC_ME",
		"    c0004200 00000000 \n",
		"Decoded 1 packets from 1 buffers (8 B): ok=1 opaque=0 unknown=0 reserved=0 truncated=false\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "Buf:gfx;") {
		t.Errorf("filtered buffer listed:\n%s", got)
	}
}

func TestRunErrors(t *testing.T) {
	dir := writeCapture(t)
	tests := []struct {
		name string
		cfg  Config
		want error
	}{
		{"missing capture", Config{CaptureDir: t.TempDir()}, common.ErrFileError},
		{"unknown buffer", Config{CaptureDir: dir, Buffer: "copy"}, common.NewError(gfx.ErrSevError, gfx.ErrInvalidParamVal)},
		{"bad generation", Config{CaptureDir: dir, Generation: "gfx2"}, common.NewError(gfx.ErrSevError, gfx.ErrInvalidParamVal)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cfg.OutputWriter = io.Discard
			if err := Run(tt.cfg); !errors.Is(err, tt.want) {
				t.Errorf("Run() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRunCancelled(t *testing.T) {
	dir := writeCapture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := RunContext(ctx, Config{CaptureDir: dir, OutputWriter: io.Discard})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("RunContext() = %v, want context.Canceled", err)
	}
}
