package printers

import (
	"fmt"
	"io"
	"strings"

	"gputrace/internal/recorder"
)

// CallPrinter prints recorded API calls and submit groups.
type CallPrinter struct {
	ItemPrinter
	collectStats  bool
	calls         int
	anomalyCounts map[recorder.Anomaly]int
}

// NewCallPrinter creates a new call printer.
func NewCallPrinter(writer io.Writer) *CallPrinter {
	return &CallPrinter{
		ItemPrinter:   *NewItemPrinter(writer),
		anomalyCounts: make(map[recorder.Anomaly]int),
	}
}

// RecordIn prints one call record, prefixed with its thread.
func (p *CallPrinter) RecordIn(r *recorder.Record) {
	if p.collectStats {
		p.calls++
		for _, a := range recorder.AllAnomalies() {
			if r.Anomalies.Has(a) {
				p.anomalyCounts[a]++
			}
		}
	}
	if p.IsMuted() {
		return
	}
	var sb strings.Builder
	if !p.IDPrintMuted() {
		fmt.Fprintf(&sb, "Thr:%d; ", r.ThreadID)
	}
	sb.WriteString(r.String())
	sb.WriteString("\n")
	p.ItemPrintLine(sb.String())
}

// SubmitIn prints a submit group summary followed by its commands.
func (p *CallPrinter) SubmitIn(s *recorder.Submit) {
	if p.IsMuted() {
		return
	}
	draws := 0
	for _, c := range s.Commands {
		draws += c.DrawCount
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Submit: %s; Idx:%d; command buffers=%d; commands=%d; draws=%d\n",
		s.Name, s.CallIndex, s.CommandBufferCount, len(s.Commands), draws)
	for _, c := range s.Commands {
		fmt.Fprintf(&sb, "    Idx:%d; %s", c.CallIndex, c.Name)
		if c.HasRecordIndex {
			fmt.Fprintf(&sb, "; rec=%d", c.RecordIndex)
		}
		sb.WriteString("\n")
	}
	p.ItemPrintLine(sb.String())
}

// SetCollectStats turns on statistics collections.
func (p *CallPrinter) SetCollectStats() { p.collectStats = true }

// PrintStats outputs the call count and per-anomaly counts.
func (p *CallPrinter) PrintStats() {
	var sb strings.Builder
	sb.WriteString("API calls processed:-\n")
	fmt.Fprintf(&sb, "calls : %d\n", p.calls)
	for _, a := range recorder.AllAnomalies() {
		fmt.Fprintf(&sb, "%s : %d\n", a, p.anomalyCounts[a])
	}
	sb.WriteString("\n")
	p.ItemPrintLine(sb.String())
}
