package printers

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"gputrace/internal/pm4"
)

// PacketPrinter prints one line per decoded PM4 packet.
type PacketPrinter struct {
	ItemPrinter
	showRaw      bool
	collectStats bool
	statusCounts map[pm4.Status]int
	opcodeCounts map[pm4.Opcode]int
}

// NewPacketPrinter creates a new packet printer.
func NewPacketPrinter(writer io.Writer) *PacketPrinter {
	return &PacketPrinter{
		ItemPrinter:  *NewItemPrinter(writer),
		statusCounts: make(map[pm4.Status]int),
		opcodeCounts: make(map[pm4.Opcode]int),
	}
}

// PacketIn prints pkt, prefixed with the buffer it was decoded from.
func (p *PacketPrinter) PacketIn(buffer string, pkt *pm4.Packet) {
	if p.collectStats {
		p.statusCounts[pkt.Status]++
		if pkt.Header.Type == pm4.Type3 && pkt.Status != pm4.StatusTruncated {
			p.opcodeCounts[pkt.Opcode]++
		}
	}
	if p.IsMuted() {
		return
	}

	var sb strings.Builder
	if !p.IDPrintMuted() {
		fmt.Fprintf(&sb, "Buf:%s; ", buffer)
	}
	sb.WriteString(pkt.String())
	sb.WriteString("\n")
	if p.showRaw {
		sb.WriteString(rawDwords(pkt.Raw))
	}
	p.ItemPrintLine(sb.String())
}

// PacketsIn prints every packet of one buffer.
func (p *PacketPrinter) PacketsIn(buffer string, pkts []pm4.Packet) {
	for i := range pkts {
		p.PacketIn(buffer, &pkts[i])
	}
}

// SetShowRaw adds a hex dump of each packet's dwords.
func (p *PacketPrinter) SetShowRaw(show bool) { p.showRaw = show }

// SetCollectStats turns on statistics collections.
func (p *PacketPrinter) SetCollectStats() { p.collectStats = true }

// PrintStats outputs statistics about the packets processed.
func (p *PacketPrinter) PrintStats() {
	var sb strings.Builder
	sb.WriteString("PM4 packets processed:-\n")
	for _, st := range []pm4.Status{pm4.StatusOk, pm4.StatusOpaque, pm4.StatusTruncated} {
		fmt.Fprintf(&sb, "%s : %d\n", st, p.statusCounts[st])
	}
	if len(p.opcodeCounts) > 0 {
		sb.WriteString("Opcodes:-\n")
		ops := make([]pm4.Opcode, 0, len(p.opcodeCounts))
		for op := range p.opcodeCounts {
			ops = append(ops, op)
		}
		slices.Sort(ops)
		for _, op := range ops {
			fmt.Fprintf(&sb, "%s (0x%02X) : %d\n", op, uint8(op), p.opcodeCounts[op])
		}
	}
	sb.WriteString("\n")
	p.ItemPrintLine(sb.String())
}

// rawDwords renders dwords eight per line.
func rawDwords(words []uint32) string {
	var sb strings.Builder
	for i, w := range words {
		if i%8 == 0 {
			sb.WriteString("    ")
		}
		fmt.Fprintf(&sb, "%08x ", w)
		if i%8 == 7 {
			sb.WriteString("\n")
		}
	}
	if len(words)%8 != 0 {
		sb.WriteString("\n")
	}
	return sb.String()
}
