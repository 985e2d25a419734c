package printers

import (
	"fmt"
	"io"

	"gputrace/internal/common"
)

// ItemPrinter is the shared base of the listing printers.
type ItemPrinter struct {
	writer      io.Writer
	msgLog      common.Logger
	muted       bool
	idPrintMute bool
}

// NewItemPrinter constructs an ItemPrinter using the given io.Writer.
func NewItemPrinter(writer io.Writer) *ItemPrinter {
	return &ItemPrinter{
		writer: writer,
	}
}

// SetMessageLogger mirrors every printed line to logger at Info severity.
func (p *ItemPrinter) SetMessageLogger(logger common.Logger) {
	p.msgLog = logger
}

// ItemPrintLine writes the given message to the writer and optionally logs it.
func (p *ItemPrinter) ItemPrintLine(msg string) {
	if p.writer != nil {
		fmt.Fprint(p.writer, msg)
	}
	if p.msgLog != nil {
		p.msgLog.Log(common.SeverityInfo, msg)
	}
}

// SetMute sets the printer to mute (avoids output).
func (p *ItemPrinter) SetMute(mute bool) { p.muted = mute }

// IsMuted returns true if the printer is muted.
func (p *ItemPrinter) IsMuted() bool { return p.muted }

// MuteIDPrint mutes or unmutes the buffer name prefix on output lines.
func (p *ItemPrinter) MuteIDPrint(mute bool) { p.idPrintMute = mute }

// IDPrintMuted returns whether the buffer name prefix is muted.
func (p *ItemPrinter) IDPrintMuted() bool { return p.idPrintMute }
