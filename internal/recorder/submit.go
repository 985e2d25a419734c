package recorder

import "strings"

// Submit groups the command-buffer calls that precede one queue submission.
type Submit struct {
	Name               string // vkQueueSubmit or vkQueueSubmit2
	CallIndex          uint64
	CommandBufferCount int
	Commands           []SubmitCommand
}

// SubmitCommand is a call collected into a Submit. DrawCount is set on
// vkBeginCommandBuffer entries and counts the vkCmdDraw* calls up to the
// matching End.
type SubmitCommand struct {
	Name           string
	CallIndex      uint64
	RecordIndex    uint32
	HasRecordIndex bool
	DrawCount      int
}

func isSubmit(name string) bool {
	return name == "vkQueueSubmit" || name == "vkQueueSubmit2"
}

// GroupSubmits walks records in call order. vkCmd* and vkBeginCommandBuffer
// calls accumulate until a queue submit closes the group; vkEndCommandBuffer
// is not collected. Calls after the last submit are dropped.
func GroupSubmits(records []Record) []Submit {
	var (
		out     []Submit
		pending []SubmitCommand
		cbCount int
		begin   = -1
	)
	for i := range records {
		r := &records[i]
		switch {
		case isSubmit(r.Name):
			out = append(out, Submit{
				Name:               r.Name,
				CallIndex:          r.CallIndex,
				CommandBufferCount: cbCount,
				Commands:           pending,
			})
			pending, cbCount, begin = nil, 0, -1
		case strings.Contains(r.Name, "vkEndCommandBuffer"):
			begin = -1
		case strings.Contains(r.Name, "vkBeginCommandBuffer"):
			cbCount++
			begin = len(pending)
			pending = append(pending, submitCommand(r))
		case strings.Contains(r.Name, "vkCmd"):
			if begin >= 0 && strings.Contains(r.Name, "vkCmdDraw") {
				pending[begin].DrawCount++
			}
			pending = append(pending, submitCommand(r))
		}
	}
	return out
}

func submitCommand(r *Record) SubmitCommand {
	return SubmitCommand{
		Name:           r.Name,
		CallIndex:      r.CallIndex,
		RecordIndex:    r.RecordIndex,
		HasRecordIndex: r.HasRecordIndex,
	}
}
