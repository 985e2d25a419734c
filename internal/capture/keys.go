package capture

const (
	// DescriptorFilename is the descriptor looked up in a capture directory.
	DescriptorFilename = "capture.ini"

	// [capture] keys
	CaptureSectionName = "capture"
	GenerationKey      = "generation"
	DescriptionKey     = "description"
	BufferListKey      = "buffers"
	CallsKey           = "calls"

	// [buffer.<name>] keys
	BufferSectionPrefix = "buffer."
	BufferFileKey       = "file"
	BufferFormatKey     = "format"

	FormatRaw  = "raw"
	FormatLZ4  = "lz4"
	FormatAuto = ""

	// DefaultCallsFilename is the call log name Save writes.
	DefaultCallsFilename = "calls.jsonl"
)

// lz4FrameMagic is the little-endian magic number opening an lz4 frame.
const lz4FrameMagic = 0x184D2204
