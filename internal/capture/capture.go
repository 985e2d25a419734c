// Package capture loads captured PM4 command buffers from a capture
// directory: a capture.ini descriptor plus one data file per buffer.
//
// Example descriptor:
//
//	[capture]
//	generation=gfx9
//	buffers=ib0,ib1
//	calls=calls.jsonl
//
//	[buffer.ib0]
//	file=ib0.bin
//
//	[buffer.ib1]
//	file=ib1.bin.lz4
//	format=lz4
//
// Buffer files hold little-endian dwords, either raw or inside an lz4 frame.
// The optional call log holds one recorder.Event per line and may also be
// lz4 compressed.
package capture

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pierrec/lz4/v4"

	"gputrace/internal/common"
	"gputrace/internal/gfx"
	"gputrace/internal/pm4"
	"gputrace/internal/recorder"
)

// BufferInfo is one [buffer.<name>] section.
type BufferInfo struct {
	Name   string
	File   string
	Format string
}

// Descriptor is the parsed capture.ini.
type Descriptor struct {
	Generation  gfx.Generation
	Description string
	Buffers     []BufferInfo
	Calls       string // call log file, empty when the capture has none
}

// ParseDescriptor parses a capture.ini document.
func ParseDescriptor(r io.Reader) (*Descriptor, error) {
	ini, err := ParseIni(r)
	if err != nil {
		return nil, err
	}
	capSec := ini.GetSection(CaptureSectionName)
	if capSec == nil {
		return nil, common.Errorf(gfx.ErrCaptureParse, "missing [%s] section", CaptureSectionName)
	}
	genStr, ok := capSec[GenerationKey]
	if !ok {
		return nil, common.Errorf(gfx.ErrCaptureParse, "missing %s in [%s]", GenerationKey, CaptureSectionName)
	}
	gen, err := gfx.ParseGeneration(genStr)
	if err != nil {
		return nil, common.Errorf(gfx.ErrCaptureParse, "%v", err)
	}
	d := &Descriptor{Generation: gen, Description: capSec[DescriptionKey], Calls: capSec[CallsKey]}

	var names []string
	if list, ok := capSec[BufferListKey]; ok {
		for name := range strings.SplitSeq(list, ",") {
			if name = strings.TrimSpace(name); name != "" {
				names = append(names, name)
			}
		}
	} else {
		for _, sec := range ini.Order {
			if name, ok := strings.CutPrefix(sec, BufferSectionPrefix); ok {
				names = append(names, name)
			}
		}
	}

	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			return nil, common.Errorf(gfx.ErrCaptureParse, "buffer %q listed twice", name)
		}
		seen[name] = true
		sec := ini.GetSection(BufferSectionPrefix + name)
		if sec == nil {
			return nil, common.Errorf(gfx.ErrCaptureParse, "buffer %q has no [%s%s] section", name, BufferSectionPrefix, name)
		}
		info := BufferInfo{Name: name, File: sec[BufferFileKey], Format: strings.ToLower(sec[BufferFormatKey])}
		if info.File == "" {
			return nil, common.Errorf(gfx.ErrCaptureParse, "buffer %q: missing %s", name, BufferFileKey)
		}
		switch info.Format {
		case FormatAuto, FormatRaw, FormatLZ4:
		default:
			return nil, common.Errorf(gfx.ErrCaptureParse, "buffer %q: unknown format %q", name, info.Format)
		}
		d.Buffers = append(d.Buffers, info)
	}
	return d, nil
}

// Buffer is one loaded command buffer.
type Buffer struct {
	BufferInfo
	Dwords        []uint32
	TrailingBytes int   // bytes after the last whole dword
	Compressed    bool  // file was an lz4 frame
	FileSize      int64 // bytes on disk
}

// Capture is a loaded capture directory.
type Capture struct {
	Dir         string
	Generation  gfx.Generation
	Description string
	Buffers     []Buffer
	Calls       []recorder.Event
}

// Option configures Load.
type Option func(*loader)

type loader struct {
	logger common.Logger
}

// WithLogger sets the logger used while loading.
func WithLogger(l common.Logger) Option {
	return func(ld *loader) { ld.logger = l }
}

// Load reads the descriptor in dir and every buffer it lists.
func Load(dir string, opts ...Option) (*Capture, error) {
	ld := &loader{logger: common.NewNoOpLogger()}
	for _, opt := range opts {
		opt(ld)
	}

	iniPath := filepath.Join(dir, DescriptorFilename)
	f, err := os.Open(iniPath)
	if err != nil {
		return nil, fmt.Errorf("capture: open descriptor: %w", errors.Join(common.NewErrorMsg(gfx.ErrSevError, gfx.ErrFileError, iniPath), err))
	}
	desc, err := ParseDescriptor(f)
	f.Close()
	if err != nil {
		return nil, fmt.Errorf("capture: %s: %w", iniPath, err)
	}

	c := &Capture{Dir: dir, Generation: desc.Generation, Description: desc.Description}
	for _, info := range desc.Buffers {
		b, err := ld.loadBuffer(dir, info)
		if err != nil {
			return nil, err
		}
		ld.logger.Logf(common.SeverityDebug, "capture: buffer %s: %d dwords from %s (lz4=%v)", b.Name, len(b.Dwords), b.File, b.Compressed)
		if b.TrailingBytes != 0 {
			ld.logger.Logf(common.SeverityWarning, "capture: buffer %s: %d trailing bytes", b.Name, b.TrailingBytes)
		}
		c.Buffers = append(c.Buffers, b)
	}
	if desc.Calls != "" {
		if c.Calls, err = ld.loadCalls(dir, desc.Calls); err != nil {
			return nil, err
		}
		ld.logger.Logf(common.SeverityDebug, "capture: %d calls from %s", len(c.Calls), desc.Calls)
	}
	return c, nil
}

func (ld *loader) loadCalls(dir, file string) ([]recorder.Event, error) {
	path := file
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("capture: calls: %w", errors.Join(common.NewErrorMsg(gfx.ErrSevError, gfx.ErrFileError, path), err))
	}
	if data, _, err = decompress(data, FormatAuto); err != nil {
		return nil, fmt.Errorf("capture: calls: %w", err)
	}
	events, err := recorder.ReadEvents(bytes.NewReader(data))
	if err != nil {
		return nil, common.Errorf(gfx.ErrCaptureParse, "%s: %v", file, err)
	}
	return events, nil
}

func (ld *loader) loadBuffer(dir string, info BufferInfo) (Buffer, error) {
	path := info.File
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Buffer{}, fmt.Errorf("capture: buffer %s: %w", info.Name, errors.Join(common.NewErrorMsg(gfx.ErrSevError, gfx.ErrFileError, path), err))
	}
	words, trailing, compressed, err := DecodeBuffer(data, info.Format)
	if err != nil {
		return Buffer{}, fmt.Errorf("capture: buffer %s: %w", info.Name, err)
	}
	return Buffer{
		BufferInfo:    info,
		Dwords:        words,
		TrailingBytes: trailing,
		Compressed:    compressed,
		FileSize:      int64(len(data)),
	}, nil
}

// DecodeBuffer converts buffer file contents to dwords. With FormatAuto an
// lz4 frame is detected by its magic number.
func DecodeBuffer(data []byte, format string) (words []uint32, trailing int, compressed bool, err error) {
	if data, compressed, err = decompress(data, format); err != nil {
		return nil, 0, compressed, err
	}
	return pm4.BytesToDwords(data), len(data) % 4, compressed, nil
}

func decompress(data []byte, format string) ([]byte, bool, error) {
	compressed := format == FormatLZ4 ||
		(format == FormatAuto && len(data) >= 4 && binary.LittleEndian.Uint32(data) == lz4FrameMagic)
	if !compressed {
		return data, false, nil
	}
	out, err := io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
	if err != nil {
		return nil, true, common.Errorf(gfx.ErrCaptureParse, "lz4 frame: %v", err)
	}
	return out, true, nil
}

// EncodeBuffer writes words as little-endian bytes, optionally in an lz4 frame.
func EncodeBuffer(w io.Writer, words []uint32, compress bool) error {
	raw := make([]byte, 0, len(words)*4)
	for _, v := range words {
		raw = binary.LittleEndian.AppendUint32(raw, v)
	}
	if !compress {
		_, err := w.Write(raw)
		return err
	}
	zw := lz4.NewWriter(w)
	if _, err := zw.Write(raw); err != nil {
		return err
	}
	return zw.Close()
}

// Save writes a capture directory that Load can read back. Buffers without
// a File get "<name>.bin" (or "<name>.bin.lz4" when compressed); a call log
// is written to calls.jsonl (or calls.jsonl.lz4).
func Save(dir string, c *Capture, compress bool) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("capture: %w", err)
	}
	var ini strings.Builder
	fmt.Fprintf(&ini, "[%s]\n%s=%s\n", CaptureSectionName, GenerationKey, c.Generation)
	if c.Description != "" {
		fmt.Fprintf(&ini, "%s=%s\n", DescriptionKey, c.Description)
	}
	names := make([]string, len(c.Buffers))
	for i, b := range c.Buffers {
		names[i] = b.Name
	}
	fmt.Fprintf(&ini, "%s=%s\n", BufferListKey, strings.Join(names, ","))

	if len(c.Calls) != 0 {
		file := DefaultCallsFilename
		var data bytes.Buffer
		var w io.Writer = &data
		var zw *lz4.Writer
		if compress {
			file += ".lz4"
			zw = lz4.NewWriter(&data)
			w = zw
		}
		if err := recorder.WriteEvents(w, c.Calls); err != nil {
			return fmt.Errorf("capture: encode calls: %w", err)
		}
		if zw != nil {
			if err := zw.Close(); err != nil {
				return fmt.Errorf("capture: encode calls: %w", err)
			}
		}
		if err := os.WriteFile(filepath.Join(dir, file), data.Bytes(), 0o644); err != nil {
			return fmt.Errorf("capture: %w", err)
		}
		fmt.Fprintf(&ini, "%s=%s\n", CallsKey, file)
	}

	for _, b := range c.Buffers {
		file := b.File
		if file == "" {
			file = b.Name + ".bin"
			if compress {
				file += ".lz4"
			}
		}
		var data bytes.Buffer
		if err := EncodeBuffer(&data, b.Dwords, compress); err != nil {
			return fmt.Errorf("capture: encode %s: %w", b.Name, err)
		}
		if err := os.WriteFile(filepath.Join(dir, file), data.Bytes(), 0o644); err != nil {
			return fmt.Errorf("capture: %w", err)
		}
		fmt.Fprintf(&ini, "\n[%s%s]\n%s=%s\n", BufferSectionPrefix, b.Name, BufferFileKey, file)
	}
	if err := os.WriteFile(filepath.Join(dir, DescriptorFilename), []byte(ini.String()), 0o644); err != nil {
		return fmt.Errorf("capture: %w", err)
	}
	return nil
}
