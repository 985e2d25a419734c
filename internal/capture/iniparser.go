package capture

import (
	"bufio"
	"io"
	"strings"

	"gputrace/internal/common"
	"gputrace/internal/gfx"
)

// IniFile is a parsed descriptor. Keys before the first section land in the
// "" section. Section order is preserved in Order.
type IniFile struct {
	Sections map[string]map[string]string
	Order    []string
}

// NewIniFile creates an empty IniFile holding only the global section.
func NewIniFile() *IniFile {
	return &IniFile{
		Sections: map[string]map[string]string{"": {}},
	}
}

// ParseIni reads an INI document. Blank lines and lines starting with ';'
// or '#' are skipped. Any other line without '=' is a parse error.
func ParseIni(r io.Reader) (*IniFile, error) {
	ini := NewIniFile()
	sc := bufio.NewScanner(r)
	section := ""
	lineNo := 0

	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, ";") || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, "[") {
			if !strings.HasSuffix(line, "]") {
				return nil, common.Errorf(gfx.ErrCaptureParse, "line %d: unterminated section header %q", lineNo, line)
			}
			section = strings.TrimSpace(line[1 : len(line)-1])
			if _, ok := ini.Sections[section]; !ok {
				ini.Sections[section] = make(map[string]string)
				ini.Order = append(ini.Order, section)
			}
			continue
		}

		key, val, ok := strings.Cut(line, "=")
		if !ok {
			return nil, common.Errorf(gfx.ErrCaptureParse, "line %d: expected key=value, got %q", lineNo, line)
		}
		key = strings.ToLower(strings.TrimSpace(key))
		val = strings.Trim(strings.TrimSpace(val), `"`)
		ini.Sections[section][key] = val
	}
	if err := sc.Err(); err != nil {
		return nil, common.Errorf(gfx.ErrFileError, "read descriptor: %v", err)
	}
	return ini, nil
}

// GetSection returns the key-value map for a given section, or nil if not found
func (ini *IniFile) GetSection(name string) map[string]string {
	return ini.Sections[name]
}
