package site

import (
	"bufio"
	"bytes"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

const fieldSeparator = "----"

// parseFields reads a content file made of "Key: value" blocks separated by
// "----" lines. Keys are lower-cased; values keep their inner line breaks.
func parseFields(data []byte) map[string]string {
	fields := make(map[string]string)

	var key string
	var value strings.Builder

	flush := func() {
		if key != "" {
			fields[key] = strings.TrimSpace(value.String())
		}
		key = ""
		value.Reset()
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()

		if strings.TrimSpace(line) == fieldSeparator {
			flush()
			continue
		}

		if key == "" {
			name, rest, ok := strings.Cut(line, ":")
			if !ok || strings.TrimSpace(name) == "" {
				continue
			}
			key = strings.ToLower(strings.TrimSpace(name))
			value.WriteString(strings.TrimSpace(rest))
			continue
		}

		value.WriteString("\n")
		value.WriteString(line)
	}
	flush()

	return fields
}

func parseDate(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	t, err := dateparse.ParseIn(value, time.Local)
	if err != nil {
		return nil
	}
	return &t
}
