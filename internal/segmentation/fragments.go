package segmentation

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// ReadFragments reads one fragment per non-blank line.
func ReadFragments(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	var fragments []string
	for scanner.Scan() {
		line := strings.TrimSpace(strings.TrimPrefix(scanner.Text(), "\ufeff"))
		if line != "" {
			fragments = append(fragments, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read fragments: %w", err)
	}
	return fragments, nil
}

// LoadFragments reads a fragments file from disk.
func LoadFragments(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fragments: %w", err)
	}
	defer f.Close()
	return ReadFragments(f)
}

// FormatFragments renders fragments in the format ReadFragments accepts.
func FormatFragments(fragments []string) string {
	var sb strings.Builder
	for _, f := range fragments {
		if f = strings.TrimSpace(f); f == "" {
			continue
		}
		sb.WriteString(f)
		sb.WriteByte('\n')
	}
	return sb.String()
}
