package tasks

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/desertthunder/top5/internal/shared"
)

// LoadArtists reads one artist name per line from path.
//
// The returned error wraps [shared.ErrInput] and the underlying [os] error.
func LoadArtists(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrInput, err)
	}
	defer f.Close()

	names, err := ParseArtists(f)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", shared.ErrInput, path, err)
	}
	return names, nil
}

// ParseArtists splits r into artist names, trimming surrounding whitespace (including a CRLF "\r") and
// skipping blank lines.
func ParseArtists(r io.Reader) ([]string, error) {
	var names []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		name := strings.TrimSpace(scanner.Text())
		if name == "" {
			continue
		}
		names = append(names, name)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return names, nil
}
