package promo

import (
	"bufio"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"strings"
)

// checkEvery is how many lines are read between context checks.
const checkEvery = 100_000

// readCodes decompresses r and collects one code per non-blank line.
func readCodes(ctx context.Context, r io.Reader) (*mapCodeSet, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gz.Close()

	set := newMapCodeSet(1024)

	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	lines := 0
	for scanner.Scan() {
		if lines%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		lines++

		if code := strings.TrimSpace(scanner.Text()); code != "" {
			set.add(code)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read code list: %w", err)
	}

	return set, nil
}
