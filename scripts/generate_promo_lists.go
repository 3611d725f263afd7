package main

import (
	"compress/gzip"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// Writes three sample promo code lists. A code is accepted at checkout when
// it appears in at least two lists.
//
//	accepted: WELCOME10 (1,2), FRAMES2025 (1,2), ALLLISTS1 (1,2,3), SUMMER2025 (1,3), WINTER2025 (2,3)
//	rejected: ONLYONE111 (1), ONLYTWO222 (2), ONLYTHREE3 (3)
func main() {
	dir := flag.String("dir", "data/promo", "output directory")
	flag.Parse()

	if err := os.MkdirAll(*dir, 0o755); err != nil {
		log.Fatalf("failed to create directory: %v", err)
	}

	lists := map[string][]string{
		"codes1.gz": {"WELCOME10", "FRAMES2025", "ALLLISTS1", "ONLYONE111", "SUMMER2025"},
		"codes2.gz": {"WELCOME10", "FRAMES2025", "ALLLISTS1", "ONLYTWO222", "WINTER2025"},
		"codes3.gz": {"WINTER2025", "SUMMER2025", "ALLLISTS1", "ONLYTHREE3"},
	}

	for name, codes := range lists {
		path := filepath.Join(*dir, name)
		if err := writeList(path, codes); err != nil {
			log.Fatalf("failed to write %s: %v", path, err)
		}
		fmt.Printf("wrote %s (%d codes)\n", path, len(codes))
	}
}

func writeList(path string, codes []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	for _, code := range codes {
		if _, err := fmt.Fprintln(gz, code); err != nil {
			return fmt.Errorf("failed to write code: %w", err)
		}
	}

	return gz.Close()
}
