// Package targets loads the benchmark target list from a newline-delimited
// file. Blank lines and #-comments are skipped; duplicates are preserved and
// fetched independently.
package targets

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// LoadFile reads one URL per line from path. An empty file yields an empty,
// valid target list.
func LoadFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open targets file: %w", err)
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read targets file: %w", err)
	}
	return urls, nil
}
