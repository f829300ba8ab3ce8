package vocabulary

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Load reads a newline-delimited keyword file: one keyword or
// underscore-joined phrase per line, no header, no escaping. Order is
// preserved; blank lines are skipped. The returned slice is read-only for
// the lifetime of any scoring operation that uses it.
func Load(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open vocabulary file: %w", err)
	}
	defer file.Close()

	var vocabulary []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		word := strings.TrimSpace(scanner.Text())
		if word != "" {
			vocabulary = append(vocabulary, word)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read vocabulary file: %w", err)
	}

	return vocabulary, nil
}
