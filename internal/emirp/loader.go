package emirp

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// LoadLimits reads limits from a file, one per line. Blank lines and lines
// starting with # are skipped; underscores may group digits (200_000).
// Limits below 2 are rejected.
func LoadLimits(filename string) ([]int64, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", filename, err)
	}
	defer f.Close()

	var limits []int64
	scanner := bufio.NewScanner(f)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		limit, err := strconv.ParseInt(strings.ReplaceAll(line, "_", ""), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid limit %q at %s:%d: %w", line, filename, lineNum, err)
		}
		if limit < 2 {
			return nil, fmt.Errorf("limit %d at %s:%d must be at least 2", limit, filename, lineNum)
		}
		limits = append(limits, limit)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file %s: %w", filename, err)
	}

	return limits, nil
}
