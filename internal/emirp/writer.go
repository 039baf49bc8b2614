package emirp

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// WriteTextFile writes emirps to a plain text file.
// Each emirp is on a separate line.
func WriteTextFile(emirps []int64, outputPath string) error {
	var b strings.Builder
	for _, e := range emirps {
		b.WriteString(strconv.FormatInt(e, 10))
		b.WriteByte('\n')
	}

	if err := os.WriteFile(outputPath, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("failed to write text file: %w", err)
	}

	return nil
}
