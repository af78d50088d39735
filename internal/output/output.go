// Package output publishes named step outputs the way a CI runner consumes
// them: key=value lines appended to the file named by GITHUB_OUTPUT.
package output

import (
	"fmt"
	"io"
	"os"
	"strconv"
)

// Writer publishes named outputs.
type Writer struct {
	// Path is the output file. Empty means no runner output file is
	// available and values go to Fallback instead.
	Path string

	// Fallback receives key=value lines when Path is empty. Defaults to
	// stdout, which makes local runs observable.
	Fallback io.Writer
}

// NewWriter builds a writer bound to the ambient runner output file, if any.
func NewWriter() *Writer {
	return &Writer{
		Path:     os.Getenv("GITHUB_OUTPUT"),
		Fallback: os.Stdout,
	}
}

// Set publishes a single named output value.
func (w *Writer) Set(name, value string) error {
	line := fmt.Sprintf("%s=%s\n", name, value)

	if w.Path == "" {
		_, err := io.WriteString(w.Fallback, line)
		return err
	}

	f, err := os.OpenFile(w.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	return nil
}

// SetBool publishes a boolean output as "true" or "false".
func (w *Writer) SetBool(name string, value bool) error {
	return w.Set(name, strconv.FormatBool(value))
}
