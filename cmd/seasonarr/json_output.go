package main

import (
	"encoding/json"
	"fmt"
	"io"
)

// writeJSON emits v as indented JSON so command output stays scriptable.
func writeJSON(out io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}
