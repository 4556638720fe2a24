package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

func NewTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}

func PrintJson(value any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

// Stars renders a 0-5 rating in half stars, nil is rendered as "-".
func Stars(rating *float64) string {
	if rating == nil {
		return "-"
	}
	halves := int(*rating * 2)
	out := strings.Repeat("★", halves/2)
	if halves%2 == 1 {
		out += "½"
	}
	return strings.TrimSpace(fmt.Sprintf("%s (%.1f)", out, *rating))
}

func Fatal(err error) {
	fmt.Fprintln(os.Stderr, err.Error())
	os.Exit(1)
}
