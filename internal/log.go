package internal

import (
	"fmt"
	"io"
	"strings"
)

func Logf(w io.Writer, prefix string, owner string, format string, a ...any) {
	parts := []string{}
	if prefix != "" {
		parts = append(parts, prefix)
	}
	if owner != "" {
		parts = append(parts, fmt.Sprintf("%s:", owner))
	}
	parts = append(parts, fmt.Sprintf(format, a...))
	fmt.Fprintln(w, strings.Join(parts, " "))
}
