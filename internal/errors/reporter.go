package errors

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Reporter renders diagnostics for the terminal. Unlike a compiler
// front end we have no source text to excerpt, only the coordinate the
// front end attached, so rendering is a single annotated line per
// diagnostic.
type Reporter struct {
	unit string
}

// NewReporter creates a reporter for one translation unit.
func NewReporter(unit string) *Reporter {
	return &Reporter{unit: unit}
}

// Format renders one diagnostic with Rust-like styling:
//
//	error[E0003]: assignment to array element is not supported
//	  --> ext/spam.c:14:5
func (r *Reporter) Format(d Diagnostic) string {
	var out strings.Builder

	levelColor := r.levelColor(d.Level)
	dim := color.New(color.Faint).SprintFunc()

	out.WriteString(fmt.Sprintf("%s[%s]: %s\n", levelColor(string(d.Level)), d.Code, d.Message))

	loc := d.Coord
	if loc == "" {
		loc = r.unit
	}
	if loc != "" {
		out.WriteString(fmt.Sprintf("  %s %s\n", dim("-->"), loc))
	}

	return out.String()
}

// FormatAll renders every diagnostic followed by a summary count line.
func (r *Reporter) FormatAll(ds *Diagnostics) string {
	var out strings.Builder
	for _, d := range ds.Items() {
		out.WriteString(r.Format(d))
	}
	if n := ds.ErrorCount(); n > 0 {
		red := color.New(color.FgRed, color.Bold).SprintFunc()
		out.WriteString(fmt.Sprintf("%s: %d recoverable error(s) recorded while lifting\n", red("summary"), n))
	}
	return out.String()
}

func (r *Reporter) levelColor(level Level) func(...interface{}) string {
	switch level {
	case LevelError:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	case LevelWarning:
		return color.New(color.FgYellow, color.Bold).SprintFunc()
	default:
		return color.New(color.FgCyan, color.Bold).SprintFunc()
	}
}
