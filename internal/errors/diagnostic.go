package errors

import "fmt"

// Level represents the severity of a diagnostic
type Level string

const (
	LevelError   Level = "error"
	LevelWarning Level = "warning"
	LevelNote    Level = "note"
)

// Diagnostic is a recoverable condition recorded while lifting.
// Coord is the opaque "file:line:col" string of the offending node
// and may be empty when the input carried no coordinate.
type Diagnostic struct {
	Level   Level
	Code    string
	Message string
	Coord   string
}

func (d Diagnostic) String() string {
	if d.Coord != "" {
		return fmt.Sprintf("%s[%s]: %s (%s)", d.Level, d.Code, d.Message, d.Coord)
	}
	return fmt.Sprintf("%s[%s]: %s", d.Level, d.Code, d.Message)
}

// Diagnostics accumulates recoverable conditions across a lift.
// Recoverable conditions never abort lowering; they end up here.
type Diagnostics struct {
	items []Diagnostic
}

func (ds *Diagnostics) Add(d Diagnostic) {
	ds.items = append(ds.items, d)
}

func (ds *Diagnostics) Errorf(code, coord, format string, args ...interface{}) {
	ds.Add(Diagnostic{Level: LevelError, Code: code, Coord: coord, Message: fmt.Sprintf(format, args...)})
}

func (ds *Diagnostics) Warnf(code, coord, format string, args ...interface{}) {
	ds.Add(Diagnostic{Level: LevelWarning, Code: code, Coord: coord, Message: fmt.Sprintf(format, args...)})
}

// Items returns the recorded diagnostics in recording order.
func (ds *Diagnostics) Items() []Diagnostic {
	return ds.items
}

func (ds *Diagnostics) Len() int {
	return len(ds.items)
}

// ErrorCount reports how many diagnostics are error-level.
func (ds *Diagnostics) ErrorCount() int {
	n := 0
	for _, d := range ds.items {
		if d.Level == LevelError {
			n++
		}
	}
	return n
}

// LiftError is a fatal lifting failure surfaced with the offending
// coordinate. Fatal conditions abort the enclosing function's lowering.
type LiftError struct {
	Code    string
	Message string
	Coord   string
}

func (e *LiftError) Error() string {
	if e.Coord != "" {
		return fmt.Sprintf("%s: %s at %s", e.Code, e.Message, e.Coord)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Fatalf builds a LiftError with a formatted message.
func Fatalf(code, coord, format string, args ...interface{}) *LiftError {
	return &LiftError{Code: code, Coord: coord, Message: fmt.Sprintf(format, args...)}
}
