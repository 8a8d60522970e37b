package errors

import (
	"strings"
	"testing"
)

func TestGetErrorDescription(t *testing.T) {
	testCases := []struct {
		code     string
		contains string
	}{
		{ErrorInputNotFound, "could not be found"},
		{ErrorMalformedSyntaxTree, "structurally invalid"},
		{ErrorUnsupportedConstruct, "placeholder"},
		{ErrorDuplicateTerminator, "second terminator"},
		{ErrorUnknownCallee, "function name"},
		{ErrorKnowledgeBaseRecordInvalid, "validation"},
		{WarningUnreachableCode, "unreachable"},
		{"E9999", "Unknown error code"},
	}

	for _, tc := range testCases {
		desc := GetErrorDescription(tc.code)
		if !strings.Contains(desc, tc.contains) {
			t.Errorf("GetErrorDescription(%s) = %q, expected it to mention %q", tc.code, desc, tc.contains)
		}
	}
}

func TestDiagnosticsAccumulation(t *testing.T) {
	ds := &Diagnostics{}
	ds.Errorf(ErrorUnsupportedConstruct, "a.c:1:1", "bad construct %q", "goto")
	ds.Warnf(WarningUnreachableCode, "a.c:2:1", "dead code")
	ds.Errorf(ErrorUnknownCallee, "", "no callee")

	if ds.Len() != 3 {
		t.Fatalf("Len() = %d, expected 3", ds.Len())
	}
	if ds.ErrorCount() != 2 {
		t.Errorf("ErrorCount() = %d, expected 2", ds.ErrorCount())
	}

	items := ds.Items()
	if items[0].Message != `bad construct "goto"` {
		t.Errorf("message = %q", items[0].Message)
	}
	if items[1].Level != LevelWarning {
		t.Errorf("second diagnostic level = %s, expected warning", items[1].Level)
	}
}

func TestDiagnosticString(t *testing.T) {
	with := Diagnostic{Level: LevelError, Code: ErrorUnknownCallee, Message: "m", Coord: "a.c:4:2"}
	if got := with.String(); got != "error[E0005]: m (a.c:4:2)" {
		t.Errorf("String() = %q", got)
	}
	without := Diagnostic{Level: LevelWarning, Code: WarningUnreachableCode, Message: "m"}
	if got := without.String(); got != "warning[W0001]: m" {
		t.Errorf("String() = %q", got)
	}
}

func TestLiftErrorFormatting(t *testing.T) {
	err := Fatalf(ErrorDuplicateTerminator, "b.c:9:3", "block %q closed twice", "then_1")
	want := `E0004: block "then_1" closed twice at b.c:9:3`
	if err.Error() != want {
		t.Errorf("Error() = %q, expected %q", err.Error(), want)
	}

	bare := Fatalf(ErrorInputNotFound, "", "no input")
	if bare.Error() != "E0001: no input" {
		t.Errorf("Error() = %q", bare.Error())
	}
}

func TestReporterFormat(t *testing.T) {
	r := NewReporter("spam.c")
	out := r.Format(Diagnostic{
		Level:   LevelError,
		Code:    ErrorUnsupportedConstruct,
		Message: "assignment to array element is not supported",
		Coord:   "spam.c:14:5",
	})
	for _, want := range []string{"[E0003]", "assignment to array element", "-->", "spam.c:14:5"} {
		if !strings.Contains(out, want) {
			t.Errorf("Format output missing %q:\n%s", want, out)
		}
	}

	// Without a coordinate the unit name stands in.
	out = r.Format(Diagnostic{Level: LevelWarning, Code: WarningUnreachableCode, Message: "dead"})
	if !strings.Contains(out, "spam.c") {
		t.Errorf("Format output should fall back to the unit name:\n%s", out)
	}
}

func TestReporterSummaryCountsErrorsOnly(t *testing.T) {
	r := NewReporter("spam.c")
	ds := &Diagnostics{}
	ds.Warnf(WarningUnreachableCode, "", "dead")

	if out := r.FormatAll(ds); strings.Contains(out, "summary") {
		t.Errorf("warnings alone should not produce a summary line:\n%s", out)
	}

	ds.Errorf(ErrorUnknownCallee, "", "nope")
	if out := r.FormatAll(ds); !strings.Contains(out, "1 recoverable error") {
		t.Errorf("summary line missing:\n%s", out)
	}
}
