package errors

// Error codes for the LISA lifter
// These codes are used in diagnostics and documentation to provide
// consistent error identification across the toolchain.
//
// Error code ranges:
// E0001-E0099: Input and lifting errors
// E0100-E0199: Reserved for analysis passes
// W0001-W0099: Warning codes

const (
	// E0001: Missing source unit, fatal to that unit
	ErrorInputNotFound = "E0001"

	// E0002: Structurally invalid syntax tree, fatal
	ErrorMalformedSyntaxTree = "E0002"

	// E0003: Source construct the lowerer cannot express, recoverable
	ErrorUnsupportedConstruct = "E0003"

	// E0004: Internal invariant violation, always fatal to the function
	ErrorDuplicateTerminator = "E0004"

	// E0005: Call target could not be resolved to an identifier, recoverable
	ErrorUnknownCallee = "E0005"

	// E0006: Knowledge base record failed validation, recoverable
	ErrorKnowledgeBaseRecordInvalid = "E0006"

	// W0001: Statements after a terminator are not lowered
	WarningUnreachableCode = "W0001"
)

// GetErrorDescription returns a human-readable description of the error code
func GetErrorDescription(code string) string {
	switch code {
	case ErrorInputNotFound:
		return "Source unit could not be found"
	case ErrorMalformedSyntaxTree:
		return "Syntax tree is structurally invalid"
	case ErrorUnsupportedConstruct:
		return "Construct is not supported by the lowerer and was replaced with a placeholder"
	case ErrorDuplicateTerminator:
		return "Basic block received a second terminator"
	case ErrorUnknownCallee:
		return "Call target could not be resolved to a function name"
	case ErrorKnowledgeBaseRecordInvalid:
		return "Knowledge base record failed validation and was rejected"
	case WarningUnreachableCode:
		return "Statements after a terminator are unreachable and were not lowered"
	default:
		return "Unknown error code"
	}
}
