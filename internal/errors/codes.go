package errors

// Error codes for the miniC compiler (§7).
//
// Error code ranges:
// E00xx: semantic analysis errors (§4.B — scoping only)
// E01xx: parse / I-O errors (the parser is an external collaborator; these
//        codes cover the caret-style formatting the driver applies to
//        whatever it reports)
// E09xx: internal errors (§7 kinds 4 and 5) — a correct pipeline never
//        produces these; they indicate an invariant violation.

const (
	// ErrorUndeclaredVariable: "Variable '<name>' not declared." (§4.B)
	ErrorUndeclaredVariable = "E0001"

	// ErrorRedeclaredVariable: "Variable '<name>' already declared in this
	// scope." (§4.B)
	ErrorRedeclaredVariable = "E0002"

	// ErrorParse covers every syntax error surfaced by the parser (§7 kind 2).
	ErrorParse = "E0100"

	// ErrorIO covers failures to open the source or an IR file (§7 kind 1).
	ErrorIO = "E0101"

	// ErrorIRBuilderInternal: unexpected AST shape during lowering (§7 kind 4).
	ErrorIRBuilderInternal = "E0900"

	// ErrorOptimizerInternal: dataflow/use-list invariant violation (§7 kind 5).
	ErrorOptimizerInternal = "E0901"

	// ErrorBackendInternal: block without terminator, unaddressable operand,
	// or other codegen invariant violation (§7 kind 5).
	ErrorBackendInternal = "E0902"
)

// GetErrorCategory returns the category of the error based on its code.
func GetErrorCategory(code string) string {
	switch {
	case code >= "E0001" && code < "E0100":
		return "Semantic Analysis"
	case code >= "E0100" && code < "E0200":
		return "Parser / I-O"
	case code >= "E0900" && code < "E1000":
		return "Internal"
	default:
		return "Unknown"
	}
}
