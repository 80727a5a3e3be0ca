package diag

import "fmt"

// Stage identifies which compiler phase produced the diagnostic.
type Stage string

const (
	StageLexer     Stage = "lexer"
	StageParser    Stage = "parser"
	StageTypeCheck Stage = "typecheck"
	StageOptimize  Stage = "optimize"
	StageDepScan   Stage = "depscan"
	StageEmit      Stage = "emit"
	StageDriver    Stage = "driver"
)

// Severity captures how impactful the diagnostic is.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityNote    Severity = "note"
)

// Code is a stable identifier for a diagnostic.
type Code string

const (
	// Lexer errors
	CodeLexerIllegalChar        Code = "LEXER_ILLEGAL_CHAR"
	CodeLexerUnterminatedString Code = "LEXER_UNTERMINATED_STRING"
	CodeLexerBadEscape          Code = "LEXER_BAD_ESCAPE"

	// Parser errors
	CodeParseSyntax            Code = "PARSE_SYNTAX"
	CodeParseMissingTerminator Code = "PARSE_MISSING_TERMINATOR"
	CodeParseDuplicateDecl     Code = "PARSE_DUPLICATE_DECL"
	CodeParseBadModifier       Code = "PARSE_BAD_MODIFIER"
	CodeParseBadOperatorDecl   Code = "PARSE_BAD_OPERATOR_DECL"
	CodeParseBadFlagName       Code = "PARSE_BAD_FLAG_NAME"
	CodeParseBadMacro          Code = "PARSE_BAD_MACRO"

	// Type checker errors
	CodeTypeUnknownName       Code = "TYPE_UNKNOWN_NAME"
	CodeTypeArityMismatch     Code = "TYPE_ARITY_MISMATCH"
	CodeTypeBadArgument       Code = "TYPE_BAD_ARGUMENT"
	CodeTypeAmbiguousOverload Code = "TYPE_AMBIGUOUS_OVERLOAD"
	CodeTypeDuplicateOverload Code = "TYPE_DUPLICATE_OVERLOAD"
	CodeTypeThrowsContract    Code = "TYPE_THROWS_CONTRACT"
	CodeTypeConstViolation    Code = "TYPE_CONST_VIOLATION"
	CodeTypeOwnedViolation    Code = "TYPE_OWNED_VIOLATION"
	CodeTypeBadForRange       Code = "TYPE_BAD_FOR_RANGE"
	CodeTypeBadParallelBody   Code = "TYPE_BAD_PARALLEL_BODY"
	CodeTypeDivisionByZero    Code = "TYPE_DIVISION_BY_ZERO"
	CodeTypeBadOperator       Code = "TYPE_BAD_OPERATOR"
	CodeTypeMismatch          Code = "TYPE_MISMATCH"
	CodeTypeRawMemory         Code = "TYPE_RAW_MEMORY"

	// Driver errors
	CodeDriverNoEntry      Code = "DRIVER_NO_ENTRY"
	CodeDriverManyEntries  Code = "DRIVER_MANY_ENTRIES"
	CodeDriverIO           Code = "DRIVER_IO"
	CodeDriverBadFlag      Code = "DRIVER_BAD_FLAG"
	CodeDriverBadToolchain Code = "DRIVER_BAD_TOOLCHAIN"
	CodeDriverBadBundle    Code = "DRIVER_BAD_BUNDLE"
)

// Span represents a location in source code, 1-based.
type Span struct {
	Line   int
	Column int
}

// String returns the span in the user-facing "line L, col C" form.
func (s Span) String() string {
	return fmt.Sprintf("line %d, col %d", s.Line, s.Column)
}

// IsValid returns true if the span has valid location information.
func (s Span) IsValid() bool {
	return s.Line > 0 && s.Column > 0
}

// Diagnostic is a compiler diagnostic surfaced to end-users.
type Diagnostic struct {
	Stage    Stage
	Severity Severity
	Code     Code
	Message  string
	Span     Span
	Notes    []string
}

// Error constructs an error diagnostic.
func Error(stage Stage, code Code, span Span, msg string) Diagnostic {
	return Diagnostic{Stage: stage, Severity: SeverityError, Code: code, Span: span, Message: msg}
}

// Warning constructs a warning diagnostic.
func Warning(stage Stage, code Code, span Span, msg string) Diagnostic {
	return Diagnostic{Stage: stage, Severity: SeverityWarning, Code: code, Span: span, Message: msg}
}

// Note constructs a note diagnostic.
func Note(stage Stage, code Code, span Span, msg string) Diagnostic {
	return Diagnostic{Stage: stage, Severity: SeverityNote, Code: code, Span: span, Message: msg}
}

// WithNote returns a copy of the diagnostic with an extra note attached.
func (d Diagnostic) WithNote(note string) Diagnostic {
	d.Notes = append(d.Notes, note)
	return d
}

// IsError reports whether the diagnostic is fatal.
func (d Diagnostic) IsError() bool {
	return d.Severity == SeverityError
}

// HasErrors reports whether any diagnostic in the slice is fatal.
func HasErrors(ds []Diagnostic) bool {
	for _, d := range ds {
		if d.IsError() {
			return true
		}
	}
	return false
}

// CountErrors returns the number of fatal diagnostics in the slice.
func CountErrors(ds []Diagnostic) int {
	n := 0
	for _, d := range ds {
		if d.IsError() {
			n++
		}
	}
	return n
}
