package errors

import (
	"fmt"
	"strings"
)

// Op indicates which operation family the error came from
type Op string

const (
	OpEncode    Op = "encode"    // binary-to-text encoding
	OpDecode    Op = "decode"    // binary-to-text and character decoding
	OpTranscode Op = "transcode" // charset-to-charset conversion
	OpDetect    Op = "detect"    // encoding detection
	OpNormalize Op = "normalize" // Unicode normalization
	OpBom       Op = "bom"       // BOM handling
)

// Kind categorizes the error. The set is closed: callers can switch over
// it exhaustively.
type Kind string

const (
	// Validation
	KindInvalidEncoding   Kind = "invalid_encoding"
	KindUnsupportedFormat Kind = "unsupported_format"
	KindInvalidOptions    Kind = "invalid_options"

	// UTF validation
	KindInvalidUTF8  Kind = "invalid_utf8"
	KindInvalidUTF16 Kind = "invalid_utf16"

	// Security
	KindBufferOverflow          Kind = "buffer_overflow"
	KindEncodingBomb            Kind = "encoding_bomb"
	KindExcessiveCombiningMarks Kind = "excessive_combining_marks"
	KindZeroWidthCharacter      Kind = "zero_width_character"
	KindBidiControlCharacter    Kind = "bidi_control_character"

	// BOM
	KindBomMismatch  Kind = "bom_mismatch"
	KindMultipleBoms Kind = "multiple_boms"

	// Detection
	KindDetectionFailed Kind = "detection_failed"
)

// Security reports whether the kind is a security violation, for
// telemetry flagging.
func (k Kind) Security() bool {
	switch k {
	case KindBufferOverflow, KindEncodingBomb, KindExcessiveCombiningMarks,
		KindZeroWidthCharacter, KindBidiControlCharacter:
		return true
	}
	return false
}

// Subcode refines KindInvalidUTF8 and KindInvalidUTF16. Cross-
// implementation parity fixtures depend on these exact values.
type Subcode string

const (
	// UTF-8
	SubOverlongEncoding    Subcode = "overlong_encoding"
	SubInvalidContinuation Subcode = "invalid_continuation"
	SubSurrogateCodepoint  Subcode = "surrogate_codepoint"
	SubOutOfRange          Subcode = "out_of_range"
	SubTruncatedSequence   Subcode = "truncated_sequence"

	// UTF-16
	SubUnpairedHighSurrogate Subcode = "unpaired_high_surrogate"
	SubUnpairedLowSurrogate  Subcode = "unpaired_low_surrogate"
	SubReversedSurrogates    Subcode = "reversed_surrogates"
	SubTruncatedPair         Subcode = "truncated_pair"
)

// Error is the structured error type used throughout the engine
type Error struct {
	Expected any
	Actual   any
	Cause    error
	Op       Op
	Kind     Kind
	Subcode  Subcode
	Detail   string

	// Offset is the byte offset (decode paths) or rune offset (normalize
	// paths) of the offending unit; -1 when not applicable.
	Offset int
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Op))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Subcode != "" {
		b.WriteByte('/')
		b.WriteString(string(e.Subcode))
	}

	if e.Offset >= 0 {
		fmt.Fprintf(&b, " at offset %d", e.Offset)
	}

	if e.Expected != nil || e.Actual != nil {
		b.WriteString(": ")
		if e.Expected != nil && e.Actual != nil {
			fmt.Fprintf(&b, "expected %v, got %v", e.Expected, e.Actual)
		} else if e.Expected != nil {
			fmt.Fprintf(&b, "expected %v", e.Expected)
		} else {
			fmt.Fprintf(&b, "got %v", e.Actual)
		}
	}

	if e.Detail != "" {
		if e.Expected != nil || e.Actual != nil {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error. A target with an empty Op
// or Subcode matches any value in that field, so
// errors.Is(err, &Error{Kind: KindInvalidUTF8}) matches every UTF-8 error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != "" && e.Kind != t.Kind {
		return false
	}
	if t.Op != "" && e.Op != t.Op {
		return false
	}
	if t.Subcode != "" && e.Subcode != t.Subcode {
		return false
	}
	return true
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(op Op, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Op:     op,
			Kind:   kind,
			Offset: -1,
		},
	}
}

// Subcode sets the UTF validation subcode
func (b *Builder) Subcode(s Subcode) *Builder {
	b.err.Subcode = s
	return b
}

// Offset sets the byte or rune offset of the offending unit
func (b *Builder) Offset(off int) *Builder {
	b.err.Offset = off
	return b
}

// Expected sets the expected value
func (b *Builder) Expected(v any) *Builder {
	b.err.Expected = v
	return b
}

// Actual sets the observed value
func (b *Builder) Actual(v any) *Builder {
	b.err.Actual = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// UnsupportedFormat reports a format outside the operation's domain
func UnsupportedFormat(op Op, format string) *Error {
	return &Error{
		Op:     op,
		Kind:   KindUnsupportedFormat,
		Offset: -1,
		Actual: format,
	}
}

// InvalidOptions reports an unusable options combination
func InvalidOptions(op Op, detail string) *Error {
	return &Error{
		Op:     op,
		Kind:   KindInvalidOptions,
		Offset: -1,
		Detail: detail,
	}
}

// InvalidEncoding reports a byte or character outside the format's alphabet
func InvalidEncoding(op Op, offset int, detail string) *Error {
	return &Error{
		Op:     op,
		Kind:   KindInvalidEncoding,
		Offset: offset,
		Detail: detail,
	}
}

// InvalidUTF8 reports a malformed UTF-8 sequence at a byte offset
func InvalidUTF8(op Op, sub Subcode, offset int, detail string) *Error {
	return &Error{
		Op:      op,
		Kind:    KindInvalidUTF8,
		Subcode: sub,
		Offset:  offset,
		Detail:  detail,
	}
}

// InvalidUTF16 reports a surrogate-pairing failure at a byte offset
func InvalidUTF16(op Op, sub Subcode, offset int, detail string) *Error {
	return &Error{
		Op:      op,
		Kind:    KindInvalidUTF16,
		Subcode: sub,
		Offset:  offset,
		Detail:  detail,
	}
}

// BufferOverflow reports output exceeding the configured size limit
func BufferOverflow(op Op, actual, max int) *Error {
	return &Error{
		Op:       op,
		Kind:     KindBufferOverflow,
		Offset:   -1,
		Expected: max,
		Actual:   actual,
		Detail:   fmt.Sprintf("output of %d bytes exceeds limit of %d", actual, max),
	}
}

// EncodingBomb reports an expansion ratio above the configured threshold
func EncodingBomb(op Op, ratio, maxRatio float64) *Error {
	return &Error{
		Op:       op,
		Kind:     KindEncodingBomb,
		Offset:   -1,
		Expected: maxRatio,
		Actual:   ratio,
		Detail:   fmt.Sprintf("expansion ratio %.1f exceeds limit of %.1f", ratio, maxRatio),
	}
}

// ExcessiveCombiningMarks reports a combining-mark run above the cap
func ExcessiveCombiningMarks(position, count, max int) *Error {
	return &Error{
		Op:       OpNormalize,
		Kind:     KindExcessiveCombiningMarks,
		Offset:   position,
		Expected: max,
		Actual:   count,
		Detail:   fmt.Sprintf("%d consecutive combining marks (max %d)", count, max),
	}
}

// ZeroWidthCharacter reports a rejected zero-width codepoint
func ZeroWidthCharacter(r rune, position int) *Error {
	return &Error{
		Op:     OpNormalize,
		Kind:   KindZeroWidthCharacter,
		Offset: position,
		Actual: fmt.Sprintf("U+%04X", r),
	}
}

// BidiControlCharacter reports a rejected bidi control codepoint
func BidiControlCharacter(r rune, position int) *Error {
	return &Error{
		Op:     OpNormalize,
		Kind:   KindBidiControlCharacter,
		Offset: position,
		Actual: fmt.Sprintf("U+%04X", r),
	}
}

// BomMismatch reports a BOM conflicting with the expected encoding
func BomMismatch(expected, actual string) *Error {
	return &Error{
		Op:       OpBom,
		Kind:     KindBomMismatch,
		Offset:   0,
		Expected: expected,
		Actual:   actual,
	}
}

// MultipleBoms reports a second BOM immediately following the first
func MultipleBoms(offset int) *Error {
	return &Error{
		Op:     OpBom,
		Kind:   KindMultipleBoms,
		Offset: offset,
		Detail: "second byte-order mark after the first",
	}
}

// DetectionFailed reports confidence below the caller's minimum
func DetectionFailed(confidence, minConfidence float64) *Error {
	return &Error{
		Op:       OpDetect,
		Kind:     KindDetectionFailed,
		Offset:   -1,
		Expected: minConfidence,
		Actual:   confidence,
		Detail:   fmt.Sprintf("confidence %.2f below minimum %.2f", confidence, minConfidence),
	}
}
