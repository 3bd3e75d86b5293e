// Package errors provides structured error types for the textcodec library.
//
// Errors are categorized by Op (which operation family failed) and Kind
// (error category); UTF validation errors additionally carry a Subcode and
// the byte offset of the offending unit.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.OpDecode, errors.KindInvalidUTF8).
//		Subcode(errors.SubOverlongEncoding).
//		Offset(0).
//		Detail("2-byte sequence encodes U+0000").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.InvalidUTF8(errors.OpDecode, errors.SubOverlongEncoding, 0, "...")
//	err := errors.BufferOverflow(errors.OpDecode, got, max)
//
// All errors implement the standard error interface and support
// errors.Is/As; a target with only a Kind set matches every error of that
// kind regardless of operation or subcode.
package errors
