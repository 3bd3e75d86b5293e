package textcodec

import (
	"time"
)

// Format identifies an encoding. The set is closed: binary-to-text members
// feed the codec engine's Encode/Decode pair, character-encoding members
// feed the byte-stream validation and transcoding paths.
type Format string

// Binary-to-text formats.
const (
	Base64    Format = "base64"
	Base64URL Format = "base64url"
	Base64Raw Format = "base64_raw"
	Base32    Format = "base32"
	Base32Hex Format = "base32hex"
	Hex       Format = "hex"
)

// Character encodings.
const (
	UTF8    Format = "utf8"
	UTF16LE Format = "utf16le"
	UTF16BE Format = "utf16be"
	Latin1  Format = "latin1"
	CP1252  Format = "cp1252"
	ASCII   Format = "ascii"
)

// BOM-only encodings. Recognized by the BOM handler and the detection
// engine; not valid codec targets.
const (
	UTF32LE Format = "utf32le"
	UTF32BE Format = "utf32be"
)

// Unknown is reported by detection when no pass produced a candidate.
const Unknown Format = "unknown"

// IsBinaryToText reports whether f is a binary-to-text codec format.
func (f Format) IsBinaryToText() bool {
	switch f {
	case Base64, Base64URL, Base64Raw, Base32, Base32Hex, Hex:
		return true
	}
	return false
}

// IsCharEncoding reports whether f is a character encoding handled by the
// byte-stream decode path.
func (f Format) IsCharEncoding() bool {
	switch f {
	case UTF8, UTF16LE, UTF16BE, Latin1, CP1252, ASCII:
		return true
	}
	return false
}

// ParseFormat maps a format name to its Format value. The bool result is
// false for names outside the closed set.
func ParseFormat(name string) (Format, bool) {
	switch Format(name) {
	case Base64, Base64URL, Base64Raw, Base32, Base32Hex, Hex,
		UTF8, UTF16LE, UTF16BE, Latin1, CP1252, ASCII,
		UTF32LE, UTF32BE:
		return Format(name), true
	}
	return Unknown, false
}

// Tier is the coarse confidence bucket derived from a detection score.
type Tier string

const (
	TierLow    Tier = "low"
	TierMedium Tier = "medium"
	TierHigh   Tier = "high"
)

// Confidence thresholds for TierFor. Fixed: a DetectionResult's tier is
// always a pure function of its confidence.
const (
	HighConfidence   = 0.90
	MediumConfidence = 0.50
)

// TierFor buckets a confidence score.
func TierFor(confidence float64) Tier {
	switch {
	case confidence >= HighConfidence:
		return TierHigh
	case confidence >= MediumConfidence:
		return TierMedium
	default:
		return TierLow
	}
}

// OnError selects the recovery behavior for decode and normalize
// operations. The zero value is OnErrorStrict.
type OnError string

const (
	// OnErrorStrict fails on the first invalid input unit. A successful
	// strict-mode result always has CorrectionsApplied == 0.
	OnErrorStrict OnError = "strict"
	// OnErrorReplace substitutes U+FFFD for each maximal invalid
	// subsequence and continues.
	OnErrorReplace OnError = "replace"
	// OnErrorIgnore drops invalid input units silently.
	OnErrorIgnore OnError = "ignore"
	// OnErrorFallback retries the decode with each format in
	// FallbackFormats, in order, after a strict failure.
	OnErrorFallback OnError = "fallback"
)

// ChecksumFunc is the injected integrity-digest hook. Implementations
// return a lowercase hex digest of data under the named algorithm. The
// engine never depends on any particular provider; see the checksum
// package for defaults.
type ChecksumFunc func(data []byte, algorithm string) (string, error)

// Event is one structured telemetry record emitted per operation.
type Event struct {
	Err               error
	Op                string
	Format            Format
	Duration          time.Duration
	InputBytes        int
	OutputBytes       int
	SecurityViolation bool
}

// Sink receives telemetry events. A nil Sink is always legal and never
// changes operation behavior.
type Sink interface {
	Record(Event)
}
