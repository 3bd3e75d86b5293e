package textcodec

// Default size limits. Every limit is overridable per call; zero values in
// an options struct select these defaults.
const (
	DefaultMaxEncodedSize    = 500 << 20 // 500 MiB of produced text
	DefaultMaxDecodedSize    = 100 << 20 // 100 MiB of produced bytes
	DefaultMaxSampleSize     = 8192      // detection sample bound
	DefaultMaxCombiningMarks = 10        // consecutive marks per base char
	DefaultMaxExpansionRatio = 10.0      // decoded/encoded bomb threshold
)

// HexCase selects the output alphabet case for hex encoding.
type HexCase string

const (
	HexLower HexCase = "lower"
	HexUpper HexCase = "upper"
)

// EncodeOptions configures binary-to-text encoding. The zero value means:
// padding on, lowercase hex, no line wrapping, default size limit, no
// checksum, no telemetry.
type EncodeOptions struct {
	Metrics  Sink
	Checksum ChecksumFunc

	// ChecksumAlgorithm names the digest to embed in the result. Ignored
	// when Checksum is nil.
	ChecksumAlgorithm string

	// Case applies to Hex only; empty means HexLower.
	Case HexCase

	// LineLength > 0 wraps the encoded text with '\n' at that width.
	LineLength int

	// MaxEncodedSize bounds the produced text; 0 means
	// DefaultMaxEncodedSize.
	MaxEncodedSize int

	// NoPadding suppresses '=' padding for the Base64/Base32 families.
	NoPadding bool
}

// DecodeOptions configures both binary-to-text and character-encoding
// decoding. The zero value means: strict, whitespace ignored, default
// limits.
type DecodeOptions struct {
	Metrics  Sink
	Checksum ChecksumFunc

	ChecksumAlgorithm string

	// OnError selects the recovery mode; empty means OnErrorStrict.
	OnError OnError

	// FallbackFormats is consulted in order when OnError is
	// OnErrorFallback.
	FallbackFormats []Format

	// KeepWhitespace disables the default tolerance for whitespace
	// inside binary-to-text input.
	KeepWhitespace bool

	// MaxDecodedSize bounds the produced bytes; 0 means
	// DefaultMaxDecodedSize.
	MaxDecodedSize int

	// MaxExpansionRatio bounds output/input size; 0 means
	// DefaultMaxExpansionRatio. The check arms only once output exceeds
	// 64 KiB so short inputs with honest high ratios never trip it.
	MaxExpansionRatio float64
}

// DetectOptions configures encoding detection.
type DetectOptions struct {
	Metrics Sink

	// MaxSampleSize bounds how many leading bytes are inspected; 0 means
	// DefaultMaxSampleSize.
	MaxSampleSize int

	// MinConfidence, when > 0, turns a weaker result into a
	// DetectionFailed error instead of a low-tier guess.
	MinConfidence float64

	// Statistical enables the chardet-backed statistical pass for
	// ambiguous 8-bit data. It never overrides a high-tier structural
	// result.
	Statistical bool
}

// NormalizeOptions configures Unicode normalization.
type NormalizeOptions struct {
	Metrics Sink

	// MaxCombiningMarks caps consecutive combining marks per base
	// character; 0 means DefaultMaxCombiningMarks.
	MaxCombiningMarks int

	// RejectZeroWidth fails on U+200B/200C/200D/FEFF anywhere in the
	// input.
	RejectZeroWidth bool

	// NoSemanticChangeLog suppresses per-codepoint recording of
	// semantic-affecting substitutions under NFKC/NFKD.
	NoSemanticChangeLog bool
}

// MismatchAction selects how Correct treats a BOM that conflicts with the
// expected encoding.
type MismatchAction string

const (
	MismatchError  MismatchAction = "error"
	MismatchFix    MismatchAction = "fix"
	MismatchIgnore MismatchAction = "ignore"
)

// BomPolicy selects the target state for Correct.
type BomPolicy string

const (
	// PreferNoBom strips any detected BOM.
	PreferNoBom BomPolicy = "prefer_no_bom"
	// AddIfMissing prepends the expected encoding's BOM when absent.
	AddIfMissing BomPolicy = "add_if_missing"
)

// BomOptions configures BOM removal, validation, and correction.
type BomOptions struct {
	Metrics Sink

	// Expected is the encoding the caller believes the data is in; empty
	// disables mismatch validation.
	Expected Format

	// Policy drives Correct; empty means PreferNoBom.
	Policy BomPolicy

	// OnMismatch drives Correct when a detected BOM conflicts with
	// Expected; empty means MismatchError.
	OnMismatch MismatchAction
}
