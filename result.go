package textcodec

// EncodeResult is the envelope for a successful binary-to-text encode.
// InputSize and OutputSize are both byte counts.
type EncodeResult struct {
	Text     string
	Format   Format
	Checksum string
	Warnings []string

	InputSize  int
	OutputSize int
}

// DecodeResult is the envelope for a successful decode. For binary-to-text
// formats, Bytes holds the decoded payload and the sizes are byte counts.
// For character encodings, Bytes holds UTF-8 text and the sizes count
// Unicode scalar values: InputSize is the number of scalars the input
// represented (each maximal invalid subsequence counting as one) and
// OutputSize the number of scalars produced.
type DecodeResult struct {
	Bytes    []byte
	Format   Format
	Checksum string
	Warnings []string

	InputSize  int
	OutputSize int

	// CorrectionsApplied counts skipped or substituted input units.
	// Guaranteed zero for any successful strict-mode decode.
	CorrectionsApplied uint
}

// Candidate is one ranked detection guess.
type Candidate struct {
	Encoding   Format
	Confidence float64
	Reason     string
}

// DetectionResult reports the best encoding guess for a byte sample.
// Candidates holds up to 3 entries sorted by descending confidence; when
// BomDetected is true, Confidence is 1.0 and ConfidenceTier is TierHigh.
type DetectionResult struct {
	Encoding       Format
	Confidence     float64
	ConfidenceTier Tier
	BomDetected    bool
	BomBytes       []byte
	Candidates     []Candidate
	Warnings       []string
}

// SemanticChange records one substitution under a non-semantic-preserving
// normalization form. Position is a rune index into the input.
type SemanticChange struct {
	Original   string
	Normalized string
	Reason     string
	Position   int
}

// NormalizationResult is the envelope for a successful normalization.
// Lengths count Unicode scalar values.
type NormalizationResult struct {
	Text            string
	Profile         string
	SemanticChanges []SemanticChange
	Warnings        []string

	InputLength  int
	OutputLength int
}

// BomResult describes the BOM state of a byte sequence. BomType is empty
// when no BOM was found; ByteLength is the signature length in bytes.
type BomResult struct {
	BomType         Format
	EncodingImplied Format
	ByteLength      int
}

// Present reports whether a BOM was detected.
func (r BomResult) Present() bool { return r.BomType != "" }
