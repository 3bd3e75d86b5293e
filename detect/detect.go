// Package detect guesses the character encoding of a byte sample.
//
// Detection runs structural passes in strict precedence order: BOM
// signature, NULL-byte parity, full UTF-8 validation, all-ASCII. Each
// pass has a fixed confidence ceiling so results are deterministic and
// comparable across implementations. Statistical disambiguation of legacy
// 8-bit encodings is an opt-in extension backed by chardet; it never
// overrides a high-tier structural result.
package detect

import (
	stderrors "errors"
	"fmt"
	"sort"
	"time"

	"github.com/saintfish/chardet"

	"github.com/wippyai/textcodec"
	"github.com/wippyai/textcodec/bom"
	"github.com/wippyai/textcodec/codec"
	"github.com/wippyai/textcodec/errors"
)

// Confidence ceilings per structural pass.
const (
	bomConfidence    = 1.0
	utf8Confidence   = 0.95
	parityConfidence = 0.85 // scaled by parity consistency
	asciiConfidence  = 0.4
)

// maxCandidates bounds the ranked candidate list.
const maxCandidates = 3

// Detect inspects a byte sample and returns a ranked encoding guess.
func Detect(data []byte, opts textcodec.DetectOptions) (textcodec.DetectionResult, error) {
	start := time.Now()
	res, err := detect(data, opts)
	if opts.Metrics != nil {
		opts.Metrics.Record(textcodec.Event{
			Op:         "detect",
			Format:     res.Encoding,
			Duration:   time.Since(start),
			InputBytes: len(data),
			Err:        err,
		})
	}
	return res, err
}

func detect(data []byte, opts textcodec.DetectOptions) (textcodec.DetectionResult, error) {
	maxSample := opts.MaxSampleSize
	if maxSample <= 0 {
		maxSample = textcodec.DefaultMaxSampleSize
	}
	sample := data
	truncated := false
	if len(sample) > maxSample {
		sample = sample[:maxSample]
		truncated = true
	}

	res := structural(data, sample, truncated)

	if opts.Statistical && res.ConfidenceTier != textcodec.TierHigh {
		res = mergeStatistical(res, sample)
	}

	rankCandidates(&res)

	if opts.MinConfidence > 0 && res.Confidence < opts.MinConfidence {
		return res, errors.DetectionFailed(res.Confidence, opts.MinConfidence)
	}
	return res, nil
}

// structural runs the fixed-precedence passes over the sample.
func structural(data, sample []byte, truncated bool) textcodec.DetectionResult {
	// 1. BOM signature: authoritative, confidence 1.0.
	if b := bom.Detect(data); b.Present() {
		return textcodec.DetectionResult{
			Encoding:       b.EncodingImplied,
			Confidence:     bomConfidence,
			ConfidenceTier: textcodec.TierFor(bomConfidence),
			BomDetected:    true,
			BomBytes:       append([]byte(nil), data[:b.ByteLength]...),
			Candidates: []textcodec.Candidate{{
				Encoding:   b.EncodingImplied,
				Confidence: bomConfidence,
				Reason:     "byte-order mark signature",
			}},
		}
	}

	// 2. NULL-byte parity: UTF-16 text with ASCII-range content has the
	// zero (high) byte of each unit at a consistent parity: even offsets
	// for big-endian, odd for little-endian. Runs before the UTF-8 pass
	// because such text is byte-wise valid UTF-8 too, and abundant NULs
	// are the stronger signal.
	if cand, ok := nullParity(sample); ok {
		res := textcodec.DetectionResult{
			Encoding:       cand.Encoding,
			Confidence:     cand.Confidence,
			ConfidenceTier: textcodec.TierFor(cand.Confidence),
			Candidates:     []textcodec.Candidate{cand},
		}
		other := textcodec.UTF16BE
		if cand.Encoding == textcodec.UTF16BE {
			other = textcodec.UTF16LE
		}
		res.Candidates = append(res.Candidates, textcodec.Candidate{
			Encoding:   other,
			Confidence: parityConfidence - cand.Confidence,
			Reason:     "minority NULL-byte parity",
		})
		return res
	}

	// 3. Full UTF-8 validation over the sample.
	if utf8Valid(sample, truncated) {
		if allASCII(sample) {
			// 4. Pure ASCII is ambiguous across every ASCII-compatible
			// encoding; report utf8 at low confidence with a warning.
			return textcodec.DetectionResult{
				Encoding:       textcodec.UTF8,
				Confidence:     asciiConfidence,
				ConfidenceTier: textcodec.TierFor(asciiConfidence),
				Warnings: []string{
					"sample is pure ASCII and is ambiguous across several encodings",
				},
				Candidates: []textcodec.Candidate{
					{Encoding: textcodec.UTF8, Confidence: asciiConfidence, Reason: "all bytes below 0x80"},
					{Encoding: textcodec.ASCII, Confidence: asciiConfidence, Reason: "all bytes below 0x80"},
					{Encoding: textcodec.Latin1, Confidence: asciiConfidence - 0.1, Reason: "ASCII-compatible superset"},
				},
			}
		}
		return textcodec.DetectionResult{
			Encoding:       textcodec.UTF8,
			Confidence:     utf8Confidence,
			ConfidenceTier: textcodec.TierFor(utf8Confidence),
			Candidates: []textcodec.Candidate{{
				Encoding:   textcodec.UTF8,
				Confidence: utf8Confidence,
				Reason:     "every byte forms a legal UTF-8 sequence",
			}},
		}
	}

	// 5. Nothing matched.
	return textcodec.DetectionResult{
		Encoding:       textcodec.Unknown,
		Confidence:     0,
		ConfidenceTier: textcodec.TierLow,
		Warnings:       []string{"no structural pass matched the sample"},
	}
}

// utf8Valid runs the full validation state machine. A sequence truncated
// by the sampling boundary itself does not count against the sample.
func utf8Valid(sample []byte, truncated bool) bool {
	if len(sample) == 0 {
		return false
	}
	err := codec.ValidateUTF8(sample)
	if err == nil {
		return true
	}
	if !truncated {
		return false
	}
	var ce *errors.Error
	if !stderrors.As(err, &ce) {
		return false
	}
	// A multi-byte sequence can straddle the sample cut; tolerate only a
	// truncation error within the last 3 bytes.
	return ce.Subcode == errors.SubTruncatedSequence && ce.Offset >= len(sample)-3
}

func allASCII(sample []byte) bool {
	for _, b := range sample {
		if b >= 0x80 {
			return false
		}
	}
	return true
}

// nullParity scans for the NULL-byte pattern of UTF-16 text. Confidence
// scales with the consistency ratio and is capped at 0.85.
func nullParity(sample []byte) (textcodec.Candidate, bool) {
	var even, odd int
	for i, b := range sample {
		if b == 0 {
			if i%2 == 0 {
				even++
			} else {
				odd++
			}
		}
	}
	total := even + odd
	// Too few NULLs to be meaningful for a UTF-16 guess.
	if total == 0 || total < len(sample)/8 {
		return textcodec.Candidate{}, false
	}

	enc := textcodec.UTF16BE // zero high byte first
	majority := even
	if odd > even {
		enc = textcodec.UTF16LE
		majority = odd
	}
	ratio := float64(majority) / float64(total)
	if ratio < 0.7 {
		return textcodec.Candidate{}, false
	}
	return textcodec.Candidate{
		Encoding:   enc,
		Confidence: parityConfidence * ratio,
		Reason:     fmt.Sprintf("NULL-byte parity consistency %.2f", ratio),
	}, true
}

// mergeStatistical folds chardet guesses into the candidate list. Scores
// are rescaled under the structural parity cap so a statistical guess can
// refine a weak result but never outrank a structural high.
func mergeStatistical(res textcodec.DetectionResult, sample []byte) textcodec.DetectionResult {
	guesses, err := chardet.NewTextDetector().DetectAll(sample)
	if err != nil {
		return res
	}
	for _, g := range guesses {
		f, ok := chardetFormat(g.Charset)
		if !ok {
			continue
		}
		conf := float64(g.Confidence) / 100 * parityConfidence
		if conf <= 0 {
			continue
		}
		res.Candidates = append(res.Candidates, textcodec.Candidate{
			Encoding:   f,
			Confidence: conf,
			Reason:     "statistical (chardet: " + g.Charset + ")",
		})
		if conf > res.Confidence {
			res.Encoding = f
			res.Confidence = conf
			res.ConfidenceTier = textcodec.TierFor(conf)
		}
	}
	return res
}

// chardetFormat maps chardet charset names onto the closed format set.
func chardetFormat(name string) (textcodec.Format, bool) {
	switch name {
	case "UTF-8":
		return textcodec.UTF8, true
	case "UTF-16LE":
		return textcodec.UTF16LE, true
	case "UTF-16BE":
		return textcodec.UTF16BE, true
	case "ISO-8859-1":
		return textcodec.Latin1, true
	case "windows-1252":
		return textcodec.CP1252, true
	}
	return textcodec.Unknown, false
}

// rankCandidates sorts by descending confidence, deduplicates, and caps
// the list.
func rankCandidates(res *textcodec.DetectionResult) {
	sort.SliceStable(res.Candidates, func(i, j int) bool {
		return res.Candidates[i].Confidence > res.Candidates[j].Confidence
	})
	seen := map[textcodec.Format]bool{}
	ranked := res.Candidates[:0]
	for _, c := range res.Candidates {
		if seen[c.Encoding] {
			continue
		}
		seen[c.Encoding] = true
		ranked = append(ranked, c)
		if len(ranked) == maxCandidates {
			break
		}
	}
	res.Candidates = ranked
}
