// Package normalize transforms Unicode text under a named profile.
//
// The canonical profiles nfc, nfd, nfkc, and nfkd map directly onto the
// standard normalization forms. The composed text_safe profile (for
// log/UI output) is NFC plus rejection of control characters and the
// bidi-override/isolate set.
//
// Security hardening applies regardless of profile: a cap on consecutive
// combining marks defends against quadratic-blowup rendering attacks, and
// zero-width characters can be rejected by option. The compatibility
// forms nfkc/nfkd are not semantic-preserving; substitutions that change
// a ligature, compatibility character, or enclosed form are recorded in
// the result unless disabled.
package normalize

import (
	stderrors "errors"
	"fmt"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/wippyai/textcodec"
	"github.com/wippyai/textcodec/errors"
)

// Profile names a normalization behavior.
type Profile string

const (
	NFC      Profile = "nfc"
	NFD      Profile = "nfd"
	NFKC     Profile = "nfkc"
	NFKD     Profile = "nfkd"
	TextSafe Profile = "text_safe"
)

// zero-width codepoints rejected under RejectZeroWidth.
var zeroWidth = map[rune]bool{
	0x200B: true, // ZERO WIDTH SPACE
	0x200C: true, // ZERO WIDTH NON-JOINER
	0x200D: true, // ZERO WIDTH JOINER
	0xFEFF: true, // ZERO WIDTH NO-BREAK SPACE
}

// bidi override/isolate controls plus the implicit marks, rejected by
// text_safe.
var bidiControl = map[rune]bool{
	0x061C: true, // ARABIC LETTER MARK
	0x200E: true, // LEFT-TO-RIGHT MARK
	0x200F: true, // RIGHT-TO-LEFT MARK
	0x202A: true, 0x202B: true, 0x202C: true, 0x202D: true, 0x202E: true,
	0x2066: true, 0x2067: true, 0x2068: true, 0x2069: true,
}

// Normalize transforms text under the profile, applying the security
// checks from the options. Result lengths count Unicode scalar values.
func Normalize(text string, profile Profile, opts textcodec.NormalizeOptions) (textcodec.NormalizationResult, error) {
	start := time.Now()
	res, err := normalize(text, profile, opts)
	if opts.Metrics != nil {
		ev := textcodec.Event{
			Op:          "normalize",
			Duration:    time.Since(start),
			InputBytes:  len(text),
			OutputBytes: len(res.Text),
			Err:         err,
		}
		var ce *errors.Error
		if stderrors.As(err, &ce) {
			ev.SecurityViolation = ce.Kind.Security()
		}
		opts.Metrics.Record(ev)
	}
	return res, err
}

func normalize(text string, profile Profile, opts textcodec.NormalizeOptions) (textcodec.NormalizationResult, error) {
	var res textcodec.NormalizationResult

	var form norm.Form
	switch profile {
	case NFC, TextSafe:
		form = norm.NFC
	case NFD:
		form = norm.NFD
	case NFKC:
		form = norm.NFKC
	case NFKD:
		form = norm.NFKD
	default:
		return res, errors.InvalidOptions(errors.OpNormalize, "unknown profile "+string(profile))
	}

	maxMarks := opts.MaxCombiningMarks
	if maxMarks <= 0 {
		maxMarks = textcodec.DefaultMaxCombiningMarks
	}

	// Input pre-scan: the combining-mark cap runs before normalization so
	// a hostile run is rejected before any quadratic normalization work,
	// and the reported count reflects the input as received.
	if err := scanInput(text, maxMarks, opts.RejectZeroWidth); err != nil {
		return res, err
	}

	var changes []textcodec.SemanticChange
	var warnings []string
	if profile == NFKC || profile == NFKD {
		warnings = append(warnings, "profile "+string(profile)+" is not semantic-preserving")
		if !opts.NoSemanticChangeLog {
			changes = semanticChanges(text, form)
		}
	}

	out := form.String(text)

	if profile == TextSafe {
		if err := scanTextSafe(out); err != nil {
			return res, err
		}
	}

	res = textcodec.NormalizationResult{
		Text:            out,
		Profile:         string(profile),
		SemanticChanges: changes,
		Warnings:        warnings,
		InputLength:     utf8.RuneCountInString(text),
		OutputLength:    utf8.RuneCountInString(out),
	}
	return res, nil
}

// IsCombiningMark reports whether r attaches to a preceding base
// character (general categories Mn, Mc, Me).
func IsCombiningMark(r rune) bool {
	return unicode.In(r, unicode.Mn, unicode.Mc, unicode.Me)
}

// scanInput enforces the combining-mark cap and, when enabled, the
// zero-width rejection. Positions are rune indices.
func scanInput(text string, maxMarks int, rejectZeroWidth bool) error {
	pos := 0
	runStart := 0
	runLen := 0
	for _, r := range text {
		if rejectZeroWidth && zeroWidth[r] {
			return errors.ZeroWidthCharacter(r, pos)
		}
		if IsCombiningMark(r) {
			if runLen == 0 {
				runStart = pos
			}
			runLen++
		} else {
			if runLen > maxMarks {
				return errors.ExcessiveCombiningMarks(runStart, runLen, maxMarks)
			}
			runLen = 0
		}
		pos++
	}
	if runLen > maxMarks {
		return errors.ExcessiveCombiningMarks(runStart, runLen, maxMarks)
	}
	return nil
}

// scanTextSafe rejects control and bidi-control characters in the
// normalized output.
func scanTextSafe(text string) error {
	pos := 0
	for _, r := range text {
		if bidiControl[r] {
			return errors.BidiControlCharacter(r, pos)
		}
		if unicode.IsControl(r) {
			return errors.New(errors.OpNormalize, errors.KindInvalidEncoding).
				Offset(pos).
				Actual(fmt.Sprintf("U+%04X", r)).
				Detail("control character not allowed in text_safe output").
				Build()
		}
		pos++
	}
	return nil
}

// semanticChanges records, per input rune, compatibility substitutions
// that the canonical form would not have made.
func semanticChanges(text string, form norm.Form) []textcodec.SemanticChange {
	canonical := norm.NFC
	if form == norm.NFKD {
		canonical = norm.NFD
	}

	var changes []textcodec.SemanticChange
	pos := 0
	for _, r := range text {
		s := string(r)
		compat := form.String(s)
		if compat != canonical.String(s) {
			changes = append(changes, textcodec.SemanticChange{
				Position:   pos,
				Original:   s,
				Normalized: compat,
				Reason:     changeReason(r, compat),
			})
		}
		pos++
	}
	return changes
}

// changeReason classifies a compatibility substitution.
func changeReason(r rune, normalized string) string {
	runes := []rune(normalized)
	switch {
	case unicode.In(r, unicode.No, unicode.Nd, unicode.Nl):
		return "enclosed or styled number"
	case len(runes) > 1 && allLetters(runes):
		return "ligature"
	default:
		return "compatibility character"
	}
}

func allLetters(runes []rune) bool {
	for _, r := range runes {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

