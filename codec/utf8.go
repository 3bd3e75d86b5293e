package codec

import (
	"fmt"
	"unicode/utf8"

	"github.com/wippyai/textcodec"
	"github.com/wippyai/textcodec/errors"
)

// scanUTF8Sequence classifies the sequence starting at data[i]. A valid
// sequence returns its rune and byte length with an empty subcode. An
// invalid one returns the length of the maximal invalid subsequence (the
// lead byte plus every continuation byte it claimed); replace mode emits
// exactly one U+FFFD per such subsequence.
func scanUTF8Sequence(data []byte, i int) (r rune, size int, sub errors.Subcode, detail string) {
	b0 := data[i]

	var need int // continuation bytes expected
	var min rune // smallest codepoint the length may encode
	switch {
	case b0 < 0x80:
		return rune(b0), 1, "", ""
	case b0 < 0xC0:
		return 0, 1, errors.SubInvalidContinuation,
			fmt.Sprintf("stray continuation byte 0x%02X", b0)
	case b0 < 0xE0:
		need, min = 1, 0x80
	case b0 < 0xF0:
		need, min = 2, 0x800
	case b0 < 0xF8:
		need, min = 3, 0x10000
	default:
		// 0xF8-0xFF lead in a 5- or 6-byte pattern; anything it could
		// encode is beyond U+10FFFF. Swallow its continuations so the
		// whole run is one subsequence.
		n := 1
		for i+n < len(data) && n < 6 && isContinuation(data[i+n]) {
			n++
		}
		return 0, n, errors.SubOutOfRange,
			fmt.Sprintf("lead byte 0x%02X cannot start a valid sequence", b0)
	}

	cp := rune(b0 & (0x7F >> (need + 1)))
	n := 1
	for k := 0; k < need; k++ {
		if i+n >= len(data) {
			return 0, n, errors.SubTruncatedSequence,
				fmt.Sprintf("%d-byte sequence truncated after %d byte(s)", need+1, n)
		}
		b := data[i+n]
		if !isContinuation(b) {
			return 0, n, errors.SubInvalidContinuation,
				fmt.Sprintf("byte 0x%02X is not a continuation byte", b)
		}
		cp = cp<<6 | rune(b&0x3F)
		n++
	}

	switch {
	case cp < min:
		return 0, n, errors.SubOverlongEncoding,
			fmt.Sprintf("%d-byte sequence encodes U+%04X", n, cp)
	case cp >= 0xD800 && cp <= 0xDFFF:
		return 0, n, errors.SubSurrogateCodepoint,
			fmt.Sprintf("sequence encodes surrogate U+%04X", cp)
	case cp > utf8.MaxRune:
		return 0, n, errors.SubOutOfRange,
			fmt.Sprintf("sequence encodes U+%X beyond U+10FFFF", cp)
	}
	return cp, n, "", ""
}

func isContinuation(b byte) bool { return b&0xC0 == 0x80 }

// ValidateUTF8 checks that data is entirely well-formed UTF-8, rejecting
// overlong encodings, surrogate codepoints, and out-of-range sequences.
// The returned error carries the subcode and byte offset of the first
// failure.
func ValidateUTF8(data []byte) error {
	for i := 0; i < len(data); {
		_, n, sub, detail := scanUTF8Sequence(data, i)
		if sub != "" {
			return errors.InvalidUTF8(errors.OpDecode, sub, i, detail)
		}
		i += n
	}
	return nil
}

// decodeUTF8 validates data byte by byte. The output is the same UTF-8
// text for valid input; invalid subsequences fail, substitute U+FFFD, or
// are dropped depending on the mode. Size accounting is incremental: both
// limits are checked as output grows, never after the fact.
func decodeUTF8(data []byte, opts textcodec.DecodeOptions) (textcodec.DecodeResult, error) {
	var res textcodec.DecodeResult
	mode := onError(opts)
	maxDec := maxDecodedSize(opts)
	maxRatio := maxExpansionRatio(opts)

	out := make([]byte, 0, len(data))
	var corrections uint
	var inScalars, outScalars int

	for i := 0; i < len(data); {
		r, n, sub, detail := scanUTF8Sequence(data, i)
		if sub == "" {
			out = append(out, data[i:i+n]...)
			inScalars++
			outScalars++
		} else {
			switch mode {
			case textcodec.OnErrorStrict:
				return res, errors.InvalidUTF8(errors.OpDecode, sub, i, detail)
			case textcodec.OnErrorReplace:
				out = utf8.AppendRune(out, utf8.RuneError)
				corrections++
				inScalars++
				outScalars++
			default: // ignore
				corrections++
				inScalars++
			}
		}
		_ = r
		i += n

		if len(out) > maxDec {
			return res, errors.BufferOverflow(errors.OpDecode, len(out), maxDec)
		}
		if err := checkExpansion(errors.OpDecode, len(out), i, maxRatio); err != nil {
			return res, err
		}
	}

	sum, err := applyChecksum(errors.OpDecode, opts.Checksum, opts.ChecksumAlgorithm, out)
	if err != nil {
		return res, err
	}

	res = textcodec.DecodeResult{
		Bytes:              out,
		Format:             textcodec.UTF8,
		Checksum:           sum,
		InputSize:          inScalars,
		OutputSize:         outScalars,
		CorrectionsApplied: corrections,
	}
	return res, nil
}
