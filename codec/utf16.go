package codec

import (
	"fmt"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/wippyai/textcodec"
	"github.com/wippyai/textcodec/errors"
)

func isHighSurrogate(u uint16) bool { return u >= 0xD800 && u <= 0xDBFF }
func isLowSurrogate(u uint16) bool  { return u >= 0xDC00 && u <= 0xDFFF }

// decodeUTF16 validates data as UTF-16 code units and produces UTF-8
// text. The surrogate state machine tracks pairing across units:
//
//   - high surrogate followed by a low surrogate: one scalar, 4 bytes
//   - high surrogate followed by anything else: unpaired_high_surrogate
//   - lone low surrogate: unpaired_low_surrogate, or reversed_surrogates
//     when a high surrogate immediately follows
//   - odd trailing byte or a high surrogate at end-of-input: truncated_pair
//
// Replace mode substitutes one U+FFFD per offending unit, so a reversed
// pair with no trailing low surrogate yields two U+FFFD.
func decodeUTF16(data []byte, f textcodec.Format, opts textcodec.DecodeOptions) (textcodec.DecodeResult, error) {
	var res textcodec.DecodeResult
	mode := onError(opts)
	maxDec := maxDecodedSize(opts)
	maxRatio := maxExpansionRatio(opts)
	bigEndian := f == textcodec.UTF16BE

	unit := func(i int) uint16 {
		if bigEndian {
			return uint16(data[i])<<8 | uint16(data[i+1])
		}
		return uint16(data[i]) | uint16(data[i+1])<<8
	}

	out := make([]byte, 0, len(data))
	var corrections uint
	var inScalars, outScalars int

	fail := func(sub errors.Subcode, offset int, detail string) error {
		return errors.InvalidUTF16(errors.OpDecode, sub, offset, detail)
	}
	substitute := func(consumed int) {
		out = utf8.AppendRune(out, utf8.RuneError)
		corrections++
		inScalars++
		outScalars++
		_ = consumed
	}

	for i := 0; i < len(data); {
		if i+2 > len(data) {
			if mode == textcodec.OnErrorStrict {
				return res, fail(errors.SubTruncatedPair, i, "odd trailing byte")
			}
			if mode == textcodec.OnErrorReplace {
				substitute(1)
			} else {
				corrections++
				inScalars++
			}
			i = len(data)
			break
		}

		u := unit(i)
		switch {
		case isHighSurrogate(u):
			if i+4 > len(data) {
				if mode == textcodec.OnErrorStrict {
					return res, fail(errors.SubTruncatedPair, i,
						fmt.Sprintf("high surrogate U+%04X at end of input", u))
				}
				if mode == textcodec.OnErrorReplace {
					substitute(len(data) - i)
				} else {
					corrections++
					inScalars++
				}
				i = len(data)
				continue
			}
			next := unit(i + 2)
			if isLowSurrogate(next) {
				r := utf16.DecodeRune(rune(u), rune(next))
				out = utf8.AppendRune(out, r)
				inScalars++
				outScalars++
				i += 4
			} else {
				if mode == textcodec.OnErrorStrict {
					return res, fail(errors.SubUnpairedHighSurrogate, i,
						fmt.Sprintf("high surrogate U+%04X not followed by a low surrogate", u))
				}
				if mode == textcodec.OnErrorReplace {
					substitute(2)
				} else {
					corrections++
					inScalars++
				}
				i += 2
			}

		case isLowSurrogate(u):
			if mode == textcodec.OnErrorStrict {
				sub := errors.SubUnpairedLowSurrogate
				detail := fmt.Sprintf("lone low surrogate U+%04X", u)
				if i+4 <= len(data) && isHighSurrogate(unit(i+2)) {
					sub = errors.SubReversedSurrogates
					detail = fmt.Sprintf("low surrogate U+%04X before high surrogate U+%04X", u, unit(i+2))
				}
				return res, fail(sub, i, detail)
			}
			if mode == textcodec.OnErrorReplace {
				substitute(2)
			} else {
				corrections++
				inScalars++
			}
			i += 2

		default:
			out = utf8.AppendRune(out, rune(u))
			inScalars++
			outScalars++
			i += 2
		}

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
		Format:             f,
		Checksum:           sum,
		InputSize:          inScalars,
		OutputSize:         outScalars,
		CorrectionsApplied: corrections,
	}
	return res, nil
}
