package codec

import (
	"bytes"
	"encoding/base32"
	"encoding/base64"
	"encoding/hex"
	stderrors "errors"
	"time"

	"github.com/wippyai/textcodec"
	"github.com/wippyai/textcodec/errors"
)

// Decode converts encoded text back to bytes. Binary-to-text formats run
// the codec path below; character-encoding formats delegate to the
// byte-stream validation path (DecodeBytes).
func Decode(text string, f textcodec.Format, opts textcodec.DecodeOptions) (textcodec.DecodeResult, error) {
	start := time.Now()
	res, err := decode(text, f, opts)
	emit(opts.Metrics, "decode", f, start, len(text), len(res.Bytes), err)
	return res, err
}

func decode(text string, f textcodec.Format, opts textcodec.DecodeOptions) (textcodec.DecodeResult, error) {
	if onError(opts) != textcodec.OnErrorFallback {
		return decodeOne(text, f, opts)
	}

	// Fallback mode: strict attempt on the requested format, then each
	// fallback format in order. The first error is the one reported when
	// everything fails.
	strict := opts
	strict.OnError = textcodec.OnErrorStrict

	res, firstErr := decodeOne(text, f, strict)
	if firstErr == nil {
		return res, nil
	}
	for _, fb := range opts.FallbackFormats {
		res, err := decodeOne(text, fb, strict)
		if err == nil {
			res.Warnings = append(res.Warnings,
				"decoded with fallback format "+string(fb)+" after "+string(f)+" failed")
			return res, nil
		}
	}
	return textcodec.DecodeResult{}, firstErr
}

func decodeOne(text string, f textcodec.Format, opts textcodec.DecodeOptions) (textcodec.DecodeResult, error) {
	switch {
	case f.IsBinaryToText():
		return decodeBinary(text, f, opts)
	case f.IsCharEncoding():
		return decodeChar([]byte(text), f, opts)
	default:
		return textcodec.DecodeResult{}, errors.UnsupportedFormat(errors.OpDecode, string(f))
	}
}

func decodeBinary(text string, f textcodec.Format, opts textcodec.DecodeOptions) (textcodec.DecodeResult, error) {
	var res textcodec.DecodeResult
	mode := onError(opts)

	clean, corrections, err := cleanBinary(text, f, mode, opts.KeepWhitespace)
	if err != nil {
		return res, err
	}
	if mode != textcodec.OnErrorStrict {
		var extra uint
		clean, extra = normalizePadding(clean, f)
		corrections += extra
	}

	// Exact decoded length is known from the cleaned input, so both size
	// limits fire before the output buffer exists.
	var decLen int
	switch f {
	case textcodec.Base64, textcodec.Base64URL, textcodec.Base64Raw:
		decLen = decodeBase64Enc(f, mode).DecodedLen(len(clean))
	case textcodec.Base32, textcodec.Base32Hex:
		decLen = decodeBase32Enc(f, mode).DecodedLen(len(clean))
	case textcodec.Hex:
		decLen = hex.DecodedLen(len(clean))
	}
	maxDec := maxDecodedSize(opts)
	if decLen > maxDec {
		return res, errors.BufferOverflow(errors.OpDecode, decLen, maxDec)
	}
	if err := checkExpansion(errors.OpDecode, decLen, len(text), maxExpansionRatio(opts)); err != nil {
		return res, err
	}

	out := make([]byte, decLen)
	var n int
	switch f {
	case textcodec.Base64, textcodec.Base64URL, textcodec.Base64Raw:
		n, err = decodeBase64Enc(f, mode).Decode(out, clean)
	case textcodec.Base32, textcodec.Base32Hex:
		n, err = decodeBase32Enc(f, mode).Decode(out, clean)
	case textcodec.Hex:
		if len(clean)%2 != 0 {
			return res, errors.InvalidEncoding(errors.OpDecode,
				origIndex(text, f, opts.KeepWhitespace, len(clean)-1),
				"odd-length hex input")
		}
		n, err = hex.Decode(out, clean)
	}
	if err != nil {
		return res, mapCodecError(err, text, f, opts.KeepWhitespace)
	}
	out = out[:n]

	sum, err := applyChecksum(errors.OpDecode, opts.Checksum, opts.ChecksumAlgorithm, out)
	if err != nil {
		return res, err
	}

	res = textcodec.DecodeResult{
		Bytes:              out,
		Format:             f,
		Checksum:           sum,
		InputSize:          len(text),
		OutputSize:         len(out),
		CorrectionsApplied: corrections,
	}
	return res, nil
}

// decodeBase64Enc picks the decode-side encoding: canonical padding in
// strict mode, raw alphabet otherwise (padding was normalized away).
func decodeBase64Enc(f textcodec.Format, mode textcodec.OnError) *base64.Encoding {
	if mode == textcodec.OnErrorStrict {
		return base64EncodingFor(f, true)
	}
	return base64EncodingFor(f, false)
}

func decodeBase32Enc(f textcodec.Format, mode textcodec.OnError) *base32.Encoding {
	if mode == textcodec.OnErrorStrict {
		return base32EncodingFor(f, true)
	}
	return base32EncodingFor(f, false)
}

// cleanBinary filters text down to alphabet characters. Whitespace is
// skipped silently unless keepWS; anything else is a strict error at its
// original offset, or a counted correction in the other modes.
func cleanBinary(text string, f textcodec.Format, mode textcodec.OnError, keepWS bool) ([]byte, uint, error) {
	table := alphabets[f]
	clean := make([]byte, 0, len(text))
	var corrections uint
	for i := 0; i < len(text); i++ {
		b := text[i]
		switch {
		case table[b]:
			clean = append(clean, b)
		case isSpace(b) && !keepWS:
		case mode == textcodec.OnErrorStrict:
			return nil, 0, errors.InvalidEncoding(errors.OpDecode, i,
				"character "+quoteByte(b)+" not in "+string(f)+" alphabet")
		default:
			corrections++
		}
	}
	return clean, corrections, nil
}

// normalizePadding strips '=' and trims the input to a decodable length
// for the raw-alphabet decode used in non-strict modes. A trimmed
// character counts as a correction; removed padding does not.
func normalizePadding(clean []byte, f textcodec.Format) ([]byte, uint) {
	if bytes.IndexByte(clean, '=') >= 0 {
		stripped := clean[:0]
		for _, b := range clean {
			if b != '=' {
				stripped = append(stripped, b)
			}
		}
		clean = stripped
	}

	var corrections uint
	switch f {
	case textcodec.Base64, textcodec.Base64URL, textcodec.Base64Raw:
		if len(clean)%4 == 1 {
			clean = clean[:len(clean)-1]
			corrections++
		}
	case textcodec.Base32, textcodec.Base32Hex:
		switch len(clean) % 8 {
		case 1, 3, 6: // no whole byte in the trailing group
			clean = clean[:len(clean)-1]
			corrections++
		}
	case textcodec.Hex:
		if len(clean)%2 == 1 {
			clean = clean[:len(clean)-1]
			corrections++
		}
	}
	return clean, corrections
}

// origIndex maps an index into the cleaned input back to the offset of
// that character in the original text.
func origIndex(text string, f textcodec.Format, keepWS bool, cleanIdx int) int {
	if cleanIdx < 0 {
		return 0
	}
	table := alphabets[f]
	kept := 0
	for i := 0; i < len(text); i++ {
		if table[text[i]] || (keepWS && isSpace(text[i])) {
			if kept == cleanIdx {
				return i
			}
			kept++
		}
	}
	return len(text)
}

// mapCodecError converts stdlib codec errors into the engine taxonomy,
// translating cleaned-input offsets back to original ones.
func mapCodecError(err error, text string, f textcodec.Format, keepWS bool) error {
	var b64 base64.CorruptInputError
	if stderrors.As(err, &b64) {
		return errors.InvalidEncoding(errors.OpDecode,
			origIndex(text, f, keepWS, int(b64)), "malformed "+string(f)+" input")
	}
	var b32 base32.CorruptInputError
	if stderrors.As(err, &b32) {
		return errors.InvalidEncoding(errors.OpDecode,
			origIndex(text, f, keepWS, int(b32)), "malformed "+string(f)+" input")
	}
	return errors.New(errors.OpDecode, errors.KindInvalidEncoding).Cause(err).Build()
}

func quoteByte(b byte) string {
	if b >= 0x20 && b < 0x7F {
		return "'" + string(rune(b)) + "'"
	}
	const hexdigits = "0123456789abcdef"
	return "0x" + string(hexdigits[b>>4]) + string(hexdigits[b&0xF])
}
