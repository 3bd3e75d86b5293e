package codec

import (
	"fmt"
	"time"
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/wippyai/textcodec"
	"github.com/wippyai/textcodec/errors"
)

// DecodeBytes validates a byte stream as a character encoding and returns
// its UTF-8 form, the decode-to-UTF-8 transcoding path. Sizes in the
// result count Unicode scalar values.
func DecodeBytes(data []byte, f textcodec.Format, opts textcodec.DecodeOptions) (textcodec.DecodeResult, error) {
	start := time.Now()
	res, err := decodeBytes(data, f, opts)
	emit(opts.Metrics, "decode", f, start, len(data), len(res.Bytes), err)
	return res, err
}

func decodeBytes(data []byte, f textcodec.Format, opts textcodec.DecodeOptions) (textcodec.DecodeResult, error) {
	if onError(opts) != textcodec.OnErrorFallback {
		return decodeChar(data, f, opts)
	}

	strict := opts
	strict.OnError = textcodec.OnErrorStrict

	res, firstErr := decodeChar(data, f, strict)
	if firstErr == nil {
		return res, nil
	}
	for _, fb := range opts.FallbackFormats {
		res, err := decodeChar(data, fb, strict)
		if err == nil {
			res.Warnings = append(res.Warnings,
				"decoded with fallback format "+string(fb)+" after "+string(f)+" failed")
			return res, nil
		}
	}
	return textcodec.DecodeResult{}, firstErr
}

func decodeChar(data []byte, f textcodec.Format, opts textcodec.DecodeOptions) (textcodec.DecodeResult, error) {
	switch f {
	case textcodec.UTF8:
		return decodeUTF8(data, opts)
	case textcodec.UTF16LE, textcodec.UTF16BE:
		return decodeUTF16(data, f, opts)
	case textcodec.Latin1:
		return decodeCharmap(data, charmap.ISO8859_1, f, opts)
	case textcodec.CP1252:
		return decodeCharmap(data, charmap.Windows1252, f, opts)
	case textcodec.ASCII:
		return decodeASCII(data, opts)
	default:
		return textcodec.DecodeResult{}, errors.UnsupportedFormat(errors.OpDecode, string(f))
	}
}

// decodeCharmap maps single bytes through an x/text charmap table. Every
// byte is one scalar; the table reports undefined bytes (cp1252 has five)
// as U+FFFD, which is never a legitimate mapping in these charmaps.
func decodeCharmap(data []byte, cm *charmap.Charmap, f textcodec.Format, opts textcodec.DecodeOptions) (textcodec.DecodeResult, error) {
	var res textcodec.DecodeResult
	mode := onError(opts)
	maxDec := maxDecodedSize(opts)
	maxRatio := maxExpansionRatio(opts)

	out := make([]byte, 0, len(data))
	var corrections uint
	var outScalars int

	for i, b := range data {
		r := cm.DecodeByte(b)
		if r == utf8.RuneError {
			switch mode {
			case textcodec.OnErrorStrict:
				return res, errors.InvalidEncoding(errors.OpDecode, i,
					fmt.Sprintf("byte 0x%02X is not defined in %s", b, f))
			case textcodec.OnErrorReplace:
				out = utf8.AppendRune(out, utf8.RuneError)
				corrections++
				outScalars++
			default:
				corrections++
			}
		} else {
			out = utf8.AppendRune(out, r)
			outScalars++
		}

		if len(out) > maxDec {
			return res, errors.BufferOverflow(errors.OpDecode, len(out), maxDec)
		}
		if err := checkExpansion(errors.OpDecode, len(out), i+1, maxRatio); err != nil {
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
		InputSize:          len(data),
		OutputSize:         outScalars,
		CorrectionsApplied: corrections,
	}
	return res, nil
}

func decodeASCII(data []byte, opts textcodec.DecodeOptions) (textcodec.DecodeResult, error) {
	var res textcodec.DecodeResult
	mode := onError(opts)
	maxDec := maxDecodedSize(opts)

	out := make([]byte, 0, len(data))
	var corrections uint
	var outScalars int

	for i, b := range data {
		if b < 0x80 {
			out = append(out, b)
			outScalars++
		} else {
			switch mode {
			case textcodec.OnErrorStrict:
				return res, errors.InvalidEncoding(errors.OpDecode, i,
					fmt.Sprintf("byte 0x%02X outside ASCII range", b))
			case textcodec.OnErrorReplace:
				out = utf8.AppendRune(out, utf8.RuneError)
				corrections++
				outScalars++
			default:
				corrections++
			}
		}
		if len(out) > maxDec {
			return res, errors.BufferOverflow(errors.OpDecode, len(out), maxDec)
		}
	}

	sum, err := applyChecksum(errors.OpDecode, opts.Checksum, opts.ChecksumAlgorithm, out)
	if err != nil {
		return res, err
	}

	res = textcodec.DecodeResult{
		Bytes:              out,
		Format:             textcodec.ASCII,
		Checksum:           sum,
		InputSize:          len(data),
		OutputSize:         outScalars,
		CorrectionsApplied: corrections,
	}
	return res, nil
}

// Transcode converts between character encodings: a decode-to-UTF-8 pass
// followed by a re-encode into the target. The result's Bytes are in the
// target encoding, BOM-free; sizes count scalars.
func Transcode(data []byte, from, to textcodec.Format, opts textcodec.DecodeOptions) (textcodec.DecodeResult, error) {
	start := time.Now()
	res, err := transcode(data, from, to, opts)
	emit(opts.Metrics, "transcode", to, start, len(data), len(res.Bytes), err)
	return res, err
}

func transcode(data []byte, from, to textcodec.Format, opts textcodec.DecodeOptions) (textcodec.DecodeResult, error) {
	var res textcodec.DecodeResult
	if !to.IsCharEncoding() {
		return res, errors.UnsupportedFormat(errors.OpTranscode, string(to))
	}

	// Telemetry and checksum belong to the composite, not the inner pass.
	inner := opts
	inner.Metrics = nil
	inner.Checksum = nil

	dec, err := decodeBytes(data, from, inner)
	if err != nil {
		return res, err
	}

	out := dec.Bytes
	outScalars := dec.OutputSize
	corrections := dec.CorrectionsApplied
	if to != textcodec.UTF8 {
		var extra uint
		out, outScalars, extra, err = encodeChar(dec.Bytes, to, onError(opts), maxDecodedSize(opts))
		if err != nil {
			return res, err
		}
		corrections += extra
	}

	sum, err := applyChecksum(errors.OpTranscode, opts.Checksum, opts.ChecksumAlgorithm, out)
	if err != nil {
		return res, err
	}

	res = textcodec.DecodeResult{
		Bytes:              out,
		Format:             to,
		Checksum:           sum,
		Warnings:           dec.Warnings,
		InputSize:          dec.InputSize,
		OutputSize:         outScalars,
		CorrectionsApplied: corrections,
	}
	return res, nil
}

// encodeChar re-encodes valid UTF-8 text into a target character
// encoding. Unrepresentable runes fail in strict mode, become '?' in
// replace mode, and are dropped in ignore mode.
func encodeChar(text []byte, to textcodec.Format, mode textcodec.OnError, maxSize int) (out []byte, scalars int, corrections uint, err error) {
	var cm *charmap.Charmap
	switch to {
	case textcodec.Latin1:
		cm = charmap.ISO8859_1
	case textcodec.CP1252:
		cm = charmap.Windows1252
	}

	out = make([]byte, 0, len(text))
	pos := 0 // rune index for error offsets
	for i := 0; i < len(text); {
		r, n := utf8.DecodeRune(text[i:])
		i += n

		switch to {
		case textcodec.UTF16LE, textcodec.UTF16BE:
			out = appendUTF16(out, r, to == textcodec.UTF16BE)
			scalars++
		case textcodec.ASCII:
			if r < 0x80 {
				out = append(out, byte(r))
				scalars++
			} else {
				out, scalars, corrections, err = substituteByte(out, r, pos, to, mode, scalars, corrections)
				if err != nil {
					return nil, 0, 0, err
				}
			}
		default: // latin1, cp1252
			if b, ok := cm.EncodeRune(r); ok {
				out = append(out, b)
				scalars++
			} else {
				out, scalars, corrections, err = substituteByte(out, r, pos, to, mode, scalars, corrections)
				if err != nil {
					return nil, 0, 0, err
				}
			}
		}
		pos++

		if len(out) > maxSize {
			return nil, 0, 0, errors.BufferOverflow(errors.OpTranscode, len(out), maxSize)
		}
	}
	return out, scalars, corrections, nil
}

func substituteByte(out []byte, r rune, pos int, to textcodec.Format, mode textcodec.OnError, scalars int, corrections uint) ([]byte, int, uint, error) {
	switch mode {
	case textcodec.OnErrorStrict:
		return nil, 0, 0, errors.InvalidEncoding(errors.OpTranscode, pos,
			fmt.Sprintf("U+%04X is not representable in %s", r, to))
	case textcodec.OnErrorReplace:
		return append(out, '?'), scalars + 1, corrections + 1, nil
	default:
		return out, scalars, corrections + 1, nil
	}
}

func appendUTF16(out []byte, r rune, bigEndian bool) []byte {
	put := func(u uint16) {
		if bigEndian {
			out = append(out, byte(u>>8), byte(u))
		} else {
			out = append(out, byte(u), byte(u>>8))
		}
	}
	if r <= 0xFFFF {
		put(uint16(r))
	} else {
		hi, lo := utf16.EncodeRune(r)
		put(uint16(hi))
		put(uint16(lo))
	}
	return out
}
