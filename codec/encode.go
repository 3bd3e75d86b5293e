package codec

import (
	"bytes"
	"encoding/hex"
	"time"

	"github.com/wippyai/textcodec"
	"github.com/wippyai/textcodec/errors"
)

// Encode converts bytes to text under a binary-to-text format. Character
// encodings are rejected with an unsupported-format error; use Transcode
// for charset conversion.
func Encode(data []byte, f textcodec.Format, opts textcodec.EncodeOptions) (textcodec.EncodeResult, error) {
	start := time.Now()
	res, err := encode(data, f, opts)
	emit(opts.Metrics, "encode", f, start, len(data), res.OutputSize, err)
	return res, err
}

func encode(data []byte, f textcodec.Format, opts textcodec.EncodeOptions) (textcodec.EncodeResult, error) {
	var res textcodec.EncodeResult

	if !f.IsBinaryToText() {
		return res, errors.UnsupportedFormat(errors.OpEncode, string(f))
	}
	if opts.LineLength < 0 {
		return res, errors.InvalidOptions(errors.OpEncode, "line length must not be negative")
	}
	if opts.Case != "" && opts.Case != textcodec.HexLower && opts.Case != textcodec.HexUpper {
		return res, errors.InvalidOptions(errors.OpEncode, "case must be \"lower\" or \"upper\"")
	}

	maxSize := opts.MaxEncodedSize
	if maxSize <= 0 {
		maxSize = textcodec.DefaultMaxEncodedSize
	}

	var warnings []string
	padding := !opts.NoPadding

	var encLen int
	switch f {
	case textcodec.Base64, textcodec.Base64URL, textcodec.Base64Raw:
		encLen = base64EncodingFor(f, padding).EncodedLen(len(data))
	case textcodec.Base32, textcodec.Base32Hex:
		encLen = base32EncodingFor(f, padding).EncodedLen(len(data))
	case textcodec.Hex:
		encLen = hex.EncodedLen(len(data))
		if opts.NoPadding {
			warnings = append(warnings, "padding option has no effect for hex")
		}
	}
	if opts.Case != "" && f != textcodec.Hex {
		warnings = append(warnings, "case option only applies to hex")
	}

	// Output bound is exact arithmetic over the input length, so the
	// limit fires before any buffer is allocated.
	total := encLen
	if opts.LineLength > 0 && encLen > 0 {
		total += (encLen - 1) / opts.LineLength
	}
	if total > maxSize {
		return res, errors.BufferOverflow(errors.OpEncode, total, maxSize)
	}

	buf := make([]byte, encLen)
	switch f {
	case textcodec.Base64, textcodec.Base64URL, textcodec.Base64Raw:
		base64EncodingFor(f, padding).Encode(buf, data)
	case textcodec.Base32, textcodec.Base32Hex:
		base32EncodingFor(f, padding).Encode(buf, data)
	case textcodec.Hex:
		hex.Encode(buf, data)
		if opts.Case == textcodec.HexUpper {
			buf = bytes.ToUpper(buf)
		}
	}

	text := wrap(buf, opts.LineLength)

	sum, err := applyChecksum(errors.OpEncode, opts.Checksum, opts.ChecksumAlgorithm, data)
	if err != nil {
		return res, err
	}

	res = textcodec.EncodeResult{
		Text:       string(text),
		Format:     f,
		Checksum:   sum,
		Warnings:   warnings,
		InputSize:  len(data),
		OutputSize: len(text),
	}
	return res, nil
}

// wrap inserts '\n' every width bytes. width <= 0 means no wrapping.
func wrap(buf []byte, width int) []byte {
	if width <= 0 || len(buf) <= width {
		return buf
	}
	lines := (len(buf) - 1) / width
	out := make([]byte, 0, len(buf)+lines)
	for len(buf) > width {
		out = append(out, buf[:width]...)
		out = append(out, '\n')
		buf = buf[width:]
	}
	return append(out, buf...)
}
