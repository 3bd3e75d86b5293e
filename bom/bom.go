// Package bom detects, strips, inserts, and reconciles byte-order marks.
//
// Matching is pure byte-pattern inspection of the first 2-4 bytes against
// the five canonical signatures. Correct composes the primitives under a
// caller-selected policy; it contains no matching logic of its own.
package bom

import (
	"bytes"
	"time"

	"github.com/wippyai/textcodec"
	"github.com/wippyai/textcodec/errors"
)

// signature pairs a BOM byte pattern with the encoding it implies. Order
// matters: longer signatures first so UTF-32LE wins over its UTF-16LE
// prefix.
type signature struct {
	bytes    []byte
	encoding textcodec.Format
}

var signatures = []signature{
	{[]byte{0xFF, 0xFE, 0x00, 0x00}, textcodec.UTF32LE},
	{[]byte{0x00, 0x00, 0xFE, 0xFF}, textcodec.UTF32BE},
	{[]byte{0xEF, 0xBB, 0xBF}, textcodec.UTF8},
	{[]byte{0xFF, 0xFE}, textcodec.UTF16LE},
	{[]byte{0xFE, 0xFF}, textcodec.UTF16BE},
}

// Detect returns the longest unambiguous BOM match at the start of data,
// or a zero BomResult when none is present.
func Detect(data []byte) textcodec.BomResult {
	for _, sig := range signatures {
		if bytes.HasPrefix(data, sig.bytes) {
			return textcodec.BomResult{
				BomType:         sig.encoding,
				EncodingImplied: sig.encoding,
				ByteLength:      len(sig.bytes),
			}
		}
	}
	return textcodec.BomResult{}
}

// Signature returns the canonical BOM bytes for an encoding, or nil when
// the encoding has no BOM.
func Signature(f textcodec.Format) []byte {
	for _, sig := range signatures {
		if sig.encoding == f {
			return append([]byte(nil), sig.bytes...)
		}
	}
	return nil
}

// Validate reports the BOM state of data and whether it matches the
// expected encoding. A present BOM for a different encoding is a
// bom_mismatch error; absence is never an error.
func Validate(data []byte, expected textcodec.Format) (textcodec.BomResult, error) {
	res := Detect(data)
	if res.Present() && expected != "" && res.BomType != expected {
		return res, errors.BomMismatch(string(expected), string(res.BomType))
	}
	return res, nil
}

// Remove strips a detected BOM. When opts.Expected is set, a conflicting
// BOM fails with bom_mismatch instead of being stripped.
func Remove(data []byte, opts textcodec.BomOptions) ([]byte, textcodec.BomResult, error) {
	start := time.Now()
	res, err := Validate(data, opts.Expected)
	out := data
	if err == nil && res.Present() {
		out = data[res.ByteLength:]
	}
	emitBom(opts.Metrics, "bom_remove", res, start, len(data), len(out), err)
	if err != nil {
		return nil, res, err
	}
	return out, res, nil
}

// Add prepends the canonical BOM for the target encoding. Data already
// carrying exactly that BOM is returned unchanged; a different BOM fails
// with bom_mismatch.
func Add(data []byte, f textcodec.Format, opts textcodec.BomOptions) ([]byte, error) {
	start := time.Now()
	out, err := add(data, f)
	emitBom(opts.Metrics, "bom_add", textcodec.BomResult{BomType: f}, start, len(data), len(out), err)
	return out, err
}

func add(data []byte, f textcodec.Format) ([]byte, error) {
	sig := Signature(f)
	if sig == nil {
		return nil, errors.UnsupportedFormat(errors.OpBom, string(f))
	}
	if existing := Detect(data); existing.Present() {
		if existing.BomType == f {
			return data, nil
		}
		return nil, errors.BomMismatch(string(f), string(existing.BomType))
	}
	out := make([]byte, 0, len(sig)+len(data))
	out = append(out, sig...)
	return append(out, data...), nil
}

// Correct reconciles the BOM state of data with the caller's policy. It
// is a composition of Detect, Validate, Remove, and Add; there is no
// special-cased matching here.
func Correct(data []byte, opts textcodec.BomOptions) ([]byte, textcodec.BomResult, error) {
	start := time.Now()
	out, res, err := correct(data, opts)
	emitBom(opts.Metrics, "bom_correct", res, start, len(data), len(out), err)
	return out, res, err
}

func correct(data []byte, opts textcodec.BomOptions) ([]byte, textcodec.BomResult, error) {
	policy := opts.Policy
	if policy == "" {
		policy = textcodec.PreferNoBom
	}
	onMismatch := opts.OnMismatch
	if onMismatch == "" {
		onMismatch = textcodec.MismatchError
	}

	res, err := Validate(data, opts.Expected)
	if err != nil {
		switch onMismatch {
		case textcodec.MismatchIgnore:
			// Treat the conflicting BOM as authoritative for stripping.
		case textcodec.MismatchFix:
			// Strip the wrong BOM, then fall through to the policy.
			stripOpts := opts
			stripOpts.Expected = res.BomType
			stripOpts.Metrics = nil
			data, _, err = Remove(data, stripOpts)
			if err != nil {
				return nil, res, err
			}
			if second := Detect(data); second.Present() {
				return nil, res, errors.MultipleBoms(res.ByteLength)
			}
			res = textcodec.BomResult{}
		default:
			return nil, res, err
		}
	}

	switch policy {
	case textcodec.PreferNoBom:
		if res.Present() {
			stripOpts := opts
			stripOpts.Expected = res.BomType
			stripOpts.Metrics = nil
			out, _, err := Remove(data, stripOpts)
			if err != nil {
				return nil, res, err
			}
			if second := Detect(out); second.Present() {
				return nil, res, errors.MultipleBoms(res.ByteLength)
			}
			return out, res, nil
		}
		return data, res, nil

	case textcodec.AddIfMissing:
		if opts.Expected == "" {
			return nil, res, errors.InvalidOptions(errors.OpBom,
				"add_if_missing policy requires an expected encoding")
		}
		if res.Present() {
			return data, res, nil
		}
		out, err := add(data, opts.Expected)
		if err != nil {
			return nil, res, err
		}
		return out, res, nil

	default:
		return nil, res, errors.InvalidOptions(errors.OpBom, "unknown policy "+string(policy))
	}
}

func emitBom(sink textcodec.Sink, op string, res textcodec.BomResult, start time.Time, in, out int, err error) {
	if sink == nil {
		return
	}
	sink.Record(textcodec.Event{
		Op:          op,
		Format:      res.BomType,
		Duration:    time.Since(start),
		InputBytes:  in,
		OutputBytes: out,
		Err:         err,
	})
}
