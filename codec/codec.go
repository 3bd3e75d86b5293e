package codec

import (
	"encoding/base32"
	"encoding/base64"
	stderrors "errors"
	"time"

	"github.com/wippyai/textcodec"
	"github.com/wippyai/textcodec/errors"
)

// bombArmThreshold is the output size below which the expansion-ratio
// check stays disarmed, so short inputs with honest high ratios never
// trip it.
const bombArmThreshold = 64 << 10

// Codec alphabets. '=' padding is handled separately.
const (
	base64StdAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"
	base64URLAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
	base32StdAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ234567"
	base32HexAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUV"
	hexAlphabet       = "0123456789abcdefABCDEF"
)

// alphabets maps each binary-to-text format to its membership table.
// Built once at init; read-only afterwards.
var alphabets = map[textcodec.Format]*[256]bool{}

func init() {
	set := func(f textcodec.Format, alphabet string, padded bool) {
		var t [256]bool
		for i := 0; i < len(alphabet); i++ {
			t[alphabet[i]] = true
		}
		if padded {
			t['='] = true
		}
		alphabets[f] = &t
	}
	set(textcodec.Base64, base64StdAlphabet, true)
	set(textcodec.Base64URL, base64URLAlphabet, true)
	set(textcodec.Base64Raw, base64StdAlphabet, false)
	set(textcodec.Base32, base32StdAlphabet, true)
	set(textcodec.Base32Hex, base32HexAlphabet, true)
	set(textcodec.Hex, hexAlphabet, false)
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

// base64EncodingFor returns the stdlib encoding for a Base64-family
// format. Base64Raw is never padded regardless of the padding flag.
func base64EncodingFor(f textcodec.Format, padding bool) *base64.Encoding {
	switch f {
	case textcodec.Base64Raw:
		return base64.RawStdEncoding
	case textcodec.Base64URL:
		if padding {
			return base64.URLEncoding
		}
		return base64.RawURLEncoding
	default:
		if padding {
			return base64.StdEncoding
		}
		return base64.RawStdEncoding
	}
}

func base32EncodingFor(f textcodec.Format, padding bool) *base32.Encoding {
	enc := base32.StdEncoding
	if f == textcodec.Base32Hex {
		enc = base32.HexEncoding
	}
	if !padding {
		return enc.WithPadding(base32.NoPadding)
	}
	return enc
}

func maxDecodedSize(opts textcodec.DecodeOptions) int {
	if opts.MaxDecodedSize > 0 {
		return opts.MaxDecodedSize
	}
	return textcodec.DefaultMaxDecodedSize
}

func maxExpansionRatio(opts textcodec.DecodeOptions) float64 {
	if opts.MaxExpansionRatio > 0 {
		return opts.MaxExpansionRatio
	}
	return textcodec.DefaultMaxExpansionRatio
}

func onError(opts textcodec.DecodeOptions) textcodec.OnError {
	if opts.OnError == "" {
		return textcodec.OnErrorStrict
	}
	return opts.OnError
}

// checkExpansion fails with an encoding-bomb error when output has grown
// past the armed threshold and exceeds the configured ratio over input.
func checkExpansion(op errors.Op, outSize, inSize int, maxRatio float64) error {
	if outSize <= bombArmThreshold || inSize == 0 {
		return nil
	}
	ratio := float64(outSize) / float64(inSize)
	if ratio > maxRatio {
		return errors.EncodingBomb(op, ratio, maxRatio)
	}
	return nil
}

// emit records one telemetry event. A nil sink is a no-op; telemetry can
// never change operation behavior.
func emit(sink textcodec.Sink, op string, f textcodec.Format, start time.Time, in, out int, err error) {
	if sink == nil {
		return
	}
	ev := textcodec.Event{
		Op:          op,
		Format:      f,
		Duration:    time.Since(start),
		InputBytes:  in,
		OutputBytes: out,
		Err:         err,
	}
	var ce *errors.Error
	if stderrors.As(err, &ce) {
		ev.SecurityViolation = ce.Kind.Security()
	}
	sink.Record(ev)
}

// applyChecksum runs the injected digest hook, if any, over payload.
func applyChecksum(op errors.Op, fn textcodec.ChecksumFunc, algorithm string, payload []byte) (string, error) {
	if fn == nil || algorithm == "" {
		return "", nil
	}
	sum, err := fn(payload, algorithm)
	if err != nil {
		return "", errors.New(op, errors.KindInvalidOptions).
			Detail("checksum provider failed for algorithm %q", algorithm).
			Cause(err).
			Build()
	}
	return sum, nil
}
