// Package testbed exercises the engines end to end: encoded payloads move
// through detection, BOM handling, decoding, transcoding, and
// normalization the way a document-ingestion caller would drive them.
package testbed

import (
	"bytes"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/wippyai/textcodec"
	"github.com/wippyai/textcodec/bom"
	"github.com/wippyai/textcodec/checksum"
	"github.com/wippyai/textcodec/codec"
	"github.com/wippyai/textcodec/detect"
	"github.com/wippyai/textcodec/errors"
	"github.com/wippyai/textcodec/normalize"
	"github.com/wippyai/textcodec/telemetry"
)

// utf16le encodes ASCII text as little-endian UTF-16.
func utf16le(s string) []byte {
	out := make([]byte, 0, len(s)*2)
	for _, c := range []byte(s) {
		out = append(out, c, 0)
	}
	return out
}

func TestPipeline_Base64ToCleanText(t *testing.T) {
	// A base64 payload wrapping UTF-8 text with a BOM: decode, strip the
	// BOM, validate as UTF-8, normalize for display.
	original := "re\u0301sume\u0301 \u2460"
	payload := append([]byte{0xEF, 0xBB, 0xBF}, original...)

	enc, err := codec.Encode(payload, textcodec.Base64, textcodec.EncodeOptions{})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	dec, err := codec.Decode(enc.Text, textcodec.Base64, textcodec.DecodeOptions{})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	det, err := detect.Detect(dec.Bytes, textcodec.DetectOptions{})
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if det.Encoding != textcodec.UTF8 || !det.BomDetected {
		t.Fatalf("detected %q (bom %v), want utf8 with BOM", det.Encoding, det.BomDetected)
	}

	stripped, _, err := bom.Remove(dec.Bytes, textcodec.BomOptions{Expected: textcodec.UTF8})
	if err != nil {
		t.Fatalf("bom remove: %v", err)
	}

	text, err := codec.DecodeBytes(stripped, textcodec.UTF8, textcodec.DecodeOptions{})
	if err != nil {
		t.Fatalf("utf8 validate: %v", err)
	}

	norm, err := normalize.Normalize(string(text.Bytes), normalize.NFC, textcodec.NormalizeOptions{})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if norm.Text != "r\u00e9sum\u00e9 \u2460" {
		t.Errorf("normalized = %q", norm.Text)
	}
}

func TestPipeline_DetectThenTranscodeUTF16(t *testing.T) {
	data := utf16le("Hello, World!")

	det, err := detect.Detect(data, textcodec.DetectOptions{})
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if det.Encoding != textcodec.UTF16LE {
		t.Fatalf("detected %q, want utf16le", det.Encoding)
	}

	out, err := codec.Transcode(data, det.Encoding, textcodec.UTF8, textcodec.DecodeOptions{})
	if err != nil {
		t.Fatalf("transcode: %v", err)
	}
	if string(out.Bytes) != "Hello, World!" {
		t.Errorf("transcoded = %q", out.Bytes)
	}
}

func TestPipeline_LegacyFallbackChain(t *testing.T) {
	// cp1252 bytes mislabeled as UTF-8: the fallback chain recovers them
	// and transcoding round-trips the text.
	legacy := []byte{'c', 'a', 'f', 0xE9, ' ', 0x93, 'q', 0x94}

	dec, err := codec.DecodeBytes(legacy, textcodec.UTF8, textcodec.DecodeOptions{
		OnError:         textcodec.OnErrorFallback,
		FallbackFormats: []textcodec.Format{textcodec.CP1252, textcodec.Latin1},
	})
	if err != nil {
		t.Fatalf("fallback decode: %v", err)
	}
	if dec.Format != textcodec.CP1252 {
		t.Fatalf("Format = %q, want cp1252", dec.Format)
	}
	if string(dec.Bytes) != "café “q”" {
		t.Errorf("Bytes = %q", dec.Bytes)
	}

	back, err := codec.Transcode(dec.Bytes, textcodec.UTF8, textcodec.CP1252, textcodec.DecodeOptions{})
	if err != nil {
		t.Fatalf("transcode back: %v", err)
	}
	if !bytes.Equal(back.Bytes, legacy) {
		t.Errorf("round trip = %x, want %x", back.Bytes, legacy)
	}
}

func TestPipeline_ChecksumAgreement(t *testing.T) {
	// The digest of the decoded bytes must match a digest of the original
	// payload, for both providers.
	payload := []byte("integrity matters")
	provider := checksum.Provider()

	for _, alg := range []string{checksum.Blake3, checksum.SHA256} {
		enc, err := codec.Encode(payload, textcodec.Base64, textcodec.EncodeOptions{
			Checksum:          provider,
			ChecksumAlgorithm: alg,
		})
		if err != nil {
			t.Fatalf("%s: encode: %v", alg, err)
		}
		dec, err := codec.Decode(enc.Text, textcodec.Base64, textcodec.DecodeOptions{
			Checksum:          provider,
			ChecksumAlgorithm: alg,
		})
		if err != nil {
			t.Fatalf("%s: decode: %v", alg, err)
		}
		want, err := provider(payload, alg)
		if err != nil {
			t.Fatalf("%s: provider: %v", alg, err)
		}
		if dec.Checksum != want || enc.Checksum != want {
			t.Errorf("%s: checksums diverge: enc %s dec %s want %s", alg, enc.Checksum, dec.Checksum, want)
		}
	}
}

func TestPipeline_HostileInputRejected(t *testing.T) {
	// Every hostile payload must die with a security-relevant kind, never
	// a panic or a silent pass.
	hostile := []struct {
		name string
		run  func() error
	}{
		{"combining mark flood", func() error {
			_, err := normalize.Normalize("a"+strings.Repeat("\u0301", 10000), normalize.NFC, textcodec.NormalizeOptions{})
			return err
		}},
		{"bidi spoof in text_safe", func() error {
			_, err := normalize.Normalize("invoice\u202epdf.exe", normalize.TextSafe, textcodec.NormalizeOptions{})
			return err
		}},
		{"zero width homograph", func() error {
			_, err := normalize.Normalize("pay\u200bpal", normalize.NFC, textcodec.NormalizeOptions{RejectZeroWidth: true})
			return err
		}},
		{"oversize decode", func() error {
			enc, err := codec.Encode(make([]byte, 1<<20), textcodec.Base64, textcodec.EncodeOptions{})
			if err != nil {
				return err
			}
			_, err = codec.Decode(enc.Text, textcodec.Base64, textcodec.DecodeOptions{MaxDecodedSize: 1 << 10})
			return err
		}},
	}

	for _, tc := range hostile {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.run()
			var ce *errors.Error
			if !stderrors.As(err, &ce) {
				t.Fatalf("err = %v, want *errors.Error", err)
			}
			if !ce.Kind.Security() {
				t.Errorf("Kind = %q is not security-relevant", ce.Kind)
			}
		})
	}
}

func TestPipeline_TelemetryAcrossEngines(t *testing.T) {
	// The zap sink must accept events from every engine without blowing
	// up; behavior with a sink attached must match behavior without one.
	sink := telemetry.NewZapSink(nil)

	enc, err := codec.Encode([]byte("payload"), textcodec.Hex, textcodec.EncodeOptions{Metrics: sink})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	bare, err := codec.Encode([]byte("payload"), textcodec.Hex, textcodec.EncodeOptions{})
	if err != nil || enc.Text != bare.Text {
		t.Errorf("sink changed output: %q vs %q (err %v)", enc.Text, bare.Text, err)
	}

	if _, err := detect.Detect([]byte("payload"), textcodec.DetectOptions{Metrics: sink}); err != nil {
		t.Errorf("detect with sink: %v", err)
	}
	if _, err := normalize.Normalize("payload", normalize.NFC, textcodec.NormalizeOptions{Metrics: sink}); err != nil {
		t.Errorf("normalize with sink: %v", err)
	}
	if _, _, err := bom.Correct([]byte("payload"), textcodec.BomOptions{Metrics: sink}); err != nil {
		t.Errorf("bom correct with sink: %v", err)
	}
}

// Benchmarks

func BenchmarkPipeline_Base64Decode(b *testing.B) {
	enc, err := codec.Encode(bytes.Repeat([]byte{0xA5}, 64<<10), textcodec.Base64, textcodec.EncodeOptions{})
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := codec.Decode(enc.Text, textcodec.Base64, textcodec.DecodeOptions{}); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkPipeline_UTF8Validation(b *testing.B) {
	data := bytes.Repeat([]byte("héllo wörld \U0001F389 "), 2048)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := codec.ValidateUTF8(data); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkPipeline_Detect(b *testing.B) {
	data := bytes.Repeat([]byte("ordinary utf-8 text with some accents: café "), 256)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := detect.Detect(data, textcodec.DetectOptions{}); err != nil {
			b.Fatal(err)
		}
	}
}
