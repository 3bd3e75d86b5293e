package codec

import (
	"bytes"
	stderrors "errors"
	"testing"

	"github.com/wippyai/textcodec"
	"github.com/wippyai/textcodec/errors"
)

func TestDecode_SizeLimitBeforeMaterialization(t *testing.T) {
	// The overflow must be computed from the encoded length, never by
	// decoding first: a limit far below the decoded size fails fast.
	enc, err := Encode(bytes.Repeat([]byte{0}, 1<<20), textcodec.Base64, textcodec.EncodeOptions{})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	_, err = Decode(enc.Text, textcodec.Base64, textcodec.DecodeOptions{MaxDecodedSize: 4096})
	var ce *errors.Error
	if !stderrors.As(err, &ce) || ce.Kind != errors.KindBufferOverflow {
		t.Fatalf("err = %v, want buffer_overflow", err)
	}
	if ce.Actual.(int) <= 4096 {
		t.Errorf("reported size %v should exceed the limit", ce.Actual)
	}
}

func TestDecode_ExpansionRatioBomb(t *testing.T) {
	// Base64 expands ~0.75x, so a threshold below that trips once output
	// passes the arming point.
	enc, err := Encode(bytes.Repeat([]byte{0}, 128<<10), textcodec.Base64, textcodec.EncodeOptions{})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	_, err = Decode(enc.Text, textcodec.Base64, textcodec.DecodeOptions{MaxExpansionRatio: 0.5})
	if !stderrors.Is(err, &errors.Error{Kind: errors.KindEncodingBomb}) {
		t.Fatalf("err = %v, want encoding_bomb", err)
	}
}

func TestDecode_RatioDisarmedForShortInput(t *testing.T) {
	// Short inputs with honest high ratios never trip the bomb check.
	res, err := Decode("deadbeef", textcodec.Hex, textcodec.DecodeOptions{MaxExpansionRatio: 0.1})
	if err != nil {
		t.Fatalf("short input tripped the ratio check: %v", err)
	}
	if len(res.Bytes) != 4 {
		t.Errorf("decoded %d bytes, want 4", len(res.Bytes))
	}
}

func TestDecodeBytes_ReplacementExpansionBomb(t *testing.T) {
	// Replace mode turns each bad byte into a 3-byte U+FFFD; with a
	// ratio cap below 3 the incremental check fires mid-stream.
	data := bytes.Repeat([]byte{0xFF}, 128<<10)
	_, err := DecodeBytes(data, textcodec.UTF8, textcodec.DecodeOptions{
		OnError:           textcodec.OnErrorReplace,
		MaxExpansionRatio: 2,
	})
	if !stderrors.Is(err, &errors.Error{Kind: errors.KindEncodingBomb}) {
		t.Fatalf("err = %v, want encoding_bomb", err)
	}
}

func TestDecodeBytes_IncrementalSizeLimit(t *testing.T) {
	data := bytes.Repeat([]byte{'a'}, 8192)
	_, err := DecodeBytes(data, textcodec.UTF8, textcodec.DecodeOptions{MaxDecodedSize: 1024})
	if !stderrors.Is(err, &errors.Error{Kind: errors.KindBufferOverflow}) {
		t.Fatalf("err = %v, want buffer_overflow", err)
	}
}

func TestSecurityViolationFlaggedInTelemetry(t *testing.T) {
	sink := &captureSink{}
	enc, err := Encode(bytes.Repeat([]byte{0}, 1<<20), textcodec.Base64, textcodec.EncodeOptions{})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	_, err = Decode(enc.Text, textcodec.Base64, textcodec.DecodeOptions{
		MaxDecodedSize: 4096,
		Metrics:        sink,
	})
	if err == nil {
		t.Fatal("expected overflow")
	}
	if len(sink.events) != 1 || !sink.events[0].SecurityViolation {
		t.Errorf("expected one security-flagged event, got %+v", sink.events)
	}
}
