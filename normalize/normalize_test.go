package normalize

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/wippyai/textcodec"
	"github.com/wippyai/textcodec/errors"
)

func TestNormalize_NFC(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"decomposed e acute", "e\u0301", "\u00e9"},
		{"already composed", "\u00e9", "\u00e9"},
		{"plain ascii", "hello", "hello"},
		{"empty", "", ""},
		{"hangul jamo", "가", "가"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res, err := Normalize(tc.in, NFC, textcodec.NormalizeOptions{})
			if err != nil {
				t.Fatalf("Normalize failed: %v", err)
			}
			if res.Text != tc.want {
				t.Errorf("Text = %q, want %q", res.Text, tc.want)
			}
			if len(res.SemanticChanges) != 0 {
				t.Errorf("canonical form logged %d semantic changes", len(res.SemanticChanges))
			}
		})
	}
}

func TestNormalize_NFD(t *testing.T) {
	res, err := Normalize("\u00e9", NFD, textcodec.NormalizeOptions{})
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if res.Text != "e\u0301" {
		t.Errorf("Text = %q, want decomposed form", res.Text)
	}
	if res.InputLength != 1 || res.OutputLength != 2 {
		t.Errorf("lengths = %d/%d, want scalar counts 1/2", res.InputLength, res.OutputLength)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{"e\u0301", "cafe\u0301", "\uac00", "\ufb01le \uff21 \u2460"}
	for _, p := range []Profile{NFC, NFD, NFKC, NFKD} {
		for _, in := range inputs {
			once, err := Normalize(in, p, textcodec.NormalizeOptions{})
			if err != nil {
				t.Fatalf("%s(%q): %v", p, in, err)
			}
			twice, err := Normalize(once.Text, p, textcodec.NormalizeOptions{})
			if err != nil {
				t.Fatalf("%s twice: %v", p, err)
			}
			if once.Text != twice.Text {
				t.Errorf("%s not idempotent on %q: %q then %q", p, in, once.Text, twice.Text)
			}
		}
	}
}

func TestNormalize_CombiningMarkCap(t *testing.T) {
	// The count reflects the input run, not the post-normalization text.
	text := "e" + strings.Repeat("\u0301", 100)
	_, err := Normalize(text, NFC, textcodec.NormalizeOptions{})
	var ce *errors.Error
	if !stderrors.As(err, &ce) {
		t.Fatalf("err = %v, want *errors.Error", err)
	}
	if ce.Kind != errors.KindExcessiveCombiningMarks {
		t.Errorf("Kind = %q, want excessive_combining_marks", ce.Kind)
	}
	if ce.Actual.(int) != 100 || ce.Expected.(int) != 10 {
		t.Errorf("count/max = %v/%v, want 100/10", ce.Actual, ce.Expected)
	}
	if ce.Offset != 1 {
		t.Errorf("Offset = %d, want run start 1", ce.Offset)
	}
	if !ce.Kind.Security() {
		t.Error("excessive_combining_marks should be a security kind")
	}
}

func TestNormalize_CombiningMarkCapConfigurable(t *testing.T) {
	text := "a" + strings.Repeat("\u0301", 5)
	if _, err := Normalize(text, NFC, textcodec.NormalizeOptions{}); err != nil {
		t.Errorf("5 marks under default cap 10 rejected: %v", err)
	}
	if _, err := Normalize(text, NFC, textcodec.NormalizeOptions{MaxCombiningMarks: 4}); err == nil {
		t.Error("5 marks over cap 4 accepted")
	}
	// Runs reset at each base character.
	text = strings.Repeat("a\u0301", 20)
	if _, err := Normalize(text, NFC, textcodec.NormalizeOptions{MaxCombiningMarks: 3}); err != nil {
		t.Errorf("short separated runs rejected: %v", err)
	}
}

func TestNormalize_ZeroWidth(t *testing.T) {
	text := "pay\u200bpal"
	res, err := Normalize(text, NFC, textcodec.NormalizeOptions{})
	if err != nil {
		t.Fatalf("zero-width rejected without the option: %v", err)
	}
	if res.Text != text {
		t.Errorf("Text = %q", res.Text)
	}

	_, err = Normalize(text, NFC, textcodec.NormalizeOptions{RejectZeroWidth: true})
	var ce *errors.Error
	if !stderrors.As(err, &ce) || ce.Kind != errors.KindZeroWidthCharacter {
		t.Fatalf("err = %v, want zero_width_character", err)
	}
	if ce.Offset != 3 {
		t.Errorf("Offset = %d, want rune index 3", ce.Offset)
	}
}

func TestNormalize_NFKCSemanticChanges(t *testing.T) {
	res, err := Normalize("ﬁle ① Ａ", NFKC, textcodec.NormalizeOptions{})
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if res.Text != "file 1 A" {
		t.Errorf("Text = %q, want %q", res.Text, "file 1 A")
	}
	if len(res.Warnings) == 0 {
		t.Error("nfkc should warn that it is not semantic-preserving")
	}
	if len(res.SemanticChanges) != 3 {
		t.Fatalf("len(SemanticChanges) = %d, want 3", len(res.SemanticChanges))
	}

	byOriginal := map[string]textcodec.SemanticChange{}
	for _, c := range res.SemanticChanges {
		byOriginal[c.Original] = c
	}
	if c := byOriginal["ﬁ"]; c.Normalized != "fi" || c.Reason != "ligature" {
		t.Errorf("ligature change = %+v", c)
	}
	if c := byOriginal["①"]; c.Normalized != "1" || c.Reason != "enclosed or styled number" {
		t.Errorf("circled digit change = %+v", c)
	}
	if c := byOriginal["Ａ"]; c.Normalized != "A" {
		t.Errorf("fullwidth change = %+v", c)
	}

	quiet, err := Normalize("ﬁle", NFKC, textcodec.NormalizeOptions{NoSemanticChangeLog: true})
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if len(quiet.SemanticChanges) != 0 {
		t.Error("NoSemanticChangeLog still recorded changes")
	}
	if len(quiet.Warnings) == 0 {
		t.Error("the profile warning is not suppressible")
	}
}

func TestNormalize_TextSafe(t *testing.T) {
	res, err := Normalize("cafe\u0301 ok", TextSafe, textcodec.NormalizeOptions{})
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if res.Text != "caf\u00e9 ok" {
		t.Errorf("Text = %q", res.Text)
	}

	_, err = Normalize("evil\u202etxt.exe", TextSafe, textcodec.NormalizeOptions{})
	var ce *errors.Error
	if !stderrors.As(err, &ce) || ce.Kind != errors.KindBidiControlCharacter {
		t.Fatalf("err = %v, want bidi_control_character", err)
	}
	if ce.Offset != 4 {
		t.Errorf("Offset = %d, want 4", ce.Offset)
	}
	if !ce.Kind.Security() {
		t.Error("bidi_control_character should be a security kind")
	}

	_, err = Normalize("line1\x00line2", TextSafe, textcodec.NormalizeOptions{})
	if !stderrors.Is(err, &errors.Error{Kind: errors.KindInvalidEncoding}) {
		t.Errorf("err = %v, want invalid_encoding for control character", err)
	}

	// Plain profiles leave bidi controls alone.
	if _, err := Normalize("evil\u202etxt.exe", NFC, textcodec.NormalizeOptions{}); err != nil {
		t.Errorf("nfc rejected bidi control: %v", err)
	}
}

func TestNormalize_UnknownProfile(t *testing.T) {
	_, err := Normalize("x", Profile("nfz"), textcodec.NormalizeOptions{})
	if !stderrors.Is(err, &errors.Error{Kind: errors.KindInvalidOptions}) {
		t.Errorf("err = %v, want invalid_options", err)
	}
}

func TestIsCombiningMark(t *testing.T) {
	if !IsCombiningMark(0x0301) {
		t.Error("combining acute not classified")
	}
	if IsCombiningMark('e') || IsCombiningMark('\u00e9') {
		t.Error("base characters misclassified")
	}
}
