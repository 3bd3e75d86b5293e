package codec

import (
	"encoding/hex"
	stderrors "errors"
	"os"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/wippyai/textcodec"
	"github.com/wippyai/textcodec/errors"
)

type fixtureCase struct {
	Name   string `yaml:"name"`
	Input  string `yaml:"input"`
	Strict struct {
		Subcode string `yaml:"subcode"`
		Offset  int    `yaml:"offset"`
	} `yaml:"strict"`
	Replace struct {
		Output      string `yaml:"output"`
		Corrections uint   `yaml:"corrections"`
	} `yaml:"replace"`
}

type fixtureFile struct {
	UTF8    []fixtureCase `yaml:"utf8"`
	UTF16LE []fixtureCase `yaml:"utf16le"`
}

func loadFixtures(t *testing.T) fixtureFile {
	t.Helper()
	raw, err := os.ReadFile("testdata/invalid_sequences.yaml")
	if err != nil {
		t.Fatalf("read fixtures: %v", err)
	}
	var ff fixtureFile
	if err := yaml.Unmarshal(raw, &ff); err != nil {
		t.Fatalf("parse fixtures: %v", err)
	}
	return ff
}

func runFixtures(t *testing.T, format textcodec.Format, cases []fixtureCase) {
	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			input, err := hex.DecodeString(tc.Input)
			if err != nil {
				t.Fatalf("bad input hex: %v", err)
			}

			_, err = DecodeBytes(input, format, textcodec.DecodeOptions{})
			var ce *errors.Error
			if !stderrors.As(err, &ce) {
				t.Fatalf("strict: err = %v, want *errors.Error", err)
			}
			if string(ce.Subcode) != tc.Strict.Subcode {
				t.Errorf("strict: Subcode = %q, want %q", ce.Subcode, tc.Strict.Subcode)
			}
			if ce.Offset != tc.Strict.Offset {
				t.Errorf("strict: Offset = %d, want %d", ce.Offset, tc.Strict.Offset)
			}

			want, err := hex.DecodeString(tc.Replace.Output)
			if err != nil {
				t.Fatalf("bad output hex: %v", err)
			}
			res, err := DecodeBytes(input, format, textcodec.DecodeOptions{OnError: textcodec.OnErrorReplace})
			if err != nil {
				t.Fatalf("replace: %v", err)
			}
			if string(res.Bytes) != string(want) {
				t.Errorf("replace: Bytes = %x, want %x", res.Bytes, want)
			}
			if res.CorrectionsApplied != tc.Replace.Corrections {
				t.Errorf("replace: CorrectionsApplied = %d, want %d", res.CorrectionsApplied, tc.Replace.Corrections)
			}
		})
	}
}

func TestFixtures_InvalidUTF8(t *testing.T) {
	runFixtures(t, textcodec.UTF8, loadFixtures(t).UTF8)
}

func TestFixtures_InvalidUTF16LE(t *testing.T) {
	runFixtures(t, textcodec.UTF16LE, loadFixtures(t).UTF16LE)
}
