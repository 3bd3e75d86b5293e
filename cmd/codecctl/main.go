package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/textcodec"
	"github.com/wippyai/textcodec/bom"
	"github.com/wippyai/textcodec/checksum"
	"github.com/wippyai/textcodec/codec"
	"github.com/wippyai/textcodec/detect"
	"github.com/wippyai/textcodec/normalize"
	"github.com/wippyai/textcodec/telemetry"
)

func main() {
	var (
		op          = flag.String("op", "", "Operation: encode, decode, transcode, detect, normalize, bom")
		format      = flag.String("format", "", "Source format (see -op)")
		target      = flag.String("to", "", "Target format for transcode, or target encoding for bom")
		inFile      = flag.String("in", "", "Input file (default stdin)")
		data        = flag.String("data", "", "Inline input data (overrides -in)")
		onError     = flag.String("on-error", "strict", "Error policy: strict, replace, ignore, fallback")
		fallbacks   = flag.String("fallbacks", "", "Fallback formats for -on-error fallback (comma-separated)")
		profile     = flag.String("profile", "nfc", "Normalization profile: nfc, nfd, nfkc, nfkd, text_safe")
		policy      = flag.String("policy", "", "BOM policy: prefer_no_bom, add_if_missing")
		checksumAlg = flag.String("checksum", "", "Checksum algorithm: blake3, sha256")
		lineLength  = flag.Int("line-length", 0, "Wrap encoded output at N characters")
		statistical = flag.Bool("statistical", false, "Enable statistical detection of legacy encodings")
		jsonOut     = flag.Bool("json", false, "Emit the full result as JSON")
		verbose     = flag.Bool("v", false, "Log every operation")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *interactive {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode needs a terminal")
			os.Exit(1)
		}
		if err := runInteractive(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *op == "" {
		fmt.Fprintln(os.Stderr, "Usage: codecctl -op <operation> [-format f] [-to f] [-in file | -data text]")
		fmt.Fprintln(os.Stderr, "       codecctl -op detect -in file.bin")
		fmt.Fprintln(os.Stderr, "       codecctl -i  (interactive mode)")
		os.Exit(1)
	}

	cfg := batchConfig{
		op:          *op,
		format:      *format,
		target:      *target,
		onError:     *onError,
		fallbacks:   *fallbacks,
		profile:     *profile,
		policy:      *policy,
		checksumAlg: *checksumAlg,
		lineLength:  *lineLength,
		statistical: *statistical,
		jsonOut:     *jsonOut,
		verbose:     *verbose,
	}
	if err := run(cfg, *inFile, *data); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type batchConfig struct {
	op          string
	format      string
	target      string
	onError     string
	fallbacks   string
	profile     string
	policy      string
	checksumAlg string
	lineLength  int
	statistical bool
	jsonOut     bool
	verbose     bool
}

func run(cfg batchConfig, inFile, inline string) error {
	input, err := readInput(inFile, inline)
	if err != nil {
		return err
	}

	var sink textcodec.Sink
	if cfg.verbose {
		log, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("logger: %w", err)
		}
		defer log.Sync()
		sink = telemetry.NewZapSink(log)
	}

	out, err := dispatch(cfg, input, sink)
	if err != nil {
		return err
	}
	return emit(out, cfg.jsonOut)
}

func readInput(inFile, inline string) ([]byte, error) {
	if inline != "" {
		return []byte(inline), nil
	}
	if inFile != "" {
		data, err := os.ReadFile(inFile)
		if err != nil {
			return nil, fmt.Errorf("read input: %w", err)
		}
		return data, nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	return data, nil
}

// output pairs the machine-readable result with the text a human sees.
type output struct {
	result any
	plain  string
}

func dispatch(cfg batchConfig, input []byte, sink textcodec.Sink) (output, error) {
	switch cfg.op {
	case "encode":
		f, ok := textcodec.ParseFormat(cfg.format)
		if !ok {
			return output{}, fmt.Errorf("unknown format %q", cfg.format)
		}
		opts := textcodec.EncodeOptions{
			Metrics:    sink,
			LineLength: cfg.lineLength,
		}
		if cfg.checksumAlg != "" {
			opts.Checksum = checksum.Provider()
			opts.ChecksumAlgorithm = cfg.checksumAlg
		}
		res, err := codec.Encode(input, f, opts)
		if err != nil {
			return output{}, err
		}
		return output{result: res, plain: res.Text}, nil

	case "decode":
		f, ok := textcodec.ParseFormat(cfg.format)
		if !ok {
			return output{}, fmt.Errorf("unknown format %q", cfg.format)
		}
		opts := textcodec.DecodeOptions{
			Metrics:         sink,
			OnError:         textcodec.OnError(cfg.onError),
			FallbackFormats: parseFormats(cfg.fallbacks),
		}
		if cfg.checksumAlg != "" {
			opts.Checksum = checksum.Provider()
			opts.ChecksumAlgorithm = cfg.checksumAlg
		}
		var res textcodec.DecodeResult
		var err error
		if f.IsCharEncoding() {
			res, err = codec.DecodeBytes(input, f, opts)
		} else {
			res, err = codec.Decode(string(input), f, opts)
		}
		if err != nil {
			return output{}, err
		}
		return output{result: res, plain: string(res.Bytes)}, nil

	case "transcode":
		from, ok := textcodec.ParseFormat(cfg.format)
		if !ok {
			return output{}, fmt.Errorf("unknown format %q", cfg.format)
		}
		to, ok := textcodec.ParseFormat(cfg.target)
		if !ok {
			return output{}, fmt.Errorf("unknown target format %q", cfg.target)
		}
		res, err := codec.Transcode(input, from, to, textcodec.DecodeOptions{
			Metrics: sink,
			OnError: textcodec.OnError(cfg.onError),
		})
		if err != nil {
			return output{}, err
		}
		return output{result: res, plain: string(res.Bytes)}, nil

	case "detect":
		res, err := detect.Detect(input, textcodec.DetectOptions{
			Metrics:     sink,
			Statistical: cfg.statistical,
		})
		if err != nil {
			return output{}, err
		}
		var b strings.Builder
		fmt.Fprintf(&b, "%s (confidence %.2f, tier %s)\n", res.Encoding, res.Confidence, res.ConfidenceTier)
		for _, c := range res.Candidates {
			fmt.Fprintf(&b, "  %-10s %.2f  %s\n", c.Encoding, c.Confidence, c.Reason)
		}
		for _, w := range res.Warnings {
			fmt.Fprintf(&b, "  warning: %s\n", w)
		}
		return output{result: res, plain: strings.TrimRight(b.String(), "\n")}, nil

	case "normalize":
		res, err := normalize.Normalize(string(input), normalize.Profile(cfg.profile), textcodec.NormalizeOptions{
			Metrics: sink,
		})
		if err != nil {
			return output{}, err
		}
		return output{result: res, plain: res.Text}, nil

	case "bom":
		opts := textcodec.BomOptions{
			Metrics: sink,
			Policy:  textcodec.BomPolicy(cfg.policy),
		}
		if cfg.target != "" {
			f, ok := textcodec.ParseFormat(cfg.target)
			if !ok {
				return output{}, fmt.Errorf("unknown target format %q", cfg.target)
			}
			opts.Expected = f
		}
		if opts.Policy == "" {
			opts.Policy = textcodec.PreferNoBom
		}
		out, res, err := bom.Correct(input, opts)
		if err != nil {
			return output{}, err
		}
		return output{
			result: struct {
				Bom    textcodec.BomResult `json:"bom"`
				Output []byte              `json:"output"`
			}{res, out},
			plain: string(out),
		}, nil

	default:
		return output{}, fmt.Errorf("unknown operation %q", cfg.op)
	}
}

func emit(out output, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out.result)
	}
	fmt.Println(out.plain)
	return nil
}

func parseFormats(s string) []textcodec.Format {
	if s == "" {
		return nil
	}
	var out []textcodec.Format
	for _, name := range strings.Split(s, ",") {
		if f, ok := textcodec.ParseFormat(strings.TrimSpace(name)); ok {
			out = append(out, f)
		}
	}
	return out
}
