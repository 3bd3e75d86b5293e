// Package textcodec provides the shared vocabulary for the encoding engine.
//
// The engine covers binary-to-text codecs (Base64 family, Base32 family,
// Hex), character-encoding validation and transcoding (UTF-8, UTF-16LE/BE,
// legacy 8-bit charmaps), Unicode normalization with security hardening,
// and byte-order-mark handling.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	textcodec/       Root package with formats, options, results, and
//	                 collaborator interfaces (ChecksumFunc, Sink)
//	├── codec/       Binary-to-text encode/decode and character-encoding
//	                 validation state machines
//	├── detect/      Encoding detection with ranked candidates
//	├── normalize/   Unicode normalization profiles and security checks
//	├── bom/         BOM detection, stripping, insertion, correction
//	├── checksum/    Default providers for the injected checksum hook
//	├── telemetry/   Metrics sink implementations (zap-backed and no-op)
//	└── errors/      Structured error taxonomy
//
// # Quick Start
//
// Encode and decode:
//
//	res, err := codec.Encode([]byte("Hello, World!"), textcodec.Base64, textcodec.EncodeOptions{})
//	fmt.Println(res.Text) // "SGVsbG8sIFdvcmxkIQ=="
//
//	dec, err := codec.Decode(res.Text, textcodec.Base64, textcodec.DecodeOptions{})
//	fmt.Println(string(dec.Bytes)) // "Hello, World!"
//
// Detect an unknown encoding, then transcode to UTF-8:
//
//	guess, _ := detect.Detect(raw, textcodec.DetectOptions{})
//	text, err := codec.DecodeBytes(raw, guess.Encoding, textcodec.DecodeOptions{})
//
// # Design Principles
//
// Every operation is a pure function over caller-supplied buffers: no
// global state, no caches, no I/O. Options are plain value structs passed
// per call; the zero value of each options struct selects the documented
// defaults. All size limits are enforced incrementally during processing
// so that hostile input cannot transiently exceed the configured ceiling.
//
// # Thread Safety
//
// Everything in this module is safe for concurrent use: there is no shared
// mutable state anywhere to race on.
//
// # Error Handling
//
// Errors use the structured types from the errors package:
//
//	[decode] invalid_utf8/overlong_encoding at offset 0: 2-byte sequence encodes U+0000
//	[normalize] excessive_combining_marks at offset 1: expected 10, got 100 - 100 consecutive combining marks (max 10)
package textcodec
