// Package codec provides binary-to-text codecs and character-encoding
// validation/transcoding.
//
// # Binary-to-Text
//
// Encode and Decode cover the Base64 family (standard, URL-safe, raw),
// the Base32 family (standard, extended-hex), and Hex:
//
//	Format       Alphabet                      Padding
//	───────────────────────────────────────────────────
//	base64       A-Za-z0-9+/                   yes
//	base64url    A-Za-z0-9-_                   yes
//	base64_raw   A-Za-z0-9+/                   never
//	base32       A-Z2-7                        yes
//	base32hex    0-9A-V                        yes
//	hex          0-9a-f (or A-F)               n/a
//
// # Character Encodings
//
// DecodeBytes validates a byte stream as a character encoding and returns
// UTF-8 text. UTF-8 and UTF-16 run hand-written state machines so that
// failures report an exact byte offset and subcode; latin1 and cp1252 go
// through golang.org/x/text charmap tables; ascii rejects bytes >= 0x80.
// Transcode composes a decode with a re-encode into another character
// encoding.
//
// # Recovery Modes
//
// Decoding honors the OnError mode from the options: strict fails on the
// first invalid unit, replace substitutes one U+FFFD per maximal invalid
// subsequence, ignore drops invalid units, and fallback retries with the
// caller's ordered format list. A successful strict decode always reports
// CorrectionsApplied == 0.
//
// # Safety Limits
//
// Encoded and decoded sizes are bounded before buffers are materialized:
// binary-to-text paths compute exact output lengths up front, character
// paths account incrementally while appending. Expansion ratios above the
// configured threshold fail with an encoding-bomb error once output
// passes 64 KiB.
package codec
