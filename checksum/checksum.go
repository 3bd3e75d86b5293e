// Package checksum supplies default providers for the engine's injected
// integrity-digest hook. The engine itself never depends on a provider;
// callers pass one through the per-call options when they want a digest
// embedded in a result.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"

	"github.com/wippyai/textcodec"
)

// Supported algorithm names.
const (
	Blake3 = "blake3"
	SHA256 = "sha256"
)

// Provider returns a ChecksumFunc covering the blake3 and sha256
// algorithms. Unknown algorithm names are an error, not a silent no-op.
func Provider() textcodec.ChecksumFunc {
	return func(data []byte, algorithm string) (string, error) {
		switch algorithm {
		case Blake3:
			sum := blake3.Sum256(data)
			return hex.EncodeToString(sum[:]), nil
		case SHA256:
			sum := sha256.Sum256(data)
			return hex.EncodeToString(sum[:]), nil
		default:
			return "", fmt.Errorf("checksum: unsupported algorithm %q", algorithm)
		}
	}
}
