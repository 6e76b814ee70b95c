package hashutil

import (
	"encoding/hex"

	"github.com/cespare/xxhash/v2"
	"lukechampine.com/blake3"
)

// HashContent returns the BLAKE3 hex digest of data. Used to populate a
// content record's content_hash field so callers can detect byte-identical
// re-fetches without re-running extraction.
func HashContent(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Fingerprint32 returns a 32-bit fingerprint of data, used to fingerprint
// an extraction rule-set. xxhash/v2 is a 64-bit hash; the low 32 bits are
// used, which is sufficient for a cache-invalidation fingerprint that is
// never a security boundary.
func Fingerprint32(data []byte) uint32 {
	return uint32(xxhash.Sum64(data))
}
