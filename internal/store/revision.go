package store

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// revisionLen is the hex-prefix length of a row fingerprint. 16 hex
// characters (64 bits) is plenty for a human-scale inventory.
const revisionLen = 16

// revisionOf fingerprints a row's raw cells for use as an optimistic
// concurrency token. Two reads of an unchanged row yield the same
// token; any cell edit changes it.
func revisionOf(cells []string) string {
	sum := sha256.Sum256([]byte(strings.Join(cells, "|")))
	return hex.EncodeToString(sum[:])[:revisionLen]
}
