package textnorm

import (
	"crypto/sha256"
	"encoding/hex"
)

// descHashLen bounds how much of the normalized description participates in
// the content hash. Sources re-syndicating the same posting often append
// trailing boilerplate; the head of the text is what identifies it.
const descHashLen = 200

// ContentHash derives the dedup hash for a posting: SHA-256 over the
// normalized title concatenated with the first 200 characters of the
// normalized description. Deterministic function of its inputs.
func ContentHash(title, description string) string {
	desc := []rune(Normalize(description))
	if len(desc) > descHashLen {
		desc = desc[:descHashLen]
	}
	sum := sha256.Sum256([]byte(Normalize(title) + string(desc)))
	return hex.EncodeToString(sum[:])
}
