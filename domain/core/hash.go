package core

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// TableFingerprint identifies one uploaded dataset. Two uploads of the
// same bytes share a fingerprint, so the UI can tell whether a replace
// actually changed the data.
type TableFingerprint Hash

// NewTableFingerprint fingerprints raw upload bytes
func NewTableFingerprint(raw []byte) TableFingerprint {
	return TableFingerprint(NewHash(raw))
}

// Short returns the first 12 hex characters for display
func (f TableFingerprint) Short() string {
	if len(f) < 12 {
		return string(f)
	}
	return string(f[:12])
}

func (f TableFingerprint) String() string { return Hash(f).String() }
