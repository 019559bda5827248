package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for fingerprints of normalized trees.
// The IRVersion suffix changes every fingerprint when the tree shape changes.
const (
	DomainRead     = "querygate/read/v" + IRVersion
	DomainMutation = "querygate/mutation/v" + IRVersion
	DomainSchema   = "querygate/schema/v" + IRVersion
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint computes a stable content hash of a wire-shaped value.
// Two normalized trees with the same fingerprint are interchangeable, which
// makes fingerprints usable as cache keys by query-execution collaborators.
func Fingerprint(domain string, wire any) (string, error) {
	canonical, err := MarshalCanonical(wire)
	if err != nil {
		return "", fmt.Errorf("fingerprint: failed to marshal: %w", err)
	}
	return hashWithDomain(domain, canonical), nil
}

// MustFingerprint is like Fingerprint but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustFingerprint(domain string, wire any) string {
	fp, err := Fingerprint(domain, wire)
	if err != nil {
		panic(err)
	}
	return fp
}
