package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed fingerprints.
// The version suffix allows a future algorithm migration.
const (
	DomainIR       = "flowc/ir/v1"
	DomainWorkflow = "flowc/workflow/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint computes a stable content hash of a generic IR document.
// Two documents that differ only in key order or Unicode normalization form
// share a fingerprint.
func Fingerprint(doc map[string]any) (string, error) {
	canonical, err := MarshalCanonical(doc)
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}
	return hashWithDomain(DomainIR, canonical), nil
}

// FingerprintBytes hashes already-serialized content under the given domain.
func FingerprintBytes(domain string, data []byte) string {
	return hashWithDomain(domain, data)
}
