package query

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainQuery prefixes every query fingerprint. The version suffix allows
// the canonical encoding to change without colliding with old fingerprints.
const DomainQuery = "qengine/query/v1"

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null separator keeps the domain/data boundary unambiguous.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint returns a stable identity for n: the hash of its canonical
// encoding. Queries that differ only in whitespace, key order or the
// operatorName alias share a fingerprint.
func Fingerprint(n Node) (string, error) {
	canonical, err := Encode(n)
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}
	return hashWithDomain(DomainQuery, canonical), nil
}
