package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity. The version suffix
// enables future algorithm migration without id collisions.
const (
	DomainIR  = "arbor/ir/v1"
	DomainRun = "arbor/run/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data). The null byte prevents
// domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint computes the content-addressed id of an IR.
// Two IRs with identical root, entries, and counter hash identically,
// which is what makes fingerprints usable as snapshot keys.
func Fingerprint(x IR) (string, error) {
	canonical, err := MarshalCanonical(x.CanonicalDump())
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}
	return hashWithDomain(DomainIR, canonical), nil
}

// RunHash computes the content-addressed id of a fold result against a
// specific IR fingerprint.
func RunHash(irFingerprint string, result Value) (string, error) {
	obj := Rec{
		"ir":     Str(irFingerprint),
		"result": result,
	}
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("run hash: %w", err)
	}
	return hashWithDomain(DomainRun, canonical), nil
}

// MustFingerprint is like Fingerprint but panics on error.
// Use only in tests or when the IR is known to be hashable.
func MustFingerprint(x IR) string {
	fp, err := Fingerprint(x)
	if err != nil {
		panic(err)
	}
	return fp
}
