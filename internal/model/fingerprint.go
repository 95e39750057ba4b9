package model

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// FingerprintDomain prefixes the hashed invocation. The version suffix
// allows the encoding to change without colliding with old fingerprints.
const FingerprintDomain = "ikvmbuild/invocation/v1"

// Fingerprint returns a content-addressed identity for the invocation:
// SHA256(domain + 0x00 + canonical JSON of the environment and arguments).
//
// Two builds with equal fingerprints ran the same command line. An invocation
// with no arguments (a stubbed or skipped build) has an empty fingerprint.
func (i Invocation) Fingerprint() string {
	if len(i.Args) == 0 {
		return ""
	}
	canonical, err := json.Marshal(struct {
		Env  []string `json:"env"`
		Args []string `json:"args"`
	}{i.Environ(), i.Args})
	if err != nil {
		// Only strings are marshaled.
		panic(err)
	}

	h := sha256.New()
	h.Write([]byte(FingerprintDomain))
	h.Write([]byte{0x00})
	h.Write(canonical)
	return hex.EncodeToString(h.Sum(nil))
}
