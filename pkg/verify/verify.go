// Package verify authenticates inbound interaction requests.
//
// The platform signs every request with the application's ed25519 key. The
// signed message is the X-Signature-Timestamp header value followed by the raw
// request body, byte for byte.
package verify

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	// HeaderSignature carries the hex-encoded detached signature.
	HeaderSignature = "X-Signature-Ed25519"
	// HeaderTimestamp carries the timestamp that prefixes the signed message.
	HeaderTimestamp = "X-Signature-Timestamp"
)

// ParsePublicKey decodes a hex-encoded ed25519 public key.
func ParsePublicKey(s string) (ed25519.PublicKey, error) {
	raw, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("public key is not valid hex: %w", err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("public key must be %d bytes, got %d", ed25519.PublicKeySize, len(raw))
	}
	return ed25519.PublicKey(raw), nil
}

// Signature reports whether signatureHex is a valid signature of timestamp+body under key.
// Malformed input of any kind yields false.
func Signature(key ed25519.PublicKey, signatureHex, timestamp string, body []byte) bool {
	if len(key) != ed25519.PublicKeySize {
		return false
	}
	sig, err := hex.DecodeString(signatureHex)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return false
	}

	msg := make([]byte, 0, len(timestamp)+len(body))
	msg = append(msg, timestamp...)
	msg = append(msg, body...)
	return ed25519.Verify(key, msg, sig)
}

// Sign produces the hex signature the platform would send. Used by tests and local tooling.
func Sign(key ed25519.PrivateKey, timestamp string, body []byte) string {
	msg := make([]byte, 0, len(timestamp)+len(body))
	msg = append(msg, timestamp...)
	msg = append(msg, body...)
	return hex.EncodeToString(ed25519.Sign(key, msg))
}
