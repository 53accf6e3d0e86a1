package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"regexp"
	"strings"

	"wathaci-webhooks/internal/domain/ports/adapter"
)

// SignatureHeader is the request header Lenco puts the body signature in.
const SignatureHeader = "X-Lenco-Signature"

var _ adapter.WebhookVerifier = (*LencoVerifier)(nil)

// LencoVerifier checks webhook signatures. It keeps only the derived MAC key.
type LencoVerifier struct {
	key []byte
}

// NewLencoVerifier with an empty secret rejects every delivery.
func NewLencoVerifier(secret string) *LencoVerifier {
	if secret == "" {
		return &LencoVerifier{}
	}
	return &LencoVerifier{key: lencoKey(secret)}
}

func (v *LencoVerifier) Verify(signature string, body []byte) bool {
	return verifyWithKey(signature, body, v.key)
}

var hexSignature = regexp.MustCompile(`^[0-9a-fA-F]+$`)

// lencoKey derives the MAC key: the hex SHA-256 digest of the shared secret.
func lencoKey(secret string) []byte {
	sum := sha256.Sum256([]byte(secret))
	return []byte(hex.EncodeToString(sum[:]))
}

// VerifyLencoSignature reports whether signature is HMAC-SHA512(hex(sha256(secret)), body).
// The header may carry the digest hex- or base64-encoded; every comparison is constant-time.
func VerifyLencoSignature(signature string, body []byte, secret string) bool {
	if secret == "" {
		return false
	}
	return verifyWithKey(signature, body, lencoKey(secret))
}

func verifyWithKey(signature string, body []byte, key []byte) (ok bool) {
	signature = strings.TrimSpace(signature)
	if signature == "" || len(body) == 0 || len(key) == 0 {
		return false
	}
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	mac := hmac.New(sha512.New, key)
	mac.Write(body)
	expected := mac.Sum(nil)

	if raw, decoded := decodeSignature(signature); decoded && hmac.Equal(raw, expected) {
		return true
	}

	hexForm := hex.EncodeToString(expected)
	if subtle.ConstantTimeCompare([]byte(hexForm), []byte(strings.ToLower(signature))) == 1 {
		return true
	}
	b64Form := base64.StdEncoding.EncodeToString(expected)
	return subtle.ConstantTimeCompare([]byte(b64Form), []byte(signature)) == 1
}

// decodeSignature tries hex first, then the base64 alphabets vendors are known to use.
func decodeSignature(sig string) ([]byte, bool) {
	if len(sig)%2 == 0 && hexSignature.MatchString(sig) {
		if b, err := hex.DecodeString(sig); err == nil {
			return b, true
		}
	}
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	} {
		if b, err := enc.DecodeString(sig); err == nil {
			return b, true
		}
	}
	return nil, false
}

// SignLencoBody returns the hex signature Lenco sends for body.
func SignLencoBody(body []byte, secret string) string {
	mac := hmac.New(sha512.New, lencoKey(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
