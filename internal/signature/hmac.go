package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strings"
)

func computeHMAC(secret string, payload []byte) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(payload)
	return mac.Sum(nil)
}

// SignHex returns the lowercase hex HMAC-SHA256 of payload.
func SignHex(secret string, payload []byte) string {
	return hex.EncodeToString(computeHMAC(secret, payload))
}

// SignBase64 returns the base64 HMAC-SHA256 of payload.
func SignBase64(secret string, payload []byte) string {
	return base64.StdEncoding.EncodeToString(computeHMAC(secret, payload))
}

func verifyHex(secret string, payload []byte, signature string) bool {
	if strings.TrimSpace(secret) == "" {
		return false
	}
	decoded, err := hex.DecodeString(strings.ToLower(strings.TrimSpace(signature)))
	if err != nil || len(decoded) == 0 {
		return false
	}
	return hmac.Equal(computeHMAC(secret, payload), decoded)
}

func verifyBase64(secret string, payload []byte, signature string) bool {
	if strings.TrimSpace(secret) == "" {
		return false
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(signature))
	if err != nil || len(decoded) == 0 {
		return false
	}
	return hmac.Equal(computeHMAC(secret, payload), decoded)
}
