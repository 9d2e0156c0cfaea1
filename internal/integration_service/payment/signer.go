package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
)

// signBody computes base64(HMAC-SHA256(secretKey, body)) over the exact bytes
// that go on the wire. The signature must be bit-exact: callers marshal the
// payload once and both sign and send those same bytes.
func signBody(secretKey string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secretKey))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// authHeader builds the IYZWSv2 authorization token:
// "IYZWSv2 " + base64(apiKey + ":" + signature).
func authHeader(apiKey, secretKey string, body []byte) string {
	signature := signBody(secretKey, body)
	return "IYZWSv2 " + base64.StdEncoding.EncodeToString([]byte(apiKey+":"+signature))
}

// webhookDigest computes the lowercase hex HMAC-SHA256 digest iyzico sends in
// its webhook signature header.
func webhookDigest(secretKey string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secretKey))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
