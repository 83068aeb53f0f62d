package deliver

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// Sign computes the Feishu webhook signature: HMAC-SHA256 keyed with
// timestamp + "\n" + secret over an empty message, base64 encoded.
func Sign(timestamp, secret string) string {
	mac := hmac.New(sha256.New, []byte(timestamp+"\n"+secret))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
