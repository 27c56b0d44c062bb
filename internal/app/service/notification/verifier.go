package notification

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

// Verify recomputes the expected signature for n from the merchant secret
// and compares it against the supplied one in constant time. It must run
// before classification or any side effect: a notification that fails here
// is a potential forgery and must never mutate ledger state.
func Verify(n *Notification, merchantSecret string) error {
	if n.Signature == "" {
		return &AuthenticityError{OrderID: n.OrderID}
	}
	want := Signature(n.MerchantID, n.OrderID, n.Amount, n.Currency, n.StatusCode, merchantSecret)
	got := strings.ToUpper(n.Signature)
	if subtle.ConstantTimeCompare([]byte(got), []byte(want)) != 1 {
		return &AuthenticityError{OrderID: n.OrderID}
	}
	return nil
}

// Signature implements the gateway's published md5sig scheme:
//
//	UPPER(MD5(merchant_id + order_id + amount + currency + status_code + UPPER(MD5(secret))))
//
// All inputs are the raw wire strings.
func Signature(merchantID, orderID, amount, currency, statusCode, secret string) string {
	return md5Upper(merchantID + orderID + amount + currency + statusCode + md5Upper(secret))
}

func md5Upper(s string) string {
	sum := md5.Sum([]byte(s))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}
