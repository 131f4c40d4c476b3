package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"time"

	"visitordesk/internal/domain"
)

// actionTokenLength is the length of the derived token in base64url
// characters (12 raw bytes, 96 bits).
const actionTokenLength = 16

// actionTokenIssuer derives the day-scoped capability token embedded in
// approve/reject email links. The token is an HMAC-SHA256 over the visitor
// id and the current UTC calendar date, keyed with a config-supplied
// secret, truncated and base64url-encoded. Nothing is stored server side:
// verification recomputes the token for today's date, so a link issued at
// 23:59 UTC stops verifying at midnight. The whole-day replay window is an
// accepted trade-off for not keeping a token table.
type actionTokenIssuer struct {
	secret []byte
	now    func() time.Time
}

// NewActionTokenIssuer returns an ActionTokenIssuer keyed with secret.
// now is the clock used to derive the date component; pass nil for time.Now.
func NewActionTokenIssuer(secret string, now func() time.Time) domain.ActionTokenIssuer {
	if now == nil {
		now = time.Now
	}
	return &actionTokenIssuer{secret: []byte(secret), now: now}
}

func (i *actionTokenIssuer) Issue(visitorID string) string {
	return i.derive(visitorID, i.now().UTC().Format("2006-01-02"))
}

// Verify recomputes the token for today's date and compares in constant
// time. Wrong, expired, and malformed tokens are indistinguishable to the
// caller: all return false through the same comparison.
func (i *actionTokenIssuer) Verify(visitorID, token string) bool {
	expected := i.derive(visitorID, i.now().UTC().Format("2006-01-02"))
	return subtle.ConstantTimeCompare([]byte(expected), []byte(token)) == 1
}

func (i *actionTokenIssuer) derive(visitorID, date string) string {
	mac := hmac.New(sha256.New, i.secret)
	mac.Write([]byte(visitorID))
	mac.Write([]byte{'|'})
	mac.Write([]byte(date))
	sum := mac.Sum(nil)
	return base64.RawURLEncoding.EncodeToString(sum)[:actionTokenLength]
}
