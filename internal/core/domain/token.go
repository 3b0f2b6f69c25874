package domain

import (
	"fmt"
	"time"
)

// ExpiryMargin is subtracted from the lifetime reported by the token
// endpoint so that access tokens are refreshed before they lapse.
const ExpiryMargin = 30 * time.Second

// TokenRecord is the persisted credential pair for the single signed-in user.
type TokenRecord struct {
	// AccessToken is the bearer token for API access.
	AccessToken string `json:"access_token"`
	// RefreshToken is used to obtain new access tokens.
	RefreshToken string `json:"refresh_token"`
	// ExpiresAt is a unix timestamp in seconds, already reduced by ExpiryMargin.
	ExpiresAt int64 `json:"expires_at"`
}

// TokenGrant is the parsed response of a token endpoint call.
type TokenGrant struct {
	AccessToken string
	// RefreshToken is empty when the provider did not rotate it.
	RefreshToken string
	// ExpiresIn is the access token lifetime as reported by the provider.
	ExpiresIn time.Duration
}

// NewTokenRecord builds a record from a grant received at now.
func NewTokenRecord(grant TokenGrant, now time.Time) TokenRecord {
	return TokenRecord{
		AccessToken:  grant.AccessToken,
		RefreshToken: grant.RefreshToken,
		ExpiresAt:    ExpiresAt(now, grant.ExpiresIn),
	}
}

// ExpiresAt computes the stored expiry for a token issued at now.
func ExpiresAt(now time.Time, expiresIn time.Duration) int64 {
	return now.Add(expiresIn - ExpiryMargin).Unix()
}

// Valid returns true if the record has both tokens.
func (r TokenRecord) Valid() bool {
	return r.AccessToken != "" && r.RefreshToken != ""
}

// NeedsRefresh returns true once now has reached the stored expiry.
func (r TokenRecord) NeedsRefresh(now time.Time) bool {
	return now.Unix() >= r.ExpiresAt
}

// Expiry returns the stored expiry as a time.
func (r TokenRecord) Expiry() time.Time {
	return time.Unix(r.ExpiresAt, 0)
}

// String redacts the token values.
func (r TokenRecord) String() string {
	return fmt.Sprintf("TokenRecord{access:%s refresh:%s expires_at:%d}",
		redact(r.AccessToken), redact(r.RefreshToken), r.ExpiresAt)
}

// GoString redacts the token values for %#v.
func (r TokenRecord) GoString() string {
	return r.String()
}

func redact(s string) string {
	if s == "" {
		return "<empty>"
	}
	return "<redacted>"
}
