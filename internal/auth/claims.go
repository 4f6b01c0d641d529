package auth

import "time"

// AccessClaims are the claims carried by an access token.
type AccessClaims struct {
	UserID     int64     `json:"uid"`
	Issuer     string    `json:"iss"`
	Audience   string    `json:"aud"`
	IssuedAt   time.Time `json:"iat"`
	NotBefore  time.Time `json:"nbf"`
	Expiration time.Time `json:"exp"`
}

// RefreshClaims are the claims carried by a renewal token. TokenID is unique
// per issuance even for the same user.
type RefreshClaims struct {
	UserID     int64     `json:"uid"`
	TokenID    string    `json:"jti"`
	Issuer     string    `json:"iss"`
	Audience   string    `json:"aud"`
	IssuedAt   time.Time `json:"iat"`
	NotBefore  time.Time `json:"nbf"`
	Expiration time.Time `json:"exp"`
}

// IssuedToken is an encrypted token together with its metadata.
type IssuedToken struct {
	Value     string
	ID        string
	ExpiresAt time.Time
}

// TokenPair is what a successful login or refresh hands back to the client.
type TokenPair struct {
	Access  IssuedToken
	Refresh IssuedToken
}
