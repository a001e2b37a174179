package tokens

import "time"

// Principal is the identity extracted from a verified access token.
// It lives for one request and is never persisted.
type Principal struct {
	Subject   string
	ClientID  string
	TokenUse  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
