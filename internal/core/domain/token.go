package domain

import "time"

// TokenClass distinguishes short-lived access tokens from long-lived refresh tokens.
type TokenClass string

const (
	TokenClassAccess  TokenClass = "access"
	TokenClassRefresh TokenClass = "refresh"
)

// IssuedToken is a signed token together with its lifetime.
type IssuedToken struct {
	Token     string
	Class     TokenClass
	ExpiresAt time.Time
	TTL       time.Duration
}

// TokenPair is what a successful login or refresh hands back to the caller.
type TokenPair struct {
	Access  IssuedToken
	Refresh IssuedToken
}

// Session is the result of Login, Refresh and GoogleSignIn.
type Session struct {
	Tokens  TokenPair
	Account Account // credential fields stripped
}

// AccountPage is one page of ListAccounts.
type AccountPage struct {
	Accounts   []Account
	Page       int
	PageSize   int
	Total      int64
	TotalPages int
}
