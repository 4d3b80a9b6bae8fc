package shared

import (
	"context"
	"time"
)

// User is one account profile as stored in the user directory. The ID is the
// stable identifier assigned by the identity verifier; the directory never
// stores credentials or secrets.
type User struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     *string    `json:"email,omitempty"`
	PhotoURL  *string    `json:"photoURL,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// TokenInfo is the result of verifying a bearer token: the trusted identity
// id plus the token's expiry.
type TokenInfo struct {
	UID     string
	Expires time.Time
}

// IdentityLookup describes an identity resolved by email, including whether
// the provider has confirmed the email address.
type IdentityLookup struct {
	UID           string
	Email         string
	EmailVerified bool
}

// Verifier is the identity-verification boundary. It authenticates
// credentials, issues and validates bearer tokens, and tracks
// email-verification status. Implementations classify their failures into
// the common error taxonomy; callers never see raw provider errors.
type Verifier interface {
	// CreateIdentity registers a new identity with the provider and returns
	// its stable id. A provider-side duplicate-email rejection surfaces as
	// ErrDuplicateEmail.
	CreateIdentity(ctx context.Context, email, password string) (string, error)

	// VerifyToken validates a bearer token and returns the trusted identity
	// id it proves. Expired, malformed, or revoked tokens surface as
	// ErrInvalidToken.
	VerifyToken(ctx context.Context, idToken string) (*TokenInfo, error)

	// LookupByEmail resolves an identity by email. Returns (nil, nil) when no
	// identity exists for the address; absence is not an error here.
	LookupByEmail(ctx context.Context, email string) (*IdentityLookup, error)

	// RevokeSessions invalidates every outstanding session grant for the
	// identity at the provider.
	RevokeSessions(ctx context.Context, uid string) error
}

// SessionMinter is the provider-backed half of session credential handling:
// exchanging a verified bearer token for a long-lived signed credential and
// later proving that credential back into an identity id.
type SessionMinter interface {
	MintSessionCookie(ctx context.Context, idToken string, ttl time.Duration) (string, error)
	VerifySessionCookie(ctx context.Context, cookie string) (string, error)
}
