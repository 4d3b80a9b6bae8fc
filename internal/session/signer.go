// File: internal/session/signer.go
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"prepwise_backend/internal/common"
	"prepwise_backend/internal/config"
	"prepwise_backend/internal/firebase"
	"prepwise_backend/internal/shared"
)

const localSignerIssuer = "prepwise_backend"

// CredentialSigner turns a pre-verified bearer token into a signed session
// credential and later proves that credential back into an identity id.
// Validity rests on signature and expiry alone; nothing is stored
// server-side. Only the session manager may call a signer.
type CredentialSigner interface {
	// Mint wraps a bearer token into a signed credential with a fixed TTL.
	// Rejected tokens surface as ErrInvalidToken, unreachable verifiers as
	// ErrUpstreamUnavailable.
	Mint(ctx context.Context, idToken string) (credential string, expiresAt time.Time, err error)
	// Verify checks signature and expiry and returns the identity id the
	// credential proves.
	Verify(ctx context.Context, credential string) (uid string, err error)
}

// firebaseSigner delegates minting and verification to the provider's
// session-cookie API. Verification includes the server-side revocation
// check, so RevokeSessions on the verifier invalidates outstanding
// credentials.
type firebaseSigner struct {
	minter shared.SessionMinter
	ttl    time.Duration
}

// NewFirebaseSigner creates a signer backed by the provider session-cookie API.
func NewFirebaseSigner(minter shared.SessionMinter, ttl time.Duration) CredentialSigner {
	return &firebaseSigner{minter: minter, ttl: ttl}
}

func (s *firebaseSigner) Mint(ctx context.Context, idToken string) (string, time.Time, error) {
	credential, err := s.minter.MintSessionCookie(ctx, idToken, s.ttl)
	if err != nil {
		return "", time.Time{}, err
	}
	return credential, time.Now().Add(s.ttl), nil
}

func (s *firebaseSigner) Verify(ctx context.Context, credential string) (string, error) {
	return s.minter.VerifySessionCookie(ctx, credential)
}

// localSigner verifies the bearer token against the identity verifier and
// then signs an HS256 JWT itself. Useful where the provider session-cookie
// API is unavailable (emulator environments, tests). Credentials minted
// this way cannot be revoked before expiry.
type localSigner struct {
	verifier shared.Verifier
	key      []byte
	ttl      time.Duration
	logger   *zap.Logger
}

// NewLocalSigner creates a self-contained HS256 credential signer.
func NewLocalSigner(key []byte, verifier shared.Verifier, ttl time.Duration, logger *zap.Logger) CredentialSigner {
	return &localSigner{verifier: verifier, key: key, ttl: ttl, logger: logger}
}

func (s *localSigner) Mint(ctx context.Context, idToken string) (string, time.Time, error) {
	info, err := s.verifier.VerifyToken(ctx, idToken)
	if err != nil {
		return "", time.Time{}, err
	}

	now := time.Now()
	expiresAt := now.Add(s.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   info.UID,
		Issuer:    localSignerIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		ID:        uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	credential, err := token.SignedString(s.key)
	if err != nil {
		s.logger.Error("Failed to sign session credential", zap.Error(err))
		return "", time.Time{}, common.ErrInternalServer
	}
	return credential, expiresAt, nil
}

func (s *localSigner) Verify(ctx context.Context, credential string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(credential, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.key, nil
	})
	if err != nil || !token.Valid || claims.Subject == "" {
		return "", common.ErrInvalidToken
	}
	return claims.Subject, nil
}

// newEphemeralKey produces a random HS256 signing key for processes started
// without a configured one.
func newEphemeralKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(buf), nil
}

// ProvideSigner selects the credential signer from config.
func ProvideSigner(cfg *config.Config, fb *firebase.Service, logger *zap.Logger) (CredentialSigner, error) {
	switch cfg.SessionBackend {
	case "local":
		key := cfg.SessionSigningKey
		if key == "" {
			generated, err := newEphemeralKey()
			if err != nil {
				return nil, err
			}
			// An ephemeral key invalidates all sessions on restart.
			logger.Warn("SESSION_SIGNING_KEY not set; using an ephemeral key")
			key = generated
		}
		return NewLocalSigner([]byte(key), fb, cfg.SessionDuration, logger.Named("LocalSigner")), nil
	default:
		return NewFirebaseSigner(fb, cfg.SessionDuration), nil
	}
}
