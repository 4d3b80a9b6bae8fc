package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"prepwise_backend/internal/common"
	"prepwise_backend/internal/shared"
)

// mockVerifier is a func-field mock of shared.Verifier.
type mockVerifier struct {
	createIdentityFunc func(ctx context.Context, email, password string) (string, error)
	verifyTokenFunc    func(ctx context.Context, idToken string) (*shared.TokenInfo, error)
	lookupByEmailFunc  func(ctx context.Context, email string) (*shared.IdentityLookup, error)
	revokeSessionsFunc func(ctx context.Context, uid string) error
}

func (m *mockVerifier) CreateIdentity(ctx context.Context, email, password string) (string, error) {
	if m.createIdentityFunc != nil {
		return m.createIdentityFunc(ctx, email, password)
	}
	return "", errors.New("createIdentityFunc not set")
}

func (m *mockVerifier) VerifyToken(ctx context.Context, idToken string) (*shared.TokenInfo, error) {
	if m.verifyTokenFunc != nil {
		return m.verifyTokenFunc(ctx, idToken)
	}
	return nil, errors.New("verifyTokenFunc not set")
}

func (m *mockVerifier) LookupByEmail(ctx context.Context, email string) (*shared.IdentityLookup, error) {
	if m.lookupByEmailFunc != nil {
		return m.lookupByEmailFunc(ctx, email)
	}
	return nil, nil
}

func (m *mockVerifier) RevokeSessions(ctx context.Context, uid string) error {
	if m.revokeSessionsFunc != nil {
		return m.revokeSessionsFunc(ctx, uid)
	}
	return nil
}

func trustingVerifier(uid string) *mockVerifier {
	return &mockVerifier{
		verifyTokenFunc: func(_ context.Context, _ string) (*shared.TokenInfo, error) {
			return &shared.TokenInfo{UID: uid, Expires: time.Now().Add(time.Hour)}, nil
		},
	}
}

func TestLocalSigner_MintAndVerify(t *testing.T) {
	logger := zap.NewNop()
	signer := NewLocalSigner([]byte("test-signing-key"), trustingVerifier("uid-123"), 7*24*time.Hour, logger)
	ctx := context.Background()

	credential, expiresAt, err := signer.Mint(ctx, "valid-id-token")
	require.NoError(t, err)
	require.NotEmpty(t, credential)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), expiresAt, 5*time.Second)

	uid, err := signer.Verify(ctx, credential)
	require.NoError(t, err)
	assert.Equal(t, "uid-123", uid)
}

func TestLocalSigner_Mint_RejectedToken(t *testing.T) {
	verifier := &mockVerifier{
		verifyTokenFunc: func(_ context.Context, _ string) (*shared.TokenInfo, error) {
			return nil, common.ErrInvalidToken
		},
	}
	signer := NewLocalSigner([]byte("test-signing-key"), verifier, time.Hour, zap.NewNop())

	_, _, err := signer.Mint(context.Background(), "bad-id-token")
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestLocalSigner_Verify_Failures(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()
	verifier := trustingVerifier("uid-123")

	signer := NewLocalSigner([]byte("test-signing-key"), verifier, time.Hour, logger)
	otherSigner := NewLocalSigner([]byte("another-key-entirely"), verifier, time.Hour, logger)
	expiredSigner := NewLocalSigner([]byte("test-signing-key"), verifier, -time.Minute, logger)

	foreign, _, err := otherSigner.Mint(ctx, "valid-id-token")
	require.NoError(t, err)
	expired, _, err := expiredSigner.Mint(ctx, "valid-id-token")
	require.NoError(t, err)

	tests := []struct {
		name       string
		credential string
	}{
		{"garbage", "not-a-jwt"},
		{"empty", ""},
		{"wrong signing key", foreign},
		{"expired", expired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := signer.Verify(ctx, tt.credential)
			assert.ErrorIs(t, err, common.ErrInvalidToken)
		})
	}
}

func TestNewEphemeralKey(t *testing.T) {
	first, err := newEphemeralKey()
	require.NoError(t, err)
	assert.NotEmpty(t, first)

	second, err := newEphemeralKey()
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

// mockMinter is a func-field mock of shared.SessionMinter.
type mockMinter struct {
	mintFunc   func(ctx context.Context, idToken string, ttl time.Duration) (string, error)
	verifyFunc func(ctx context.Context, cookie string) (string, error)
}

func (m *mockMinter) MintSessionCookie(ctx context.Context, idToken string, ttl time.Duration) (string, error) {
	return m.mintFunc(ctx, idToken, ttl)
}

func (m *mockMinter) VerifySessionCookie(ctx context.Context, cookie string) (string, error) {
	return m.verifyFunc(ctx, cookie)
}

func TestFirebaseSigner_MintAndVerify(t *testing.T) {
	var gotTTL time.Duration
	minter := &mockMinter{
		mintFunc: func(_ context.Context, idToken string, ttl time.Duration) (string, error) {
			gotTTL = ttl
			return "cookie-for-" + idToken, nil
		},
		verifyFunc: func(_ context.Context, cookie string) (string, error) {
			if cookie == "cookie-for-valid-id-token" {
				return "uid-456", nil
			}
			return "", common.ErrInvalidToken
		},
	}
	signer := NewFirebaseSigner(minter, 7*24*time.Hour)
	ctx := context.Background()

	credential, expiresAt, err := signer.Mint(ctx, "valid-id-token")
	require.NoError(t, err)
	assert.Equal(t, "cookie-for-valid-id-token", credential)
	assert.Equal(t, 7*24*time.Hour, gotTTL)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), expiresAt, 5*time.Second)

	uid, err := signer.Verify(ctx, credential)
	require.NoError(t, err)
	assert.Equal(t, "uid-456", uid)

	_, err = signer.Verify(ctx, "tampered")
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}
