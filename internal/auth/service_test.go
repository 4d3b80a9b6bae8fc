package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"prepwise_backend/internal/audit"
	"prepwise_backend/internal/common"
	"prepwise_backend/internal/session"
	"prepwise_backend/internal/shared"
	"prepwise_backend/internal/user"
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
	return &shared.TokenInfo{UID: "uid-1", Expires: time.Now().Add(time.Hour)}, nil
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

// memRepository is an in-memory user.Repository that counts writes, so
// tests can assert that flows perform no redundant mutations.
type memRepository struct {
	users       map[string]*shared.User
	createCalls int
	patchCalls  []user.Patch
	findErr     error
}

func newMemRepository() *memRepository {
	return &memRepository{users: map[string]*shared.User{}}
}

func (m *memRepository) Create(_ context.Context, usr *shared.User) error {
	m.createCalls++
	if _, exists := m.users[usr.ID]; exists {
		return common.ErrAlreadyExists
	}
	cp := *usr
	m.users[usr.ID] = &cp
	return nil
}

func (m *memRepository) FindByID(_ context.Context, id string) (*shared.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	usr, ok := m.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *usr
	return &cp, nil
}

func (m *memRepository) ApplyPatch(_ context.Context, id string, patch user.Patch) error {
	m.patchCalls = append(m.patchCalls, patch)
	if patch.IsEmpty() {
		return nil
	}
	usr, ok := m.users[id]
	if !ok {
		return common.ErrNotFound
	}
	if patch.Name != nil {
		usr.Name = *patch.Name
	}
	if patch.PhotoURL != nil {
		usr.PhotoURL = patch.PhotoURL
	}
	return nil
}

// memAuditRepository collects recorded auth events.
type memAuditRepository struct {
	events []audit.AuthEvent
}

func (m *memAuditRepository) Create(_ context.Context, event *audit.AuthEvent) error {
	m.events = append(m.events, *event)
	return nil
}

func (m *memAuditRepository) DeleteOlderThan(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

type serviceFixture struct {
	service   *Service
	verifier  *mockVerifier
	repo      *memRepository
	auditRepo *memAuditRepository
	sessions  *session.Manager
}

func newServiceFixture(verifier *mockVerifier) *serviceFixture {
	logger := zap.NewNop()
	repo := newMemRepository()
	auditRepo := &memAuditRepository{}
	signer := session.NewLocalSigner([]byte("service-test-key"), verifier, time.Hour, logger)
	manager := session.NewManager(signer, repo, verifier, logger)
	recorder := audit.NewRecorder(auditRepo, nil, logger)
	return &serviceFixture{
		service:   NewService(verifier, repo, manager, recorder, logger),
		verifier:  verifier,
		repo:      repo,
		auditRepo: auditRepo,
		sessions:  manager,
	}
}

func strPtr(s string) *string { return &s }

func TestService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a new record without issuing a session", func(t *testing.T) {
		f := newServiceFixture(&mockVerifier{})
		usr, err := f.service.Register(ctx, "uid-1", "Jane", "jane@example.com")
		require.NoError(t, err)
		assert.Equal(t, "uid-1", usr.ID)
		assert.Equal(t, "Jane", usr.Name)
		require.NotNil(t, usr.Email)
		assert.Equal(t, "jane@example.com", *usr.Email)
		assert.Equal(t, 1, f.repo.createCalls)
	})

	t.Run("duplicate id conflicts and mutates nothing", func(t *testing.T) {
		f := newServiceFixture(&mockVerifier{})
		_, err := f.service.Register(ctx, "uid-1", "Jane", "jane@example.com")
		require.NoError(t, err)

		before := *f.repo.users["uid-1"]
		_, err = f.service.Register(ctx, "uid-1", "Someone Else", "other@example.com")
		assert.ErrorIs(t, err, common.ErrAlreadyExists)
		assert.Equal(t, before, *f.repo.users["uid-1"])
		assert.Equal(t, 1, f.repo.createCalls)
	})

	t.Run("directory fault maps to upstream unavailable", func(t *testing.T) {
		f := newServiceFixture(&mockVerifier{})
		f.repo.findErr = errors.New("connection refused")
		_, err := f.service.Register(ctx, "uid-1", "Jane", "jane@example.com")
		assert.ErrorIs(t, err, common.ErrUpstreamUnavailable)
	})

	t.Run("records an audit event per attempt", func(t *testing.T) {
		f := newServiceFixture(&mockVerifier{})
		_, _ = f.service.Register(ctx, "uid-1", "Jane", "jane@example.com")
		_, _ = f.service.Register(ctx, "uid-1", "Jane", "jane@example.com")

		require.Len(t, f.auditRepo.events, 2)
		assert.Equal(t, audit.OutcomeSuccess, f.auditRepo.events[0].Outcome)
		assert.Equal(t, audit.OutcomeFailure, f.auditRepo.events[1].Outcome)
		require.NotNil(t, f.auditRepo.events[1].Detail)
		assert.Equal(t, "ALREADY_EXISTS", *f.auditRepo.events[1].Detail)
	})
}

func TestService_RegisterWithPassword(t *testing.T) {
	ctx := context.Background()

	t.Run("creates the identity before the record", func(t *testing.T) {
		verifier := &mockVerifier{
			createIdentityFunc: func(_ context.Context, email, password string) (string, error) {
				assert.Equal(t, "jane@example.com", email)
				assert.Equal(t, "hunter2hunter2", password)
				return "uid-new", nil
			},
		}
		f := newServiceFixture(verifier)
		usr, err := f.service.RegisterWithPassword(ctx, "Jane", "jane@example.com", "hunter2hunter2")
		require.NoError(t, err)
		assert.Equal(t, "uid-new", usr.ID)
	})

	t.Run("duplicate email at the verifier", func(t *testing.T) {
		verifier := &mockVerifier{
			createIdentityFunc: func(_ context.Context, _, _ string) (string, error) {
				return "", common.ErrDuplicateEmail
			},
		}
		f := newServiceFixture(verifier)
		_, err := f.service.RegisterWithPassword(ctx, "Jane", "jane@example.com", "hunter2hunter2")
		assert.ErrorIs(t, err, common.ErrDuplicateEmail)
		assert.Equal(t, 0, f.repo.createCalls)
	})
}

func TestService_SignIn(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown email", func(t *testing.T) {
		f := newServiceFixture(&mockVerifier{
			lookupByEmailFunc: func(_ context.Context, _ string) (*shared.IdentityLookup, error) {
				return nil, nil
			},
		})
		_, _, err := f.service.SignIn(ctx, "nobody@example.com", "token")
		assert.ErrorIs(t, err, common.ErrNoSuchUser)
	})

	t.Run("unverified email is a hard stop", func(t *testing.T) {
		f := newServiceFixture(&mockVerifier{
			lookupByEmailFunc: func(_ context.Context, _ string) (*shared.IdentityLookup, error) {
				return &shared.IdentityLookup{UID: "uid-1", Email: "jane@example.com", EmailVerified: false}, nil
			},
		})
		credential, _, err := f.service.SignIn(ctx, "jane@example.com", "token")
		assert.ErrorIs(t, err, common.ErrEmailNotVerified)
		assert.Empty(t, credential)
	})

	t.Run("verified email yields a credential", func(t *testing.T) {
		f := newServiceFixture(&mockVerifier{
			lookupByEmailFunc: func(_ context.Context, _ string) (*shared.IdentityLookup, error) {
				return &shared.IdentityLookup{UID: "uid-1", Email: "jane@example.com", EmailVerified: true}, nil
			},
		})
		credential, expiresAt, err := f.service.SignIn(ctx, "jane@example.com", "token")
		require.NoError(t, err)
		assert.NotEmpty(t, credential)
		assert.True(t, expiresAt.After(time.Now()))
	})

	t.Run("verifier outage propagates", func(t *testing.T) {
		f := newServiceFixture(&mockVerifier{
			lookupByEmailFunc: func(_ context.Context, _ string) (*shared.IdentityLookup, error) {
				return nil, common.ErrUpstreamUnavailable
			},
		})
		_, _, err := f.service.SignIn(ctx, "jane@example.com", "token")
		assert.ErrorIs(t, err, common.ErrUpstreamUnavailable)
	})
}

func TestService_SignInWithProvider(t *testing.T) {
	ctx := context.Background()

	t.Run("first sign-in creates the record", func(t *testing.T) {
		f := newServiceFixture(&mockVerifier{})
		result, err := f.service.SignInWithProvider(ctx, ProviderSignInRequest{
			IDToken:  "token",
			Name:     strPtr("Jane"),
			Email:    strPtr("jane@example.com"),
			PhotoURL: strPtr("https://example.com/jane.png"),
		})
		require.NoError(t, err)
		assert.True(t, result.Created)
		assert.Equal(t, "Jane", result.User.Name)
		assert.NotEmpty(t, result.Credential)
	})

	t.Run("missing name falls back to the default", func(t *testing.T) {
		f := newServiceFixture(&mockVerifier{})
		result, err := f.service.SignInWithProvider(ctx, ProviderSignInRequest{IDToken: "token"})
		require.NoError(t, err)
		assert.True(t, result.Created)
		assert.Equal(t, "User", result.User.Name)
		assert.Nil(t, result.User.Email)
	})

	t.Run("repeat sign-in with identical profile writes nothing", func(t *testing.T) {
		f := newServiceFixture(&mockVerifier{})
		req := ProviderSignInRequest{
			IDToken:  "token",
			Name:     strPtr("Jane"),
			PhotoURL: strPtr("https://example.com/jane.png"),
		}
		_, err := f.service.SignInWithProvider(ctx, req)
		require.NoError(t, err)

		result, err := f.service.SignInWithProvider(ctx, req)
		require.NoError(t, err)
		assert.False(t, result.Created)
		assert.Equal(t, 1, f.repo.createCalls)
		assert.Empty(t, f.repo.patchCalls)
	})

	t.Run("changed photo patches only the photo", func(t *testing.T) {
		f := newServiceFixture(&mockVerifier{})
		_, err := f.service.SignInWithProvider(ctx, ProviderSignInRequest{
			IDToken:  "token",
			Name:     strPtr("Jane"),
			PhotoURL: strPtr("https://example.com/old.png"),
		})
		require.NoError(t, err)

		result, err := f.service.SignInWithProvider(ctx, ProviderSignInRequest{
			IDToken:  "token",
			Name:     strPtr("Jane"),
			PhotoURL: strPtr("https://example.com/new.png"),
		})
		require.NoError(t, err)
		require.Len(t, f.repo.patchCalls, 1)
		patch := f.repo.patchCalls[0]
		assert.Nil(t, patch.Name)
		require.NotNil(t, patch.PhotoURL)
		assert.Equal(t, "https://example.com/new.png", *patch.PhotoURL)
		assert.Equal(t, "https://example.com/new.png", *result.User.PhotoURL)
	})

	t.Run("empty incoming fields never clear stored values", func(t *testing.T) {
		f := newServiceFixture(&mockVerifier{})
		_, err := f.service.SignInWithProvider(ctx, ProviderSignInRequest{
			IDToken:  "token",
			Name:     strPtr("Jane"),
			PhotoURL: strPtr("https://example.com/jane.png"),
		})
		require.NoError(t, err)

		result, err := f.service.SignInWithProvider(ctx, ProviderSignInRequest{
			IDToken:  "token",
			Name:     strPtr(""),
			PhotoURL: strPtr(""),
		})
		require.NoError(t, err)
		assert.Empty(t, f.repo.patchCalls)
		assert.Equal(t, "Jane", result.User.Name)
		require.NotNil(t, result.User.PhotoURL)
		assert.Equal(t, "https://example.com/jane.png", *result.User.PhotoURL)
	})

	t.Run("invalid token is fatal", func(t *testing.T) {
		f := newServiceFixture(&mockVerifier{
			verifyTokenFunc: func(_ context.Context, _ string) (*shared.TokenInfo, error) {
				return nil, common.ErrInvalidToken
			},
		})
		_, err := f.service.SignInWithProvider(ctx, ProviderSignInRequest{IDToken: "expired"})
		assert.ErrorIs(t, err, common.ErrInvalidToken)
		assert.Equal(t, 0, f.repo.createCalls)
	})
}

func TestService_CurrentUser(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(&mockVerifier{})

	assert.Nil(t, f.service.CurrentUser(ctx, ""))
	assert.Nil(t, f.service.CurrentUser(ctx, "not-a-credential"))

	result, err := f.service.SignInWithProvider(ctx, ProviderSignInRequest{IDToken: "token", Name: strPtr("Jane")})
	require.NoError(t, err)

	usr := f.service.CurrentUser(ctx, result.Credential)
	require.NotNil(t, usr)
	assert.Equal(t, "uid-1", usr.ID)
}

func TestService_SignOut(t *testing.T) {
	ctx := context.Background()

	var revoked []string
	verifier := &mockVerifier{
		revokeSessionsFunc: func(_ context.Context, uid string) error {
			revoked = append(revoked, uid)
			return nil
		},
	}
	f := newServiceFixture(verifier)

	f.service.SignOut(ctx, nil, false)
	assert.Empty(t, revoked)

	usr := &shared.User{ID: "uid-1", Name: "Jane"}
	f.service.SignOut(ctx, usr, false)
	assert.Empty(t, revoked)

	f.service.SignOut(ctx, usr, true)
	assert.Equal(t, []string{"uid-1"}, revoked)
}
