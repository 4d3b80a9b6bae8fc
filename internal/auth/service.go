// File: internal/auth/service.go
package auth

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"prepwise_backend/internal/audit"
	"prepwise_backend/internal/common"
	"prepwise_backend/internal/session"
	"prepwise_backend/internal/shared"
	"prepwise_backend/internal/user"
)

// defaultDisplayName is used when a provider sign-in carries no usable name.
const defaultDisplayName = "User"

// Service orchestrates the authentication flows: registration, sign-in,
// provider sign-in, and current-user resolution. Trust decisions stay with
// the identity verifier; this layer owns directory bookkeeping and session
// issuance ordering.
type Service struct {
	verifier shared.Verifier
	users    user.Repository
	sessions *session.Manager
	recorder *audit.Recorder
	logger   *zap.Logger
}

// NewService creates a new auth service.
func NewService(verifier shared.Verifier, users user.Repository, sessions *session.Manager, recorder *audit.Recorder, logger *zap.Logger) *Service {
	return &Service{
		verifier: verifier,
		users:    users,
		sessions: sessions,
		recorder: recorder,
		logger:   logger,
	}
}

// RegisterWithPassword creates the identity at the verifier first, then
// registers the directory record. Used when the client has not pre-created
// the identity itself.
func (s *Service) RegisterWithPassword(ctx context.Context, name, email, password string) (*shared.User, error) {
	uid, err := s.verifier.CreateIdentity(ctx, email, password)
	if err != nil {
		s.record(ctx, audit.KindRegister, nil, &email, err)
		return nil, err
	}
	return s.Register(ctx, uid, name, email)
}

// Register creates the directory record for an already-verified identity.
// Registration never issues a session: the new user must sign in, which
// enforces the email-verification gate. If a record already exists for the
// id the call fails with ErrAlreadyExists and mutates nothing.
func (s *Service) Register(ctx context.Context, uid, name, email string) (*shared.User, error) {
	_, err := s.users.FindByID(ctx, uid)
	if err == nil {
		s.logger.Info("Registration rejected, record exists", zap.String("uid", uid))
		s.record(ctx, audit.KindRegister, &uid, &email, common.ErrAlreadyExists)
		return nil, common.ErrAlreadyExists
	}
	if !errors.Is(err, common.ErrNotFound) {
		s.logger.Error("Directory lookup failed during registration", zap.Error(err), zap.String("uid", uid))
		s.record(ctx, audit.KindRegister, &uid, &email, common.ErrUpstreamUnavailable)
		return nil, common.ErrUpstreamUnavailable
	}

	now := time.Now()
	usr := &shared.User{
		ID:        uid,
		Name:      name,
		Email:     &email,
		CreatedAt: now,
	}
	if err := s.users.Create(ctx, usr); err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			s.record(ctx, audit.KindRegister, &uid, &email, common.ErrAlreadyExists)
			return nil, common.ErrAlreadyExists
		}
		s.logger.Error("Failed to create user record", zap.Error(err), zap.String("uid", uid))
		s.record(ctx, audit.KindRegister, &uid, &email, common.ErrUpstreamUnavailable)
		return nil, common.ErrUpstreamUnavailable
	}

	s.logger.Info("User registered", zap.String("uid", uid))
	s.record(ctx, audit.KindRegister, &uid, &email, nil)
	return usr, nil
}

// SignIn authenticates a returning user: the identity must exist for the
// email, its email address must be verified, and only then is the bearer
// token exchanged for a session credential. The verification gate is a hard
// stop regardless of token validity.
func (s *Service) SignIn(ctx context.Context, email, idToken string) (string, time.Time, error) {
	lookup, err := s.verifier.LookupByEmail(ctx, email)
	if err != nil {
		s.record(ctx, audit.KindSignIn, nil, &email, err)
		return "", time.Time{}, err
	}
	if lookup == nil {
		s.logger.Info("Sign-in rejected, no identity for email", zap.String("email", email))
		s.record(ctx, audit.KindSignIn, nil, &email, common.ErrNoSuchUser)
		return "", time.Time{}, common.ErrNoSuchUser
	}
	if !lookup.EmailVerified {
		s.logger.Info("Sign-in rejected, email not verified", zap.String("uid", lookup.UID))
		s.record(ctx, audit.KindSignIn, &lookup.UID, &email, common.ErrEmailNotVerified)
		return "", time.Time{}, common.ErrEmailNotVerified
	}

	credential, expiresAt, err := s.sessions.Issue(ctx, idToken)
	if err != nil {
		s.record(ctx, audit.KindSignIn, &lookup.UID, &email, err)
		return "", time.Time{}, err
	}

	s.logger.Info("User signed in", zap.String("uid", lookup.UID))
	s.record(ctx, audit.KindSignIn, &lookup.UID, &email, nil)
	return credential, expiresAt, nil
}

// ProviderSignInResult is the outcome of a provider sign-in: the directory
// record after the upsert, the issued credential, and whether the record was
// created on this call.
type ProviderSignInResult struct {
	User       *shared.User
	Credential string
	ExpiresAt  time.Time
	Created    bool
}

// SignInWithProvider verifies a provider-issued token and upserts the
// directory record for its identity: first sign-in creates the record,
// later sign-ins patch only profile fields that arrived non-empty and
// actually differ. A missing name falls back to the default display name.
// The session is issued after the directory write; issuance failure does
// not roll the write back.
func (s *Service) SignInWithProvider(ctx context.Context, req ProviderSignInRequest) (*ProviderSignInResult, error) {
	info, err := s.verifier.VerifyToken(ctx, req.IDToken)
	if err != nil {
		s.record(ctx, audit.KindProviderSignIn, nil, req.Email, err)
		return nil, err
	}
	uid := info.UID

	usr, err := s.users.FindByID(ctx, uid)
	created := false
	switch {
	case err == nil:
		if patch := diffProfile(usr, req); !patch.IsEmpty() {
			if err := s.users.ApplyPatch(ctx, uid, patch); err != nil {
				s.logger.Error("Failed to update user profile", zap.Error(err), zap.String("uid", uid))
				s.record(ctx, audit.KindProviderSignIn, &uid, req.Email, common.ErrUpstreamUnavailable)
				return nil, common.ErrUpstreamUnavailable
			}
			applyPatch(usr, patch)
		}
	case errors.Is(err, common.ErrNotFound):
		usr = &shared.User{
			ID:        uid,
			Name:      nameOrDefault(req.Name),
			Email:     req.Email,
			PhotoURL:  req.PhotoURL,
			CreatedAt: time.Now(),
		}
		if err := s.users.Create(ctx, usr); err != nil {
			s.logger.Error("Failed to create user record from provider profile", zap.Error(err), zap.String("uid", uid))
			s.record(ctx, audit.KindProviderSignIn, &uid, req.Email, common.ErrUpstreamUnavailable)
			return nil, common.ErrUpstreamUnavailable
		}
		created = true
	default:
		s.logger.Error("Directory lookup failed during provider sign-in", zap.Error(err), zap.String("uid", uid))
		s.record(ctx, audit.KindProviderSignIn, &uid, req.Email, common.ErrUpstreamUnavailable)
		return nil, common.ErrUpstreamUnavailable
	}

	credential, expiresAt, err := s.sessions.Issue(ctx, req.IDToken)
	if err != nil {
		s.record(ctx, audit.KindProviderSignIn, &uid, req.Email, err)
		return nil, err
	}

	s.logger.Info("Provider sign-in completed", zap.String("uid", uid), zap.Bool("created", created))
	s.record(ctx, audit.KindProviderSignIn, &uid, req.Email, nil)
	return &ProviderSignInResult{
		User:       usr,
		Credential: credential,
		ExpiresAt:  expiresAt,
		Created:    created,
	}, nil
}

// CurrentUser resolves the session credential to a user record. Anonymous
// visitors get nil, never an error.
func (s *Service) CurrentUser(ctx context.Context, credential string) *shared.User {
	return s.sessions.ResolveCurrentIdentity(ctx, credential)
}

// SignOut ends the caller's session. When revokeAll is set and the caller
// was authenticated, every outstanding session for the identity is revoked
// at the verifier; revocation failures are logged but do not fail sign-out,
// since the cookie is cleared either way.
func (s *Service) SignOut(ctx context.Context, usr *shared.User, revokeAll bool) {
	var uid *string
	if usr != nil {
		uid = &usr.ID
		if revokeAll {
			if err := s.sessions.RevokeAll(ctx, usr.ID); err != nil {
				s.logger.Warn("Failed to revoke sessions on sign-out", zap.Error(err), zap.String("uid", usr.ID))
			}
		}
	}
	s.record(ctx, audit.KindSignOut, uid, nil, nil)
}

// diffProfile computes the minimal patch for an existing record against an
// incoming provider profile. Only non-empty incoming fields that differ from
// the stored value are included; a second sign-in with the same profile
// yields an empty patch and no write.
func diffProfile(usr *shared.User, req ProviderSignInRequest) user.Patch {
	var patch user.Patch
	if req.Name != nil && *req.Name != "" && *req.Name != usr.Name {
		patch.Name = req.Name
	}
	if req.PhotoURL != nil && *req.PhotoURL != "" && (usr.PhotoURL == nil || *usr.PhotoURL != *req.PhotoURL) {
		patch.PhotoURL = req.PhotoURL
	}
	return patch
}

func applyPatch(usr *shared.User, patch user.Patch) {
	if patch.Name != nil {
		usr.Name = *patch.Name
	}
	if patch.PhotoURL != nil {
		usr.PhotoURL = patch.PhotoURL
	}
}

func nameOrDefault(name *string) string {
	if name != nil && *name != "" {
		return *name
	}
	return defaultDisplayName
}

// record writes one audit event for a flow outcome. Failures inside the
// recorder are its own problem; flows never fail on audit.
func (s *Service) record(ctx context.Context, kind string, uid, email *string, flowErr error) {
	event := audit.AuthEvent{
		Kind:    kind,
		UID:     uid,
		Email:   email,
		Outcome: audit.OutcomeSuccess,
	}
	if flowErr != nil {
		event.Outcome = audit.OutcomeFailure
		detail := flowErr.Error()
		if apiErr, ok := common.IsAPIError(flowErr); ok {
			detail = apiErr.Code
		}
		event.Detail = &detail
	}
	if requestID := common.RequestIDFromContext(ctx); requestID != "" {
		event.RequestID = &requestID
	}
	s.recorder.Record(ctx, event)
}
