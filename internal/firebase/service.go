package firebase

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"prepwise_backend/internal/common"
	"prepwise_backend/internal/config"
	"prepwise_backend/internal/shared"
)

// Service implements the identity-verification boundary on the Firebase
// Admin SDK: credential checks, bearer-token verification, session-cookie
// minting, and email-verification status lookups. All SDK failures are
// classified into the common error taxonomy here, at the point of call.
type Service struct {
	app        *firebase.App
	authClient *auth.Client
	logger     *zap.Logger
}

var _ shared.Verifier = (*Service)(nil)
var _ shared.SessionMinter = (*Service)(nil)

// NewService initializes the Firebase Admin SDK and creates a new Service.
func NewService(cfg *config.Config, logger *zap.Logger) (*Service, error) {
	if cfg.FirebaseServiceAccountKeyPath == "" {
		logger.Error("Firebase service account key path is not configured.")
		return nil, fmt.Errorf("firebase service account key path is required")
	}

	// Clean the path to prevent issues with relative paths or symlinks
	cleanPath := filepath.Clean(cfg.FirebaseServiceAccountKeyPath)

	opt := option.WithCredentialsFile(cleanPath)

	var app *firebase.App
	var err error

	if cfg.FirebaseProjectID != "" {
		conf := &firebase.Config{ProjectID: cfg.FirebaseProjectID}
		app, err = firebase.NewApp(context.Background(), conf, opt)
	} else {
		// If ProjectID is not specified in config, let SDK infer from credentials
		app, err = firebase.NewApp(context.Background(), nil, opt)
	}

	if err != nil {
		logger.Error("Failed to initialize Firebase Admin SDK app", zap.Error(err), zap.String("keyPath", cleanPath))
		return nil, fmt.Errorf("error initializing Firebase app: %w", err)
	}

	authClient, err := app.Auth(context.Background())
	if err != nil {
		logger.Error("Failed to get Firebase Auth client", zap.Error(err))
		return nil, fmt.Errorf("error getting Firebase Auth client: %w", err)
	}

	logger.Info("Firebase Admin SDK initialized successfully.")
	return &Service{
		app:        app,
		authClient: authClient,
		logger:     logger,
	}, nil
}

// NewFirestoreClient opens a Firestore client on the same Firebase app.
// Used when the user directory runs on the Firestore backend.
func (s *Service) NewFirestoreClient(ctx context.Context) (*firestore.Client, error) {
	client, err := s.app.Firestore(ctx)
	if err != nil {
		s.logger.Error("Failed to get Firestore client", zap.Error(err))
		return nil, fmt.Errorf("error getting Firestore client: %w", err)
	}
	return client, nil
}

// CreateIdentity registers a new email/password identity with Firebase Auth
// and returns its UID. Firebase's own duplicate-email check maps to
// ErrDuplicateEmail, distinct from the directory-level conflict.
func (s *Service) CreateIdentity(ctx context.Context, email, password string) (string, error) {
	params := (&auth.UserToCreate{}).
		Email(email).
		Password(password)

	record, err := s.authClient.CreateUser(ctx, params)
	if err != nil {
		if auth.IsEmailAlreadyExists(err) {
			s.logger.Info("Identity creation rejected: email already in use", zap.String("email", email))
			return "", common.ErrDuplicateEmail
		}
		s.logger.Error("Failed to create identity", zap.Error(err))
		return "", common.ErrUpstreamUnavailable
	}

	s.logger.Info("Identity created", zap.String("uid", record.UID))
	return record.UID, nil
}

// VerifyToken verifies a Firebase ID token and returns the trusted identity
// id plus expiry. Expired, malformed, or revoked tokens map to
// ErrInvalidToken; anything else is an upstream fault.
func (s *Service) VerifyToken(ctx context.Context, idToken string) (*shared.TokenInfo, error) {
	if idToken == "" {
		return nil, common.ErrInvalidToken
	}

	token, err := s.authClient.VerifyIDToken(ctx, idToken)
	if err != nil {
		if auth.IsIDTokenExpired(err) || auth.IsIDTokenRevoked(err) || auth.IsIDTokenInvalid(err) {
			s.logger.Warn("Firebase ID token verification failed", zap.Error(err))
			return nil, common.ErrInvalidToken
		}
		s.logger.Error("Firebase ID token verification errored upstream", zap.Error(err))
		return nil, common.ErrUpstreamUnavailable
	}

	s.logger.Debug("Firebase ID token verified successfully", zap.String("uid", token.UID))
	return &shared.TokenInfo{
		UID:     token.UID,
		Expires: time.Unix(token.Expires, 0),
	}, nil
}

// LookupByEmail resolves an identity by email address. Returns (nil, nil)
// when no identity exists; sign-in treats that as NoSuchUser.
func (s *Service) LookupByEmail(ctx context.Context, email string) (*shared.IdentityLookup, error) {
	record, err := s.authClient.GetUserByEmail(ctx, email)
	if err != nil {
		if auth.IsUserNotFound(err) {
			return nil, nil
		}
		s.logger.Error("Failed to look up identity by email", zap.Error(err))
		return nil, common.ErrUpstreamUnavailable
	}

	return &shared.IdentityLookup{
		UID:           record.UID,
		Email:         record.Email,
		EmailVerified: record.EmailVerified,
	}, nil
}

// MintSessionCookie exchanges a verified ID token for a long-lived session
// cookie. Firebase enforces the TTL in milliseconds on the wire; the SDK
// takes a time.Duration.
func (s *Service) MintSessionCookie(ctx context.Context, idToken string, ttl time.Duration) (string, error) {
	cookie, err := s.authClient.SessionCookie(ctx, idToken, ttl)
	if err != nil {
		if auth.IsIDTokenExpired(err) || auth.IsIDTokenRevoked(err) || auth.IsIDTokenInvalid(err) {
			s.logger.Warn("Session cookie minting rejected: invalid ID token", zap.Error(err))
			return "", common.ErrInvalidToken
		}
		s.logger.Error("Failed to mint session cookie", zap.Error(err))
		return "", common.ErrUpstreamUnavailable
	}
	return cookie, nil
}

// VerifySessionCookie validates a session cookie's signature and expiry and
// checks server-side revocation, returning the identity id it proves.
func (s *Service) VerifySessionCookie(ctx context.Context, cookie string) (string, error) {
	token, err := s.authClient.VerifySessionCookieAndCheckRevoked(ctx, cookie)
	if err != nil {
		// Resolution treats every verification failure as "no session";
		// classification beyond logging buys nothing here.
		s.logger.Debug("Session cookie verification failed", zap.Error(err))
		return "", common.ErrInvalidToken
	}
	return token.UID, nil
}

// RevokeSessions revokes all refresh tokens for the identity, which also
// invalidates session cookies verified with the revocation check.
func (s *Service) RevokeSessions(ctx context.Context, uid string) error {
	if err := s.authClient.RevokeRefreshTokens(ctx, uid); err != nil {
		s.logger.Error("Failed to revoke sessions", zap.Error(err), zap.String("uid", uid))
		return common.ErrUpstreamUnavailable
	}
	s.logger.Info("Revoked all sessions for user", zap.String("uid", uid))
	return nil
}
