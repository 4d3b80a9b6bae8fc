// File: internal/session/manager.go
package session

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"prepwise_backend/internal/common"
	"prepwise_backend/internal/shared"
	"prepwise_backend/internal/user"
)

// Manager owns session credential issuance and verification. It never
// persists session state server-side: the credential lives with the client,
// and validity is proven by signature and expiry alone.
type Manager struct {
	signer   CredentialSigner
	users    user.Repository
	verifier shared.Verifier
	logger   *zap.Logger
}

// NewManager creates a new session manager.
func NewManager(signer CredentialSigner, users user.Repository, verifier shared.Verifier, logger *zap.Logger) *Manager {
	return &Manager{
		signer:   signer,
		users:    users,
		verifier: verifier,
		logger:   logger,
	}
}

// Issue wraps a pre-verified bearer token into a signed session credential
// with the configured fixed lifetime.
func (m *Manager) Issue(ctx context.Context, idToken string) (string, time.Time, error) {
	credential, expiresAt, err := m.signer.Mint(ctx, idToken)
	if err != nil {
		m.logger.Warn("Session credential issuance failed", zap.Error(err))
		return "", time.Time{}, err
	}
	return credential, expiresAt, nil
}

// ResolveCurrentIdentity validates a credential and fetches the matching
// user record. Returns nil for every non-result: missing credential, failed
// validation, or no matching record. Absence is the normal outcome for
// anonymous visitors, never a fault, so no error is surfaced; directory
// faults are logged and likewise resolved to anonymous.
func (m *Manager) ResolveCurrentIdentity(ctx context.Context, credential string) *shared.User {
	if credential == "" {
		return nil
	}

	uid, err := m.signer.Verify(ctx, credential)
	if err != nil {
		m.logger.Debug("Session credential rejected", zap.Error(err))
		return nil
	}

	usr, err := m.users.FindByID(ctx, uid)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			m.logger.Error("Directory lookup failed during session resolution", zap.Error(err), zap.String("uid", uid))
		}
		return nil
	}
	return usr
}

// RevokeAll invalidates every outstanding session for the identity at the
// verifier. Effective with the provider-backed signer, whose verification
// includes the revocation check; locally signed credentials run to expiry.
func (m *Manager) RevokeAll(ctx context.Context, uid string) error {
	return m.verifier.RevokeSessions(ctx, uid)
}
