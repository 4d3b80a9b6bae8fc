// File: internal/user/firestore_repository.go
package user

import (
	"context"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"prepwise_backend/internal/common"
	"prepwise_backend/internal/shared"
)

// usersCollection is the Firestore collection holding one document per
// identity id, mirroring the original product's data layout.
const usersCollection = "users"

// firestoreUser is the wire shape of a directory document.
type firestoreUser struct {
	Name      string    `firestore:"name"`
	Email     *string   `firestore:"email"`
	PhotoURL  *string   `firestore:"photoURL"`
	CreatedAt time.Time `firestore:"createdAt"`
	UpdatedAt time.Time `firestore:"updatedAt,omitempty"`
}

type firestoreRepository struct {
	client *firestore.Client
	logger *zap.Logger
}

// NewFirestoreRepository creates a user repository backed by Firestore.
func NewFirestoreRepository(client *firestore.Client, logger *zap.Logger) Repository {
	return &firestoreRepository{client: client, logger: logger}
}

func (r *firestoreRepository) Create(ctx context.Context, usr *shared.User) error {
	doc := firestoreUser{
		Name:      usr.Name,
		Email:     usr.Email,
		PhotoURL:  usr.PhotoURL,
		CreatedAt: usr.CreatedAt,
		UpdatedAt: usr.CreatedAt,
	}
	if doc.Email != nil {
		normalized := strings.ToLower(strings.TrimSpace(*doc.Email))
		doc.Email = &normalized
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
		doc.UpdatedAt = doc.CreatedAt
	}

	// Set, not Create: the directory is last-write-wins per slot.
	if _, err := r.client.Collection(usersCollection).Doc(usr.ID).Set(ctx, doc); err != nil {
		r.logger.Error("Failed to write user document", zap.Error(err), zap.String("uid", usr.ID))
		return common.ErrUpstreamUnavailable
	}
	return nil
}

func (r *firestoreRepository) FindByID(ctx context.Context, id string) (*shared.User, error) {
	snap, err := r.client.Collection(usersCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, common.ErrNotFound.WithDetails("User not found with this ID.")
		}
		r.logger.Error("Failed to read user document", zap.Error(err), zap.String("uid", id))
		return nil, common.ErrUpstreamUnavailable
	}

	var doc firestoreUser
	if err := snap.DataTo(&doc); err != nil {
		r.logger.Error("Failed to decode user document", zap.Error(err), zap.String("uid", id))
		return nil, common.ErrUpstreamUnavailable
	}

	updatedAt := doc.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = doc.CreatedAt
	}
	return &shared.User{
		ID:        snap.Ref.ID,
		Name:      doc.Name,
		Email:     doc.Email,
		PhotoURL:  doc.PhotoURL,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: &updatedAt,
	}, nil
}

func (r *firestoreRepository) ApplyPatch(ctx context.Context, id string, patch Patch) error {
	if patch.IsEmpty() {
		return nil
	}

	updates := []firestore.Update{}
	if patch.Name != nil {
		updates = append(updates, firestore.Update{Path: "name", Value: *patch.Name})
	}
	if patch.PhotoURL != nil {
		updates = append(updates, firestore.Update{Path: "photoURL", Value: *patch.PhotoURL})
	}
	updates = append(updates, firestore.Update{Path: "updatedAt", Value: time.Now()})

	if _, err := r.client.Collection(usersCollection).Doc(id).Update(ctx, updates); err != nil {
		if status.Code(err) == codes.NotFound {
			return common.ErrNotFound.WithDetails("User not found with this ID.")
		}
		r.logger.Error("Failed to patch user document", zap.Error(err), zap.String("uid", id))
		return common.ErrUpstreamUnavailable
	}
	return nil
}
