// File: internal/user/model.go
package user

import (
	"time"
)

// User represents the user profile record in the directory's Postgres
// backend. The primary key is the identity id assigned by the verifier; the
// record carries no credentials. Email uniqueness is enforced by the
// identity verifier, not here, so the column is indexed but not unique.
type User struct {
	ID        string    `gorm:"type:varchar(128);primaryKey"`
	Name      string    `gorm:"type:varchar(255);not null;default:'User'"`
	Email     *string   `gorm:"type:varchar(255);index"`
	PhotoURL  *string   `gorm:"type:text"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

// TableName specifies the table name for the User model.
func (User) TableName() string {
	return "users"
}

// Patch is a minimal field-level diff applied to an existing record. Nil
// fields are left untouched; an empty patch performs no write at all.
type Patch struct {
	Name     *string
	PhotoURL *string
}

// IsEmpty reports whether applying the patch would change nothing.
func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.PhotoURL == nil
}

// UserResponse defines the structure for user data sent in API responses.
type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     *string   `json:"email,omitempty"`
	PhotoURL  *string   `json:"photoURL,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
