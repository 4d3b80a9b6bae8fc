// File: internal/audit/model.go
package audit

import (
	"time"

	"github.com/google/uuid"
)

// Event kinds recorded by the auth flows.
const (
	KindRegister       = "register"
	KindSignIn         = "sign_in"
	KindProviderSignIn = "provider_sign_in"
	KindSignOut        = "sign_out"
)

// Event outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// AuthEvent is one recorded authentication event. Events are diagnostic
// only: recording never blocks or fails a flow.
type AuthEvent struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Kind      string    `gorm:"type:varchar(50);not null;index" json:"kind"`
	UID       *string   `gorm:"type:varchar(128);index" json:"uid,omitempty"`
	Email     *string   `gorm:"type:varchar(255)" json:"email,omitempty"`
	Outcome   string    `gorm:"type:varchar(20);not null" json:"outcome"`
	Detail    *string   `gorm:"type:text" json:"detail,omitempty"`
	RequestID *string   `gorm:"type:varchar(64)" json:"request_id,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at;not null;index" json:"created_at"`
}

// TableName specifies the table name for the AuthEvent model.
func (AuthEvent) TableName() string {
	return "auth_events"
}
