// File: internal/user/adapter.go
package user

import (
	"prepwise_backend/internal/shared"
)

// DBToShared converts a GORM user model to the shared user record.
func DBToShared(dbUser *User) *shared.User {
	if dbUser == nil {
		return nil
	}
	updatedAt := dbUser.UpdatedAt
	return &shared.User{
		ID:        dbUser.ID,
		Name:      dbUser.Name,
		Email:     dbUser.Email,
		PhotoURL:  dbUser.PhotoURL,
		CreatedAt: dbUser.CreatedAt,
		UpdatedAt: &updatedAt,
	}
}

// SharedToDB converts a shared user record to the GORM model.
func SharedToDB(usr *shared.User) *User {
	if usr == nil {
		return nil
	}
	dbUser := &User{
		ID:        usr.ID,
		Name:      usr.Name,
		Email:     usr.Email,
		PhotoURL:  usr.PhotoURL,
		CreatedAt: usr.CreatedAt,
	}
	if usr.UpdatedAt != nil {
		dbUser.UpdatedAt = *usr.UpdatedAt
	} else {
		dbUser.UpdatedAt = usr.CreatedAt
	}
	return dbUser
}

// ToUserResponse converts a shared user record to a UserResponse DTO.
func ToUserResponse(usr *shared.User) UserResponse {
	return UserResponse{
		ID:        usr.ID,
		Name:      usr.Name,
		Email:     usr.Email,
		PhotoURL:  usr.PhotoURL,
		CreatedAt: usr.CreatedAt,
	}
}
