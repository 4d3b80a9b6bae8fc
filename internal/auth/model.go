// File: internal/auth/model.go
package auth

// SignUpRequest creates a new account. Either the client already created the
// identity (uid set, the original product's flow) or the server creates it
// from email/password.
type SignUpRequest struct {
	UID      string `json:"uid" binding:"omitempty,max=128"`
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"omitempty,min=8,max=72"`
}

// SignInRequest authenticates a returning user. The ID token is the bearer
// proof obtained from the identity provider by the client.
type SignInRequest struct {
	Email   string `json:"email" binding:"required,email"`
	IDToken string `json:"idToken" binding:"required"`
}

// ProviderSignInRequest signs in via a third-party provider. All profile
// fields are optional; only the token matters for trust.
type ProviderSignInRequest struct {
	IDToken  string  `json:"idToken" binding:"required"`
	Name     *string `json:"name" binding:"omitempty,max=100"`
	Email    *string `json:"email" binding:"omitempty,email"`
	PhotoURL *string `json:"photoURL" binding:"omitempty,url"`
}
