package auth

// RegisterRequest is the payload accepted by POST /register.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=80"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginRequest captures the credentials sent to the login endpoint.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TokenPair is returned by a successful login.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AccessToken is returned by a refresh.
type AccessToken struct {
	AccessToken string `json:"access_token"`
}
