package dto

// LoginRequest represents the login request body
type LoginRequest struct {
	Username string `json:"username" binding:"required,username" example:"ruben.sj"`
	Password string `json:"password" binding:"required,min=6" example:"changeme123"`
}

// TokenResponse is returned after a successful login
type TokenResponse struct {
	AccessToken string       `json:"accessToken"`
	TokenType   string       `json:"tokenType" example:"Bearer"`
	ExpiresIn   int          `json:"expiresIn" example:"28800"`
	User        UserResponse `json:"user"`
}

// UserResponse describes the authenticated caller
type UserResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name" example:"Ruben, Stephen Joseph"`
	PrimaryRole string   `json:"primaryRole" example:"student"`
	Roles       []string `json:"roles"`
	ViewRole    string   `json:"viewRole" example:"OFFICER"`
}
