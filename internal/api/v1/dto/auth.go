package dto

// RegisterDTO is the body of POST /auth/register.
type RegisterDTO struct {
	Username string `json:"username" validate:"required,min=3,max=30"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,containsany=ABCDEFGHIJKLMNOPQRSTUVWXYZ,containsany=0123456789"`
}

type LoginDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type CheckUserDTO struct {
	Email string `json:"email" validate:"required,email"`
}

// GoogleLoginDTO carries the Google ID token as googleId, matching the web client.
type GoogleLoginDTO struct {
	Email    string `json:"email" validate:"required,email"`
	GoogleID string `json:"googleId" validate:"required"`
	Username string `json:"username,omitempty"`
}

type ForgotPasswordDTO struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordDTO struct {
	Password string `json:"password" validate:"required,min=8,containsany=ABCDEFGHIJKLMNOPQRSTUVWXYZ,containsany=0123456789"`
}

type RefreshTokenDTO struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type UserSummaryDTO struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	IsNewUser *bool  `json:"isNewUser,omitempty"`
}

type AuthResponseDTO struct {
	Success      bool           `json:"success,omitempty"`
	Token        string         `json:"token"`
	RefreshToken string         `json:"refreshToken,omitempty"`
	User         UserSummaryDTO `json:"user"`
}

type CheckUserResponseDTO struct {
	Exists bool `json:"exists"`
}

// AuthErrorDTO is the error envelope of the /auth routes.
type AuthErrorDTO struct {
	Success           *bool  `json:"success,omitempty"`
	Msg               string `json:"msg"`
	Code              string `json:"code,omitempty"`
	SuggestedUsername string `json:"suggestedUsername,omitempty"`
}

type AuthMessageDTO struct {
	Success bool   `json:"success"`
	Msg     string `json:"msg"`
}
