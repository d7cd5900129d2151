package handler

import (
	"errors"
	"net/http"

	"skillpath/internal/api/v1/dto"
	"skillpath/internal/model"
	"skillpath/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type AuthHandler struct {
	userService service.UserService
	validate    *validator.Validate
	logger      zerolog.Logger
	devErrors   bool
}

func NewAuthHandler(userService service.UserService, validate *validator.Validate, logger zerolog.Logger, devErrors bool) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		validate:    validate,
		logger:      logger,
		devErrors:   devErrors,
	}
}

// RegisterRoutes mounts v1 auth routes
func (h *AuthHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.HandleFunc("POST /auth/register", h.register)
	mux.HandleFunc("POST /auth/login", h.login)
	mux.HandleFunc("POST /auth/check-user", h.checkUser)
	mux.HandleFunc("POST /auth/google-login", h.googleLogin)
	mux.HandleFunc("POST /auth/forgot-password", h.forgotPassword)
	mux.HandleFunc("POST /auth/reset-password/{token}", h.resetPassword)
	mux.HandleFunc("POST /auth/refresh-token", h.refreshToken)
	mux.Handle("POST /auth/logout", authMw(http.HandlerFunc(h.logout)))
}

// register godoc
// @Summary Register a new account
// @Description Creates a password account and starts a session. Passwords need eight characters, one number and one uppercase letter.
// @Tags auth
// @Accept json
// @Produce json
// @Param user body dto.RegisterDTO true "Registration request"
// @Success 200 {object} dto.AuthResponseDTO
// @Failure 400 {object} dto.AuthErrorDTO "Validation failed or email already registered"
// @Failure 500 {object} dto.AuthErrorDTO "Server error"
// @Router /auth/register [post]
func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	// 1. Decode and validate request body
	var req dto.RegisterDTO
	if err := decode(w, r, h.validate, &req); err != nil {
		h.fail(w, http.StatusBadRequest, err.Error(), "")
		return
	}

	// 2. Create the account
	res, err := h.userService.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			h.fail(w, http.StatusBadRequest, "User with this email already exists", "")
		case errors.Is(err, service.ErrUsernameTaken):
			h.fail(w, http.StatusBadRequest, "Username is already taken", "")
		default:
			h.serverError(w, err, "Server error")
		}
		return
	}

	// 3. Return tokens
	writeJSON(w, h.logger, http.StatusOK, authResponse(res, false))
}

// login godoc
// @Summary Log in with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body dto.LoginDTO true "Login request"
// @Success 200 {object} dto.AuthResponseDTO
// @Failure 400 {object} dto.AuthErrorDTO "Invalid credentials"
// @Failure 500 {object} dto.AuthErrorDTO "Server error"
// @Router /auth/login [post]
func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginDTO
	if err := decode(w, r, h.validate, &req); err != nil {
		h.fail(w, http.StatusBadRequest, err.Error(), "")
		return
	}

	res, err := h.userService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.fail(w, http.StatusBadRequest, "Invalid email or password", "")
			return
		}
		h.serverError(w, err, "Server error")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, authResponse(res, false))
}

// checkUser godoc
// @Summary Check whether an email is registered
// @Tags auth
// @Accept json
// @Produce json
// @Param email body dto.CheckUserDTO true "Email to look up"
// @Success 200 {object} dto.CheckUserResponseDTO
// @Failure 400 {object} dto.AuthErrorDTO "Invalid email"
// @Failure 500 {object} dto.AuthErrorDTO "Server error"
// @Router /auth/check-user [post]
func (h *AuthHandler) checkUser(w http.ResponseWriter, r *http.Request) {
	var req dto.CheckUserDTO
	if err := decode(w, r, h.validate, &req); err != nil {
		h.fail(w, http.StatusBadRequest, err.Error(), "")
		return
	}
	exists, err := h.userService.Exists(r.Context(), req.Email)
	if err != nil {
		h.serverError(w, err, "Server error")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, dto.CheckUserResponseDTO{Exists: exists})
}

// googleLogin godoc
// @Summary Sign in with Google
// @Description Verifies the Google ID token sent as googleId, then logs in, links or creates the account.
// @Tags auth
// @Accept json
// @Produce json
// @Param login body dto.GoogleLoginDTO true "Google ID token and profile"
// @Success 200 {object} dto.AuthResponseDTO
// @Failure 400 {object} dto.AuthErrorDTO "Missing fields or username required"
// @Failure 401 {object} dto.AuthErrorDTO "Invalid Google token"
// @Failure 409 {object} dto.AuthErrorDTO "Username taken, suggestedUsername offered"
// @Failure 500 {object} dto.AuthErrorDTO "Server error"
// @Router /auth/google-login [post]
func (h *AuthHandler) googleLogin(w http.ResponseWriter, r *http.Request) {
	// 1. Decode and validate request body
	var req dto.GoogleLoginDTO
	if err := decode(w, r, h.validate, &req); err != nil {
		h.fail(w, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
		return
	}

	// 2. Verify the ID token and sign in or create the account
	res, err := h.userService.GoogleLogin(r.Context(), req.GoogleID, req.Email, req.Username)
	if err != nil {
		var taken *service.UsernameTakenError
		switch {
		case errors.As(err, &taken):
			writeJSON(w, h.logger, http.StatusConflict, dto.AuthErrorDTO{
				Success:           boolPtr(false),
				Msg:               "Username is already taken",
				Code:              "USERNAME_TAKEN",
				SuggestedUsername: taken.Suggested,
			})
		case errors.Is(err, service.ErrUsernameTaken):
			h.fail(w, http.StatusConflict, "Username is already taken", "USERNAME_TAKEN")
		case errors.Is(err, service.ErrInvalidGoogleToken):
			h.fail(w, http.StatusUnauthorized, "Invalid Google authentication", "INVALID_GOOGLE_TOKEN")
		case errors.Is(err, service.ErrEmailMismatch):
			h.fail(w, http.StatusUnauthorized, "Email verification failed", "EMAIL_MISMATCH")
		case errors.Is(err, service.ErrEmailNotVerified):
			h.fail(w, http.StatusUnauthorized, "Email not verified by Google", "EMAIL_NOT_VERIFIED")
		case errors.Is(err, service.ErrUsernameRequired):
			h.fail(w, http.StatusBadRequest, "Username is required for registration", "USERNAME_REQUIRED")
		case errors.Is(err, service.ErrUsernameTooShort):
			h.fail(w, http.StatusBadRequest, "Username must be at least 3 characters", "USERNAME_TOO_SHORT")
		case errors.Is(err, service.ErrAccountConflict):
			h.fail(w, http.StatusConflict, "Email already registered with different Google account", "ACCOUNT_CONFLICT")
		default:
			h.serverError(w, err, "Authentication process failed")
		}
		return
	}

	// 3. Return tokens
	writeJSON(w, h.logger, http.StatusOK, authResponse(res, true))
}

// forgotPassword godoc
// @Summary Request a password reset email
// @Tags auth
// @Accept json
// @Produce json
// @Param email body dto.ForgotPasswordDTO true "Account email"
// @Success 200 {object} dto.AuthMessageDTO
// @Failure 400 {object} dto.AuthErrorDTO "Invalid email"
// @Failure 404 {object} dto.AuthErrorDTO "User not found"
// @Failure 500 {object} dto.AuthErrorDTO "Server error"
// @Router /auth/forgot-password [post]
func (h *AuthHandler) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ForgotPasswordDTO
	if err := decode(w, r, h.validate, &req); err != nil {
		h.fail(w, http.StatusBadRequest, err.Error(), "")
		return
	}
	if err := h.userService.ForgotPassword(r.Context(), req.Email); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			h.fail(w, http.StatusNotFound, "User with this email does not exist", "")
			return
		}
		h.serverError(w, err, "Error sending reset email")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, dto.AuthMessageDTO{Success: true, Msg: "Reset link sent to email"})
}

// resetPassword godoc
// @Summary Reset a password with an emailed token
// @Tags auth
// @Accept json
// @Produce json
// @Param token path string true "Reset token"
// @Param password body dto.ResetPasswordDTO true "New password"
// @Success 200 {object} dto.AuthMessageDTO
// @Failure 400 {object} dto.AuthErrorDTO "Invalid or expired token"
// @Failure 500 {object} dto.AuthErrorDTO "Server error"
// @Router /auth/reset-password/{token} [post]
func (h *AuthHandler) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetPasswordDTO
	if err := decode(w, r, h.validate, &req); err != nil {
		h.fail(w, http.StatusBadRequest, err.Error(), "")
		return
	}
	if err := h.userService.ResetPassword(r.Context(), r.PathValue("token"), req.Password); err != nil {
		if errors.Is(err, service.ErrInvalidResetToken) {
			h.fail(w, http.StatusBadRequest, "Invalid or expired reset token", "")
			return
		}
		h.serverError(w, err, "Error resetting password")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, dto.AuthMessageDTO{Success: true, Msg: "Password has been reset successfully"})
}

// refreshToken godoc
// @Summary Exchange a refresh token for an access token
// @Tags auth
// @Accept json
// @Produce json
// @Param token body dto.RefreshTokenDTO true "Refresh token"
// @Success 200 {object} dto.AuthResponseDTO
// @Failure 400 {object} dto.AuthErrorDTO "Refresh token is required"
// @Failure 401 {object} dto.AuthErrorDTO "Invalid refresh token"
// @Failure 500 {object} dto.AuthErrorDTO "Server error"
// @Router /auth/refresh-token [post]
func (h *AuthHandler) refreshToken(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshTokenDTO
	if err := decode(w, r, h.validate, &req); err != nil {
		h.fail(w, http.StatusBadRequest, "Refresh token is required", "")
		return
	}
	res, err := h.userService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRefreshToken) {
			h.fail(w, http.StatusUnauthorized, "Invalid refresh token", "")
			return
		}
		h.serverError(w, err, "Server error")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, dto.AuthResponseDTO{
		Success: true,
		Token:   res.Token,
		User:    userSummary(res.User),
	})
}

// logout godoc
// @Summary Log out and revoke the refresh token
// @Tags auth
// @Produce json
// @Success 200 {object} dto.AuthMessageDTO
// @Failure 401 {object} dto.AuthErrorDTO "Unauthorized"
// @Failure 500 {object} dto.AuthErrorDTO "Server error"
// @Router /auth/logout [post]
func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(r)
	if !ok {
		h.fail(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}
	if err := h.userService.Logout(r.Context(), userID); err != nil {
		h.serverError(w, err, "Server error")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, dto.AuthMessageDTO{Success: true, Msg: "Logged out successfully"})
}

func (h *AuthHandler) fail(w http.ResponseWriter, status int, msg, code string) {
	resp := dto.AuthErrorDTO{Msg: msg, Code: code}
	if code != "" {
		resp.Success = boolPtr(false)
	}
	writeJSON(w, h.logger, status, resp)
}

func (h *AuthHandler) serverError(w http.ResponseWriter, err error, msg string) {
	h.logger.Error().Err(err).Msg(msg)
	if h.devErrors {
		msg = msg + ": " + err.Error()
	}
	h.fail(w, http.StatusInternalServerError, msg, "")
}

func authResponse(res *service.AuthResult, google bool) dto.AuthResponseDTO {
	resp := dto.AuthResponseDTO{
		Token:        res.Token,
		RefreshToken: res.RefreshToken,
		User:         userSummary(res.User),
	}
	if google {
		resp.Success = true
		resp.User.IsNewUser = boolPtr(res.IsNewUser)
	}
	return resp
}

func userSummary(u *model.User) dto.UserSummaryDTO {
	if u == nil {
		return dto.UserSummaryDTO{}
	}
	return dto.UserSummaryDTO{ID: u.ID, Username: u.Username, Email: u.Email}
}

func boolPtr(b bool) *bool { return &b }
