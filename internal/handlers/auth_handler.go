package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/markbates/goth/gothic"

	"github.com/musa-app/musa-api/internal/apperr"
	"github.com/musa-app/musa-api/internal/helpers"
	"github.com/musa-app/musa-api/internal/middleware"
	"github.com/musa-app/musa-api/internal/models"
	"github.com/musa-app/musa-api/internal/services"
)

// Register creates a new account and sends a verification email.
func Register(s *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.RegisterInput
		if err := c.ShouldBindJSON(&input); err != nil {
			helpers.HandleError(c, apperr.BadRequest("invalid request body"))
			return
		}

		user, err := s.Register(c.Request.Context(), input)
		if err != nil {
			helpers.HandleError(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(user, "account created, please verify your email"))
	}
}

// Login exchanges credentials for a bearer token.
func Login(s *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.LoginInput
		if err := c.ShouldBindJSON(&input); err != nil {
			helpers.HandleError(c, apperr.BadRequest("invalid request body"))
			return
		}

		user, token, err := s.Login(c.Request.Context(), input)
		if err != nil {
			helpers.HandleError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(gin.H{"user": user, "token": token}, "logged in"))
	}
}

// Logout is a no-op acknowledgement; tokens are stateless and expire on
// their own.
func Logout() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "logged out"))
	}
}

// VerifyToken confirms the bearer token is still valid and returns the
// account it belongs to. Runs behind the Auth middleware.
func VerifyToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)
		if user == nil {
			helpers.HandleError(c, apperr.Unauthorized("authentication required"))
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(user, "token is valid"))
	}
}

// VerifyEmail consumes the confirmation token from the verification link.
func VerifyEmail(s *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := s.VerifyEmail(c.Request.Context(), c.Param("token"))
		if err != nil {
			helpers.HandleError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(user, "email verified"))
	}
}

type emailInput struct {
	Email string `json:"email" binding:"required,email"`
}

// ResendVerification issues a fresh confirmation token.
func ResendVerification(s *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input emailInput
		if err := c.ShouldBindJSON(&input); err != nil {
			helpers.HandleError(c, apperr.BadRequest("a valid email is required"))
			return
		}
		if err := s.ResendVerification(c.Request.Context(), input.Email); err != nil {
			helpers.HandleError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "if the account exists, a verification email has been sent"))
	}
}

// ForgotPassword starts a password reset flow.
func ForgotPassword(s *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input emailInput
		if err := c.ShouldBindJSON(&input); err != nil {
			helpers.HandleError(c, apperr.BadRequest("a valid email is required"))
			return
		}
		if err := s.ForgotPassword(c.Request.Context(), input.Email); err != nil {
			helpers.HandleError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "if the account exists, a reset email has been sent"))
	}
}

// ResetPassword consumes the reset token from the link and stores the new
// password.
func ResetPassword(s *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Password string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			helpers.HandleError(c, apperr.BadRequest("password is required"))
			return
		}
		if err := s.ResetPassword(c.Request.Context(), c.Param("token"), input.Password); err != nil {
			helpers.HandleError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "password updated"))
	}
}

// GetProfile returns the authenticated account.
func GetProfile(s *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)
		if user == nil {
			helpers.HandleError(c, apperr.Unauthorized("authentication required"))
			return
		}
		profile, err := s.GetProfile(c.Request.Context(), user.ID)
		if err != nil {
			helpers.HandleError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(profile, ""))
	}
}

// UpdateProfile edits the authenticated account's profile fields.
func UpdateProfile(s *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)
		if user == nil {
			helpers.HandleError(c, apperr.Unauthorized("authentication required"))
			return
		}

		var input services.UpdateProfileInput
		if err := c.ShouldBindJSON(&input); err != nil {
			helpers.HandleError(c, apperr.BadRequest("invalid request body"))
			return
		}

		updated, err := s.UpdateProfile(c.Request.Context(), user.ID, input)
		if err != nil {
			helpers.HandleError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(updated, "profile updated"))
	}
}

// GoogleLogin redirects to Google's consent screen. The provider name is
// injected as a query parameter because gothic reads it from the request.
func GoogleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		q := c.Request.URL.Query()
		q.Set("provider", "google")
		c.Request.URL.RawQuery = q.Encode()
		gothic.BeginAuthHandler(c.Writer, c.Request)
	}
}

// GoogleCallback completes the OAuth exchange and redirects to the frontend
// with a freshly minted token.
func GoogleCallback(s *services.UserService, frontendURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := c.Request.URL.Query()
		q.Set("provider", "google")
		c.Request.URL.RawQuery = q.Encode()

		gothUser, err := gothic.CompleteUserAuth(c.Writer, c.Request)
		if err != nil {
			helpers.HandleError(c, apperr.Unauthorized("oauth authentication failed"))
			return
		}

		_, token, err := s.UpsertOAuthUser(c.Request.Context(), gothUser)
		if err != nil {
			helpers.HandleError(c, err)
			return
		}
		c.Redirect(http.StatusTemporaryRedirect,
			fmt.Sprintf("%s/oauth-callback?token=%s", frontendURL, token))
	}
}
