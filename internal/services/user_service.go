package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/markbates/goth"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/musa-app/musa-api/internal/apperr"
	"github.com/musa-app/musa-api/internal/helpers"
	"github.com/musa-app/musa-api/internal/mailer"
	"github.com/musa-app/musa-api/internal/models"
)

const (
	confirmationTokenTTL = 24 * time.Hour
	resetTokenTTL        = 1 * time.Hour
)

// UserService owns registration, authentication and profile management.
type UserService struct {
	users     models.UserRepo
	mail      mailer.Mailer
	cld       *cloudinary.Cloudinary
	jwtSecret string
	logger    *slog.Logger
}

func NewUserService(users models.UserRepo, mail mailer.Mailer, cld *cloudinary.Cloudinary, jwtSecret string, logger *slog.Logger) *UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{users: users, mail: mail, cld: cld, jwtSecret: jwtSecret, logger: logger}
}

type RegisterInput struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register creates an unverified account and sends a confirmation email.
// Mail delivery failure is logged but does not fail registration.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	input.Name = helpers.StringTrim(input.Name)
	input.Email = strings.ToLower(helpers.StringTrim(input.Email))

	if input.Name == "" || input.Email == "" {
		return nil, apperr.BadRequest("name and email are required")
	}
	if !helpers.IsPasswordStrong(input.Password) {
		return nil, apperr.BadRequest("password must be at least 8 characters with upper, lower and numeric characters")
	}

	existing, err := s.users.GetUserByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Conflict("email already in use")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	token, err := helpers.GenerateToken()
	if err != nil {
		return nil, err
	}
	expires := time.Now().Add(confirmationTokenTTL)

	user := &models.User{
		Name:                     input.Name,
		Email:                    input.Email,
		Password:                 string(hashed),
		ConfirmationToken:        token,
		ConfirmationTokenExpires: &expires,
		CreatedAt:                time.Now(),
		UpdatedAt:                time.Now(),
	}

	created, err := s.users.CreateUser(ctx, user)
	if err != nil {
		return nil, err
	}

	if s.mail != nil {
		if err := s.mail.SendConfirmationEmail(created.Email, created.Name, token); err != nil {
			s.logger.Error("failed to send confirmation email", "error", err, "email", created.Email)
		}
	}
	return created, nil
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login checks credentials and returns the user with a signed token. Accounts
// created through OAuth skip the email verification requirement.
func (s *UserService) Login(ctx context.Context, input LoginInput) (*models.User, string, error) {
	user, err := s.users.GetUserByEmail(ctx, input.Email)
	if err != nil {
		return nil, "", err
	}
	if user == nil || user.Password == "" {
		return nil, "", apperr.Unauthorized("invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		return nil, "", apperr.Unauthorized("invalid email or password")
	}
	if !user.IsEmailVerified && user.GoogleID == "" {
		return nil, "", apperr.Forbidden("please verify your email before logging in")
	}

	token, err := helpers.SignToken(s.jwtSecret, user.ID.Hex(), user.Role)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// VerifyEmail consumes a confirmation token and marks the account verified.
func (s *UserService) VerifyEmail(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, apperr.BadRequest("verification token is required")
	}

	user, err := s.users.GetUserByConfirmationToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.BadRequest("invalid or expired verification token")
	}
	if user.ConfirmationTokenExpires != nil && user.ConfirmationTokenExpires.Before(time.Now()) {
		return nil, apperr.BadRequest("invalid or expired verification token")
	}

	updated, err := s.users.UpdateUser(ctx, user.ID, bson.M{"isEmailVerified": true})
	if err != nil {
		return nil, err
	}
	if err := s.users.UnsetUserFields(ctx, user.ID, "confirmationToken", "confirmationTokenExpires"); err != nil {
		s.logger.Error("failed to clear confirmation token", "error", err, "userId", user.ID.Hex())
	}
	return updated, nil
}

// ResendVerification issues a fresh confirmation token. It answers the same
// way whether or not the account exists so addresses cannot be probed.
func (s *UserService) ResendVerification(ctx context.Context, email string) error {
	email = strings.ToLower(helpers.StringTrim(email))
	if email == "" {
		return apperr.BadRequest("email is required")
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil || user.IsEmailVerified {
		return nil
	}

	token, err := helpers.GenerateToken()
	if err != nil {
		return err
	}
	expires := time.Now().Add(confirmationTokenTTL)
	if _, err := s.users.UpdateUser(ctx, user.ID, bson.M{
		"confirmationToken":        token,
		"confirmationTokenExpires": expires,
	}); err != nil {
		return err
	}

	if s.mail != nil {
		if err := s.mail.SendConfirmationEmail(user.Email, user.Name, token); err != nil {
			s.logger.Error("failed to send confirmation email", "error", err, "email", user.Email)
		}
	}
	return nil
}

// ForgotPassword issues a reset token without revealing account existence.
func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	email = strings.ToLower(helpers.StringTrim(email))
	if email == "" {
		return apperr.BadRequest("email is required")
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}

	token, err := helpers.GenerateToken()
	if err != nil {
		return err
	}
	expires := time.Now().Add(resetTokenTTL)
	if _, err := s.users.UpdateUser(ctx, user.ID, bson.M{
		"resetPasswordToken":   token,
		"resetPasswordExpires": expires,
	}); err != nil {
		return err
	}

	if s.mail != nil {
		if err := s.mail.SendPasswordResetEmail(user.Email, user.Name, token); err != nil {
			s.logger.Error("failed to send password reset email", "error", err, "email", user.Email)
		}
	}
	return nil
}

// ResetPassword consumes a reset token and stores the new password.
func (s *UserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return apperr.BadRequest("reset token is required")
	}
	if !helpers.IsPasswordStrong(newPassword) {
		return apperr.BadRequest("password must be at least 8 characters with upper, lower and numeric characters")
	}

	user, err := s.users.GetUserByResetToken(ctx, token)
	if err != nil {
		return err
	}
	if user == nil {
		return apperr.BadRequest("invalid or expired reset token")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if _, err := s.users.UpdateUser(ctx, user.ID, bson.M{"password": string(hashed)}); err != nil {
		return err
	}
	if err := s.users.UnsetUserFields(ctx, user.ID, "resetPasswordToken", "resetPasswordExpires"); err != nil {
		s.logger.Error("failed to clear reset token", "error", err, "userId", user.ID.Hex())
	}
	return nil
}

// GetProfile returns the user by id.
func (s *UserService) GetProfile(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.NotFound("user not found")
	}
	return user, nil
}

type UpdateProfileInput struct {
	Name   string `json:"name"`
	Bio    string `json:"bio"`
	Avatar string `json:"avatar"`
}

// UpdateProfile applies partial profile edits. A new avatar is uploaded to
// image hosting before the URL is stored.
func (s *UserService) UpdateProfile(ctx context.Context, id primitive.ObjectID, input UpdateProfileInput) (*models.User, error) {
	update := bson.M{}
	if name := helpers.StringTrim(input.Name); name != "" {
		update["name"] = name
	}
	if input.Bio != "" {
		update["bio"] = helpers.StringTrim(input.Bio)
	}
	if input.Avatar != "" {
		url, err := helpers.UploadImage(ctx, s.cld, input.Avatar, helpers.AvatarFolder)
		if err != nil {
			return nil, err
		}
		update["avatar"] = url
	}
	if len(update) == 0 {
		return nil, apperr.BadRequest("no fields to update")
	}

	updated, err := s.users.UpdateUser(ctx, id, update)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperr.NotFound("user not found")
	}
	return updated, nil
}

// UpsertOAuthUser links or creates an account from a completed OAuth flow and
// returns the user with a signed token. OAuth emails count as verified.
func (s *UserService) UpsertOAuthUser(ctx context.Context, gothUser goth.User) (*models.User, string, error) {
	if gothUser.Email == "" {
		return nil, "", apperr.BadRequest("oauth provider did not supply an email")
	}
	email := strings.ToLower(helpers.StringTrim(gothUser.Email))

	user, err := s.users.GetUserByGoogleID(ctx, gothUser.UserID)
	if err != nil {
		return nil, "", err
	}

	if user == nil {
		user, err = s.users.GetUserByEmail(ctx, email)
		if err != nil {
			return nil, "", err
		}
		if user != nil {
			// Existing local account logging in with Google for the first time.
			user, err = s.users.UpdateUser(ctx, user.ID, bson.M{
				"googleId":        gothUser.UserID,
				"isEmailVerified": true,
			})
			if err != nil {
				return nil, "", err
			}
		}
	}

	if user == nil {
		name := helpers.StringTrim(gothUser.Name)
		if name == "" {
			name = email
		}
		user, err = s.users.CreateUser(ctx, &models.User{
			Name:            name,
			Email:           email,
			Avatar:          gothUser.AvatarURL,
			GoogleID:        gothUser.UserID,
			IsEmailVerified: true,
			CreatedAt:       time.Now(),
			UpdatedAt:       time.Now(),
		})
		if err != nil {
			return nil, "", err
		}
	}

	token, err := helpers.SignToken(s.jwtSecret, user.ID.Hex(), user.Role)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}
