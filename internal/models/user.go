package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name     string             `bson:"name" json:"name" validate:"required"`
	Email    string             `bson:"email" json:"email" validate:"required,email"`
	Password string             `bson:"password,omitempty" json:"-"`
	Role     string             `bson:"role" json:"role"`
	Bio      string             `bson:"bio" json:"bio"`
	Avatar   string             `bson:"avatar" json:"avatar"`
	// Set for accounts created through Google OAuth; such accounts may have
	// no password at all.
	GoogleID        string `bson:"googleId,omitempty" json:"googleId,omitempty"`
	IsEmailVerified bool   `bson:"isEmailVerified" json:"isEmailVerified"`

	ConfirmationToken        string     `bson:"confirmationToken,omitempty" json:"-"`
	ConfirmationTokenExpires *time.Time `bson:"confirmationTokenExpires,omitempty" json:"-"`
	ResetPasswordToken       string     `bson:"resetPasswordToken,omitempty" json:"-"`
	ResetPasswordExpires     *time.Time `bson:"resetPasswordExpires,omitempty" json:"-"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) BeforeCreate() error {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
