package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/musa-app/musa-api/internal/helpers"
)

const (
	UGCTypeReview  = "review"
	UGCTypeComment = "comment"
	UGCTypePhoto   = "photo"
)

var UGCTypes = []string{UGCTypeReview, UGCTypeComment, UGCTypePhoto}

type UGContent struct {
	ID         primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Type       string               `bson:"type" json:"type" validate:"required"`
	Spot       primitive.ObjectID   `bson:"spot" json:"spot"`
	User       primitive.ObjectID   `bson:"user" json:"user"`
	Content    string               `bson:"content,omitempty" json:"content,omitempty"`
	Rating     int                  `bson:"rating,omitempty" json:"rating,omitempty"`
	ImageURL   string               `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	IsApproved bool                 `bson:"isApproved" json:"isApproved"`
	Tags       []string             `bson:"tags" json:"tags"`
	Likes      int                  `bson:"likes" json:"likes"`
	LikedBy    []primitive.ObjectID `bson:"likedBy" json:"likedBy"`
	CreatedAt  time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time            `bson:"updatedAt" json:"updatedAt"`
}

func (u *UGContent) BeforeCreate() error {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	return nil
}

func (u UGContent) ValidateUGContent() error {
	if !contains(UGCTypes, u.Type) {
		return fmt.Errorf("invalid content type: must be one of review, comment, photo")
	}
	if u.Spot.IsZero() {
		return fmt.Errorf("invalid spot ID")
	}
	if u.User.IsZero() {
		return fmt.Errorf("invalid user ID")
	}

	switch u.Type {
	case UGCTypeReview:
		if u.Content == "" {
			return fmt.Errorf("content is required for reviews")
		}
		if u.Rating < 1 || u.Rating > 5 {
			return fmt.Errorf("rating must be between 1 and 5")
		}
	case UGCTypeComment:
		if u.Content == "" {
			return fmt.Errorf("content is required for comments")
		}
		if u.Rating != 0 {
			return fmt.Errorf("rating is only allowed on reviews")
		}
	case UGCTypePhoto:
		if u.ImageURL == "" {
			return fmt.Errorf("imageUrl is required for photos")
		}
		if u.Rating != 0 {
			return fmt.Errorf("rating is only allowed on reviews")
		}
	}
	return nil
}

func (u *UGContent) Sanitize() {
	u.Content = helpers.StringTrim(u.Content)
	u.Tags = helpers.RemoveDuplicates(u.Tags)
}

func (u UGContent) IsLikedBy(userID primitive.ObjectID) bool {
	for _, id := range u.LikedBy {
		if id == userID {
			return true
		}
	}
	return false
}
