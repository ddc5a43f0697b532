package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/musa-app/musa-api/internal/models"
)

// In-memory repositories for service tests. Filters are interpreted just far
// enough to cover the queries the services actually issue.

type fakeSpotRepo struct {
	spots map[primitive.ObjectID]*models.Spot

	lastFilter bson.M
	ratings    map[primitive.ObjectID]models.Rating
}

func newFakeSpotRepo() *fakeSpotRepo {
	return &fakeSpotRepo{
		spots:   map[primitive.ObjectID]*models.Spot{},
		ratings: map[primitive.ObjectID]models.Rating{},
	}
}

func (f *fakeSpotRepo) CreateSpot(_ context.Context, spot *models.Spot) (*models.Spot, error) {
	if err := spot.BeforeCreate(); err != nil {
		return nil, err
	}
	f.spots[spot.ID] = spot
	return spot, nil
}

func (f *fakeSpotRepo) GetSpotByID(_ context.Context, id primitive.ObjectID) (*models.Spot, error) {
	return f.spots[id], nil
}

func (f *fakeSpotRepo) FindSpots(_ context.Context, filter bson.M, _ *options.FindOptions) ([]*models.Spot, error) {
	f.lastFilter = filter
	out := []*models.Spot{}
	for _, spot := range f.spots {
		if approved, ok := filter["isApproved"].(bool); ok && spot.IsApproved != approved {
			continue
		}
		out = append(out, spot)
	}
	return out, nil
}

func (f *fakeSpotRepo) UpdateSpot(_ context.Context, id primitive.ObjectID, update bson.M) (*models.Spot, error) {
	spot, ok := f.spots[id]
	if !ok {
		return nil, nil
	}
	if approved, ok := update["isApproved"].(bool); ok {
		spot.IsApproved = approved
	}
	if name, ok := update["name"].(string); ok {
		spot.Name = name
	}
	spot.UpdatedAt = time.Now()
	return spot, nil
}

func (f *fakeSpotRepo) DeleteSpot(_ context.Context, id primitive.ObjectID) error {
	delete(f.spots, id)
	return nil
}

func (f *fakeSpotRepo) SetApproval(ctx context.Context, id primitive.ObjectID, approved bool) (*models.Spot, error) {
	return f.UpdateSpot(ctx, id, bson.M{"isApproved": approved})
}

func (f *fakeSpotRepo) UpdateRating(_ context.Context, id primitive.ObjectID, average float64, count int) error {
	rating := models.Rating{Average: average, Count: count}
	f.ratings[id] = rating
	if spot, ok := f.spots[id]; ok {
		spot.Rating = rating
	}
	return nil
}

type fakeUGCRepo struct {
	contents map[primitive.ObjectID]*models.UGContent
}

func newFakeUGCRepo() *fakeUGCRepo {
	return &fakeUGCRepo{contents: map[primitive.ObjectID]*models.UGContent{}}
}

func (f *fakeUGCRepo) CreateUGContent(_ context.Context, content *models.UGContent) (*models.UGContent, error) {
	if err := content.ValidateUGContent(); err != nil {
		return nil, err
	}
	if err := content.BeforeCreate(); err != nil {
		return nil, err
	}
	f.contents[content.ID] = content
	return content, nil
}

func (f *fakeUGCRepo) GetUGContentByID(_ context.Context, id primitive.ObjectID) (*models.UGContent, error) {
	return f.contents[id], nil
}

func (f *fakeUGCRepo) FindUGContent(_ context.Context, filter bson.M) ([]*models.UGContent, error) {
	out := []*models.UGContent{}
	for _, content := range f.contents {
		if spotID, ok := filter["spot"].(primitive.ObjectID); ok && content.Spot != spotID {
			continue
		}
		if userID, ok := filter["user"].(primitive.ObjectID); ok && content.User != userID {
			continue
		}
		if typ, ok := filter["type"].(string); ok && content.Type != typ {
			continue
		}
		if approved, ok := filter["isApproved"].(bool); ok && content.IsApproved != approved {
			continue
		}
		out = append(out, content)
	}
	return out, nil
}

func (f *fakeUGCRepo) UpdateUGContent(_ context.Context, id primitive.ObjectID, update bson.M) (*models.UGContent, error) {
	content, ok := f.contents[id]
	if !ok {
		return nil, nil
	}
	if text, ok := update["content"].(string); ok {
		content.Content = text
	}
	if rating, ok := update["rating"].(int); ok {
		content.Rating = rating
	}
	if approved, ok := update["isApproved"].(bool); ok {
		content.IsApproved = approved
	}
	content.UpdatedAt = time.Now()
	return content, nil
}

func (f *fakeUGCRepo) DeleteUGContent(_ context.Context, id primitive.ObjectID) error {
	delete(f.contents, id)
	return nil
}

func (f *fakeUGCRepo) ListReviewsBySpot(ctx context.Context, spotID primitive.ObjectID) ([]*models.UGContent, error) {
	return f.FindUGContent(ctx, bson.M{"spot": spotID, "type": models.UGCTypeReview})
}

func (f *fakeUGCRepo) ToggleLike(_ context.Context, id, userID primitive.ObjectID) (*models.UGContent, error) {
	content, ok := f.contents[id]
	if !ok {
		return nil, nil
	}
	if content.IsLikedBy(userID) {
		kept := content.LikedBy[:0]
		for _, liker := range content.LikedBy {
			if liker != userID {
				kept = append(kept, liker)
			}
		}
		content.LikedBy = kept
		content.Likes--
	} else {
		content.LikedBy = append(content.LikedBy, userID)
		content.Likes++
	}
	return content, nil
}

type fakeUserRepo struct {
	users map[primitive.ObjectID]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[primitive.ObjectID]*models.User{}}
}

func (f *fakeUserRepo) CreateUser(_ context.Context, user *models.User) (*models.User, error) {
	if err := user.BeforeCreate(); err != nil {
		return nil, err
	}
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return nil, fmt.Errorf("email already in use")
		}
	}
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUserRepo) GetUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	return f.users[id], nil
}

func (f *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	email = strings.ToLower(email)
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) GetUserByGoogleID(_ context.Context, googleID string) (*models.User, error) {
	for _, user := range f.users {
		if user.GoogleID != "" && user.GoogleID == googleID {
			return user, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) GetUserByConfirmationToken(_ context.Context, token string) (*models.User, error) {
	for _, user := range f.users {
		if user.ConfirmationToken != "" && user.ConfirmationToken == token {
			return user, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) GetUserByResetToken(_ context.Context, token string) (*models.User, error) {
	for _, user := range f.users {
		if user.ResetPasswordToken == "" || user.ResetPasswordToken != token {
			continue
		}
		if user.ResetPasswordExpires != nil && user.ResetPasswordExpires.Before(time.Now()) {
			continue
		}
		return user, nil
	}
	return nil, nil
}

func (f *fakeUserRepo) UpdateUser(_ context.Context, id primitive.ObjectID, update bson.M) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	if verified, ok := update["isEmailVerified"].(bool); ok {
		user.IsEmailVerified = verified
	}
	if name, ok := update["name"].(string); ok {
		user.Name = name
	}
	if bio, ok := update["bio"].(string); ok {
		user.Bio = bio
	}
	if password, ok := update["password"].(string); ok {
		user.Password = password
	}
	if googleID, ok := update["googleId"].(string); ok {
		user.GoogleID = googleID
	}
	if token, ok := update["confirmationToken"].(string); ok {
		user.ConfirmationToken = token
	}
	if expires, ok := update["confirmationTokenExpires"].(time.Time); ok {
		user.ConfirmationTokenExpires = &expires
	}
	if token, ok := update["resetPasswordToken"].(string); ok {
		user.ResetPasswordToken = token
	}
	if expires, ok := update["resetPasswordExpires"].(time.Time); ok {
		user.ResetPasswordExpires = &expires
	}
	user.UpdatedAt = time.Now()
	return user, nil
}

func (f *fakeUserRepo) UnsetUserFields(_ context.Context, id primitive.ObjectID, fields ...string) error {
	user, ok := f.users[id]
	if !ok {
		return nil
	}
	for _, field := range fields {
		switch field {
		case "confirmationToken":
			user.ConfirmationToken = ""
		case "confirmationTokenExpires":
			user.ConfirmationTokenExpires = nil
		case "resetPasswordToken":
			user.ResetPasswordToken = ""
		case "resetPasswordExpires":
			user.ResetPasswordExpires = nil
		}
	}
	return nil
}

type fakeMailer struct {
	confirmations map[string]string
	resets        map[string]string
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{confirmations: map[string]string{}, resets: map[string]string{}}
}

func (f *fakeMailer) SendConfirmationEmail(to, _, token string) error {
	f.confirmations[to] = token
	return nil
}

func (f *fakeMailer) SendPasswordResetEmail(to, _, token string) error {
	f.resets[to] = token
	return nil
}
