package models

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UserRepo interface {
	CreateUser(ctx context.Context, user *User) (*User, error)
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByGoogleID(ctx context.Context, googleID string) (*User, error)
	GetUserByConfirmationToken(ctx context.Context, token string) (*User, error)
	GetUserByResetToken(ctx context.Context, token string) (*User, error)
	UpdateUser(ctx context.Context, id primitive.ObjectID, update bson.M) (*User, error)
	UnsetUserFields(ctx context.Context, id primitive.ObjectID, fields ...string) error
}

func (mdb *MongodbRepo) CreateUser(ctx context.Context, user *User) (*User, error) {
	if err := user.BeforeCreate(); err != nil {
		return nil, fmt.Errorf("failed to prepare user for creation: %w", err)
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))

	col, err := mdb.GetCollection(ctx, UserColName)
	if err != nil {
		return nil, err
	}
	if _, err := col.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("email already in use")
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	return user, nil
}

func (mdb *MongodbRepo) findUser(ctx context.Context, filter bson.M) (*User, error) {
	col, err := mdb.GetCollection(ctx, UserColName)
	if err != nil {
		return nil, err
	}

	var user User
	err = col.FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

func (mdb *MongodbRepo) GetUserByID(ctx context.Context, id primitive.ObjectID) (*User, error) {
	return mdb.findUser(ctx, bson.M{"_id": id})
}

func (mdb *MongodbRepo) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return mdb.findUser(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))})
}

func (mdb *MongodbRepo) GetUserByGoogleID(ctx context.Context, googleID string) (*User, error) {
	return mdb.findUser(ctx, bson.M{"googleId": googleID})
}

func (mdb *MongodbRepo) GetUserByConfirmationToken(ctx context.Context, token string) (*User, error) {
	return mdb.findUser(ctx, bson.M{"confirmationToken": token})
}

func (mdb *MongodbRepo) GetUserByResetToken(ctx context.Context, token string) (*User, error) {
	return mdb.findUser(ctx, bson.M{
		"resetPasswordToken":   token,
		"resetPasswordExpires": bson.M{"$gt": time.Now()},
	})
}

func (mdb *MongodbRepo) UpdateUser(ctx context.Context, id primitive.ObjectID, update bson.M) (*User, error) {
	col, err := mdb.GetCollection(ctx, UserColName)
	if err != nil {
		return nil, err
	}

	update["updatedAt"] = time.Now()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated User
	err = col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": update}, opts).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return &updated, nil
}

// UnsetUserFields clears one-shot token fields after they are consumed.
func (mdb *MongodbRepo) UnsetUserFields(ctx context.Context, id primitive.ObjectID, fields ...string) error {
	col, err := mdb.GetCollection(ctx, UserColName)
	if err != nil {
		return err
	}

	unset := bson.M{}
	for _, f := range fields {
		unset[f] = ""
	}
	update := bson.M{"$unset": unset, "$set": bson.M{"updatedAt": time.Now()}}
	if _, err := col.UpdateOne(ctx, bson.M{"_id": id}, update); err != nil {
		return fmt.Errorf("failed to unset user fields: %w", err)
	}
	return nil
}
