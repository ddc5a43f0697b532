package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UGCRepo interface {
	CreateUGContent(ctx context.Context, content *UGContent) (*UGContent, error)
	GetUGContentByID(ctx context.Context, id primitive.ObjectID) (*UGContent, error)
	FindUGContent(ctx context.Context, filter bson.M) ([]*UGContent, error)
	UpdateUGContent(ctx context.Context, id primitive.ObjectID, update bson.M) (*UGContent, error)
	DeleteUGContent(ctx context.Context, id primitive.ObjectID) error
	ListReviewsBySpot(ctx context.Context, spotID primitive.ObjectID) ([]*UGContent, error)
	ToggleLike(ctx context.Context, id, userID primitive.ObjectID) (*UGContent, error)
}

func (mdb *MongodbRepo) CreateUGContent(ctx context.Context, content *UGContent) (*UGContent, error) {
	if err := content.ValidateUGContent(); err != nil {
		return nil, fmt.Errorf("invalid content data: %w", err)
	}
	if err := content.BeforeCreate(); err != nil {
		return nil, fmt.Errorf("failed to prepare content for creation: %w", err)
	}

	col, err := mdb.GetCollection(ctx, UGCColName)
	if err != nil {
		return nil, err
	}
	if _, err := col.InsertOne(ctx, content); err != nil {
		return nil, fmt.Errorf("failed to insert content: %w", err)
	}
	return content, nil
}

func (mdb *MongodbRepo) GetUGContentByID(ctx context.Context, id primitive.ObjectID) (*UGContent, error) {
	col, err := mdb.GetCollection(ctx, UGCColName)
	if err != nil {
		return nil, err
	}

	var content UGContent
	err = col.FindOne(ctx, bson.M{"_id": id}).Decode(&content)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find content: %w", err)
	}
	return &content, nil
}

func (mdb *MongodbRepo) FindUGContent(ctx context.Context, filter bson.M) ([]*UGContent, error) {
	col, err := mdb.GetCollection(ctx, UGCColName)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query contents: %w", err)
	}
	defer cursor.Close(ctx)

	contents := []*UGContent{}
	for cursor.Next(ctx) {
		var content UGContent
		if err := cursor.Decode(&content); err != nil {
			return nil, fmt.Errorf("failed to decode content: %w", err)
		}
		contents = append(contents, &content)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return contents, nil
}

func (mdb *MongodbRepo) UpdateUGContent(ctx context.Context, id primitive.ObjectID, update bson.M) (*UGContent, error) {
	col, err := mdb.GetCollection(ctx, UGCColName)
	if err != nil {
		return nil, err
	}

	update["updatedAt"] = time.Now()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated UGContent
	err = col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": update}, opts).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update content: %w", err)
	}
	return &updated, nil
}

func (mdb *MongodbRepo) DeleteUGContent(ctx context.Context, id primitive.ObjectID) error {
	col, err := mdb.GetCollection(ctx, UGCColName)
	if err != nil {
		return err
	}
	if _, err := col.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("failed to delete content: %w", err)
	}
	return nil
}

// ListReviewsBySpot returns every review feeding a spot's rating aggregate.
// Moderation state is deliberately ignored; approval controls visibility,
// not the mean.
func (mdb *MongodbRepo) ListReviewsBySpot(ctx context.Context, spotID primitive.ObjectID) ([]*UGContent, error) {
	return mdb.FindUGContent(ctx, bson.M{"spot": spotID, "type": UGCTypeReview})
}

// ToggleLike adds the user to likedBy or removes them if already present,
// keeping the likes counter in sync.
func (mdb *MongodbRepo) ToggleLike(ctx context.Context, id, userID primitive.ObjectID) (*UGContent, error) {
	content, err := mdb.GetUGContentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if content == nil {
		return nil, nil
	}

	col, err := mdb.GetCollection(ctx, UGCColName)
	if err != nil {
		return nil, err
	}

	var update bson.M
	if content.IsLikedBy(userID) {
		update = bson.M{
			"$pull": bson.M{"likedBy": userID},
			"$inc":  bson.M{"likes": -1},
			"$set":  bson.M{"updatedAt": time.Now()},
		}
	} else {
		update = bson.M{
			"$addToSet": bson.M{"likedBy": userID},
			"$inc":      bson.M{"likes": 1},
			"$set":      bson.M{"updatedAt": time.Now()},
		}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated UGContent
	if err := col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&updated); err != nil {
		return nil, fmt.Errorf("failed to toggle like: %w", err)
	}
	return &updated, nil
}
