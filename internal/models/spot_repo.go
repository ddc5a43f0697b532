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

type SpotRepo interface {
	CreateSpot(ctx context.Context, spot *Spot) (*Spot, error)
	GetSpotByID(ctx context.Context, id primitive.ObjectID) (*Spot, error)
	FindSpots(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*Spot, error)
	UpdateSpot(ctx context.Context, id primitive.ObjectID, update bson.M) (*Spot, error)
	DeleteSpot(ctx context.Context, id primitive.ObjectID) error
	SetApproval(ctx context.Context, id primitive.ObjectID, approved bool) (*Spot, error)
	UpdateRating(ctx context.Context, id primitive.ObjectID, average float64, count int) error
}

func (mdb *MongodbRepo) CreateSpot(ctx context.Context, spot *Spot) (*Spot, error) {
	if err := spot.BeforeCreate(); err != nil {
		return nil, fmt.Errorf("failed to prepare spot for creation: %w", err)
	}

	col, err := mdb.GetCollection(ctx, SpotColName)
	if err != nil {
		return nil, err
	}

	if _, err := col.InsertOne(ctx, spot); err != nil {
		return nil, fmt.Errorf("failed to insert spot: %w", err)
	}
	return spot, nil
}

func (mdb *MongodbRepo) GetSpotByID(ctx context.Context, id primitive.ObjectID) (*Spot, error) {
	col, err := mdb.GetCollection(ctx, SpotColName)
	if err != nil {
		return nil, err
	}

	var spot Spot
	err = col.FindOne(ctx, bson.M{"_id": id}).Decode(&spot)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find spot: %w", err)
	}
	return &spot, nil
}

func (mdb *MongodbRepo) FindSpots(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*Spot, error) {
	col, err := mdb.GetCollection(ctx, SpotColName)
	if err != nil {
		return nil, err
	}

	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query spots: %w", err)
	}
	defer cursor.Close(ctx)

	spots := []*Spot{}
	for cursor.Next(ctx) {
		var spot Spot
		if err := cursor.Decode(&spot); err != nil {
			return nil, fmt.Errorf("failed to decode spot: %w", err)
		}
		spots = append(spots, &spot)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return spots, nil
}

func (mdb *MongodbRepo) UpdateSpot(ctx context.Context, id primitive.ObjectID, update bson.M) (*Spot, error) {
	col, err := mdb.GetCollection(ctx, SpotColName)
	if err != nil {
		return nil, err
	}

	update["updatedAt"] = time.Now()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated Spot
	err = col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": update}, opts).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update spot: %w", err)
	}
	return &updated, nil
}

func (mdb *MongodbRepo) DeleteSpot(ctx context.Context, id primitive.ObjectID) error {
	col, err := mdb.GetCollection(ctx, SpotColName)
	if err != nil {
		return err
	}
	if _, err := col.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("failed to delete spot: %w", err)
	}
	return nil
}

func (mdb *MongodbRepo) SetApproval(ctx context.Context, id primitive.ObjectID, approved bool) (*Spot, error) {
	return mdb.UpdateSpot(ctx, id, bson.M{"isApproved": approved})
}

// UpdateRating persists recomputed aggregate rating fields; these are owned
// by the rating recomputation and never written by clients directly.
func (mdb *MongodbRepo) UpdateRating(ctx context.Context, id primitive.ObjectID, average float64, count int) error {
	col, err := mdb.GetCollection(ctx, SpotColName)
	if err != nil {
		return err
	}

	update := bson.M{"$set": bson.M{
		"rating.average": average,
		"rating.count":   count,
		"updatedAt":      time.Now(),
	}}
	if _, err := col.UpdateOne(ctx, bson.M{"_id": id}, update); err != nil {
		return fmt.Errorf("failed to update spot rating: %w", err)
	}
	return nil
}
