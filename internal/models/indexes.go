package models

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the queries rely on. CreateMany is
// idempotent, so this runs unconditionally at startup.
func (mdb *MongodbRepo) EnsureIndexes(ctx context.Context) error {
	userCol, err := mdb.GetCollection(ctx, UserColName)
	if err != nil {
		return err
	}
	if _, err := userCol.Indexes().CreateMany(ctx, userIndexModels()); err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}

	spotCol, err := mdb.GetCollection(ctx, SpotColName)
	if err != nil {
		return err
	}
	if _, err := spotCol.Indexes().CreateMany(ctx, spotIndexModels()); err != nil {
		return fmt.Errorf("failed to create spot indexes: %w", err)
	}

	ugcCol, err := mdb.GetCollection(ctx, UGCColName)
	if err != nil {
		return err
	}
	if _, err := ugcCol.Indexes().CreateMany(ctx, ugcIndexModels()); err != nil {
		return fmt.Errorf("failed to create content indexes: %w", err)
	}
	return nil
}

// The unique email index backs the duplicate-key check in CreateUser; the
// read-then-insert check in registration is only a friendlier first line.
func userIndexModels() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "googleId", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}
}

func spotIndexModels() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "location.coordinates", Value: "2dsphere"}},
		},
		{
			Keys: bson.D{{Key: "isApproved", Value: 1}, {Key: "createdAt", Value: -1}},
		},
	}
}

func ugcIndexModels() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "spot", Value: 1}, {Key: "type", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "user", Value: 1}},
		},
	}
}
