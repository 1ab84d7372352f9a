package mongo

import (
	"context"
	"time"

	"alcyxob/trainlog/internal/domain"
	"alcyxob/trainlog/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const setLogCollectionName = "set_logs"

// mongoSetLogRepository implements repository.SetLogRepository
type mongoSetLogRepository struct {
	collection *mongo.Collection
}

func NewMongoSetLogRepository(db *mongo.Database) repository.SetLogRepository {
	return &mongoSetLogRepository{
		collection: db.Collection(setLogCollectionName),
	}
}

// Upsert writes the log keyed on (sessionExerciseId, setIndex). Two concurrent
// upserts of a new key can race on the unique index; the loser is retried once
// and then matches the winner's document.
func (r *mongoSetLogRepository) Upsert(ctx context.Context, log *domain.SetLog) (*domain.SetLog, error) {
	saved, err := r.upsert(ctx, log)
	if mongo.IsDuplicateKeyError(err) {
		saved, err = r.upsert(ctx, log)
	}
	return saved, err
}

func (r *mongoSetLogRepository) upsert(ctx context.Context, log *domain.SetLog) (*domain.SetLog, error) {
	now := time.Now().UTC()
	filter := bson.M{
		"sessionExerciseId": log.SessionExerciseID,
		"setIndex":          log.SetIndex,
	}
	update := bson.M{
		"$set": bson.M{
			"reps":           log.Reps,
			"weight":         log.Weight,
			"unit":           log.Unit,
			"durationSec":    log.DurationSec,
			"distanceMeters": log.DistanceMeters,
			"rpe":            log.RPE,
			"completed":      log.Completed,
			"notes":          log.Notes,
			"updatedAt":      now,
		},
		"$setOnInsert": bson.M{
			"_id":       primitive.NewObjectID(),
			"createdAt": now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var saved domain.SetLog
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *mongoSetLogRepository) ListBySessionExerciseIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.SetLog, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "setIndex", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"sessionExerciseId": bson.M{"$in": idsOrEmpty(ids)}}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	logs := []domain.SetLog{}
	if err = cursor.All(ctx, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *mongoSetLogRepository) DeleteBySessionExerciseIDs(ctx context.Context, ids []primitive.ObjectID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.collection.DeleteMany(ctx, bson.M{"sessionExerciseId": bson.M{"$in": ids}})
	return err
}

// EnsureSetLogIndexes creates the unique (sessionExerciseId, setIndex) index the upsert relies on.
func EnsureSetLogIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "sessionExerciseId", Value: 1}, {Key: "setIndex", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
