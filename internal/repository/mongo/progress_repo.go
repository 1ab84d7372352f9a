package mongo

import (
	"context"
	"sort"
	"time"

	"alcyxob/trainlog/internal/domain"
	"alcyxob/trainlog/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// mongoProgressRepository reads exercise history with a single aggregation over
// session_exercises joined to sessions and set_logs.
type mongoProgressRepository struct {
	sessionExercises *mongo.Collection
}

func NewMongoProgressRepository(db *mongo.Database) repository.ProgressRepository {
	return &mongoProgressRepository{
		sessionExercises: db.Collection(sessionExerciseCollectionName),
	}
}

type historyRow struct {
	SessionID          primitive.ObjectID   `bson:"_id"`
	Date               time.Time            `bson:"date"`
	SessionExerciseIDs []primitive.ObjectID `bson:"sessionExerciseIds"`
	SetLogs            [][]domain.SetLog    `bson:"setLogs"`
}

func (r *mongoProgressRepository) ExerciseHistory(ctx context.Context, ownerID, exerciseID primitive.ObjectID, limit int) ([]domain.ExerciseSessionLogs, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"exerciseId": exerciseID}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         sessionCollectionName,
			"localField":   "sessionId",
			"foreignField": "_id",
			"as":           "session",
		}}},
		{{Key: "$unwind", Value: "$session"}},
		{{Key: "$match", Value: bson.M{"session.ownerId": ownerID}}},
		{{Key: "$lookup", Value: bson.M{
			"from": setLogCollectionName,
			"let":  bson.M{"seId": "$_id"},
			"pipeline": bson.A{
				bson.M{"$match": bson.M{"$expr": bson.M{"$eq": bson.A{"$sessionExerciseId", "$$seId"}}}},
				bson.M{"$sort": bson.M{"setIndex": 1}},
			},
			"as": "setLogs",
		}}},
		// A session may list the exercise more than once; fold those into one entry.
		{{Key: "$group", Value: bson.M{
			"_id":                "$sessionId",
			"date":               bson.M{"$first": "$session.date"},
			"sessionExerciseIds": bson.M{"$push": "$_id"},
			"setLogs":            bson.M{"$push": "$setLogs"},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: -1}}}},
	}
	if limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: limit}})
	}

	cursor, err := r.sessionExercises.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []historyRow
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	history := make([]domain.ExerciseSessionLogs, 0, len(rows))
	for _, row := range rows {
		entry := domain.ExerciseSessionLogs{
			SessionID: row.SessionID,
			Date:      row.Date,
			SetLogs:   []domain.SetLog{},
		}
		if len(row.SessionExerciseIDs) > 0 {
			entry.SessionExerciseID = row.SessionExerciseIDs[0]
		}
		for _, logs := range row.SetLogs {
			entry.SetLogs = append(entry.SetLogs, logs...)
		}
		sort.SliceStable(entry.SetLogs, func(i, j int) bool {
			return entry.SetLogs[i].SetIndex < entry.SetLogs[j].SetIndex
		})
		history = append(history, entry)
	}
	return history, nil
}
