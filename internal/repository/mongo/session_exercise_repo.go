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

const sessionExerciseCollectionName = "session_exercises"

// mongoSessionExerciseRepository implements repository.SessionExerciseRepository
type mongoSessionExerciseRepository struct {
	collection *mongo.Collection
}

func NewMongoSessionExerciseRepository(db *mongo.Database) repository.SessionExerciseRepository {
	return &mongoSessionExerciseRepository{
		collection: db.Collection(sessionExerciseCollectionName),
	}
}

func (r *mongoSessionExerciseRepository) Create(ctx context.Context, se *domain.SessionExercise) (primitive.ObjectID, error) {
	se.ID = primitive.NewObjectID()
	se.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, se)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return insertedObjectID(result)
}

// CreateMany inserts all rows in one round trip, assigning their IDs.
func (r *mongoSessionExerciseRepository) CreateMany(ctx context.Context, items []*domain.SessionExercise) error {
	if len(items) == 0 {
		return nil
	}
	now := time.Now().UTC()
	docs := make([]interface{}, len(items))
	for i, se := range items {
		se.ID = primitive.NewObjectID()
		se.CreatedAt = now
		docs[i] = se
	}
	_, err := r.collection.InsertMany(ctx, docs)
	return err
}

func (r *mongoSessionExerciseRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.SessionExercise, error) {
	var se domain.SessionExercise
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&se); err != nil {
		return nil, notFound(err)
	}
	return &se, nil
}

func (r *mongoSessionExerciseRepository) ListBySessionIDs(ctx context.Context, sessionIDs []primitive.ObjectID) ([]domain.SessionExercise, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "order", Value: 1}, {Key: "_id", Value: 1}})
	return r.find(ctx, bson.M{"sessionId": bson.M{"$in": idsOrEmpty(sessionIDs)}}, findOptions)
}

func (r *mongoSessionExerciseRepository) ListByExerciseID(ctx context.Context, exerciseID primitive.ObjectID) ([]domain.SessionExercise, error) {
	return r.find(ctx, bson.M{"exerciseId": exerciseID}, options.Find())
}

func (r *mongoSessionExerciseRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]domain.SessionExercise, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := []domain.SessionExercise{}
	if err = cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *mongoSessionExerciseRepository) DeleteBySessionID(ctx context.Context, sessionID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"sessionId": sessionID})
	return err
}

func (r *mongoSessionExerciseRepository) DeleteByExerciseID(ctx context.Context, exerciseID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"exerciseId": exerciseID})
	return err
}

// EnsureSessionExerciseIndexes creates necessary indexes for the session_exercises collection.
func EnsureSessionExerciseIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "sessionId", Value: 1}, {Key: "order", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "exerciseId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
