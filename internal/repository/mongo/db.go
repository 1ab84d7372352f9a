package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"alcyxob/trainlog/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Default connection timeout
const defaultTimeout = 10 * time.Second

// ConnectDB establishes a connection to MongoDB using the provided URI.
// It returns the mongo.Client which can be used to access databases and collections.
func ConnectDB(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	// The initial connect can succeed while the server is unresponsive.
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()

	if err = client.Ping(pingCtx, readpref.Primary()); err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, err
	}

	return client, nil
}

// DisconnectDB gracefully disconnects the MongoDB client.
func DisconnectDB(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}

// NewRepositories wires every MongoDB-backed repository against db.
func NewRepositories(db *mongo.Database) repository.Repositories {
	return repository.Repositories{
		Users:             NewMongoUserRepository(db),
		Exercises:         NewMongoExerciseRepository(db),
		Sessions:          NewMongoSessionRepository(db),
		SessionExercises:  NewMongoSessionExerciseRepository(db),
		SetLogs:           NewMongoSetLogRepository(db),
		Templates:         NewMongoTemplateRepository(db),
		TemplateExercises: NewMongoTemplateExerciseRepository(db),
		Progress:          NewMongoProgressRepository(db),
	}
}

// EnsureIndexes creates the indexes of every collection. Call this once during startup.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	steps := []struct {
		collection string
		fn         func(context.Context, *mongo.Collection) error
	}{
		{userCollectionName, EnsureUserIndexes},
		{exerciseCollectionName, EnsureExerciseIndexes},
		{sessionCollectionName, EnsureSessionIndexes},
		{sessionExerciseCollectionName, EnsureSessionExerciseIndexes},
		{setLogCollectionName, EnsureSetLogIndexes},
		{templateCollectionName, EnsureTemplateIndexes},
		{templateExerciseCollectionName, EnsureTemplateExerciseIndexes},
	}
	for _, s := range steps {
		if err := s.fn(ctx, db.Collection(s.collection)); err != nil {
			return fmt.Errorf("create indexes for %s: %w", s.collection, err)
		}
	}
	return nil
}

// insertedObjectID asserts the type of the ID returned by InsertOne.
func insertedObjectID(result *mongo.InsertOneResult) (primitive.ObjectID, error) {
	id, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("unexpected inserted ID type %T", result.InsertedID)
	}
	return id, nil
}

// notFound maps mongo.ErrNoDocuments to repository.ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return repository.ErrNotFound
	}
	return err
}

// idsOrEmpty keeps $in filters valid for nil slices.
func idsOrEmpty(ids []primitive.ObjectID) []primitive.ObjectID {
	if ids == nil {
		return []primitive.ObjectID{}
	}
	return ids
}
