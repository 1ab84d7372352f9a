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

const templateExerciseCollectionName = "template_exercises"

// mongoTemplateExerciseRepository implements repository.TemplateExerciseRepository
type mongoTemplateExerciseRepository struct {
	collection *mongo.Collection
}

func NewMongoTemplateExerciseRepository(db *mongo.Database) repository.TemplateExerciseRepository {
	return &mongoTemplateExerciseRepository{
		collection: db.Collection(templateExerciseCollectionName),
	}
}

func (r *mongoTemplateExerciseRepository) Create(ctx context.Context, te *domain.TemplateExercise) (primitive.ObjectID, error) {
	te.ID = primitive.NewObjectID()
	te.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, te)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return insertedObjectID(result)
}

func (r *mongoTemplateExerciseRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.TemplateExercise, error) {
	var te domain.TemplateExercise
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&te); err != nil {
		return nil, notFound(err)
	}
	return &te, nil
}

func (r *mongoTemplateExerciseRepository) ListByTemplateIDs(ctx context.Context, templateIDs []primitive.ObjectID) ([]domain.TemplateExercise, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "order", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"templateId": bson.M{"$in": idsOrEmpty(templateIDs)}}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := []domain.TemplateExercise{}
	if err = cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Update replaces the order and defaults; the template and exercise are fixed.
func (r *mongoTemplateExerciseRepository) Update(ctx context.Context, te *domain.TemplateExercise) error {
	update := bson.M{
		"$set": bson.M{
			"order":              te.Order,
			"defaultSets":        te.DefaultSets,
			"defaultReps":        te.DefaultReps,
			"defaultWeight":      te.DefaultWeight,
			"defaultDurationSec": te.DefaultDurationSec,
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": te.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoTemplateExerciseRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoTemplateExerciseRepository) DeleteByTemplateID(ctx context.Context, templateID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"templateId": templateID})
	return err
}

func (r *mongoTemplateExerciseRepository) DeleteByExerciseID(ctx context.Context, exerciseID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"exerciseId": exerciseID})
	return err
}

// EnsureTemplateExerciseIndexes creates necessary indexes for the template_exercises collection.
func EnsureTemplateExerciseIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "templateId", Value: 1}, {Key: "order", Value: 1}},
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
