package mongo

import (
	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/repository"
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const microcycleCollectionName = "microcycles"

type mongoMicrocycleRepository struct {
	collection *mongo.Collection
}

func NewMongoMicrocycleRepository(db *mongo.Database) repository.MicrocycleRepository {
	return &mongoMicrocycleRepository{
		collection: db.Collection(microcycleCollectionName),
	}
}

// CreateMany inserts the weeks of a mesocycle, assigning IDs in place.
func (r *mongoMicrocycleRepository) CreateMany(ctx context.Context, microcycles []domain.Microcycle) error {
	if len(microcycles) == 0 {
		return nil
	}
	docs := make([]interface{}, len(microcycles))
	for i := range microcycles {
		if microcycles[i].MesocycleID == primitive.NilObjectID {
			return errors.New("microcycle requires mesocycleId")
		}
		microcycles[i].ID = primitive.NewObjectID()
		docs[i] = microcycles[i]
	}
	_, err := r.collection.InsertMany(ctx, docs)
	return err
}

func (r *mongoMicrocycleRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Microcycle, error) {
	var m domain.Microcycle
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *mongoMicrocycleRepository) GetByMesocycleID(ctx context.Context, mesocycleID primitive.ObjectID) ([]domain.Microcycle, error) {
	weeks := []domain.Microcycle{}
	findOptions := options.Find().SetSort(bson.D{{Key: "weekNumber", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"mesocycleId": mesocycleID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &weeks); err != nil {
		return nil, err
	}
	return weeks, nil
}

func EnsureMicrocycleIndexes(ctx context.Context, collection *mongo.Collection) {
	createIndexes(ctx, collection, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "mesocycleId", Value: 1}, {Key: "weekNumber", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
}
