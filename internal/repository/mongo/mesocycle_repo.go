package mongo

import (
	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mesocycleCollectionName = "mesocycles"

// mongoMesocycleRepository implements repository.MesocycleRepository
type mongoMesocycleRepository struct {
	collection *mongo.Collection
}

// NewMongoMesocycleRepository creates a new Mesocycle repository.
func NewMongoMesocycleRepository(db *mongo.Database) repository.MesocycleRepository {
	return &mongoMesocycleRepository{
		collection: db.Collection(mesocycleCollectionName),
	}
}

// Create inserts a new mesocycle. A second active mesocycle for the same
// client violates the partial unique index and yields repository.ErrDuplicate.
func (r *mongoMesocycleRepository) Create(ctx context.Context, m *domain.Mesocycle) (primitive.ObjectID, error) {
	if m.ClientID == primitive.NilObjectID || m.TrainerID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("mesocycle requires clientId and trainerId")
	}
	m.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, m)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted mesocycle ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single mesocycle by its ID.
func (r *mongoMesocycleRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Mesocycle, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// GetActiveByClientID returns the client's active mesocycle or ErrNotFound.
func (r *mongoMesocycleRepository) GetActiveByClientID(ctx context.Context, clientID primitive.ObjectID) (*domain.Mesocycle, error) {
	return r.findOne(ctx, bson.M{"clientId": clientID, "isActive": true})
}

func (r *mongoMesocycleRepository) findOne(ctx context.Context, filter bson.M) (*domain.Mesocycle, error) {
	var m domain.Mesocycle
	err := r.collection.FindOne(ctx, filter).Decode(&m)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// GetByClientID retrieves all mesocycles of a client, newest start first.
func (r *mongoMesocycleRepository) GetByClientID(ctx context.Context, clientID primitive.ObjectID) ([]domain.Mesocycle, error) {
	mesocycles := []domain.Mesocycle{}
	findOptions := options.Find().SetSort(bson.D{{Key: "startDate", Value: -1}, {Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"clientId": clientID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &mesocycles); err != nil {
		return nil, err
	}
	return mesocycles, nil
}

// Complete deactivates a mesocycle and stamps its completion time.
func (r *mongoMesocycleRepository) Complete(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	update := bson.M{
		"$set": bson.M{
			"isActive":    false,
			"isCompleted": true,
			"completedAt": at,
			"updatedAt":   time.Now().UTC(),
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// MarkForked is a conditional update: only the first caller sees true.
func (r *mongoMesocycleRepository) MarkForked(ctx context.Context, id primitive.ObjectID) (bool, error) {
	filter := bson.M{"_id": id, "isForked": false}
	update := bson.M{
		"$set":   bson.M{"isForked": true, "updatedAt": time.Now().UTC()},
		"$unset": bson.M{"templateId": ""},
	}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	if result.MatchedCount == 1 {
		return true, nil
	}
	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	if count == 0 {
		return false, repository.ErrNotFound
	}
	return false, nil
}

func (r *mongoMesocycleRepository) CountByTemplateID(ctx context.Context, templateID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"templateId": templateID})
}

// EnsureMesocycleIndexes creates necessary indexes. The partial unique index
// keeps at most one active mesocycle per client.
func EnsureMesocycleIndexes(ctx context.Context, collection *mongo.Collection) {
	createIndexes(ctx, collection, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "clientId", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"isActive": true}).
				SetName("one_active_mesocycle_per_client"),
		},
		{
			Keys:    bson.D{{Key: "clientId", Value: 1}, {Key: "startDate", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "trainerId", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "templateId", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	})
}
