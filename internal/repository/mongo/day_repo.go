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

const dayCollectionName = "days"

// mongoDayRepository implements repository.DayRepository
type mongoDayRepository struct {
	collection *mongo.Collection
}

// NewMongoDayRepository creates a new Day repository.
func NewMongoDayRepository(db *mongo.Database) repository.DayRepository {
	return &mongoDayRepository{
		collection: db.Collection(dayCollectionName),
	}
}

// Create inserts a new day. Exactly one owner must be set.
func (r *mongoDayRepository) Create(ctx context.Context, day *domain.Day) (primitive.ObjectID, error) {
	if (day.TemplateID == nil) == (day.MesocycleID == nil) {
		return primitive.NilObjectID, errors.New("day requires exactly one of templateId or mesocycleId")
	}
	day.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	day.CreatedAt = now
	day.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, day)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted day ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single day by its ID.
func (r *mongoDayRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Day, error) {
	var day domain.Day
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&day)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &day, nil
}

func (r *mongoDayRepository) GetByTemplateID(ctx context.Context, templateID primitive.ObjectID) ([]domain.Day, error) {
	return r.find(ctx, bson.M{"templateId": templateID})
}

func (r *mongoDayRepository) GetByMesocycleID(ctx context.Context, mesocycleID primitive.ObjectID) ([]domain.Day, error) {
	return r.find(ctx, bson.M{"mesocycleId": mesocycleID})
}

func (r *mongoDayRepository) find(ctx context.Context, filter bson.M) ([]domain.Day, error) {
	days := []domain.Day{}
	findOptions := options.Find().SetSort(bson.D{{Key: "dayNumber", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &days); err != nil {
		return nil, err
	}
	return days, nil
}

// Update changes the day's title and number. Owners are fixed at creation.
func (r *mongoDayRepository) Update(ctx context.Context, day *domain.Day) error {
	if day.ID == primitive.NilObjectID {
		return errors.New("day ID is required for update")
	}
	update := bson.M{
		"$set": bson.M{
			"title":     day.Title,
			"dayNumber": day.DayNumber,
			"updatedAt": time.Now().UTC(),
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": day.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoDayRepository) SetDayNumber(ctx context.Context, id primitive.ObjectID, dayNumber int) error {
	update := bson.M{"$set": bson.M{"dayNumber": dayNumber, "updatedAt": time.Now().UTC()}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoDayRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureDayIndexes creates necessary indexes. Day numbers are not unique at
// the index level: a reorder swaps numbers inside one transaction.
func EnsureDayIndexes(ctx context.Context, collection *mongo.Collection) {
	createIndexes(ctx, collection, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "templateId", Value: 1}, {Key: "dayNumber", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "mesocycleId", Value: 1}, {Key: "dayNumber", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	})
}
