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

const workoutLogCollectionName = "workout_logs"

// mongoWorkoutLogRepository implements repository.WorkoutLogRepository.
// Exercise and set logs are embedded, so every write is a single document.
type mongoWorkoutLogRepository struct {
	collection *mongo.Collection
}

// NewMongoWorkoutLogRepository creates a new WorkoutDayLog repository.
func NewMongoWorkoutLogRepository(db *mongo.Database) repository.WorkoutLogRepository {
	return &mongoWorkoutLogRepository{
		collection: db.Collection(workoutLogCollectionName),
	}
}

// Create inserts a workout log with its exercise logs.
func (r *mongoWorkoutLogRepository) Create(ctx context.Context, l *domain.WorkoutDayLog) (primitive.ObjectID, error) {
	if l.MicrocycleID == primitive.NilObjectID || l.DayID == primitive.NilObjectID || l.ClientID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("workout log requires microcycleId, dayId, and clientId")
	}
	l.ID = primitive.NewObjectID()
	for i := range l.Exercises {
		if l.Exercises[i].ID == primitive.NilObjectID {
			l.Exercises[i].ID = primitive.NewObjectID()
		}
	}
	now := time.Now().UTC()
	l.CreatedAt = now
	l.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, l)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted workout log ID")
	}
	return insertedID, nil
}

func (r *mongoWorkoutLogRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutDayLog, error) {
	var l domain.WorkoutDayLog
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&l)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &l, nil
}

// Update rewrites the recorded values of a log. Its microcycle, day and
// client never change.
func (r *mongoWorkoutLogRepository) Update(ctx context.Context, l *domain.WorkoutDayLog) error {
	if l.ID == primitive.NilObjectID {
		return errors.New("workout log ID is required for update")
	}
	for i := range l.Exercises {
		if l.Exercises[i].ID == primitive.NilObjectID {
			l.Exercises[i].ID = primitive.NewObjectID()
		}
	}
	update := bson.M{
		"$set": bson.M{
			"completedAt": l.CompletedAt,
			"rpe":         l.RPE,
			"fatigue":     l.Fatigue,
			"notes":       l.Notes,
			"exercises":   l.Exercises,
			"updatedAt":   time.Now().UTC(),
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": l.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoWorkoutLogRepository) GetByMicrocycleID(ctx context.Context, microcycleID primitive.ObjectID) ([]domain.WorkoutDayLog, error) {
	return r.find(ctx, bson.M{"microcycleId": microcycleID})
}

func (r *mongoWorkoutLogRepository) GetByMesocycleID(ctx context.Context, mesocycleID primitive.ObjectID) ([]domain.WorkoutDayLog, error) {
	return r.find(ctx, bson.M{"mesocycleId": mesocycleID})
}

func (r *mongoWorkoutLogRepository) find(ctx context.Context, filter bson.M) ([]domain.WorkoutDayLog, error) {
	logs := []domain.WorkoutDayLog{}
	findOptions := options.Find().SetSort(bson.D{{Key: "completedAt", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *mongoWorkoutLogRepository) CountByDayID(ctx context.Context, dayID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"dayId": dayID})
}

func (r *mongoWorkoutLogRepository) CountByExerciseID(ctx context.Context, exerciseID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"exercises.exerciseId": exerciseID})
}

// EnsureWorkoutLogIndexes creates necessary indexes. Call during startup.
func EnsureWorkoutLogIndexes(ctx context.Context, collection *mongo.Collection) {
	createIndexes(ctx, collection, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "microcycleId", Value: 1}, {Key: "completedAt", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "mesocycleId", Value: 1}},
			Options: options.Index(),
		},
		{
			// Delete guards for days and exercises
			Keys:    bson.D{{Key: "dayId", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "exercises.exerciseId", Value: 1}},
			Options: options.Index(),
		},
	})
}
