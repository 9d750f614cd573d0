package mongo

import (
	"alcyxob/fitness-coach/internal/repository"
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
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

	// Ping the primary node to verify the connection.
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()

	err = client.Ping(pingCtx, readpref.Primary())
	if err != nil {
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

// mongoTransactor runs functions inside a multi-document transaction.
// Transactions require a replica set or sharded cluster.
type mongoTransactor struct {
	client *mongo.Client
}

// NewTransactor creates a repository.Transactor backed by client sessions.
func NewTransactor(client *mongo.Client) repository.Transactor {
	return &mongoTransactor{client: client}
}

// WithTransaction runs fn in a transaction. The driver retries fn on transient
// transaction errors, so fn must not keep state between attempts.
func (t *mongoTransactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if mongo.SessionFromContext(ctx) != nil {
		// Already inside a transaction; join it.
		return fn(ctx)
	}

	session, err := t.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	txnOpts := options.Transaction().SetWriteConcern(writeconcern.Majority())
	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	}, txnOpts)
	return err
}

// NewRepositories wires every MongoDB repository against one database.
func NewRepositories(db *mongo.Database) repository.Repositories {
	return repository.Repositories{
		Tx:            NewTransactor(db.Client()),
		Users:         NewMongoUserRepository(db),
		Templates:     NewMongoTemplateRepository(db),
		Days:          NewMongoDayRepository(db),
		Exercises:     NewMongoExerciseRepository(db),
		Mesocycles:    NewMongoMesocycleRepository(db),
		Microcycles:   NewMongoMicrocycleRepository(db),
		WorkoutLogs:   NewMongoWorkoutLogRepository(db),
		Notifications: NewMongoNotificationRepository(db),
		Uploads:       NewMongoUploadRepository(db),
	}
}

// EnsureIndexes creates the indexes of every collection. Call during startup.
func EnsureIndexes(ctx context.Context, db *mongo.Database) {
	EnsureUserIndexes(ctx, db.Collection(userCollectionName))
	EnsureTemplateIndexes(ctx, db.Collection(templateCollectionName))
	EnsureDayIndexes(ctx, db.Collection(dayCollectionName))
	EnsureExerciseIndexes(ctx, db.Collection(exerciseCollectionName))
	EnsureMesocycleIndexes(ctx, db.Collection(mesocycleCollectionName))
	EnsureMicrocycleIndexes(ctx, db.Collection(microcycleCollectionName))
	EnsureWorkoutLogIndexes(ctx, db.Collection(workoutLogCollectionName))
	EnsureNotificationIndexes(ctx, db.Collection(notificationCollectionName))
	EnsureUploadIndexes(ctx, db.Collection(uploadCollectionName))
}

func createIndexes(ctx context.Context, collection *mongo.Collection, indexes []mongo.IndexModel) {
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
