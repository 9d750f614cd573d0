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

const userCollectionName = "users"

var coachRoles = []domain.Role{domain.RoleTrainer, domain.RoleAdmin}

// mongoUserRepository implements repository.UserRepository. Coaches keep
// their roster in clientIds, clients point back through trainerId.
type mongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new User repository backed by MongoDB.
func NewMongoUserRepository(db *mongo.Database) repository.UserRepository {
	return &mongoUserRepository{
		collection: db.Collection(userCollectionName),
	}
}

// Create inserts a user. Emails are unique, see EnsureUserIndexes.
func (r *mongoUserRepository) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	if user.Email == "" || user.PasswordHash == "" || user.Role == "" {
		return primitive.NilObjectID, errors.New("user email, password hash, and role are required")
	}

	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	if _, err := r.collection.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}
	return user.ID, nil
}

func (r *mongoUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *mongoUserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoUserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var user domain.User
	if err := r.collection.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// AddClientIDToTrainer puts a client on a coach's roster. Adding a client
// twice is a no-op.
func (r *mongoUserRepository) AddClientIDToTrainer(ctx context.Context, trainerID, clientID primitive.ObjectID) error {
	return r.updateOne(ctx,
		bson.M{"_id": trainerID, "role": bson.M{"$in": coachRoles}},
		bson.M{"$addToSet": bson.M{"clientIds": clientID}})
}

// SetTrainerForClient records which coach manages a client.
func (r *mongoUserRepository) SetTrainerForClient(ctx context.Context, clientID, trainerID primitive.ObjectID) error {
	return r.updateOne(ctx,
		bson.M{"_id": clientID, "role": domain.RoleClient},
		bson.M{"$set": bson.M{"trainerId": trainerID}})
}

// updateOne applies update and bumps updatedAt. A filter matching nothing is
// ErrNotFound; matching without modifying is fine.
func (r *mongoUserRepository) updateOne(ctx context.Context, filter, update bson.M) error {
	set, _ := update["$set"].(bson.M)
	if set == nil {
		set = bson.M{}
	}
	set["updatedAt"] = time.Now().UTC()
	update["$set"] = set

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// GetClientsByTrainerID returns the coach's roster in the order clients were
// added.
func (r *mongoUserRepository) GetClientsByTrainerID(ctx context.Context, trainerID primitive.ObjectID) ([]domain.User, error) {
	coach, err := r.GetByID(ctx, trainerID)
	if err != nil {
		return nil, err
	}
	if !coach.IsCoach() {
		return nil, errors.New("user is not a coach")
	}
	clients := []domain.User{}
	if len(coach.ClientIDs) == 0 {
		return clients, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": coach.ClientIDs}})
	if err != nil {
		return nil, err
	}
	var found []domain.User
	if err := cursor.All(ctx, &found); err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]domain.User, len(found))
	for _, u := range found {
		byID[u.ID] = u
	}
	for _, id := range coach.ClientIDs {
		if u, ok := byID[id]; ok {
			clients = append(clients, u)
		}
	}
	return clients, nil
}

// EnsureUserIndexes creates the unique email index and the roster lookups.
func EnsureUserIndexes(ctx context.Context, collection *mongo.Collection) {
	createIndexes(ctx, collection, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "trainerId", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	})
}
