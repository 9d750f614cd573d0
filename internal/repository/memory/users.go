package memory

import (
	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type userRepository struct{ s *Store }

func cloneUser(u domain.User) domain.User {
	out := u
	if u.ClientIDs != nil {
		out.ClientIDs = append([]primitive.ObjectID(nil), u.ClientIDs...)
	}
	out.TrainerID = cloneID(u.TrainerID)
	return out
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	if user.Email == "" || user.PasswordHash == "" || user.Role == "" {
		return primitive.NilObjectID, errors.New("user email, password hash, and role are required")
	}
	err := r.s.write(ctx, func() error {
		for _, u := range r.s.users {
			if u.Email == user.Email {
				return repository.ErrDuplicate
			}
		}
		user.ID = primitive.NewObjectID()
		now := time.Now().UTC()
		user.CreatedAt = now
		user.UpdatedAt = now
		r.s.users[user.ID] = cloneUser(*user)
		return nil
	})
	if err != nil {
		return primitive.NilObjectID, err
	}
	return user.ID, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var found *domain.User
	r.s.read(func() {
		for _, u := range r.s.users {
			if u.Email == email {
				cp := cloneUser(u)
				found = &cp
				return
			}
		}
	})
	if found == nil {
		return nil, repository.ErrNotFound
	}
	return found, nil
}

func (r *userRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	var found *domain.User
	r.s.read(func() {
		if u, ok := r.s.users[id]; ok {
			cp := cloneUser(u)
			found = &cp
		}
	})
	if found == nil {
		return nil, repository.ErrNotFound
	}
	return found, nil
}

func (r *userRepository) AddClientIDToTrainer(ctx context.Context, trainerID, clientID primitive.ObjectID) error {
	return r.s.write(ctx, func() error {
		t, ok := r.s.users[trainerID]
		if !ok || !t.IsCoach() {
			return repository.ErrNotFound
		}
		for _, id := range t.ClientIDs {
			if id == clientID {
				return nil
			}
		}
		t = cloneUser(t)
		t.ClientIDs = append(t.ClientIDs, clientID)
		t.UpdatedAt = time.Now().UTC()
		r.s.users[trainerID] = t
		return nil
	})
}

func (r *userRepository) GetClientsByTrainerID(ctx context.Context, trainerID primitive.ObjectID) ([]domain.User, error) {
	var (
		clients []domain.User
		err     error
	)
	r.s.read(func() {
		t, ok := r.s.users[trainerID]
		if !ok {
			err = repository.ErrNotFound
			return
		}
		if !t.IsCoach() {
			err = errors.New("user is not a coach")
			return
		}
		clients = []domain.User{}
		for _, id := range t.ClientIDs {
			if c, ok := r.s.users[id]; ok {
				clients = append(clients, cloneUser(c))
			}
		}
	})
	return clients, err
}

func (r *userRepository) SetTrainerForClient(ctx context.Context, clientID, trainerID primitive.ObjectID) error {
	return r.s.write(ctx, func() error {
		c, ok := r.s.users[clientID]
		if !ok || !c.IsClient() {
			return repository.ErrNotFound
		}
		c = cloneUser(c)
		c.TrainerID = &trainerID
		c.UpdatedAt = time.Now().UTC()
		r.s.users[clientID] = c
		return nil
	})
}
