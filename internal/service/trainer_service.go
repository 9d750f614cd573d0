package service

import (
	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/repository"
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrClientNotFound        = fmt.Errorf("%w: client user not found", ErrNotFound)
	ErrClientNotRole         = fmt.Errorf("%w: user found but is not a client", ErrValidation)
	ErrClientAlreadyAssigned = fmt.Errorf("%w: client is already assigned to a coach", ErrConflict)
)

// TrainerService manages a coach's client roster.
type TrainerService interface {
	AddClientByEmail(ctx context.Context, actor Actor, clientEmail string) (*domain.User, error)
	GetManagedClients(ctx context.Context, actor Actor) ([]domain.User, error)
}

type trainerService struct {
	repos repository.Repositories
}

func NewTrainerService(repos repository.Repositories) TrainerService {
	return &trainerService{repos: repos}
}

// AddClientByEmail finds a client by email and puts them on the coach's
// roster. Both user records are updated in one transaction.
func (s *trainerService) AddClientByEmail(ctx context.Context, actor Actor, clientEmail string) (*domain.User, error) {
	if err := requireCoach(actor); err != nil {
		return nil, err
	}
	clientEmail = strings.ToLower(strings.TrimSpace(clientEmail))
	if clientEmail == "" {
		return nil, validationf("client email is required")
	}

	var client *domain.User
	err := s.repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		client, err = s.repos.Users.GetByEmail(ctx, clientEmail)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrClientNotFound
			}
			return err
		}
		if !client.IsClient() {
			return ErrClientNotRole
		}
		if client.TrainerID != nil && *client.TrainerID != primitive.NilObjectID {
			if *client.TrainerID == actor.ID {
				return nil
			}
			return ErrClientAlreadyAssigned
		}

		if err := s.repos.Users.AddClientIDToTrainer(ctx, actor.ID, client.ID); err != nil {
			return mapRepoErr(err, "coach")
		}
		if err := s.repos.Users.SetTrainerForClient(ctx, client.ID, actor.ID); err != nil {
			return mapRepoErr(err, "client")
		}
		trainerID := actor.ID
		client.TrainerID = &trainerID
		return nil
	})
	if err != nil {
		return nil, err
	}
	client.PasswordHash = ""
	return client, nil
}

// GetManagedClients retrieves the list of clients managed by the coach.
func (s *trainerService) GetManagedClients(ctx context.Context, actor Actor) ([]domain.User, error) {
	if err := requireCoach(actor); err != nil {
		return nil, err
	}
	clients, err := s.repos.Users.GetClientsByTrainerID(ctx, actor.ID)
	if err != nil {
		return nil, mapRepoErr(err, "coach")
	}
	for i := range clients {
		clients[i].PasswordHash = ""
	}
	return clients, nil
}

// managedClient loads a client and checks it is on the coach's roster.
// Foreign clients are reported as missing.
func managedClient(ctx context.Context, users repository.UserRepository, coachID, clientID primitive.ObjectID) (*domain.User, error) {
	client, err := users.GetByID(ctx, clientID)
	if err != nil {
		return nil, mapRepoErr(err, "client")
	}
	if !client.ManagedBy(coachID) {
		return nil, notFound("client")
	}
	return client, nil
}
