// Package memory is a process-local implementation of the repository
// interfaces. It backs tests and single-node demos (database.driver=memory).
package memory

import (
	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/repository"
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type txKey struct{}

// Store holds every collection in maps. Reads take mu; writes additionally
// take txMu unless they run inside a transaction that already holds it, so a
// transaction never interleaves with other writers.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex

	users         map[primitive.ObjectID]domain.User
	templates     map[primitive.ObjectID]domain.Template
	days          map[primitive.ObjectID]domain.Day
	exercises     map[primitive.ObjectID]domain.Exercise
	mesocycles    map[primitive.ObjectID]domain.Mesocycle
	microcycles   map[primitive.ObjectID]domain.Microcycle
	workoutLogs   map[primitive.ObjectID]domain.WorkoutDayLog
	notifications map[primitive.ObjectID]domain.Notification
	uploads       map[primitive.ObjectID]domain.Upload
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		users:         map[primitive.ObjectID]domain.User{},
		templates:     map[primitive.ObjectID]domain.Template{},
		days:          map[primitive.ObjectID]domain.Day{},
		exercises:     map[primitive.ObjectID]domain.Exercise{},
		mesocycles:    map[primitive.ObjectID]domain.Mesocycle{},
		microcycles:   map[primitive.ObjectID]domain.Microcycle{},
		workoutLogs:   map[primitive.ObjectID]domain.WorkoutDayLog{},
		notifications: map[primitive.ObjectID]domain.Notification{},
		uploads:       map[primitive.ObjectID]domain.Upload{},
	}
}

// NewRepositories wires every repository against a fresh store.
func NewRepositories() repository.Repositories {
	return NewStore().Repositories()
}

// Repositories exposes the store through the repository interfaces.
func (s *Store) Repositories() repository.Repositories {
	return repository.Repositories{
		Tx:            s,
		Users:         &userRepository{s},
		Templates:     &templateRepository{s},
		Days:          &dayRepository{s},
		Exercises:     &exerciseRepository{s},
		Mesocycles:    &mesocycleRepository{s},
		Microcycles:   &microcycleRepository{s},
		WorkoutLogs:   &workoutLogRepository{s},
		Notifications: &notificationRepository{s},
		Uploads:       &uploadRepository{s},
	}
}

// WithTransaction runs fn with all other writers excluded. If fn fails every
// map is restored to its state before the call.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snap := s.snapshot()
	s.mu.RUnlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.mu.Lock()
		s.restore(snap)
		s.mu.Unlock()
		return err
	}
	return nil
}

func inTx(ctx context.Context) bool {
	v, _ := ctx.Value(txKey{}).(bool)
	return v
}

// write runs fn under the write lock, serialized with transactions.
func (s *Store) write(ctx context.Context, fn func() error) error {
	if !inTx(ctx) {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

func (s *Store) read(fn func()) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn()
}

type snapshot struct {
	users         map[primitive.ObjectID]domain.User
	templates     map[primitive.ObjectID]domain.Template
	days          map[primitive.ObjectID]domain.Day
	exercises     map[primitive.ObjectID]domain.Exercise
	mesocycles    map[primitive.ObjectID]domain.Mesocycle
	microcycles   map[primitive.ObjectID]domain.Microcycle
	workoutLogs   map[primitive.ObjectID]domain.WorkoutDayLog
	notifications map[primitive.ObjectID]domain.Notification
	uploads       map[primitive.ObjectID]domain.Upload
}

// Stored values are never mutated in place (every write replaces the map
// entry with a fresh copy), so copying the maps is enough.
func (s *Store) snapshot() snapshot {
	return snapshot{
		users:         copyMap(s.users),
		templates:     copyMap(s.templates),
		days:          copyMap(s.days),
		exercises:     copyMap(s.exercises),
		mesocycles:    copyMap(s.mesocycles),
		microcycles:   copyMap(s.microcycles),
		workoutLogs:   copyMap(s.workoutLogs),
		notifications: copyMap(s.notifications),
		uploads:       copyMap(s.uploads),
	}
}

func (s *Store) restore(snap snapshot) {
	s.users = snap.users
	s.templates = snap.templates
	s.days = snap.days
	s.exercises = snap.exercises
	s.mesocycles = snap.mesocycles
	s.microcycles = snap.microcycles
	s.workoutLogs = snap.workoutLogs
	s.notifications = snap.notifications
	s.uploads = snap.uploads
}

func copyMap[V any](m map[primitive.ObjectID]V) map[primitive.ObjectID]V {
	out := make(map[primitive.ObjectID]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneID(id *primitive.ObjectID) *primitive.ObjectID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
