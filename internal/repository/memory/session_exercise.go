package memory

import (
	"context"
	"time"

	"alcyxob/trainlog/internal/domain"
	"alcyxob/trainlog/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type sessionExerciseRepo struct{ s *store }

func (r *sessionExerciseRepo) Create(_ context.Context, se *domain.SessionExercise) (primitive.ObjectID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	se.ID = primitive.NewObjectID()
	se.CreatedAt = time.Now().UTC()
	r.s.sessionExercises[se.ID] = *se
	return se.ID, nil
}

func (r *sessionExerciseRepo) CreateMany(_ context.Context, items []*domain.SessionExercise) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := time.Now().UTC()
	for _, se := range items {
		se.ID = primitive.NewObjectID()
		se.CreatedAt = now
		r.s.sessionExercises[se.ID] = *se
	}
	return nil
}

func (r *sessionExerciseRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.SessionExercise, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	se, ok := r.s.sessionExercises[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &se, nil
}

func (r *sessionExerciseRepo) ListBySessionIDs(_ context.Context, sessionIDs []primitive.ObjectID) ([]domain.SessionExercise, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	wanted := idSet(sessionIDs)
	out := []domain.SessionExercise{}
	for _, se := range r.s.sessionExercises {
		if _, ok := wanted[se.SessionID]; ok {
			out = append(out, se)
		}
	}
	sortSessionExercises(out)
	return out, nil
}

func (r *sessionExerciseRepo) ListByExerciseID(_ context.Context, exerciseID primitive.ObjectID) ([]domain.SessionExercise, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []domain.SessionExercise{}
	for _, se := range r.s.sessionExercises {
		if se.ExerciseID == exerciseID {
			out = append(out, se)
		}
	}
	sortSessionExercises(out)
	return out, nil
}

func (r *sessionExerciseRepo) DeleteBySessionID(_ context.Context, sessionID primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, se := range r.s.sessionExercises {
		if se.SessionID == sessionID {
			delete(r.s.sessionExercises, id)
		}
	}
	return nil
}

func (r *sessionExerciseRepo) DeleteByExerciseID(_ context.Context, exerciseID primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, se := range r.s.sessionExercises {
		if se.ExerciseID == exerciseID {
			delete(r.s.sessionExercises, id)
		}
	}
	return nil
}
