package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"alcyxob/trainlog/internal/domain"
	"alcyxob/trainlog/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type exerciseRepo struct{ s *store }

func (r *exerciseRepo) Create(_ context.Context, exercise *domain.Exercise) (primitive.ObjectID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	exercise.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	exercise.CreatedAt = now
	exercise.UpdatedAt = now
	r.s.exercises[exercise.ID] = cloneExercise(*exercise)
	return exercise.ID, nil
}

func (r *exerciseRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	e, ok := r.s.exercises[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	e = cloneExercise(e)
	return &e, nil
}

func (r *exerciseRepo) GetByIDs(_ context.Context, ids []primitive.ObjectID) ([]domain.Exercise, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []domain.Exercise{}
	for id := range idSet(ids) {
		if e, ok := r.s.exercises[id]; ok {
			out = append(out, cloneExercise(e))
		}
	}
	return out, nil
}

func (r *exerciseRepo) ListVisible(_ context.Context, filter repository.ExerciseFilter) ([]domain.Exercise, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	query := strings.ToLower(filter.Query)
	out := []domain.Exercise{}
	for _, e := range r.s.exercises {
		if !e.Ownership().CanView(filter.OwnerID) {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(e.Name), query) {
			continue
		}
		if filter.Category != "" && e.Category != filter.Category {
			continue
		}
		out = append(out, cloneExercise(e))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return lessID(out[i].ID, out[j].ID)
	})
	return out, nil
}

func (r *exerciseRepo) Update(_ context.Context, exercise *domain.Exercise) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.exercises[exercise.ID]
	if !ok {
		return repository.ErrNotFound
	}
	exercise.OwnerID = existing.OwnerID
	exercise.CreatedAt = existing.CreatedAt
	exercise.UpdatedAt = time.Now().UTC()
	r.s.exercises[exercise.ID] = cloneExercise(*exercise)
	return nil
}

func (r *exerciseRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.exercises[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.exercises, id)
	return nil
}

func cloneExercise(e domain.Exercise) domain.Exercise {
	e.Muscles = cloneStrings(e.Muscles)
	e.Equipment = cloneStrings(e.Equipment)
	return e
}
