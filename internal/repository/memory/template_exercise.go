package memory

import (
	"context"
	"sort"
	"time"

	"alcyxob/trainlog/internal/domain"
	"alcyxob/trainlog/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type templateExerciseRepo struct{ s *store }

func (r *templateExerciseRepo) Create(_ context.Context, te *domain.TemplateExercise) (primitive.ObjectID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	te.ID = primitive.NewObjectID()
	te.CreatedAt = time.Now().UTC()
	r.s.templateExercises[te.ID] = *te
	return te.ID, nil
}

func (r *templateExerciseRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.TemplateExercise, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	te, ok := r.s.templateExercises[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &te, nil
}

func (r *templateExerciseRepo) ListByTemplateIDs(_ context.Context, templateIDs []primitive.ObjectID) ([]domain.TemplateExercise, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	wanted := idSet(templateIDs)
	out := []domain.TemplateExercise{}
	for _, te := range r.s.templateExercises {
		if _, ok := wanted[te.TemplateID]; ok {
			out = append(out, te)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return lessID(out[i].ID, out[j].ID)
	})
	return out, nil
}

func (r *templateExerciseRepo) Update(_ context.Context, te *domain.TemplateExercise) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.templateExercises[te.ID]
	if !ok {
		return repository.ErrNotFound
	}
	existing.Order = te.Order
	existing.DefaultSets = te.DefaultSets
	existing.DefaultReps = te.DefaultReps
	existing.DefaultWeight = te.DefaultWeight
	existing.DefaultDurationSec = te.DefaultDurationSec
	r.s.templateExercises[te.ID] = existing
	*te = existing
	return nil
}

func (r *templateExerciseRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.templateExercises[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.templateExercises, id)
	return nil
}

func (r *templateExerciseRepo) DeleteByTemplateID(_ context.Context, templateID primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, te := range r.s.templateExercises {
		if te.TemplateID == templateID {
			delete(r.s.templateExercises, id)
		}
	}
	return nil
}

func (r *templateExerciseRepo) DeleteByExerciseID(_ context.Context, exerciseID primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, te := range r.s.templateExercises {
		if te.ExerciseID == exerciseID {
			delete(r.s.templateExercises, id)
		}
	}
	return nil
}
