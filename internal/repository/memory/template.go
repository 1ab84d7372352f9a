package memory

import (
	"context"
	"sort"
	"time"

	"alcyxob/trainlog/internal/domain"
	"alcyxob/trainlog/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type templateRepo struct{ s *store }

func (r *templateRepo) Create(_ context.Context, template *domain.SessionTemplate) (primitive.ObjectID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	template.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	template.CreatedAt = now
	template.UpdatedAt = now
	r.s.templates[template.ID] = *template
	return template.ID, nil
}

func (r *templateRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.SessionTemplate, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.templates[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (r *templateRepo) ListByOwner(_ context.Context, ownerID primitive.ObjectID) ([]domain.SessionTemplate, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []domain.SessionTemplate{}
	for _, t := range r.s.templates {
		if t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return lessID(out[j].ID, out[i].ID)
	})
	return out, nil
}

func (r *templateRepo) Update(_ context.Context, template *domain.SessionTemplate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.templates[template.ID]
	if !ok {
		return repository.ErrNotFound
	}
	existing.Title = template.Title
	existing.Category = template.Category
	existing.Notes = template.Notes
	existing.UpdatedAt = time.Now().UTC()
	r.s.templates[template.ID] = existing
	*template = existing
	return nil
}

func (r *templateRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.templates[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.templates, id)
	return nil
}
