package memory

import (
	"context"
	"sort"
	"time"

	"alcyxob/trainlog/internal/domain"
	"alcyxob/trainlog/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type sessionRepo struct{ s *store }

func (r *sessionRepo) Create(_ context.Context, session *domain.Session) (primitive.ObjectID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	session.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now
	r.s.sessions[session.ID] = *session
	return session.ID, nil
}

func (r *sessionRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Session, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	s, ok := r.s.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &s, nil
}

func (r *sessionRepo) ListByOwner(_ context.Context, ownerID primitive.ObjectID, filter repository.SessionFilter) ([]domain.Session, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []domain.Session{}
	for _, s := range r.s.sessions {
		if s.OwnerID != ownerID {
			continue
		}
		if filter.From != nil && s.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && s.Date.After(*filter.To) {
			continue
		}
		out = append(out, s)
	}
	sortSessionsDesc(out)
	return out, nil
}

func (r *sessionRepo) Update(_ context.Context, session *domain.Session) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.sessions[session.ID]
	if !ok {
		return repository.ErrNotFound
	}
	existing.Title = session.Title
	existing.Category = session.Category
	existing.Date = session.Date
	existing.Notes = session.Notes
	existing.UpdatedAt = time.Now().UTC()
	r.s.sessions[session.ID] = existing
	*session = existing
	return nil
}

func (r *sessionRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.sessions[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.sessions, id)
	return nil
}

func sortSessionsDesc(sessions []domain.Session) {
	sort.Slice(sessions, func(i, j int) bool {
		if !sessions[i].Date.Equal(sessions[j].Date) {
			return sessions[i].Date.After(sessions[j].Date)
		}
		return lessID(sessions[j].ID, sessions[i].ID)
	})
}
