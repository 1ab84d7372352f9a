package memory

import (
	"context"
	"sort"
	"time"

	"alcyxob/trainlog/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type setLogRepo struct{ s *store }

func (r *setLogRepo) Upsert(_ context.Context, log *domain.SetLog) (*domain.SetLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := setLogKey{log.SessionExerciseID, log.SetIndex}
	now := time.Now().UTC()
	saved := *log
	if existing, ok := r.s.setLogs[key]; ok {
		saved.ID = existing.ID
		saved.CreatedAt = existing.CreatedAt
	} else {
		saved.ID = primitive.NewObjectID()
		saved.CreatedAt = now
	}
	saved.UpdatedAt = now
	r.s.setLogs[key] = saved
	return &saved, nil
}

func (r *setLogRepo) ListBySessionExerciseIDs(_ context.Context, ids []primitive.ObjectID) ([]domain.SetLog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.setLogsFor(idSet(ids)), nil
}

func (r *setLogRepo) DeleteBySessionExerciseIDs(_ context.Context, ids []primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	wanted := idSet(ids)
	for key := range r.s.setLogs {
		if _, ok := wanted[key.sessionExerciseID]; ok {
			delete(r.s.setLogs, key)
		}
	}
	return nil
}

// setLogsFor returns the logs of the given session exercises ordered by setIndex.
// The caller holds the lock.
func (s *store) setLogsFor(ids map[primitive.ObjectID]struct{}) []domain.SetLog {
	out := []domain.SetLog{}
	for key, l := range s.setLogs {
		if _, ok := ids[key.sessionExerciseID]; ok {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SetIndex != out[j].SetIndex {
			return out[i].SetIndex < out[j].SetIndex
		}
		return lessID(out[i].ID, out[j].ID)
	})
	return out
}
