package memory

import (
	"context"

	"alcyxob/trainlog/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type progressRepo struct{ s *store }

func (r *progressRepo) ExerciseHistory(_ context.Context, ownerID, exerciseID primitive.ObjectID, limit int) ([]domain.ExerciseSessionLogs, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	// Session exercises of this exercise grouped by owned session.
	bySession := map[primitive.ObjectID][]domain.SessionExercise{}
	for _, se := range r.s.sessionExercises {
		if se.ExerciseID != exerciseID {
			continue
		}
		s, ok := r.s.sessions[se.SessionID]
		if !ok || s.OwnerID != ownerID {
			continue
		}
		bySession[se.SessionID] = append(bySession[se.SessionID], se)
	}

	sessions := make([]domain.Session, 0, len(bySession))
	for id := range bySession {
		sessions = append(sessions, r.s.sessions[id])
	}
	sortSessionsDesc(sessions)
	if limit > 0 && len(sessions) > limit {
		sessions = sessions[:limit]
	}

	history := make([]domain.ExerciseSessionLogs, 0, len(sessions))
	for _, s := range sessions {
		items := bySession[s.ID]
		sortSessionExercises(items)
		ids := make([]primitive.ObjectID, len(items))
		for i, se := range items {
			ids[i] = se.ID
		}
		history = append(history, domain.ExerciseSessionLogs{
			SessionID:         s.ID,
			SessionExerciseID: items[0].ID,
			Date:              s.Date,
			SetLogs:           r.s.setLogsFor(idSet(ids)),
		})
	}
	return history, nil
}
