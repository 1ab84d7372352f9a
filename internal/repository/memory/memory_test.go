package memory

import (
	"context"
	"testing"
	"time"

	"alcyxob/trainlog/internal/domain"
	"alcyxob/trainlog/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func intPtr(v int) *int { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestUserRepo_DuplicateAndResetToken(t *testing.T) {
	ctx := context.Background()
	repos := New()

	u := &domain.User{Email: "a@b.co", Name: "A", PasswordHash: "h"}
	id, err := repos.Users.Create(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)

	_, err = repos.Users.Create(ctx, &domain.User{Email: "a@b.co", PasswordHash: "h"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	now := time.Now().UTC()
	require.NoError(t, repos.Users.SetResetToken(ctx, id, "hash", now.Add(time.Hour)))

	got, err := repos.Users.GetByResetToken(ctx, "hash", now)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)

	_, err = repos.Users.GetByResetToken(ctx, "hash", now.Add(2*time.Hour))
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, repos.Users.UpdatePassword(ctx, id, "new"))
	_, err = repos.Users.GetByResetToken(ctx, "hash", now)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestExerciseRepo_ListVisible(t *testing.T) {
	ctx := context.Background()
	repos := New()
	me, other := primitive.NewObjectID(), primitive.NewObjectID()

	create := func(name string, owner *primitive.ObjectID, c domain.Category) {
		_, err := repos.Exercises.Create(ctx, &domain.Exercise{Name: name, OwnerID: owner, Category: c})
		require.NoError(t, err)
	}
	create("Squat", nil, domain.CategoryStrength)
	create("Bench Press", &me, domain.CategoryStrength)
	create("Rowing", &other, domain.CategoryCardio)
	create("Easy Run", nil, domain.CategoryZone2)

	list, err := repos.Exercises.ListVisible(ctx, repository.ExerciseFilter{OwnerID: me})
	require.NoError(t, err)
	names := make([]string, len(list))
	for i, e := range list {
		names[i] = e.Name
	}
	assert.Equal(t, []string{"Bench Press", "Easy Run", "Squat"}, names)

	list, err = repos.Exercises.ListVisible(ctx, repository.ExerciseFilter{OwnerID: me, Query: "SQU"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Squat", list[0].Name)

	list, err = repos.Exercises.ListVisible(ctx, repository.ExerciseFilter{OwnerID: me, Category: domain.CategoryZone2})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Easy Run", list[0].Name)
}

func TestSetLogRepo_UpsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repos := New()
	seID := primitive.NewObjectID()

	first, err := repos.SetLogs.Upsert(ctx, &domain.SetLog{SessionExerciseID: seID, SetIndex: 0, Reps: intPtr(5), Unit: domain.UnitLb, Completed: true})
	require.NoError(t, err)
	second, err := repos.SetLogs.Upsert(ctx, &domain.SetLog{SessionExerciseID: seID, SetIndex: 0, Reps: intPtr(6), Unit: domain.UnitLb, Completed: true})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	logs, err := repos.SetLogs.ListBySessionExerciseIDs(ctx, []primitive.ObjectID{seID})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, 6, *logs[0].Reps)
}

func TestProgressRepo_ExerciseHistory(t *testing.T) {
	ctx := context.Background()
	repos := New()
	owner, stranger := primitive.NewObjectID(), primitive.NewObjectID()
	exerciseID := primitive.NewObjectID()

	addSession := func(ownerID primitive.ObjectID, day string, weight float64) primitive.ObjectID {
		s := &domain.Session{OwnerID: ownerID, Title: day, Category: domain.CategoryStrength, Date: mustDay(t, day)}
		_, err := repos.Sessions.Create(ctx, s)
		require.NoError(t, err)
		se := &domain.SessionExercise{SessionID: s.ID, ExerciseID: exerciseID}
		_, err = repos.SessionExercises.Create(ctx, se)
		require.NoError(t, err)
		for i := 1; i >= 0; i-- {
			_, err = repos.SetLogs.Upsert(ctx, &domain.SetLog{SessionExerciseID: se.ID, SetIndex: i, Reps: intPtr(5), Weight: floatPtr(weight)})
			require.NoError(t, err)
		}
		return s.ID
	}

	older := addSession(owner, "2024-01-01", 100)
	newer := addSession(owner, "2024-02-01", 110)
	addSession(stranger, "2024-03-01", 999)

	history, err := repos.Progress.ExerciseHistory(ctx, owner, exerciseID, 30)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, newer, history[0].SessionID)
	assert.Equal(t, older, history[1].SessionID)
	require.Len(t, history[0].SetLogs, 2)
	assert.Equal(t, 0, history[0].SetLogs[0].SetIndex)
	assert.Equal(t, 1, history[0].SetLogs[1].SetIndex)

	history, err = repos.Progress.ExerciseHistory(ctx, owner, exerciseID, 1)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, newer, history[0].SessionID)
}

func mustDay(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(domain.DateLayout, s)
	require.NoError(t, err)
	return d
}
