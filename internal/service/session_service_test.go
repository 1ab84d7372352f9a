package service

import (
	"context"
	"testing"

	"alcyxob/trainlog/internal/domain"
	"alcyxob/trainlog/internal/repository"
	"alcyxob/trainlog/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newSession(t *testing.T, svc SessionService, owner primitive.ObjectID, date string, templateID *string) *SessionDetail {
	t.Helper()
	req := validation.CreateSessionRequest{Title: "Leg Day", Category: domain.CategoryStrength, Date: date, TemplateID: templateID}
	require.NoError(t, validation.Struct(&req))
	session, err := svc.CreateSession(context.Background(), owner, req)
	require.NoError(t, err)
	return session
}

func addEntry(t *testing.T, svc SessionService, owner, sessionID primitive.ObjectID, exercise *domain.Exercise, order int) *SessionExerciseDetail {
	t.Helper()
	se, err := svc.AddSessionExercise(context.Background(), owner, sessionID, validation.AddSessionExerciseRequest{
		ExerciseID: exercise.ID.Hex(),
		Order:      intPtr(order),
	})
	require.NoError(t, err)
	return se
}

func logsRequest(t *testing.T, logs ...validation.SetLogRequest) validation.BulkUpsertLogsRequest {
	t.Helper()
	req := validation.BulkUpsertLogsRequest{Logs: logs}
	require.NoError(t, validation.Struct(&req))
	return req
}

func TestSessionService_CreateStoresUTCDay(t *testing.T) {
	repos := newRepos()
	svc := NewSessionService(repos)
	me := primitive.NewObjectID()

	session := newSession(t, svc, me, "2024-03-05", nil)
	assert.Equal(t, "2024-03-05", session.Date.Format(domain.DateLayout))
	assert.Zero(t, session.Date.Hour())
	assert.Nil(t, session.TemplateID)
	assert.Empty(t, session.Exercises)
}

func TestSessionService_CreateFromTemplateCopiesEntries(t *testing.T) {
	ctx := context.Background()
	repos := newRepos()
	svc := NewSessionService(repos)
	me := primitive.NewObjectID()
	squat := createExercise(t, repos, nil, "Squat")
	plank := createExercise(t, repos, nil, "Plank")
	row := createExercise(t, repos, nil, "Row")

	template := &domain.SessionTemplate{OwnerID: me, Title: "A", Category: domain.CategoryStrength}
	_, err := repos.Templates.Create(ctx, template)
	require.NoError(t, err)
	for _, te := range []*domain.TemplateExercise{
		{TemplateID: template.ID, ExerciseID: plank.ID, Order: 1, DefaultDurationSec: intPtr(60)},
		{TemplateID: template.ID, ExerciseID: squat.ID, Order: 0, DefaultSets: intPtr(3), DefaultReps: intPtr(5), DefaultWeight: floatPtr(225)},
		{TemplateID: template.ID, ExerciseID: row.ID, Order: 2},
	} {
		_, err = repos.TemplateExercises.Create(ctx, te)
		require.NoError(t, err)
	}

	hex := template.ID.Hex()
	session := newSession(t, svc, me, "2024-03-05", &hex)
	require.NotNil(t, session.TemplateID)
	assert.Equal(t, template.ID, *session.TemplateID)
	require.Len(t, session.Exercises, 3)

	assert.Equal(t, squat.ID, session.Exercises[0].ExerciseID)
	require.NotNil(t, session.Exercises[0].Notes)
	assert.Equal(t, "3x5 @ 225", *session.Exercises[0].Notes)
	assert.Equal(t, "Squat", session.Exercises[0].Exercise.Name)

	assert.Equal(t, plank.ID, session.Exercises[1].ExerciseID)
	require.NotNil(t, session.Exercises[1].Notes)
	assert.Equal(t, "60s", *session.Exercises[1].Notes)

	assert.Equal(t, row.ID, session.Exercises[2].ExerciseID)
	assert.Nil(t, session.Exercises[2].Notes)
	assert.NotNil(t, session.Exercises[2].SetLogs)
}

func TestSessionService_CreateSkipsForeignTemplate(t *testing.T) {
	ctx := context.Background()
	repos := newRepos()
	svc := NewSessionService(repos)
	me, other := primitive.NewObjectID(), primitive.NewObjectID()
	squat := createExercise(t, repos, nil, "Squat")

	template := &domain.SessionTemplate{OwnerID: other, Title: "Theirs", Category: domain.CategoryStrength}
	_, err := repos.Templates.Create(ctx, template)
	require.NoError(t, err)
	_, err = repos.TemplateExercises.Create(ctx, &domain.TemplateExercise{TemplateID: template.ID, ExerciseID: squat.ID})
	require.NoError(t, err)

	hex := template.ID.Hex()
	session := newSession(t, svc, me, "2024-03-05", &hex)
	assert.Nil(t, session.TemplateID)
	assert.Empty(t, session.Exercises)

	missing := primitive.NewObjectID().Hex()
	session = newSession(t, svc, me, "2024-03-06", &missing)
	assert.Nil(t, session.TemplateID)
}

func TestSessionService_OtherUsersSessionsReadAsMissing(t *testing.T) {
	ctx := context.Background()
	repos := newRepos()
	svc := NewSessionService(repos)
	me, other := primitive.NewObjectID(), primitive.NewObjectID()
	session := newSession(t, svc, me, "2024-03-05", nil)
	squat := createExercise(t, repos, nil, "Squat")

	_, err := svc.GetSession(ctx, other, session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = svc.UpdateSession(ctx, other, session.ID, validation.UpdateSessionRequest{Title: strPtr("Mine now")})
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, svc.DeleteSession(ctx, other, session.ID), ErrSessionNotFound)
	_, err = svc.AddSessionExercise(ctx, other, session.ID, validation.AddSessionExerciseRequest{ExerciseID: squat.ID.Hex(), Order: intPtr(0)})
	assert.ErrorIs(t, err, ErrSessionNotFound)

	list, err := svc.ListSessions(ctx, other, repository.SessionFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSessionService_UpdatePartial(t *testing.T) {
	ctx := context.Background()
	repos := newRepos()
	svc := NewSessionService(repos)
	me := primitive.NewObjectID()
	session := newSession(t, svc, me, "2024-03-05", nil)

	updated, err := svc.UpdateSession(ctx, me, session.ID, validation.UpdateSessionRequest{
		Date:  strPtr("2024-04-01"),
		Notes: strPtr("felt strong"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Leg Day", updated.Title)
	assert.Equal(t, "2024-04-01", updated.Date.Format(domain.DateLayout))
	require.NotNil(t, updated.Notes)
	assert.Equal(t, "felt strong", *updated.Notes)
}

func TestSessionService_AddExerciseRequiresVisibleExercise(t *testing.T) {
	ctx := context.Background()
	repos := newRepos()
	svc := NewSessionService(repos)
	me, other := primitive.NewObjectID(), primitive.NewObjectID()
	session := newSession(t, svc, me, "2024-03-05", nil)
	hidden := createExercise(t, repos, &other, "Hidden")

	_, err := svc.AddSessionExercise(ctx, me, session.ID, validation.AddSessionExerciseRequest{ExerciseID: hidden.ID.Hex(), Order: intPtr(0)})
	var vErr *validation.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, []string{"Exercise not found"}, vErr.Fields["exerciseId"])

	mine := createExercise(t, repos, &me, "Mine")
	se := addEntry(t, svc, me, session.ID, mine, 0)
	assert.Equal(t, "Mine", se.Exercise.Name)
	assert.Equal(t, []domain.SetLog{}, se.SetLogs)
}

func TestSessionService_UpsertSetLogsIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repos := newRepos()
	svc := NewSessionService(repos)
	me := primitive.NewObjectID()
	session := newSession(t, svc, me, "2024-03-05", nil)
	squat := createExercise(t, repos, nil, "Squat")
	se := addEntry(t, svc, me, session.ID, squat, 0)

	first := logsRequest(t,
		validation.SetLogRequest{SessionExerciseID: se.ID.Hex(), SetIndex: intPtr(0), Reps: intPtr(5), Weight: floatPtr(100)},
		validation.SetLogRequest{SessionExerciseID: se.ID.Hex(), SetIndex: intPtr(1), Reps: intPtr(5), Weight: floatPtr(105)},
	)
	saved, err := svc.UpsertSetLogs(ctx, me, session.ID, first)
	require.NoError(t, err)
	require.Len(t, saved, 2)
	assert.Equal(t, domain.UnitLb, saved[0].Unit)
	assert.True(t, saved[0].Completed)

	second := logsRequest(t,
		validation.SetLogRequest{SessionExerciseID: se.ID.Hex(), SetIndex: intPtr(1), Reps: intPtr(3), Weight: floatPtr(110)},
	)
	saved, err = svc.UpsertSetLogs(ctx, me, session.ID, second)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, 110.0, *saved[0].Weight)

	detail, err := svc.GetSession(ctx, me, session.ID)
	require.NoError(t, err)
	require.Len(t, detail.Exercises, 1)
	logs := detail.Exercises[0].SetLogs
	require.Len(t, logs, 2)
	assert.Equal(t, 0, logs[0].SetIndex)
	assert.Equal(t, 1, logs[1].SetIndex)
	assert.Equal(t, 3, *logs[1].Reps)
}

func TestSessionService_UpsertSetLogsRejectsForeignEntryWithoutWriting(t *testing.T) {
	ctx := context.Background()
	repos := newRepos()
	svc := NewSessionService(repos)
	me := primitive.NewObjectID()
	squat := createExercise(t, repos, nil, "Squat")
	session := newSession(t, svc, me, "2024-03-05", nil)
	otherSession := newSession(t, svc, me, "2024-03-06", nil)
	mine := addEntry(t, svc, me, session.ID, squat, 0)
	elsewhere := addEntry(t, svc, me, otherSession.ID, squat, 0)

	req := logsRequest(t,
		validation.SetLogRequest{SessionExerciseID: mine.ID.Hex(), SetIndex: intPtr(0), Reps: intPtr(5)},
		validation.SetLogRequest{SessionExerciseID: elsewhere.ID.Hex(), SetIndex: intPtr(0), Reps: intPtr(5)},
	)
	_, err := svc.UpsertSetLogs(ctx, me, session.ID, req)
	assert.ErrorIs(t, err, ErrSessionExerciseNotInSession)

	logs, err := repos.SetLogs.ListBySessionExerciseIDs(ctx, []primitive.ObjectID{mine.ID, elsewhere.ID})
	require.NoError(t, err)
	assert.Empty(t, logs)

	bad := logsRequest(t, validation.SetLogRequest{SessionExerciseID: "nope", SetIndex: intPtr(0)})
	_, err = svc.UpsertSetLogs(ctx, me, session.ID, bad)
	assert.ErrorIs(t, err, ErrSessionExerciseNotInSession)
}

func TestSessionService_ListNewestFirstWithDateFilter(t *testing.T) {
	ctx := context.Background()
	repos := newRepos()
	svc := NewSessionService(repos)
	me := primitive.NewObjectID()
	newSession(t, svc, me, "2024-01-01", nil)
	newSession(t, svc, me, "2024-02-01", nil)
	newSession(t, svc, me, "2024-03-01", nil)

	all, err := svc.ListSessions(ctx, me, repository.SessionFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "2024-03-01", all[0].Date.Format(domain.DateLayout))
	assert.Equal(t, "2024-01-01", all[2].Date.Format(domain.DateLayout))

	from, err := validation.ParseDateFilter("from", "2024-01-15")
	require.NoError(t, err)
	to, err := validation.ParseDateFilter("to", "2024-02-01")
	require.NoError(t, err)
	window, err := svc.ListSessions(ctx, me, repository.SessionFilter{From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, window, 1)
	assert.Equal(t, "2024-02-01", window[0].Date.Format(domain.DateLayout))
}

func TestSessionService_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	repos := newRepos()
	svc := NewSessionService(repos)
	me := primitive.NewObjectID()
	squat := createExercise(t, repos, nil, "Squat")
	session := newSession(t, svc, me, "2024-03-05", nil)
	se := addEntry(t, svc, me, session.ID, squat, 0)
	_, err := svc.UpsertSetLogs(ctx, me, session.ID, logsRequest(t,
		validation.SetLogRequest{SessionExerciseID: se.ID.Hex(), SetIndex: intPtr(0), Reps: intPtr(5)},
	))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteSession(ctx, me, session.ID))

	_, err = svc.GetSession(ctx, me, session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	items, err := repos.SessionExercises.ListBySessionIDs(ctx, []primitive.ObjectID{session.ID})
	require.NoError(t, err)
	assert.Empty(t, items)
	logs, err := repos.SetLogs.ListBySessionExerciseIDs(ctx, []primitive.ObjectID{se.ID})
	require.NoError(t, err)
	assert.Empty(t, logs)
}
