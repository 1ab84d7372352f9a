package service

import (
	"context"
	"errors"

	"alcyxob/trainlog/internal/domain"
	"alcyxob/trainlog/internal/repository"
	"alcyxob/trainlog/internal/validation"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

// --- Error Definitions ---
var (
	ErrSessionNotFound             = errors.New("session not found")
	ErrSessionExerciseNotInSession = errors.New("session exercise not in this session")
)

// maxConcurrentUpserts bounds the fan-out of a bulk set log upsert.
const maxConcurrentUpserts = 8

// SessionDetail is a session with its exercises in order.
type SessionDetail struct {
	domain.Session
	Exercises []SessionExerciseDetail `json:"exercises"`
}

// SessionExerciseDetail embeds the referenced exercise and its set logs by setIndex.
type SessionExerciseDetail struct {
	domain.SessionExercise
	Exercise *domain.Exercise `json:"exercise"`
	SetLogs  []domain.SetLog  `json:"setLogs"`
}

type SessionService interface {
	ListSessions(ctx context.Context, userID primitive.ObjectID, filter repository.SessionFilter) ([]SessionDetail, error)
	CreateSession(ctx context.Context, userID primitive.ObjectID, req validation.CreateSessionRequest) (*SessionDetail, error)
	GetSession(ctx context.Context, userID, sessionID primitive.ObjectID) (*SessionDetail, error)
	UpdateSession(ctx context.Context, userID, sessionID primitive.ObjectID, req validation.UpdateSessionRequest) (*domain.Session, error)
	DeleteSession(ctx context.Context, userID, sessionID primitive.ObjectID) error
	AddSessionExercise(ctx context.Context, userID, sessionID primitive.ObjectID, req validation.AddSessionExerciseRequest) (*SessionExerciseDetail, error)
	// UpsertSetLogs writes every log or none: membership of all session
	// exercises is checked before the first write.
	UpsertSetLogs(ctx context.Context, userID, sessionID primitive.ObjectID, req validation.BulkUpsertLogsRequest) ([]domain.SetLog, error)
}

type sessionService struct {
	repos repository.Repositories
}

func NewSessionService(repos repository.Repositories) SessionService {
	return &sessionService{repos: repos}
}

func (s *sessionService) ListSessions(ctx context.Context, userID primitive.ObjectID, filter repository.SessionFilter) ([]SessionDetail, error) {
	sessions, err := s.repos.Sessions.ListByOwner(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	return loadSessionDetails(ctx, s.repos, sessions, true)
}

// CreateSession stores a session and, when a template of the caller is named,
// copies its exercises with notes derived from the template defaults.
func (s *sessionService) CreateSession(ctx context.Context, userID primitive.ObjectID, req validation.CreateSessionRequest) (*SessionDetail, error) {
	template, err := s.ownedTemplateOrNil(ctx, userID, req.TemplateID)
	if err != nil {
		return nil, err
	}

	session := &domain.Session{
		OwnerID:  userID,
		Title:    req.Title,
		Category: req.Category,
		Date:     req.Day(),
		Notes:    req.Notes,
	}
	if template != nil {
		templateID := template.ID
		session.TemplateID = &templateID
	}
	if _, err := s.repos.Sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	if template != nil {
		planned, err := s.repos.TemplateExercises.ListByTemplateIDs(ctx, []primitive.ObjectID{template.ID})
		if err != nil {
			return nil, err
		}
		copies := make([]*domain.SessionExercise, len(planned))
		for i := range planned {
			copies[i] = &domain.SessionExercise{
				SessionID:  session.ID,
				ExerciseID: planned[i].ExerciseID,
				Order:      planned[i].Order,
				Notes:      planned[i].SessionNotes(),
			}
		}
		if err := s.repos.SessionExercises.CreateMany(ctx, copies); err != nil {
			return nil, err
		}
	}

	details, err := loadSessionDetails(ctx, s.repos, []domain.Session{*session}, false)
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

// ownedTemplateOrNil resolves the template a session is created from. Unknown
// and foreign templates are skipped; the session is still created without them.
func (s *sessionService) ownedTemplateOrNil(ctx context.Context, userID primitive.ObjectID, templateHex *string) (*domain.SessionTemplate, error) {
	if templateHex == nil || *templateHex == "" {
		return nil, nil
	}
	templateID, err := primitive.ObjectIDFromHex(*templateHex)
	if err != nil {
		return nil, nil
	}

	template, err := s.repos.Templates.GetByID(ctx, templateID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.WithField("template_id", *templateHex).Warn("create session: template not found, skipping copy")
			return nil, nil
		}
		return nil, err
	}
	if template.OwnerID != userID {
		log.WithFields(log.Fields{"template_id": *templateHex, "user_id": userID.Hex()}).
			Warn("create session: template owned by another user, skipping copy")
		return nil, nil
	}
	return template, nil
}

func (s *sessionService) GetSession(ctx context.Context, userID, sessionID primitive.ObjectID) (*SessionDetail, error) {
	session, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	details, err := loadSessionDetails(ctx, s.repos, []domain.Session{*session}, true)
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

func (s *sessionService) UpdateSession(ctx context.Context, userID, sessionID primitive.ObjectID, req validation.UpdateSessionRequest) (*domain.Session, error) {
	session, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		session.Title = *req.Title
	}
	if req.Category != nil {
		session.Category = *req.Category
	}
	if req.Date != nil {
		session.Date = validation.ParseDay(*req.Date)
	}
	if req.Notes != nil {
		session.Notes = req.Notes
	}

	if err := s.repos.Sessions.Update(ctx, session); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

// DeleteSession removes the session, its exercises and their set logs, children first.
func (s *sessionService) DeleteSession(ctx context.Context, userID, sessionID primitive.ObjectID) error {
	if _, err := s.ownedSession(ctx, userID, sessionID); err != nil {
		return err
	}

	items, err := s.repos.SessionExercises.ListBySessionIDs(ctx, []primitive.ObjectID{sessionID})
	if err != nil {
		return err
	}
	if err := s.repos.SetLogs.DeleteBySessionExerciseIDs(ctx, sessionExerciseIDs(items)); err != nil {
		return err
	}
	if err := s.repos.SessionExercises.DeleteBySessionID(ctx, sessionID); err != nil {
		return err
	}

	err = s.repos.Sessions.Delete(ctx, sessionID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrSessionNotFound
	}
	return err
}

func (s *sessionService) AddSessionExercise(ctx context.Context, userID, sessionID primitive.ObjectID, req validation.AddSessionExerciseRequest) (*SessionExerciseDetail, error) {
	if _, err := s.ownedSession(ctx, userID, sessionID); err != nil {
		return nil, err
	}

	exercise, err := exerciseForEntry(ctx, s.repos.Exercises, userID, req.ExerciseID)
	if err != nil {
		return nil, err
	}

	se := &domain.SessionExercise{
		SessionID:  sessionID,
		ExerciseID: exercise.ID,
		Order:      *req.Order,
		Notes:      req.Notes,
	}
	if _, err := s.repos.SessionExercises.Create(ctx, se); err != nil {
		return nil, err
	}
	return &SessionExerciseDetail{SessionExercise: *se, Exercise: exercise, SetLogs: []domain.SetLog{}}, nil
}

func (s *sessionService) UpsertSetLogs(ctx context.Context, userID, sessionID primitive.ObjectID, req validation.BulkUpsertLogsRequest) ([]domain.SetLog, error) {
	if _, err := s.ownedSession(ctx, userID, sessionID); err != nil {
		return nil, err
	}

	members, err := s.repos.SessionExercises.ListBySessionIDs(ctx, []primitive.ObjectID{sessionID})
	if err != nil {
		return nil, err
	}
	memberIDs := make(map[primitive.ObjectID]struct{}, len(members))
	for _, se := range members {
		memberIDs[se.ID] = struct{}{}
	}

	logs := make([]domain.SetLog, len(req.Logs))
	for i, l := range req.Logs {
		seID, err := primitive.ObjectIDFromHex(l.SessionExerciseID)
		if err != nil {
			return nil, ErrSessionExerciseNotInSession
		}
		if _, ok := memberIDs[seID]; !ok {
			return nil, ErrSessionExerciseNotInSession
		}
		logs[i] = domain.SetLog{
			SessionExerciseID: seID,
			SetIndex:          *l.SetIndex,
			Reps:              l.Reps,
			Weight:            l.Weight,
			Unit:              l.Unit,
			DurationSec:       l.DurationSec,
			DistanceMeters:    l.DistanceMeters,
			RPE:               l.RPE,
			Completed:         l.Completed == nil || *l.Completed,
			Notes:             l.Notes,
		}
	}

	saved := make([]domain.SetLog, len(logs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentUpserts)
	for i := range logs {
		i := i
		g.Go(func() error {
			row, err := s.repos.SetLogs.Upsert(gctx, &logs[i])
			if err != nil {
				return err
			}
			saved[i] = *row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return saved, nil
}

// ownedSession loads a session of the user. Sessions of other users read as missing.
func (s *sessionService) ownedSession(ctx context.Context, userID, sessionID primitive.ObjectID) (*domain.Session, error) {
	session, err := s.repos.Sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if session.OwnerID != userID {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// exerciseForEntry resolves the exercise a session or template entry points at.
// An exercise the user cannot see is reported against the exerciseId field.
func exerciseForEntry(ctx context.Context, repo repository.ExerciseRepository, userID primitive.ObjectID, exerciseHex string) (*domain.Exercise, error) {
	exerciseID, err := primitive.ObjectIDFromHex(exerciseHex)
	if err != nil {
		return nil, validation.NewFieldError("exerciseId", "Invalid id")
	}
	exercise, err := visibleExercise(ctx, repo, userID, exerciseID)
	if errors.Is(err, ErrExerciseNotFound) {
		return nil, validation.NewFieldError("exerciseId", "Exercise not found")
	}
	return exercise, err
}

// loadSessionDetails attaches exercises and their set logs to sessions with one
// query per collection. withLogs=false skips the set log read for sessions known
// to have none.
func loadSessionDetails(ctx context.Context, repos repository.Repositories, sessions []domain.Session, withLogs bool) ([]SessionDetail, error) {
	details := make([]SessionDetail, len(sessions))
	if len(sessions) == 0 {
		return details, nil
	}

	sessionIDs := make([]primitive.ObjectID, len(sessions))
	for i, session := range sessions {
		sessionIDs[i] = session.ID
	}
	items, err := repos.SessionExercises.ListBySessionIDs(ctx, sessionIDs)
	if err != nil {
		return nil, err
	}

	exercises, err := exercisesByID(ctx, repos.Exercises, items, func(se domain.SessionExercise) primitive.ObjectID { return se.ExerciseID })
	if err != nil {
		return nil, err
	}

	logsBySE := map[primitive.ObjectID][]domain.SetLog{}
	if withLogs {
		logs, err := repos.SetLogs.ListBySessionExerciseIDs(ctx, sessionExerciseIDs(items))
		if err != nil {
			return nil, err
		}
		for _, l := range logs {
			logsBySE[l.SessionExerciseID] = append(logsBySE[l.SessionExerciseID], l)
		}
	}

	bySession := map[primitive.ObjectID][]SessionExerciseDetail{}
	for _, se := range items {
		detail := SessionExerciseDetail{
			SessionExercise: se,
			Exercise:        exercises[se.ExerciseID],
			SetLogs:         logsBySE[se.ID],
		}
		if detail.SetLogs == nil {
			detail.SetLogs = []domain.SetLog{}
		}
		bySession[se.SessionID] = append(bySession[se.SessionID], detail)
	}

	for i, session := range sessions {
		details[i] = SessionDetail{Session: session, Exercises: bySession[session.ID]}
		if details[i].Exercises == nil {
			details[i].Exercises = []SessionExerciseDetail{}
		}
	}
	return details, nil
}

// exercisesByID fetches the exercises referenced by items in one call.
func exercisesByID[T any](ctx context.Context, repo repository.ExerciseRepository, items []T, ref func(T) primitive.ObjectID) (map[primitive.ObjectID]*domain.Exercise, error) {
	ids := make([]primitive.ObjectID, 0, len(items))
	seen := map[primitive.ObjectID]bool{}
	for _, item := range items {
		id := ref(item)
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	out := make(map[primitive.ObjectID]*domain.Exercise, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	exercises, err := repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range exercises {
		out[exercises[i].ID] = &exercises[i]
	}
	return out, nil
}
