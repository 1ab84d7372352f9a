package repository

import (
	"context"
	"time"

	"alcyxob/trainlog/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound  = RepositoryError("not found")
	ErrDuplicate = RepositoryError("duplicate key")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
// Emails are expected to be normalized (lowercased) by the caller.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) // ErrDuplicate on email clash
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	// GetByResetToken finds the user holding tokenHash whose expiry is after now.
	GetByResetToken(ctx context.Context, tokenHash string, now time.Time) (*domain.User, error)
	SetResetToken(ctx context.Context, id primitive.ObjectID, tokenHash string, expiry time.Time) error
	// UpdatePassword stores a new hash and clears any pending reset token.
	UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error
}

// ExerciseFilter narrows ListVisible. Empty Query/Category match everything.
type ExerciseFilter struct {
	OwnerID  primitive.ObjectID
	Query    string // case-insensitive substring of the name
	Category domain.Category
}

// ExerciseRepository defines the interface for interacting with exercise data.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Exercise, error)
	// ListVisible returns global exercises plus those owned by filter.OwnerID, sorted by name.
	ListVisible(ctx context.Context, filter ExerciseFilter) ([]domain.Exercise, error)
	Update(ctx context.Context, exercise *domain.Exercise) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// SessionFilter bounds the session date, both ends inclusive.
type SessionFilter struct {
	From *time.Time
	To   *time.Time
}

// SessionRepository defines the interface for interacting with session data.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Session, error)
	// ListByOwner returns sessions sorted by date, newest first.
	ListByOwner(ctx context.Context, ownerID primitive.ObjectID, filter SessionFilter) ([]domain.Session, error)
	Update(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// SessionExerciseRepository manages the exercises performed within sessions.
type SessionExerciseRepository interface {
	Create(ctx context.Context, se *domain.SessionExercise) (primitive.ObjectID, error)
	CreateMany(ctx context.Context, items []*domain.SessionExercise) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.SessionExercise, error)
	// ListBySessionIDs returns rows ordered by their order field.
	ListBySessionIDs(ctx context.Context, sessionIDs []primitive.ObjectID) ([]domain.SessionExercise, error)
	ListByExerciseID(ctx context.Context, exerciseID primitive.ObjectID) ([]domain.SessionExercise, error)
	DeleteBySessionID(ctx context.Context, sessionID primitive.ObjectID) error
	DeleteByExerciseID(ctx context.Context, exerciseID primitive.ObjectID) error
}

// SetLogRepository manages per-set logs, unique on (sessionExerciseId, setIndex).
type SetLogRepository interface {
	// Upsert inserts or replaces the log keyed by its session exercise and set index,
	// returning the stored row.
	Upsert(ctx context.Context, log *domain.SetLog) (*domain.SetLog, error)
	// ListBySessionExerciseIDs returns rows ordered by setIndex.
	ListBySessionExerciseIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.SetLog, error)
	DeleteBySessionExerciseIDs(ctx context.Context, ids []primitive.ObjectID) error
}

// TemplateRepository defines the interface for interacting with session templates.
type TemplateRepository interface {
	Create(ctx context.Context, template *domain.SessionTemplate) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.SessionTemplate, error)
	// ListByOwner returns templates newest first.
	ListByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]domain.SessionTemplate, error)
	Update(ctx context.Context, template *domain.SessionTemplate) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// TemplateExerciseRepository manages the exercises planned within templates.
type TemplateExerciseRepository interface {
	Create(ctx context.Context, te *domain.TemplateExercise) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.TemplateExercise, error)
	// ListByTemplateIDs returns rows ordered by their order field.
	ListByTemplateIDs(ctx context.Context, templateIDs []primitive.ObjectID) ([]domain.TemplateExercise, error)
	Update(ctx context.Context, te *domain.TemplateExercise) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByTemplateID(ctx context.Context, templateID primitive.ObjectID) error
	DeleteByExerciseID(ctx context.Context, exerciseID primitive.ObjectID) error
}

// ProgressRepository reads the set logs of one exercise across an owner's sessions.
type ProgressRepository interface {
	// ExerciseHistory returns at most limit sessions containing the exercise, most
	// recent first, each with its set logs ordered by setIndex. limit <= 0 reads all.
	ExerciseHistory(ctx context.Context, ownerID, exerciseID primitive.ObjectID, limit int) ([]domain.ExerciseSessionLogs, error)
}

// Repositories bundles one implementation of every repository.
type Repositories struct {
	Users             UserRepository
	Exercises         ExerciseRepository
	Sessions          SessionRepository
	SessionExercises  SessionExerciseRepository
	SetLogs           SetLogRepository
	Templates         TemplateRepository
	TemplateExercises TemplateExerciseRepository
	Progress          ProgressRepository
}
