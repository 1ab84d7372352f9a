package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"alcyxob/trainlog/internal/domain"
	"alcyxob/trainlog/internal/repository"
	"alcyxob/trainlog/internal/storage"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const exportURLExpiry = time.Hour

// ExportResult points at an uploaded export document.
type ExportResult struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
	Sessions  int       `json:"sessions"`
}

// exportDocument is the JSON written to object storage.
type exportDocument struct {
	ExportedAt time.Time         `json:"exportedAt"`
	User       *domain.User      `json:"user"`
	Exercises  []domain.Exercise `json:"exercises"`
	Sessions   []SessionDetail   `json:"sessions"`
	Templates  []TemplateDetail  `json:"templates"`
}

type ExportService interface {
	// Export uploads the user's full training log and returns a temporary download link.
	Export(ctx context.Context, userID primitive.ObjectID) (*ExportResult, error)
}

type exportService struct {
	repos     repository.Repositories
	templates TemplateService
	files     storage.FileStorage
	now       func() time.Time
}

func NewExportService(repos repository.Repositories, files storage.FileStorage) ExportService {
	return &exportService{
		repos:     repos,
		templates: NewTemplateService(repos),
		files:     files,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *exportService) Export(ctx context.Context, userID primitive.ObjectID) (*ExportResult, error) {
	user, err := s.repos.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	user.PasswordHash = ""

	sessions, err := s.repos.Sessions.ListByOwner(ctx, userID, repository.SessionFilter{})
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	sessionDetails, err := loadSessionDetails(ctx, s.repos, sessions, true)
	if err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}
	templates, err := s.templates.ListTemplates(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	exercises, err := s.ownExercises(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}

	now := s.now()
	body, err := json.MarshalIndent(exportDocument{
		ExportedAt: now,
		User:       user,
		Exercises:  exercises,
		Sessions:   sessionDetails,
		Templates:  templates,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}

	key := fmt.Sprintf("exports/%s/%s.json", userID.Hex(), uuid.NewString())
	if err := s.files.PutObject(ctx, key, "application/json", body); err != nil {
		return nil, fmt.Errorf("upload export: %w", err)
	}

	url, err := s.files.GeneratePresignedDownloadURL(ctx, key, exportURLExpiry)
	if err != nil {
		// Without a link the upload is unreachable; remove it.
		if delErr := s.files.DeleteObject(ctx, key); delErr != nil {
			log.WithError(delErr).WithField("key", key).Warn("export: remove orphaned object")
		}
		return nil, fmt.Errorf("presign export: %w", err)
	}

	return &ExportResult{
		Key:       key,
		URL:       url,
		ExpiresAt: now.Add(exportURLExpiry),
		Sessions:  len(sessionDetails),
	}, nil
}

// ownExercises lists the exercises the user created; the global catalog is not exported.
func (s *exportService) ownExercises(ctx context.Context, userID primitive.ObjectID) ([]domain.Exercise, error) {
	visible, err := s.repos.Exercises.ListVisible(ctx, repository.ExerciseFilter{OwnerID: userID})
	if err != nil {
		return nil, err
	}
	own := []domain.Exercise{}
	for _, e := range visible {
		if !e.Ownership().IsGlobal() {
			own = append(own, e)
		}
	}
	return own, nil
}
