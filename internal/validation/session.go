package validation

import (
	"strings"
	"time"

	"alcyxob/trainlog/internal/domain"
)

type CreateSessionRequest struct {
	Title      string          `json:"title" validate:"min=1,max=200"`
	Category   domain.Category `json:"category" validate:"category"`
	Date       string          `json:"date" validate:"ymd"`
	Notes      *string         `json:"notes"`
	TemplateID *string         `json:"templateId" validate:"omitempty,objectid"`
}

func (r *CreateSessionRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
}

// Day returns the session date as UTC midnight. Only valid after Struct succeeded.
func (r *CreateSessionRequest) Day() time.Time {
	return ParseDay(r.Date)
}

type UpdateSessionRequest struct {
	Title    *string          `json:"title" validate:"omitnil,min=1,max=200"`
	Category *domain.Category `json:"category" validate:"omitempty,category"`
	Date     *string          `json:"date" validate:"omitempty,ymd"`
	Notes    *string          `json:"notes"`
}

func (r *UpdateSessionRequest) Normalize() {
	trimPtr(r.Title)
}

type AddSessionExerciseRequest struct {
	ExerciseID string  `json:"exerciseId" validate:"required,objectid"`
	Order      *int    `json:"order" validate:"required,min=0"`
	Notes      *string `json:"notes"`
}

type SetLogRequest struct {
	SessionExerciseID string            `json:"sessionExerciseId" validate:"required"`
	SetIndex          *int              `json:"setIndex" validate:"required,min=0"`
	Reps              *int              `json:"reps" validate:"omitnil,min=0"`
	Weight            *float64          `json:"weight"`
	Unit              domain.WeightUnit `json:"unit" validate:"omitempty,weightunit"`
	DurationSec       *int              `json:"durationSec" validate:"omitnil,min=0"`
	DistanceMeters    *int              `json:"distanceMeters" validate:"omitnil,min=0"`
	RPE               *int              `json:"rpe" validate:"omitnil,min=1,max=10"`
	Completed         *bool             `json:"completed"`
	Notes             *string           `json:"notes"`
}

func (r *SetLogRequest) ApplyDefaults() {
	if r.Unit == "" {
		r.Unit = domain.UnitLb
	}
	if r.Completed == nil {
		completed := true
		r.Completed = &completed
	}
}

type BulkUpsertLogsRequest struct {
	Logs []SetLogRequest `json:"logs" validate:"required,dive"`
}

func (r *BulkUpsertLogsRequest) ApplyDefaults() {
	for i := range r.Logs {
		r.Logs[i].ApplyDefaults()
	}
}

// ParseDay parses YYYY-MM-DD as UTC midnight, returning the zero time on failure.
func ParseDay(s string) time.Time {
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

// ParseDateFilter accepts either YYYY-MM-DD or RFC3339, as used by list filters.
func ParseDateFilter(field, s string) (time.Time, error) {
	if t, err := time.Parse(domain.DateLayout, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, NewFieldError(field, "Invalid date")
}
