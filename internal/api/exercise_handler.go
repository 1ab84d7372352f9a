package api

import (
	"errors"
	"net/http"

	"alcyxob/trainlog/internal/domain"
	"alcyxob/trainlog/internal/service"
	"alcyxob/trainlog/internal/validation"

	"github.com/gin-gonic/gin"
)

// ExerciseHandler holds the exercise service dependency.
type ExerciseHandler struct {
	exerciseService service.ExerciseService
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(exerciseService service.ExerciseService) *ExerciseHandler {
	return &ExerciseHandler{exerciseService: exerciseService}
}

// ListExercises godoc
// @Summary List visible exercises
// @Description Global exercises plus the caller's own, sorted by name.
// @Tags Exercises
// @Produce json
// @Security BearerAuth
// @Param q query string false "Case-insensitive name filter"
// @Param category query string false "Category filter"
// @Success 200 {array} domain.Exercise
// @Router /exercises [get]
func (h *ExerciseHandler) ListExercises(c *gin.Context) {
	category := domain.Category(c.Query("category"))
	if category != "" && !category.Valid() {
		// Unknown categories match nothing.
		c.JSON(http.StatusOK, []domain.Exercise{})
		return
	}

	exercises, err := h.exerciseService.ListExercises(c.Request.Context(), currentUser(c).ID, c.Query("q"), category)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, exercises)
}

// CreateExercise godoc
// @Summary Create a custom exercise owned by the caller
// @Tags Exercises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} domain.Exercise
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Router /exercises [post]
func (h *ExerciseHandler) CreateExercise(c *gin.Context) {
	var req validation.CreateExerciseRequest
	if !bindJSON(c, &req) {
		return
	}

	exercise, err := h.exerciseService.CreateExercise(c.Request.Context(), currentUser(c).ID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, exercise)
}

func (h *ExerciseHandler) GetExercise(c *gin.Context) {
	exerciseID, ok := pathID(c, "id", service.ErrExerciseNotFound)
	if !ok {
		return
	}

	exercise, err := h.exerciseService.GetExercise(c.Request.Context(), currentUser(c).ID, exerciseID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, exercise)
}

// UpdateExercise godoc
// @Summary Update an exercise
// @Description Global exercises and the caller's own may be edited.
// @Tags Exercises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} domain.Exercise
// @Failure 403 {object} gin.H "Owned by another user"
// @Failure 404 {object} gin.H "Exercise not found"
// @Router /exercises/{id} [patch]
func (h *ExerciseHandler) UpdateExercise(c *gin.Context) {
	exerciseID, ok := pathID(c, "id", service.ErrExerciseNotFound)
	if !ok {
		return
	}
	var req validation.UpdateExerciseRequest
	if !bindJSON(c, &req) {
		return
	}

	exercise, err := h.exerciseService.UpdateExercise(c.Request.Context(), currentUser(c).ID, exerciseID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, exercise)
}

// DeleteExercise godoc
// @Summary Delete a custom exercise
// @Description Removes the exercise and every session and template entry using it.
// @Tags Exercises
// @Security BearerAuth
// @Success 200 {object} gin.H
// @Failure 403 {object} gin.H "Global or owned by another user"
// @Failure 404 {object} gin.H "Exercise not found"
// @Router /exercises/{id} [delete]
func (h *ExerciseHandler) DeleteExercise(c *gin.Context) {
	exerciseID, ok := pathID(c, "id", service.ErrExerciseNotFound)
	if !ok {
		return
	}

	err := h.exerciseService.DeleteExercise(c.Request.Context(), currentUser(c).ID, exerciseID)
	if err != nil {
		if errors.Is(err, service.ErrExerciseAccessDenied) {
			abortWithError(c, http.StatusForbidden, "Can only delete your own custom exercises")
			return
		}
		respondError(c, err)
		return
	}
	success(c)
}
