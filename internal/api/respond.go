package api

import (
	"errors"
	"net/http"

	"alcyxob/trainlog/internal/repository"
	"alcyxob/trainlog/internal/service"
	"alcyxob/trainlog/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Helper to return JSON error response and abort request
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": message})
}

// respondError maps service and validation errors to their HTTP status.
// Anything unrecognized is logged and reported as a generic 500.
func respondError(c *gin.Context, err error) {
	var vErr *validation.ValidationError
	switch {
	case errors.As(err, &vErr):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": vErr.Fields})
	case errors.Is(err, service.ErrExerciseNotFound):
		abortWithError(c, http.StatusNotFound, "Exercise not found")
	case errors.Is(err, service.ErrSessionNotFound):
		abortWithError(c, http.StatusNotFound, "Session not found")
	case errors.Is(err, service.ErrTemplateNotFound):
		abortWithError(c, http.StatusNotFound, "Template not found")
	case errors.Is(err, service.ErrTemplateExerciseNotFound):
		abortWithError(c, http.StatusNotFound, "Template exercise not found")
	case errors.Is(err, service.ErrExerciseAccessDenied):
		abortWithError(c, http.StatusForbidden, "Forbidden")
	case errors.Is(err, service.ErrSessionExerciseNotInSession):
		abortWithError(c, http.StatusBadRequest, "Session exercise not in this session")
	case errors.Is(err, repository.ErrNotFound):
		abortWithError(c, http.StatusNotFound, "Not found")
	default:
		log.WithError(err).WithFields(log.Fields{
			"request_id": requestID(c),
			"path":       c.Request.URL.Path,
		}).Error("request failed")
		abortWithError(c, http.StatusInternalServerError, "Something went wrong")
	}
}

// bindJSON decodes the body into req and validates it. On failure the 400
// response is already written and false is returned.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindBodyWith(req, binding.JSON); err != nil {
		respondError(c, validation.FromDecodeError(err, rawBody(c)))
		return false
	}
	if err := validation.Struct(req); err != nil {
		respondError(c, err)
		return false
	}
	return true
}

// rawBody returns the request body cached by ShouldBindBodyWith.
func rawBody(c *gin.Context) []byte {
	if cached, ok := c.Get(gin.BodyBytesKey); ok {
		if body, ok := cached.([]byte); ok {
			return body
		}
	}
	return nil
}

// pathID parses a hex object id path parameter. Malformed ids are answered with
// notFound, the same as ids that do not exist.
func pathID(c *gin.Context, name string, notFound error) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		respondError(c, notFound)
		return primitive.NilObjectID, false
	}
	return id, true
}

func success(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true})
}
