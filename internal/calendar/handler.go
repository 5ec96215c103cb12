package calendar

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	v1 "github.com/Jomes01/Kioku/internal/api/v1"
	httperr "github.com/Jomes01/Kioku/internal/core/errors"
	"github.com/Jomes01/Kioku/internal/eventstore"
	"github.com/gin-gonic/gin"
)

const (
	msgInvalidJSON      = "Invalid JSON body"
	msgInvalidPath      = "Invalid path parameters"
	msgValidationFailed = "Event validation failed"
	msgStorageFailed    = "Event storage is unavailable"

	icsContentType = "text/calendar; charset=utf-8"
)

// eventRequest is the body of create and update calls.
type eventRequest struct {
	Date v1.DateKey `json:"date"`
	v1.EventInput
}

// RegisterRoutes registers the calendar API on the given router.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.GET("/v1/events", s.HandleListEvents)
	r.POST("/v1/events", s.HandleCreateEvent)
	r.PUT("/v1/events/:id", s.HandleUpdateEvent)
	r.DELETE("/v1/events/:id", s.HandleDeleteEvent)

	r.GET("/v1/dates/:date", s.HandleDay)
	r.GET("/v1/months/:year/:month", s.HandleMonthAgenda)
	r.GET("/v1/search", s.HandleSearch)

	r.GET("/v1/categories", s.HandleCategoryCounts)
	r.GET("/v1/categories/:type", s.HandleEventsByCategory)

	r.GET("/v1/calendar.ics", s.HandleExportICS)
	r.POST("/v1/reminders/reconcile", s.HandleReconcile)
}

// HandleListEvents handles GET /v1/events
func (s *Service) HandleListEvents(c *gin.Context) {
	events, err := s.ListEvents(c.Request.Context())
	if err != nil {
		writeError(c, err, "Failed to list events")
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

// HandleCreateEvent handles POST /v1/events
func (s *Service) HandleCreateEvent(c *gin.Context) {
	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidJsonError,
			Message:   msgInvalidJSON,
			Details:   err.Error(),
		})
		return
	}

	evt, err := s.CreateEvent(c.Request.Context(), req.Date, req.EventInput)
	if err != nil {
		writeError(c, err, "Failed to create event")
		return
	}
	c.JSON(http.StatusCreated, evt)
}

// HandleUpdateEvent handles PUT /v1/events/:id
// The id may be the occurrence id of a yearly instance.
func (s *Service) HandleUpdateEvent(c *gin.Context) {
	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidJsonError,
			Message:   msgInvalidJSON,
			Details:   err.Error(),
		})
		return
	}

	ref := EventRef{ID: v1.OccurrenceID(c.Param("id"))}
	evt, err := s.UpdateEvent(c.Request.Context(), ref, req.Date, req.EventInput)
	if err != nil {
		writeError(c, err, "Failed to update event")
		return
	}
	c.JSON(http.StatusOK, evt)
}

// HandleDeleteEvent handles DELETE /v1/events/:id
// Query parameters: date (optional source date)
func (s *Service) HandleDeleteEvent(c *gin.Context) {
	ref := EventRef{
		ID:   v1.OccurrenceID(c.Param("id")),
		Date: v1.DateKey(c.Query("date")),
	}

	deleted, err := s.DeleteEvent(c.Request.Context(), ref)
	if err != nil {
		writeError(c, err, "Failed to delete event")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// HandleDay handles GET /v1/dates/:date
func (s *Service) HandleDay(c *gin.Context) {
	day, err := s.Day(c.Request.Context(), v1.DateKey(c.Param("date")))
	if err != nil {
		writeError(c, err, "Failed to resolve date")
		return
	}
	c.JSON(http.StatusOK, day)
}

// HandleMonthAgenda handles GET /v1/months/:year/:month
func (s *Service) HandleMonthAgenda(c *gin.Context) {
	var uri struct {
		Year  int `uri:"year" binding:"required"`
		Month int `uri:"month" binding:"required"`
	}
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidJsonError,
			Message:   msgInvalidPath,
			Details:   err.Error(),
		})
		return
	}

	days, err := s.MonthAgenda(c.Request.Context(), uri.Year, time.Month(uri.Month))
	if err != nil {
		writeError(c, err, "Failed to build month agenda")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"year":  uri.Year,
		"month": uri.Month,
		"days":  days,
	})
}

// HandleSearch handles GET /v1/search
// Query parameters: q
func (s *Service) HandleSearch(c *gin.Context) {
	resp, err := s.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		writeError(c, err, "Failed to search events")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HandleCategoryCounts handles GET /v1/categories
func (s *Service) HandleCategoryCounts(c *gin.Context) {
	counts, err := s.CategoryCounts(c.Request.Context())
	if err != nil {
		writeError(c, err, "Failed to count categories")
		return
	}
	c.JSON(http.StatusOK, gin.H{"counts": counts})
}

// HandleEventsByCategory handles GET /v1/categories/:type
func (s *Service) HandleEventsByCategory(c *gin.Context) {
	typ := v1.EventType(c.Param("type"))
	if !typ.Known() {
		writeError(c, &eventstore.ValidationError{Field: "type", Message: strconv.Quote(string(typ)) + " is not a known type"}, msgValidationFailed)
		return
	}

	events, err := s.EventsByCategory(c.Request.Context(), typ)
	if err != nil {
		writeError(c, err, "Failed to list category")
		return
	}
	c.JSON(http.StatusOK, gin.H{"type": typ, "events": events})
}

// HandleExportICS handles GET /v1/calendar.ics
func (s *Service) HandleExportICS(c *gin.Context) {
	body, err := s.ExportICS(c.Request.Context())
	if err != nil {
		writeError(c, err, "Failed to export calendar")
		return
	}
	c.Data(http.StatusOK, icsContentType, []byte(body))
}

// HandleReconcile handles POST /v1/reminders/reconcile
func (s *Service) HandleReconcile(c *gin.Context) {
	report, err := s.Reconcile(c.Request.Context())
	if err != nil {
		writeError(c, err, "Failed to reconcile reminders")
		return
	}
	c.JSON(http.StatusOK, report)
}

// writeError maps service errors onto the API error envelope.
func writeError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, eventstore.ErrValidation):
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpValidationError,
			Message:   msgValidationFailed,
			Details:   err.Error(),
		})
	case errors.Is(err, eventstore.ErrStorageWrite), errors.Is(err, eventstore.ErrStorageRead):
		slog.Error("[Calendar] "+message, "error", err)
		c.JSON(http.StatusServiceUnavailable, httperr.ErrorResponse{
			ErrorType: httperr.HttpStorageUnavailableError,
			Message:   msgStorageFailed,
			Details:   err.Error(),
		})
	default:
		slog.Error("[Calendar] "+message, "error", err)
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   message,
			Details:   err.Error(),
		})
	}
}
