package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	"github.com/dhima/inventory-activity/internal/activity"
	"github.com/dhima/inventory-activity/internal/api/response"
	"github.com/dhima/inventory-activity/internal/logging"
	"github.com/dhima/inventory-activity/internal/models"
)

// ActivityService is the part of activity.Service the HTTP layer uses.
type ActivityService interface {
	Record(ctx context.Context, in activity.RecordInput) (activity.RecordResult, error)
	Query(ctx context.Context, f activity.Filter) (activity.QueryResult, error)
	Get(ctx context.Context, id int64) (*models.ActivityEntry, error)
	KnownActions(ctx context.Context) ([]models.ActionOption, error)
	Stats(ctx context.Context, f activity.Filter) (models.ActivityStats, error)
}

const recordSchema = `{
	"type": "object",
	"additionalProperties": false,
	"required": ["action", "description"],
	"properties": {
		"actor_id": {"type": ["integer", "null"], "minimum": 1},
		"action": {"type": "string", "minLength": 1, "maxLength": 64, "pattern": "^[A-Za-z0-9][A-Za-z0-9_.:-]*$"},
		"description": {"type": "string", "minLength": 1, "maxLength": 1000},
		"ip_address": {"type": ["string", "null"], "maxLength": 45}
	}
}`

// recordPayloadSchema is compiled once; the schema is a constant.
var recordPayloadSchema = mustCompileSchema(recordSchema)

func mustCompileSchema(src string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(err)
	}
	return schema
}

// ActivityHandler serves the activity log reporting and ingestion endpoints.
type ActivityHandler struct {
	service ActivityService
	logger  logging.Logger
}

// NewActivityHandler creates a new activity handler.
func NewActivityHandler(service ActivityService, logger logging.Logger) *ActivityHandler {
	RegisterValidators()
	return &ActivityHandler{
		service: service,
		logger:  logger.With(zap.String("handler", "activity")),
	}
}

// ListActivity godoc
// @Summary List activity logs
// @Description Returns activity events newest first, enriched with actor details. All filters are optional and combine with AND.
// @Tags Activity
// @Produce json
// @Param user_id query int false "Filter by actor user ID" minimum(1)
// @Param action query string false "Filter by action identifier"
// @Param start_date query string false "First day to include (YYYY-MM-DD)"
// @Param end_date query string false "Last day to include (YYYY-MM-DD)"
// @Param search query string false "Case-insensitive substring of description, username, full name or IP"
// @Param limit query int false "Maximum events to return" default(500) minimum(1) maximum(2000)
// @Param cursor query string false "Cursor from a previous page"
// @Success 200 {object} response.SuccessResponse{data=models.ActivityListResponse}
// @Failure 400 {object} response.ErrorResponse "Invalid query parameters"
// @Failure 500 {object} response.ErrorResponse "Failed to load activity logs"
// @Router /activity [get]
func (h *ActivityHandler) ListActivity(c *gin.Context) {
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}

	result, err := h.service.Query(c.Request.Context(), filter)
	if err != nil {
		h.serviceError(c, err, "failed to load activity logs")
		return
	}

	body := models.ActivityListResponse{
		Events:     result.Events,
		Count:      len(result.Events),
		NextCursor: result.NextCursor,
		Actions:    result.Actions,
	}
	if len(result.Events) == 0 {
		response.Success(c, http.StatusOK, body, "no records found")
		return
	}
	response.OK(c, body)
}

// GetActivity godoc
// @Summary Get one activity event
// @Description Returns a single enriched activity event by ID
// @Tags Activity
// @Produce json
// @Param id path int true "Activity event ID"
// @Success 200 {object} response.SuccessResponse{data=models.ActivityEntry}
// @Failure 400 {object} response.ErrorResponse "Invalid ID"
// @Failure 404 {object} response.ErrorResponse "Activity event not found"
// @Failure 500 {object} response.ErrorResponse "Failed to load activity log"
// @Router /activity/{id} [get]
func (h *ActivityHandler) GetActivity(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		response.BadRequest(c, "invalid activity id", c.Param("id"))
		return
	}

	entry, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.serviceError(c, err, "failed to load activity log")
		return
	}
	if entry == nil {
		response.NotFound(c, "activity event not found")
		return
	}
	response.OK(c, entry)
}

// KnownActions godoc
// @Summary List known actions
// @Description Returns every registered or previously recorded action identifier with a display label, sorted by identifier
// @Tags Activity
// @Produce json
// @Success 200 {object} response.SuccessResponse{data=models.KnownActionsResponse}
// @Failure 500 {object} response.ErrorResponse "Failed to load actions"
// @Router /activity/actions [get]
func (h *ActivityHandler) KnownActions(c *gin.Context) {
	actions, err := h.service.KnownActions(c.Request.Context())
	if err != nil {
		h.serviceError(c, err, "failed to load actions")
		return
	}
	response.OK(c, models.KnownActionsResponse{Actions: actions})
}

// Stats godoc
// @Summary Count activity by action
// @Description Counts events per action under the same filters as the listing; limit and cursor are ignored
// @Tags Activity
// @Produce json
// @Param user_id query int false "Filter by actor user ID" minimum(1)
// @Param action query string false "Filter by action identifier"
// @Param start_date query string false "First day to include (YYYY-MM-DD)"
// @Param end_date query string false "Last day to include (YYYY-MM-DD)"
// @Param search query string false "Case-insensitive substring of description, username, full name or IP"
// @Success 200 {object} response.SuccessResponse{data=models.ActivityStats}
// @Failure 400 {object} response.ErrorResponse "Invalid query parameters"
// @Failure 500 {object} response.ErrorResponse "Failed to load activity statistics"
// @Router /activity/stats [get]
func (h *ActivityHandler) Stats(c *gin.Context) {
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}

	stats, err := h.service.Stats(c.Request.Context(), filter)
	if err != nil {
		h.serviceError(c, err, "failed to load activity statistics")
		return
	}
	response.OK(c, stats)
}

// RecordActivity godoc
// @Summary Record an activity event
// @Description Appends an event to the activity log. Malformed payloads are rejected; storage failures are absorbed and reported as recorded=false.
// @Tags Activity
// @Accept json
// @Produce json
// @Param payload body models.RecordActivityRequest true "Activity event"
// @Success 202 {object} response.SuccessResponse{data=models.RecordActivityResponse}
// @Failure 400 {object} response.ErrorResponse "Invalid payload"
// @Router /activity [post]
func (h *ActivityHandler) RecordActivity(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		response.BadRequest(c, "invalid payload", err.Error())
		return
	}

	result, err := recordPayloadSchema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		response.BadRequest(c, "invalid payload", err.Error())
		return
	}
	if !result.Valid() {
		details := make([]response.ValidationError, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, response.ValidationError{Field: desc.Field(), Message: desc.Description()})
		}
		h.logger.Warn("activity payload rejected",
			zap.Int("errors", len(details)),
			zap.String("request_id", response.GetRequestID(c)))
		response.ValidationErrors(c, details)
		return
	}

	var req models.RecordActivityRequest
	if err := json.Unmarshal(body, &req); err != nil {
		response.BadRequest(c, "invalid payload", err.Error())
		return
	}

	in := activity.RecordInput{
		ActorID:     req.ActorID,
		Action:      req.Action,
		Description: req.Description,
		IPAddress:   c.ClientIP(),
	}
	if req.IPAddress != nil && strings.TrimSpace(*req.IPAddress) != "" {
		in.IPAddress = *req.IPAddress
	}

	rec, err := h.service.Record(c.Request.Context(), in)
	if err != nil {
		h.serviceError(c, err, "failed to record activity")
		return
	}

	out := models.RecordActivityResponse{Recorded: rec.Recorded}
	if rec.Event != nil {
		out.ID = rec.Event.ID
		created := rec.Event.CreatedAt
		out.CreatedAt = &created
	}
	if !rec.Recorded {
		response.Accepted(c, out, "activity not recorded")
		return
	}
	response.Accepted(c, out, "activity recorded")
}

// bindFilter parses the shared query parameters; it writes the 400 itself.
func (h *ActivityHandler) bindFilter(c *gin.Context) (activity.Filter, bool) {
	var query models.ListActivityQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.logger.Warn("invalid activity query",
			zap.Error(err),
			zap.String("request_id", response.GetRequestID(c)))
		if details, ok := bindingErrors(err); ok {
			response.ValidationErrors(c, details)
		} else {
			response.BadRequest(c, "invalid query parameters", err.Error())
		}
		return activity.Filter{}, false
	}

	start, err := activity.ParseDate(query.StartDate)
	if err != nil {
		response.BadRequest(c, "invalid query parameters", err.Error())
		return activity.Filter{}, false
	}
	end, err := activity.ParseDate(query.EndDate)
	if err != nil {
		response.BadRequest(c, "invalid query parameters", err.Error())
		return activity.Filter{}, false
	}

	return activity.Filter{
		ActorID:   query.UserID,
		Action:    strings.TrimSpace(query.Action),
		StartDate: start,
		EndDate:   end,
		Search:    query.Search,
		Limit:     query.Limit,
		Cursor:    query.Cursor,
	}, true
}

func (h *ActivityHandler) serviceError(c *gin.Context, err error, message string) {
	if activity.IsValidation(err) {
		h.logger.Warn("activity request rejected",
			zap.Error(err),
			zap.String("request_id", response.GetRequestID(c)))
		response.BadRequest(c, "invalid request", err.Error())
		return
	}

	h.logger.Error(message,
		zap.Error(err),
		zap.String("request_id", response.GetRequestID(c)))
	response.InternalServerError(c, message)
}
