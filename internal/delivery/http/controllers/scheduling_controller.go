package controllers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"examscheduler/internal/delivery/http/helpers"
	"examscheduler/internal/domain"
)

type SchedulingController struct {
	Logger  *slog.Logger
	Service domain.SchedulingService
}

func NewSchedulingController(logger *slog.Logger, svc domain.SchedulingService) *SchedulingController {
	return &SchedulingController{
		Logger:  logger,
		Service: svc,
	}
}

// parseInterval builds a TimeInterval from wire strings, collecting error
// messages in the Validator format.
func parseInterval(date, start, end string) (domain.TimeInterval, []string) {
	var errs []string
	var iv domain.TimeInterval
	d, err := domain.ParseCivilDate(date)
	if err != nil {
		errs = append(errs, fmt.Sprintf("date %q must be YYYY-MM-DD", date))
	}
	s, err := domain.ParseTimeOfDay(start)
	if err != nil {
		errs = append(errs, fmt.Sprintf("start %q must be HH:MM", start))
	}
	e, err := domain.ParseTimeOfDay(end)
	if err != nil {
		errs = append(errs, fmt.Sprintf("end %q must be HH:MM", end))
	}
	if len(errs) > 0 {
		return iv, errs
	}
	iv = domain.TimeInterval{Date: d, Start: s, End: e}
	if s >= e {
		errs = append(errs, "start must be before end")
	}
	return iv, errs
}

// CheckAvailabilityRequest is the request body for POST /availability/check.
type CheckAvailabilityRequest struct {
	Kind             string `json:"kind"`
	ResourceID       string `json:"resource_id"`
	Date             string `json:"date"`
	Start            string `json:"start"`
	End              string `json:"end"`
	ExcludeSessionID string `json:"exclude_session_id"`
}

// Validate implements Validator.
func (c CheckAvailabilityRequest) Validate() []string {
	var errs []string
	if !domain.ResourceKind(c.Kind).Valid() {
		errs = append(errs, `kind must be "staff", "room", or "group"`)
	}
	if c.ResourceID == "" {
		errs = append(errs, "resource_id is required")
	}
	_, ivErrs := parseInterval(c.Date, c.Start, c.End)
	return append(errs, ivErrs...)
}

// CheckAvailabilitySuccessResponse is the success response envelope for POST /availability/check (200).
type CheckAvailabilitySuccessResponse struct {
	Data  domain.CheckResult `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// CheckAvailability godoc
// @Summary Check resource availability
// @Description Checks whether a staff member, room, or group is free at the given interval. The result explains every denial with a code and reason; a staff denial surfaces the blocking override's reason verbatim.
// @Tags availability
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CheckAvailabilityRequest true "Resource and interval"
// @Success 200 {object} controllers.CheckAvailabilitySuccessResponse "data contains the check result"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /availability/check [post]
func (c *SchedulingController) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	var req CheckAvailabilityRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	iv, _ := parseInterval(req.Date, req.Start, req.End)
	result, err := c.Service.CheckAvailability(r.Context(), domain.CheckAvailabilityParams{
		Kind:             domain.ResourceKind(req.Kind),
		ResourceID:       req.ResourceID,
		Interval:         iv,
		ExcludeSessionID: req.ExcludeSessionID,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}

// SessionCandidateRequest is the wire form of one candidate session.
type SessionCandidateRequest struct {
	SubjectID     string   `json:"subject_id"`
	Date          string   `json:"date"`
	Start         string   `json:"start"`
	End           string   `json:"end"`
	RoomID        string   `json:"room_id"`
	GroupIDs      []string `json:"group_ids"`
	SupervisorIDs []string `json:"supervisor_ids"`
	Intent        string   `json:"intent"`
}

// Validate implements Validator.
func (s SessionCandidateRequest) Validate() []string {
	var errs []string
	if s.SubjectID == "" {
		errs = append(errs, "subject_id is required")
	}
	if s.RoomID == "" {
		errs = append(errs, "room_id is required")
	}
	if len(s.GroupIDs) == 0 {
		errs = append(errs, "at least one group is required")
	}
	if len(s.SupervisorIDs) == 0 {
		errs = append(errs, "at least one supervisor is required")
	}
	if !domain.IntentKind(s.Intent).Valid() {
		errs = append(errs, fmt.Sprintf("unknown intent %q", s.Intent))
	}
	_, ivErrs := parseInterval(s.Date, s.Start, s.End)
	return append(errs, ivErrs...)
}

func (s SessionCandidateRequest) toCandidate() domain.SessionCandidate {
	iv, _ := parseInterval(s.Date, s.Start, s.End)
	return domain.SessionCandidate{
		SubjectID:     s.SubjectID,
		Interval:      iv,
		RoomID:        s.RoomID,
		GroupIDs:      s.GroupIDs,
		SupervisorIDs: s.SupervisorIDs,
		Intent:        domain.IntentKind(s.Intent),
	}
}

// CreateSessionSuccessResponse is the success response envelope for POST /sessions (201).
type CreateSessionSuccessResponse struct {
	Data  *domain.ExamSession `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// CreateSession godoc
// @Summary Create an exam session
// @Description Validates the candidate against availability profiles, room capacity, and existing bookings, then persists it. A failed check returns 409 with the engine's code and reason.
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body SessionCandidateRequest true "Candidate session"
// @Success 201 {object} controllers.CreateSessionSuccessResponse "data contains the created session"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 409 {object} helpers.APIResponse "error.code: the failed check's code"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /sessions [post]
func (c *SchedulingController) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req SessionCandidateRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	session, result, err := c.Service.CreateSession(r.Context(), req.toCandidate())
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	if !result.OK {
		helpers.WriteJSONError(w, http.StatusConflict, string(result.Code), checkFailureMessage(result))
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, session)
}

// UpdateSession godoc
// @Summary Update an exam session
// @Description Replaces the session's subject, interval, room, groups, and supervisors after re-running all conflict checks with the session itself excluded.
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param sessionID path string true "Session ID"
// @Param body body SessionCandidateRequest true "New session contents"
// @Success 200 {object} controllers.CreateSessionSuccessResponse "data contains the updated session"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: the failed check's code"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /sessions/{sessionID} [patch]
func (c *SchedulingController) UpdateSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionID")
	if sessionID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing sessionID")
		return
	}
	var req SessionCandidateRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	session, result, err := c.Service.UpdateSession(r.Context(), sessionID, req.toCandidate())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "session not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	if !result.OK {
		helpers.WriteJSONError(w, http.StatusConflict, string(result.Code), checkFailureMessage(result))
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, session)
}

// SessionStatusResponse is the data payload for cancel and delete operations.
type SessionStatusResponse struct {
	Status string `json:"status"`
}

// CancelSession godoc
// @Summary Cancel an exam session
// @Description Marks the session cancelled. Cancellation is terminal: the session keeps its history but immediately stops conflicting with other bookings.
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param sessionID path string true "Session ID"
// @Success 200 {object} helpers.APIResponse "data contains status"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /sessions/{sessionID}/cancel [post]
func (c *SchedulingController) CancelSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionID")
	if sessionID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing sessionID")
		return
	}
	if err := c.Service.CancelSession(r.Context(), sessionID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "session not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, SessionStatusResponse{Status: "cancelled"})
}

// DeleteSession godoc
// @Summary Delete an exam session
// @Description Removes the session entirely.
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param sessionID path string true "Session ID"
// @Success 200 {object} helpers.APIResponse "data contains status"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /sessions/{sessionID} [delete]
func (c *SchedulingController) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionID")
	if sessionID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing sessionID")
		return
	}
	if err := c.Service.DeleteSession(r.Context(), sessionID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "session not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, SessionStatusResponse{Status: "deleted"})
}

// ListSessionsSuccessResponse is the success response envelope for GET /sessions (200).
type ListSessionsSuccessResponse struct {
	Data  []domain.SessionView `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// ListSessions godoc
// @Summary List sessions for a date
// @Description Returns the day's non-cancelled sessions with their lifecycle status (scheduled, ongoing, completed) derived from the current time.
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} controllers.ListSessionsSuccessResponse "data is an array of sessions with status"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /sessions [get]
func (c *SchedulingController) ListSessions(w http.ResponseWriter, r *http.Request) {
	date, err := domain.ParseCivilDate(r.URL.Query().Get("date"))
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "date query parameter must be YYYY-MM-DD")
		return
	}
	views, err := c.Service.ListSessionsByDate(r.Context(), date)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	if views == nil {
		views = []domain.SessionView{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, views)
}

// ValidateBatchRequest is the request body for POST /sessions/validate-batch.
type ValidateBatchRequest struct {
	Atomic     bool                      `json:"atomic"`
	Candidates []SessionCandidateRequest `json:"candidates"`
}

// Validate implements Validator. Per-candidate problems are reported by the
// engine per index, so only the envelope is validated here.
func (v ValidateBatchRequest) Validate() []string {
	if len(v.Candidates) == 0 {
		return []string{"candidates is required"}
	}
	return nil
}

// ValidateBatchSuccessResponse is the success response envelope for POST /sessions/validate-batch (200).
type ValidateBatchSuccessResponse struct {
	Data  *domain.BatchResult `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// ValidateBatch godoc
// @Summary Validate and commit a batch of sessions
// @Description Validates candidates against each other and against existing bookings, then commits the accepted ones. With atomic=true a single failure rejects the whole batch. Intra-batch conflicts reject the later candidate and name the earlier one.
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ValidateBatchRequest true "Candidates and atomic flag"
// @Success 200 {object} controllers.ValidateBatchSuccessResponse "data contains accepted and rejected items"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /sessions/validate-batch [post]
func (c *SchedulingController) ValidateBatch(w http.ResponseWriter, r *http.Request) {
	var req ValidateBatchRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	candidates := make([]domain.SessionCandidate, 0, len(req.Candidates))
	for _, cand := range req.Candidates {
		candidates = append(candidates, cand.toCandidate())
	}
	result, err := c.Service.ValidateBatch(r.Context(), candidates, req.Atomic)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}

// SlotTemplateRequest is one daily slot in a generation request.
type SlotTemplateRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// GenerateScheduleRequest is the request body for POST /schedule/generate.
type GenerateScheduleRequest struct {
	From            string                `json:"from"`
	To              string                `json:"to"`
	DailySlots      []SlotTemplateRequest `json:"daily_slots"`
	IncludeWeekends bool                  `json:"include_weekends"`
	MinSupervisors  int                   `json:"min_supervisors"`
	Intent          string                `json:"intent"`
}

// Validate implements Validator.
func (g GenerateScheduleRequest) Validate() []string {
	var errs []string
	if _, err := domain.ParseCivilDate(g.From); err != nil {
		errs = append(errs, fmt.Sprintf("from %q must be YYYY-MM-DD", g.From))
	}
	if _, err := domain.ParseCivilDate(g.To); err != nil {
		errs = append(errs, fmt.Sprintf("to %q must be YYYY-MM-DD", g.To))
	}
	if len(g.DailySlots) == 0 {
		errs = append(errs, "daily_slots is required")
	}
	for i, slot := range g.DailySlots {
		if _, err := domain.ParseTimeOfDay(slot.Start); err != nil {
			errs = append(errs, fmt.Sprintf("daily_slots[%d].start %q must be HH:MM", i, slot.Start))
		}
		if _, err := domain.ParseTimeOfDay(slot.End); err != nil {
			errs = append(errs, fmt.Sprintf("daily_slots[%d].end %q must be HH:MM", i, slot.End))
		}
	}
	if g.MinSupervisors < 0 {
		errs = append(errs, "min_supervisors must not be negative")
	}
	if g.Intent != "" && !domain.IntentKind(g.Intent).Valid() {
		errs = append(errs, fmt.Sprintf("unknown intent %q", g.Intent))
	}
	return errs
}

func (g GenerateScheduleRequest) toRequest() domain.GenerateRequest {
	from, _ := domain.ParseCivilDate(g.From)
	to, _ := domain.ParseCivilDate(g.To)
	slots := make([]domain.SlotTemplate, 0, len(g.DailySlots))
	for _, s := range g.DailySlots {
		start, _ := domain.ParseTimeOfDay(s.Start)
		end, _ := domain.ParseTimeOfDay(s.End)
		slots = append(slots, domain.SlotTemplate{Start: start, End: end})
	}
	return domain.GenerateRequest{
		From:            from,
		To:              to,
		DailySlots:      slots,
		IncludeWeekends: g.IncludeWeekends,
		MinSupervisors:  g.MinSupervisors,
		Intent:          domain.IntentKind(g.Intent),
	}
}

// GenerateScheduleSuccessResponse is the success response envelope for POST /schedule/generate (200).
type GenerateScheduleSuccessResponse struct {
	Data  *domain.GenerateResult `json:"data"`
	Error *helpers.APIError      `json:"error"`
}

// GenerateSchedule godoc
// @Summary Generate a timetable automatically
// @Description Places a session for every subject with pending group requirements into the date range, choosing rooms by capacity fit and balancing supervisor load. Subjects that cannot be placed are reported with the first obstacle encountered.
// @Tags schedule
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body GenerateScheduleRequest true "Generation parameters"
// @Success 200 {object} controllers.GenerateScheduleSuccessResponse "data contains scheduled sessions and unscheduled subjects"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /schedule/generate [post]
func (c *SchedulingController) GenerateSchedule(w http.ResponseWriter, r *http.Request) {
	var req GenerateScheduleRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	result, err := c.Service.GenerateSchedule(r.Context(), req.toRequest())
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}

func checkFailureMessage(result domain.CheckResult) string {
	if result.ConflictingSessionID != "" {
		return fmt.Sprintf("%s (conflicting session %s)", result.Reason, result.ConflictingSessionID)
	}
	return result.Reason
}
