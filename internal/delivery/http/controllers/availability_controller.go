package controllers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"examscheduler/internal/delivery/http/helpers"
	"examscheduler/internal/domain"
)

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

type AvailabilityController struct {
	Logger  *slog.Logger
	Service domain.AvailabilityService
}

func NewAvailabilityController(logger *slog.Logger, svc domain.AvailabilityService) *AvailabilityController {
	return &AvailabilityController{
		Logger:  logger,
		Service: svc,
	}
}

// AddRuleRequest is the request body for POST /staff/{staffID}/rules.
type AddRuleRequest struct {
	Day   string `json:"day"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// Validate implements Validator.
func (a AddRuleRequest) Validate() []string {
	var errs []string
	if _, ok := weekdayNames[strings.ToLower(a.Day)]; !ok {
		errs = append(errs, fmt.Sprintf("day %q must be a weekday name", a.Day))
	}
	start, startErr := domain.ParseTimeOfDay(a.Start)
	if startErr != nil {
		errs = append(errs, fmt.Sprintf("start %q must be HH:MM", a.Start))
	}
	end, endErr := domain.ParseTimeOfDay(a.End)
	if endErr != nil {
		errs = append(errs, fmt.Sprintf("end %q must be HH:MM", a.End))
	}
	if startErr == nil && endErr == nil && start >= end {
		errs = append(errs, "start must be before end")
	}
	return errs
}

// AddRuleSuccessResponse is the success response envelope for POST /staff/{staffID}/rules (201).
type AddRuleSuccessResponse struct {
	Data  *domain.WeeklyRule `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// AddRule godoc
// @Summary Add a weekly availability rule
// @Description Adds a recurring weekly availability window to the staff member's profile. A session interval must be fully contained in a single rule's window to be allowed by that rule.
// @Tags availability
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param staffID path string true "Staff ID"
// @Param body body AddRuleRequest true "Weekday and window"
// @Success 201 {object} controllers.AddRuleSuccessResponse "data contains the created rule"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /staff/{staffID}/rules [post]
func (c *AvailabilityController) AddRule(w http.ResponseWriter, r *http.Request) {
	staffID := r.PathValue("staffID")
	if staffID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing staffID")
		return
	}
	var req AddRuleRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	start, _ := domain.ParseTimeOfDay(req.Start)
	end, _ := domain.ParseTimeOfDay(req.End)
	rule := &domain.WeeklyRule{
		StaffID: staffID,
		Day:     weekdayNames[strings.ToLower(req.Day)],
		Start:   start,
		End:     end,
	}
	if err := c.Service.AddRule(r.Context(), rule); err != nil {
		c.writeServiceError(w, r, err, "staff not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, rule)
}

// ListRulesSuccessResponse is the success response envelope for GET /staff/{staffID}/rules (200).
type ListRulesSuccessResponse struct {
	Data  []domain.WeeklyRule `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// ListRules godoc
// @Summary List weekly availability rules
// @Tags availability
// @Produce json
// @Security BearerAuth
// @Param staffID path string true "Staff ID"
// @Success 200 {object} controllers.ListRulesSuccessResponse "data is an array of rules"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /staff/{staffID}/rules [get]
func (c *AvailabilityController) ListRules(w http.ResponseWriter, r *http.Request) {
	staffID := r.PathValue("staffID")
	if staffID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing staffID")
		return
	}
	rules, err := c.Service.ListRules(r.Context(), staffID)
	if err != nil {
		c.writeServiceError(w, r, err, "staff not found")
		return
	}
	if rules == nil {
		rules = []domain.WeeklyRule{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, rules)
}

// RemoveRule godoc
// @Summary Remove a weekly availability rule
// @Tags availability
// @Produce json
// @Security BearerAuth
// @Param staffID path string true "Staff ID"
// @Param ruleID path string true "Rule ID"
// @Success 200 {object} helpers.APIResponse "data contains status"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /staff/{staffID}/rules/{ruleID} [delete]
func (c *AvailabilityController) RemoveRule(w http.ResponseWriter, r *http.Request) {
	staffID := r.PathValue("staffID")
	ruleID := r.PathValue("ruleID")
	if staffID == "" || ruleID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing staffID or ruleID")
		return
	}
	if err := c.Service.RemoveRule(r.Context(), staffID, ruleID); err != nil {
		c.writeServiceError(w, r, err, "rule not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, SessionStatusResponse{Status: "removed"})
}

// AddOverrideRequest is the request body for POST /staff/{staffID}/overrides.
type AddOverrideRequest struct {
	Date      string `json:"date"`
	Start     string `json:"start"`
	End       string `json:"end"`
	Available bool   `json:"available"`
	Reason    string `json:"reason"`
}

// Validate implements Validator.
func (a AddOverrideRequest) Validate() []string {
	var errs []string
	if _, err := domain.ParseCivilDate(a.Date); err != nil {
		errs = append(errs, fmt.Sprintf("date %q must be YYYY-MM-DD", a.Date))
	}
	start, startErr := domain.ParseTimeOfDay(a.Start)
	if startErr != nil {
		errs = append(errs, fmt.Sprintf("start %q must be HH:MM", a.Start))
	}
	end, endErr := domain.ParseTimeOfDay(a.End)
	if endErr != nil {
		errs = append(errs, fmt.Sprintf("end %q must be HH:MM", a.End))
	}
	if startErr == nil && endErr == nil && start >= end {
		errs = append(errs, "start must be before end")
	}
	return errs
}

// AddOverrideSuccessResponse is the success response envelope for POST /staff/{staffID}/overrides (201).
type AddOverrideSuccessResponse struct {
	Data  *domain.DateOverride `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// AddOverride godoc
// @Summary Add a date-specific availability override
// @Description Adds an override for one date. available=false blocks the window (the reason is surfaced in denial results); available=true grants the window on its own, independent of weekly rules.
// @Tags availability
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param staffID path string true "Staff ID"
// @Param body body AddOverrideRequest true "Date, window, availability, and optional reason"
// @Success 201 {object} controllers.AddOverrideSuccessResponse "data contains the created override"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /staff/{staffID}/overrides [post]
func (c *AvailabilityController) AddOverride(w http.ResponseWriter, r *http.Request) {
	staffID := r.PathValue("staffID")
	if staffID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing staffID")
		return
	}
	var req AddOverrideRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	date, _ := domain.ParseCivilDate(req.Date)
	start, _ := domain.ParseTimeOfDay(req.Start)
	end, _ := domain.ParseTimeOfDay(req.End)
	override := &domain.DateOverride{
		StaffID:   staffID,
		Date:      date,
		Start:     start,
		End:       end,
		Available: req.Available,
		Reason:    strings.TrimSpace(req.Reason),
	}
	if err := c.Service.AddOverride(r.Context(), override); err != nil {
		c.writeServiceError(w, r, err, "staff not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, override)
}

// ListOverridesSuccessResponse is the success response envelope for GET /staff/{staffID}/overrides (200).
type ListOverridesSuccessResponse struct {
	Data  []domain.DateOverride `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

// ListOverrides godoc
// @Summary List date-specific availability overrides
// @Tags availability
// @Produce json
// @Security BearerAuth
// @Param staffID path string true "Staff ID"
// @Success 200 {object} controllers.ListOverridesSuccessResponse "data is an array of overrides"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /staff/{staffID}/overrides [get]
func (c *AvailabilityController) ListOverrides(w http.ResponseWriter, r *http.Request) {
	staffID := r.PathValue("staffID")
	if staffID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing staffID")
		return
	}
	overrides, err := c.Service.ListOverrides(r.Context(), staffID)
	if err != nil {
		c.writeServiceError(w, r, err, "staff not found")
		return
	}
	if overrides == nil {
		overrides = []domain.DateOverride{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, overrides)
}

// RemoveOverride godoc
// @Summary Remove a date-specific availability override
// @Tags availability
// @Produce json
// @Security BearerAuth
// @Param staffID path string true "Staff ID"
// @Param overrideID path string true "Override ID"
// @Success 200 {object} helpers.APIResponse "data contains status"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /staff/{staffID}/overrides/{overrideID} [delete]
func (c *AvailabilityController) RemoveOverride(w http.ResponseWriter, r *http.Request) {
	staffID := r.PathValue("staffID")
	overrideID := r.PathValue("overrideID")
	if staffID == "" || overrideID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing staffID or overrideID")
		return
	}
	if err := c.Service.RemoveOverride(r.Context(), staffID, overrideID); err != nil {
		c.writeServiceError(w, r, err, "override not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, SessionStatusResponse{Status: "removed"})
}

func (c *AvailabilityController) writeServiceError(w http.ResponseWriter, r *http.Request, err error, notFoundMsg string) {
	if errors.Is(err, domain.ErrNotFound) {
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, notFoundMsg)
		return
	}
	if errors.Is(err, domain.ErrInvalidInput) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
	helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
}
