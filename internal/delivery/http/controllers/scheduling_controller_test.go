package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"examscheduler/internal/delivery/http/helpers"
	"examscheduler/internal/domain"
)

func testCandidateBody() string {
	return `{
		"subject_id": "sub-math",
		"date": "2025-03-11",
		"start": "09:00",
		"end": "11:00",
		"room_id": "room-1",
		"group_ids": ["grp-1"],
		"supervisor_ids": ["stf-1"],
		"intent": "main_exam"
	}`
}

func testSession() *domain.ExamSession {
	return &domain.ExamSession{
		ID:        "ses-1",
		SubjectID: "sub-math",
		Interval: domain.NewTimeInterval(
			domain.NewCivilDate(2025, time.March, 11),
			domain.NewTimeOfDay(9, 0),
			domain.NewTimeOfDay(11, 0),
		),
		RoomID:        "room-1",
		GroupIDs:      []string{"grp-1"},
		SupervisorIDs: []string{"stf-1"},
		Intent:        domain.IntentMainExam,
	}
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder, data any) *helpers.APIError {
	t.Helper()
	var envelope struct {
		Data  json.RawMessage   `json:"data"`
		Error *helpers.APIError `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
	if data != nil && len(envelope.Data) > 0 && string(envelope.Data) != "null" {
		require.NoError(t, json.Unmarshal(envelope.Data, data))
	}
	return envelope.Error
}

func TestCheckAvailabilityHandler(t *testing.T) {
	t.Run("available resource", func(t *testing.T) {
		svc := &fakeSchedulingService{checkResult: domain.CheckOK()}
		ctrl := NewSchedulingController(testLogger(), svc)
		body := `{"kind": "staff", "resource_id": "stf-1", "date": "2025-03-11", "start": "09:00", "end": "11:00"}`
		req := httptest.NewRequest(http.MethodPost, "/availability/check", strings.NewReader(body))
		rr := httptest.NewRecorder()

		ctrl.CheckAvailability(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var result domain.CheckResult
		apiErr := decodeEnvelope(t, rr, &result)
		require.Nil(t, apiErr)
		assert.True(t, result.OK)
		assert.Equal(t, domain.ResourceStaff, svc.checkParams.Kind)
		assert.Equal(t, "stf-1", svc.checkParams.ResourceID)
		assert.Equal(t, domain.NewTimeOfDay(9, 0), svc.checkParams.Interval.Start)
	})

	t.Run("denied check is still a 200 with the result", func(t *testing.T) {
		svc := &fakeSchedulingService{
			checkResult: domain.CheckFail(domain.CodeAvailabilityDenied, "medical appointment"),
		}
		ctrl := NewSchedulingController(testLogger(), svc)
		body := `{"kind": "staff", "resource_id": "stf-1", "date": "2025-03-11", "start": "09:00", "end": "11:00"}`
		req := httptest.NewRequest(http.MethodPost, "/availability/check", strings.NewReader(body))
		rr := httptest.NewRecorder()

		ctrl.CheckAvailability(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var result domain.CheckResult
		decodeEnvelope(t, rr, &result)
		assert.False(t, result.OK)
		assert.Equal(t, domain.CodeAvailabilityDenied, result.Code)
		assert.Equal(t, "medical appointment", result.Reason)
	})

	t.Run("unknown kind in body", func(t *testing.T) {
		ctrl := NewSchedulingController(testLogger(), &fakeSchedulingService{})
		body := `{"kind": "projector", "resource_id": "p-1", "date": "2025-03-11", "start": "09:00", "end": "11:00"}`
		req := httptest.NewRequest(http.MethodPost, "/availability/check", strings.NewReader(body))
		rr := httptest.NewRecorder()

		ctrl.CheckAvailability(rr, req)

		require.Equal(t, http.StatusBadRequest, rr.Code)
		apiErr := decodeEnvelope(t, rr, nil)
		require.NotNil(t, apiErr)
		assert.Equal(t, helpers.ErrCodeBadRequest, apiErr.Code)
	})

	t.Run("service error", func(t *testing.T) {
		svc := &fakeSchedulingService{checkErr: errors.New("db down")}
		ctrl := NewSchedulingController(testLogger(), svc)
		body := `{"kind": "room", "resource_id": "room-1", "date": "2025-03-11", "start": "09:00", "end": "11:00"}`
		req := httptest.NewRequest(http.MethodPost, "/availability/check", strings.NewReader(body))
		rr := httptest.NewRecorder()

		ctrl.CheckAvailability(rr, req)

		require.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}

func TestCreateSessionHandler(t *testing.T) {
	t.Run("valid candidate", func(t *testing.T) {
		svc := &fakeSchedulingService{session: testSession(), createResult: domain.CheckOK()}
		ctrl := NewSchedulingController(testLogger(), svc)
		req := httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader(testCandidateBody()))
		rr := httptest.NewRecorder()

		ctrl.CreateSession(rr, req)

		require.Equal(t, http.StatusCreated, rr.Code)
		var created domain.ExamSession
		apiErr := decodeEnvelope(t, rr, &created)
		require.Nil(t, apiErr)
		assert.Equal(t, "ses-1", created.ID)
		assert.Equal(t, "sub-math", svc.candidate.SubjectID)
		assert.Equal(t, domain.IntentMainExam, svc.candidate.Intent)
	})

	t.Run("failed check maps to 409 with the check code", func(t *testing.T) {
		result := domain.CheckFail(domain.CodeBookingConflict, "room room-1 is booked from 09:00 to 11:00")
		result.ConflictingSessionID = "ses-9"
		svc := &fakeSchedulingService{createResult: result}
		ctrl := NewSchedulingController(testLogger(), svc)
		req := httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader(testCandidateBody()))
		rr := httptest.NewRecorder()

		ctrl.CreateSession(rr, req)

		require.Equal(t, http.StatusConflict, rr.Code)
		apiErr := decodeEnvelope(t, rr, nil)
		require.NotNil(t, apiErr)
		assert.Equal(t, string(domain.CodeBookingConflict), apiErr.Code)
		assert.Contains(t, apiErr.Message, "conflicting session ses-9")
	})

	t.Run("missing supervisors in body", func(t *testing.T) {
		ctrl := NewSchedulingController(testLogger(), &fakeSchedulingService{})
		body := `{"subject_id": "sub-math", "date": "2025-03-11", "start": "09:00", "end": "11:00", "room_id": "room-1", "group_ids": ["grp-1"], "supervisor_ids": [], "intent": "main_exam"}`
		req := httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader(body))
		rr := httptest.NewRecorder()

		ctrl.CreateSession(rr, req)

		require.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("service error", func(t *testing.T) {
		svc := &fakeSchedulingService{createErr: errors.New("db down")}
		ctrl := NewSchedulingController(testLogger(), svc)
		req := httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader(testCandidateBody()))
		rr := httptest.NewRecorder()

		ctrl.CreateSession(rr, req)

		require.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}

func TestUpdateSessionHandler(t *testing.T) {
	t.Run("valid update", func(t *testing.T) {
		svc := &fakeSchedulingService{session: testSession(), createResult: domain.CheckOK()}
		ctrl := NewSchedulingController(testLogger(), svc)
		req := httptest.NewRequest(http.MethodPatch, "/sessions/ses-1", strings.NewReader(testCandidateBody()))
		req.SetPathValue("sessionID", "ses-1")
		rr := httptest.NewRecorder()

		ctrl.UpdateSession(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "ses-1", svc.updateID)
	})

	t.Run("unknown session", func(t *testing.T) {
		svc := &fakeSchedulingService{updateErr: domain.ErrNotFound}
		ctrl := NewSchedulingController(testLogger(), svc)
		req := httptest.NewRequest(http.MethodPatch, "/sessions/ses-missing", strings.NewReader(testCandidateBody()))
		req.SetPathValue("sessionID", "ses-missing")
		rr := httptest.NewRecorder()

		ctrl.UpdateSession(rr, req)

		require.Equal(t, http.StatusNotFound, rr.Code)
		apiErr := decodeEnvelope(t, rr, nil)
		require.NotNil(t, apiErr)
		assert.Equal(t, helpers.ErrCodeNotFound, apiErr.Code)
	})

	t.Run("edit into a conflict", func(t *testing.T) {
		svc := &fakeSchedulingService{
			createResult: domain.CheckFail(domain.CodeCapacityExceeded, "room A101 seats 30 but groups total 45"),
		}
		ctrl := NewSchedulingController(testLogger(), svc)
		req := httptest.NewRequest(http.MethodPatch, "/sessions/ses-1", strings.NewReader(testCandidateBody()))
		req.SetPathValue("sessionID", "ses-1")
		rr := httptest.NewRecorder()

		ctrl.UpdateSession(rr, req)

		require.Equal(t, http.StatusConflict, rr.Code)
		apiErr := decodeEnvelope(t, rr, nil)
		require.NotNil(t, apiErr)
		assert.Equal(t, string(domain.CodeCapacityExceeded), apiErr.Code)
	})
}

func TestCancelAndDeleteSessionHandlers(t *testing.T) {
	t.Run("cancel", func(t *testing.T) {
		svc := &fakeSchedulingService{}
		ctrl := NewSchedulingController(testLogger(), svc)
		req := httptest.NewRequest(http.MethodPost, "/sessions/ses-1/cancel", nil)
		req.SetPathValue("sessionID", "ses-1")
		rr := httptest.NewRecorder()

		ctrl.CancelSession(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var status SessionStatusResponse
		decodeEnvelope(t, rr, &status)
		assert.Equal(t, "cancelled", status.Status)
		assert.Equal(t, "ses-1", svc.cancelledID)
	})

	t.Run("cancel unknown session", func(t *testing.T) {
		svc := &fakeSchedulingService{cancelErr: domain.ErrNotFound}
		ctrl := NewSchedulingController(testLogger(), svc)
		req := httptest.NewRequest(http.MethodPost, "/sessions/nope/cancel", nil)
		req.SetPathValue("sessionID", "nope")
		rr := httptest.NewRecorder()

		ctrl.CancelSession(rr, req)

		require.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("delete", func(t *testing.T) {
		svc := &fakeSchedulingService{}
		ctrl := NewSchedulingController(testLogger(), svc)
		req := httptest.NewRequest(http.MethodDelete, "/sessions/ses-1", nil)
		req.SetPathValue("sessionID", "ses-1")
		rr := httptest.NewRecorder()

		ctrl.DeleteSession(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var status SessionStatusResponse
		decodeEnvelope(t, rr, &status)
		assert.Equal(t, "deleted", status.Status)
	})
}

func TestListSessionsHandler(t *testing.T) {
	t.Run("sessions with status", func(t *testing.T) {
		svc := &fakeSchedulingService{
			views: []domain.SessionView{{Session: testSession(), Status: domain.StatusScheduled}},
		}
		ctrl := NewSchedulingController(testLogger(), svc)
		req := httptest.NewRequest(http.MethodGet, "/sessions?date=2025-03-11", nil)
		rr := httptest.NewRecorder()

		ctrl.ListSessions(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var views []domain.SessionView
		decodeEnvelope(t, rr, &views)
		require.Len(t, views, 1)
		assert.Equal(t, domain.StatusScheduled, views[0].Status)
		assert.Equal(t, domain.NewCivilDate(2025, time.March, 11), svc.listedDate)
	})

	t.Run("empty day returns empty array not null", func(t *testing.T) {
		ctrl := NewSchedulingController(testLogger(), &fakeSchedulingService{})
		req := httptest.NewRequest(http.MethodGet, "/sessions?date=2025-03-11", nil)
		rr := httptest.NewRecorder()

		ctrl.ListSessions(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"data":[]`)
	})

	t.Run("missing date parameter", func(t *testing.T) {
		ctrl := NewSchedulingController(testLogger(), &fakeSchedulingService{})
		req := httptest.NewRequest(http.MethodGet, "/sessions", nil)
		rr := httptest.NewRecorder()

		ctrl.ListSessions(rr, req)

		require.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestValidateBatchHandler(t *testing.T) {
	t.Run("mixed outcome", func(t *testing.T) {
		rejected := domain.SessionCandidate{
			SubjectID: "sub-phys",
			Interval: domain.NewTimeInterval(
				domain.NewCivilDate(2025, time.March, 11),
				domain.NewTimeOfDay(10, 0),
				domain.NewTimeOfDay(12, 0),
			),
			RoomID:        "room-1",
			GroupIDs:      []string{"grp-2"},
			SupervisorIDs: []string{"stf-2"},
			Intent:        domain.IntentMainExam,
		}
		svc := &fakeSchedulingService{
			batchResult: &domain.BatchResult{
				Accepted: []*domain.ExamSession{testSession()},
				Rejected: []domain.BatchItemResult{
					{Index: 1, Candidate: rejected, Result: domain.CheckFail(domain.CodeBatchConflict, "conflicts with candidate 0")},
				},
			},
		}
		ctrl := NewSchedulingController(testLogger(), svc)
		body := `{"atomic": false, "candidates": [` + testCandidateBody() + `,` + testCandidateBody() + `]}`
		req := httptest.NewRequest(http.MethodPost, "/sessions/validate-batch", strings.NewReader(body))
		rr := httptest.NewRecorder()

		ctrl.ValidateBatch(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var result domain.BatchResult
		decodeEnvelope(t, rr, &result)
		assert.Len(t, result.Accepted, 1)
		require.Len(t, result.Rejected, 1)
		assert.Equal(t, 1, result.Rejected[0].Index)
		assert.Equal(t, "sub-phys", result.Rejected[0].Candidate.SubjectID)
		assert.Equal(t, domain.NewCivilDate(2025, time.March, 11), result.Rejected[0].Candidate.Interval.Date)
		assert.False(t, svc.batchAtomic)
	})

	t.Run("atomic flag is forwarded", func(t *testing.T) {
		svc := &fakeSchedulingService{batchResult: &domain.BatchResult{}}
		ctrl := NewSchedulingController(testLogger(), svc)
		body := `{"atomic": true, "candidates": [` + testCandidateBody() + `]}`
		req := httptest.NewRequest(http.MethodPost, "/sessions/validate-batch", strings.NewReader(body))
		rr := httptest.NewRecorder()

		ctrl.ValidateBatch(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.True(t, svc.batchAtomic)
	})

	t.Run("empty batch", func(t *testing.T) {
		ctrl := NewSchedulingController(testLogger(), &fakeSchedulingService{})
		req := httptest.NewRequest(http.MethodPost, "/sessions/validate-batch", strings.NewReader(`{"atomic": false, "candidates": []}`))
		rr := httptest.NewRecorder()

		ctrl.ValidateBatch(rr, req)

		require.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestGenerateScheduleHandler(t *testing.T) {
	genBody := `{
		"from": "2025-03-10",
		"to": "2025-03-14",
		"daily_slots": [{"start": "09:00", "end": "11:00"}, {"start": "14:00", "end": "16:00"}],
		"min_supervisors": 1,
		"intent": "main_exam"
	}`

	t.Run("successful run", func(t *testing.T) {
		svc := &fakeSchedulingService{
			genResult: &domain.GenerateResult{
				Scheduled:   []*domain.ExamSession{testSession()},
				Unscheduled: []domain.UnscheduledSubject{{SubjectID: "sub-phys", Reason: "no room with sufficient capacity"}},
			},
		}
		ctrl := NewSchedulingController(testLogger(), svc)
		req := httptest.NewRequest(http.MethodPost, "/schedule/generate", strings.NewReader(genBody))
		rr := httptest.NewRecorder()

		ctrl.GenerateSchedule(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var result domain.GenerateResult
		decodeEnvelope(t, rr, &result)
		assert.Len(t, result.Scheduled, 1)
		require.Len(t, result.Unscheduled, 1)
		assert.Equal(t, "sub-phys", result.Unscheduled[0].SubjectID)
		assert.Equal(t, domain.NewCivilDate(2025, time.March, 10), svc.genReq.From)
		assert.Len(t, svc.genReq.DailySlots, 2)
		assert.Equal(t, 1, svc.genReq.MinSupervisors)
	})

	t.Run("missing slots", func(t *testing.T) {
		ctrl := NewSchedulingController(testLogger(), &fakeSchedulingService{})
		body := `{"from": "2025-03-10", "to": "2025-03-14", "daily_slots": []}`
		req := httptest.NewRequest(http.MethodPost, "/schedule/generate", strings.NewReader(body))
		rr := httptest.NewRecorder()

		ctrl.GenerateSchedule(rr, req)

		require.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("service rejects the range", func(t *testing.T) {
		svc := &fakeSchedulingService{genErr: domain.ErrInvalidInput}
		ctrl := NewSchedulingController(testLogger(), svc)
		req := httptest.NewRequest(http.MethodPost, "/schedule/generate", strings.NewReader(genBody))
		rr := httptest.NewRecorder()

		ctrl.GenerateSchedule(rr, req)

		require.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
