package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/advenimus/jwtools/internal/attendance"
	"github.com/advenimus/jwtools/internal/launcher"
	"github.com/advenimus/jwtools/internal/settings"
)

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeAPIError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"version": s.cfg.Version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

type statusResponse struct {
	Running       bool                     `json:"running"`
	MeetingIDSet  bool                     `json:"meetingIdSet"`
	ToolToggles   settings.ToolToggles     `json:"toolToggles"`
	Schedule      settings.MeetingSchedule `json:"schedule"`
	CustomMessage string                   `json:"customMessage"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeAPIError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
		return
	}
	if !s.authorizeRequest(r) {
		writeAPIError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
		return
	}

	snapshot := s.store.Load()
	writeJSON(w, http.StatusOK, statusResponse{
		Running:       s.launch.Running(),
		MeetingIDSet:  snapshot.Universal.MeetingID != "",
		ToolToggles:   snapshot.Media.ToolToggles,
		Schedule:      snapshot.Universal.MeetingSchedule,
		CustomMessage: snapshot.Media.CustomMessage.DisplayWhen,
	})
}

func (s *Server) handleLaunch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeAPIError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
		return
	}
	if !s.authorizeRequest(r) {
		writeAPIError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
		return
	}
	if !s.limiter.Allow() {
		writeAPIError(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many launch requests")
		return
	}
	if s.launch.Running() {
		writeAPIError(w, http.StatusConflict, "ALREADY_RUNNING", "a launch sequence is already running")
		return
	}

	// With ?wait=true the client gets the full outcome in the response.
	// Otherwise the sequence runs in the background and the client follows
	// along on /ws/events.
	if r.URL.Query().Get("wait") == "true" {
		result, err := s.launch.Run()
		if err != nil {
			writeAPIError(w, http.StatusConflict, "LAUNCH_FAILED", err.Error())
			return
		}
		if s.cfg.RecordLaunch != nil {
			s.cfg.RecordLaunch(result)
		}
		writeJSON(w, http.StatusOK, launchResponse{
			State:      string(result.State),
			FailedStep: result.FailedStep,
			Steps:      summarizeSteps(result.Steps),
		})
		return
	}

	go func() {
		result, err := s.launch.Run()
		if err != nil {
			webLog.Warn("remote_launch_failed", "error", err.Error())
			return
		}
		if s.cfg.RecordLaunch != nil {
			s.cfg.RecordLaunch(result)
		}
		webLog.Info("remote_launch_finished", "state", string(result.State))
	}()

	writeJSON(w, http.StatusAccepted, map[string]any{"started": true})
}

type launchResponse struct {
	State      string        `json:"state"`
	FailedStep string        `json:"failedStep,omitempty"`
	Steps      []stepSummary `json:"steps"`
}

type attendanceRequest struct {
	Options []int `json:"options"`
	Phone   int   `json:"phone"`
}

func (s *Server) handleAttendance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeAPIError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
		return
	}
	if !s.authorizeRequest(r) {
		writeAPIError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
		return
	}

	var req attendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid attendance payload")
		return
	}
	if len(req.Options) > attendance.NumPollOptions {
		writeAPIError(w, http.StatusBadRequest, "INVALID_REQUEST", "too many poll options")
		return
	}

	var counts attendance.Counts
	copy(counts.Options[:], req.Options)
	counts.Phone = req.Phone

	total, err := attendance.Calculate(counts)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	saved := false
	if s.saver != nil {
		if err := s.saver(counts, total); err != nil {
			writeAPIError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to save attendance")
			return
		}
		saved = true
	}

	writeJSON(w, http.StatusOK, map[string]any{"total": total, "saved": saved})
}

// stepSummary mirrors launcher.StepResult for API clients.
type stepSummary struct {
	Step      string `json:"step"`
	Succeeded bool   `json:"succeeded"`
	Message   string `json:"message"`
}

func summarizeSteps(steps []launcher.StepResult) []stepSummary {
	out := make([]stepSummary, 0, len(steps))
	for _, s := range steps {
		out = append(out, stepSummary{Step: s.StepName, Succeeded: s.Succeeded, Message: s.Message})
	}
	return out
}
