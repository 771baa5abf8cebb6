package handler

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"hiway-api/internal/meeting"
)

func (h *Handler) createMeeting(w http.ResponseWriter, r *http.Request) {
	var req meeting.Request
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if missing := meeting.MissingFields(req); len(missing) > 0 {
		writeError(w, http.StatusBadRequest, "Missing required fields: "+strings.Join(missing, ", "))
		return
	}
	if bad := meeting.MalformedIDs(req); len(bad) > 0 {
		writeError(w, http.StatusBadRequest, "Invalid identifiers: "+strings.Join(bad, ", "))
		return
	}

	out, err := h.Scheduler.Schedule(r.Context(), userID(r), meeting.WithDefaults(req))
	if err != nil {
		var ve *meeting.ValidationError
		switch {
		case errors.As(err, &ve):
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":   "Invalid meeting request",
				"details": ve.Errors,
			})
		case isNotFound(err):
			writeError(w, http.StatusNotFound, "Application not found")
		case errors.Is(err, meeting.ErrApplicantMismatch):
			writeError(w, http.StatusBadRequest, "Applicant does not match application")
		default:
			log.Printf("create meeting for application %s: %v", req.ApplicationID, err)
			writeError(w, http.StatusInternalServerError, "Failed to create meeting")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":                    true,
		"meeting":                    out.Meeting,
		"message":                    "Zoom meeting created successfully",
		"application_status_updated": out.ApplicationStatusUpdated,
		"invitation_queued":          out.InvitationQueued,
		"reminders_scheduled":        out.RemindersScheduled,
	})
}
