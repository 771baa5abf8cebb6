package handler

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"hiway-api/internal/applications"
	"hiway-api/internal/export"
	"hiway-api/internal/model"
)

func (h *Handler) listApplications(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, offset := applications.ParsePage(q.Get("limit"), q.Get("offset"))
	page, err := h.Applications.List(r.Context(), model.ApplicationFilter{
		EmployerID: userID(r),
		Status:     applications.StatusFilter(q.Get("status")),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		log.Printf("list applications: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch applications")
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *Handler) updateApplication(w http.ResponseWriter, r *http.Request) {
	b, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req, err := applications.ParseUpdateRequest(b)
	var fe *applications.FieldError
	if err != nil && !errors.As(err, &fe) {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err == nil {
		var app *model.Application
		if app, err = h.Applications.Update(r.Context(), userID(r), req); err == nil {
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "application": app})
			return
		}
	}

	switch {
	case errors.Is(err, applications.ErrMissingID):
		writeError(w, http.StatusBadRequest, "Application ID is required")
	case errors.Is(err, applications.ErrInvalidStatus):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":   "Invalid status",
			"details": []string{fmt.Sprintf("action must be one of %v", model.Statuses)},
		})
	case errors.As(err, &fe):
		writeError(w, http.StatusBadRequest, fe.Error())
	case isNotFound(err):
		writeError(w, http.StatusNotFound, "Application not found")
	default:
		log.Printf("update application %s: %v", req.ApplicationID, err)
		writeError(w, http.StatusInternalServerError, "Failed to update application")
	}
}

func (h *Handler) exportApplications(w http.ResponseWriter, r *http.Request) {
	apps, err := h.Applications.All(r.Context(), userID(r), r.URL.Query().Get("status"))
	if err != nil {
		log.Printf("export applications: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch applications")
		return
	}

	now := h.now()
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.Filename(now)))
	if err := export.Applications(w, apps, now); err != nil {
		log.Printf("write export: %v", err)
	}
}

func (h *Handler) scheduledEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.Dashboard.Events(r.Context(), userID(r))
	if err != nil {
		log.Printf("scheduled events: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch scheduled events")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "events": events})
}
