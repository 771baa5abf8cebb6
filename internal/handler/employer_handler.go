package handler

import (
	"errors"
	"log"
	"net/http"
	"strings"
)

func (h *Handler) getEmployer(w http.ResponseWriter, r *http.Request) {
	e, err := h.Store.EmployerByAuthUser(r.Context(), userID(r))
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "Employer not found")
			return
		}
		internalError(w, "load employer", err)
		return
	}
	writeJSON(w, http.StatusOK, employerBody(e))
}

func (h *Handler) putEmployer(w http.ResponseWriter, r *http.Request) {
	e, err := h.applyProfile(r)
	switch {
	case errors.Is(err, errBadProfile):
		writeError(w, http.StatusBadRequest, "Please fill in all required fields")
		return
	case isNotFound(err):
		writeError(w, http.StatusNotFound, "Employer not found")
		return
	case err != nil:
		internalError(w, "update employer", err)
		return
	}
	writeJSON(w, http.StatusOK, employerBody(e))
}

func (h *Handler) jobSeeker(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("job_seeker_id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "Job seeker ID is required")
		return
	}

	ctx := r.Context()
	ok, err := h.Store.HasApplied(ctx, userID(r), id)
	if err != nil {
		log.Printf("job seeker %s: applied check: %v", id, err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "Job seeker not found")
		return
	}

	js, err := h.Store.JobSeekerByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "Job seeker not found")
			return
		}
		internalError(w, "load job seeker", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"jobSeeker": js})
}
