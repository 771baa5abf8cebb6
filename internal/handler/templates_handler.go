package handler

import (
	"errors"
	"log"
	"maps"
	"net/http"
	"strings"

	"hiway-api/internal/notify"
	"hiway-api/internal/templates"
)

func (h *Handler) listTemplates(w http.ResponseWriter, r *http.Request) {
	list := templates.All()
	if c := strings.TrimSpace(r.URL.Query().Get("category")); c != "" && c != "all" {
		list = templates.ByCategory(templates.Category(c))
	}
	if list == nil {
		list = []templates.Template{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"templates": list})
}

type renderRequest struct {
	TemplateKey   string            `json:"template_key"`
	ApplicationID string            `json:"application_id"`
	Variables     map[string]string `json:"variables"`
}

func (h *Handler) renderTemplate(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := decodeJSON(r, &req); err != nil || req.TemplateKey == "" {
		writeError(w, http.StatusBadRequest, "Template key is required")
		return
	}
	out, err := templates.Render(req.TemplateKey, req.Variables)
	if errors.Is(err, templates.ErrUnknownTemplate) {
		writeError(w, http.StatusNotFound, "Template not found")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// sendTemplate fills a template from the employer profile and the application,
// lets the caller's variables win, and queues the result for the applicant.
func (h *Handler) sendTemplate(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := decodeJSON(r, &req); err != nil || req.TemplateKey == "" {
		writeError(w, http.StatusBadRequest, "Template key is required")
		return
	}
	if req.ApplicationID == "" {
		writeError(w, http.StatusBadRequest, "Application ID is required")
		return
	}
	if _, ok := templates.Get(req.TemplateKey); !ok {
		writeError(w, http.StatusNotFound, "Template not found")
		return
	}

	ctx := r.Context()
	uid := userID(r)
	app, err := h.Store.ApplicationDetail(ctx, uid, req.ApplicationID)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "Application not found")
			return
		}
		internalError(w, "load application", err)
		return
	}
	if app.SeekerEmail == nil || *app.SeekerEmail == "" {
		writeError(w, http.StatusBadRequest, "Applicant has no email address")
		return
	}

	emp, err := h.Store.EmployerByAuthUser(ctx, uid)
	if err != nil && !isNotFound(err) {
		internalError(w, "load employer", err)
		return
	}
	vars := notify.Vars(emp, deref(app.SeekerName), deref(app.PostTitle))
	maps.Copy(vars, req.Variables)

	msg, err := templates.Render(req.TemplateKey, vars)
	if err != nil {
		internalError(w, "render template", err)
		return
	}
	job, err := h.Outbox.QueueEmail(ctx, *app.SeekerEmail, msg.Subject, msg.Message, req.TemplateKey, "")
	if err != nil {
		log.Printf("queue %s for application %s: %v", req.TemplateKey, req.ApplicationID, err)
		writeError(w, http.StatusInternalServerError, "Failed to queue email")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "email": job})
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
