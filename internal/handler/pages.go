package handler

import (
	"errors"
	"net/http"
	"strings"

	"hiway-api/internal/middleware"
	"hiway-api/internal/model"
	"hiway-api/internal/profile"
)

func (h *Handler) home(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, middleware.DashboardPath, http.StatusFound)
}

// publicPage hands the client the query state it needs to render the page.
func (h *Handler) publicPage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	out := map[string]string{"page": strings.TrimPrefix(r.URL.Path, "/")}
	for _, k := range []string{"next", "error", "verified", "reason"} {
		if v := q.Get(k); v != "" {
			out[k] = v
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	ov, err := h.Dashboard.Overview(r.Context(), userID(r))
	if err != nil {
		internalError(w, "dashboard overview", err)
		return
	}
	writeJSON(w, http.StatusOK, ov)
}

func (h *Handler) profilePage(w http.ResponseWriter, r *http.Request) {
	e, ok := middleware.EmployerFrom(r.Context())
	if !ok {
		var err error
		e, err = h.Store.EmployerByAuthUser(r.Context(), userID(r))
		if err != nil {
			if isNotFound(err) {
				writeError(w, http.StatusNotFound, "Employer not found")
				return
			}
			internalError(w, "load employer", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, employerBody(e))
}

func employerBody(e *model.Employer) map[string]any {
	missing := profile.Missing(e)
	if missing == nil {
		missing = []string{}
	}
	return map[string]any{
		"employer":         e,
		"profile_complete": len(missing) == 0,
		"missing":          missing,
	}
}

// profileForm is accepted both as a form post and as JSON.
type profileForm struct {
	Name                 string `json:"name"`
	Company              string `json:"company"`
	CompanyEmail         string `json:"company_email"`
	CompanyPosition      string `json:"company_position"`
	CompanyPhoneNumber   string `json:"company_phone_number"`
	DTIOrSECRegistration string `json:"dti_or_sec_registration"`
	BarangayClearance    string `json:"barangay_clearance"`
	BusinessPermit       string `json:"business_permit"`
}

func readProfile(r *http.Request) (model.ProfileUpdate, error) {
	var f profileForm
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := decodeJSON(r, &f); err != nil {
			return model.ProfileUpdate{}, err
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return model.ProfileUpdate{}, err
		}
		f = profileForm{
			Name:                 r.PostFormValue("name"),
			Company:              r.PostFormValue("company"),
			CompanyEmail:         r.PostFormValue("company_email"),
			CompanyPosition:      r.PostFormValue("company_position"),
			CompanyPhoneNumber:   r.PostFormValue("company_phone_number"),
			DTIOrSECRegistration: r.PostFormValue("dti_or_sec_registration"),
			BarangayClearance:    r.PostFormValue("barangay_clearance"),
			BusinessPermit:       r.PostFormValue("business_permit"),
		}
	}
	return model.ProfileUpdate{
		Name:                 strings.TrimSpace(f.Name),
		Company:              strings.TrimSpace(f.Company),
		CompanyEmail:         strings.TrimSpace(f.CompanyEmail),
		CompanyPosition:      strings.TrimSpace(f.CompanyPosition),
		CompanyPhoneNumber:   strings.TrimSpace(f.CompanyPhoneNumber),
		DTIOrSECRegistration: strings.TrimSpace(f.DTIOrSECRegistration),
		BarangayClearance:    strings.TrimSpace(f.BarangayClearance),
		BusinessPermit:       strings.TrimSpace(f.BusinessPermit),
	}, nil
}

var errBadProfile = errors.New("bad profile")

// applyProfile validates and stores a submitted profile. Validation problems
// come back as errBadProfile.
func (h *Handler) applyProfile(r *http.Request) (*model.Employer, error) {
	u, err := readProfile(r)
	if err != nil {
		return nil, errBadProfile
	}
	if err := profile.ValidateUpdate(u); err != nil {
		return nil, errBadProfile
	}
	return h.Store.UpdateEmployerProfile(r.Context(), userID(r), u)
}

func (h *Handler) saveProfile(w http.ResponseWriter, r *http.Request) {
	_, err := h.applyProfile(r)
	switch {
	case errors.Is(err, errBadProfile):
		writeError(w, http.StatusBadRequest, "Please fill in all required fields")
		return
	case isNotFound(err):
		writeError(w, http.StatusNotFound, "Employer not found")
		return
	case err != nil:
		internalError(w, "save profile", err)
		return
	}
	http.Redirect(w, r, middleware.DashboardPath, http.StatusSeeOther)
}
