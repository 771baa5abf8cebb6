package applications

import (
	"context"
	"encoding/json"
	"fmt"

	"hiway-api/internal/model"
)

// FieldError names a body field that may not be written.
type FieldError struct {
	Field string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %q cannot be updated", e.Field)
}

// UpdateRequest is the body of POST /api/applications. Fields holds whatever
// else the caller sent.
type UpdateRequest struct {
	ApplicationID string
	Action        string
	Fields        map[string]json.RawMessage
}

func ParseUpdateRequest(body []byte) (UpdateRequest, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return UpdateRequest{}, err
	}
	var req UpdateRequest
	if v, ok := raw["application_id"]; ok {
		if err := json.Unmarshal(v, &req.ApplicationID); err != nil {
			return req, &FieldError{Field: "application_id"}
		}
	}
	if v, ok := raw["action"]; ok {
		if err := json.Unmarshal(v, &req.Action); err != nil {
			return req, &FieldError{Field: "action"}
		}
	}
	delete(raw, "application_id")
	delete(raw, "action")
	req.Fields = raw
	return req, nil
}

// BuildUpdate checks the action against the status vocabulary and the extra
// fields against the updatable whitelist.
func BuildUpdate(req UpdateRequest) (model.ApplicationUpdate, error) {
	var u model.ApplicationUpdate
	if req.ApplicationID == "" {
		return u, ErrMissingID
	}
	st, err := model.ParseStatus(req.Action)
	if err != nil {
		return u, ErrInvalidStatus
	}
	u.Status = &st

	for k, v := range req.Fields {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return u, &FieldError{Field: k}
		}
		switch k {
		case "source":
			u.Source = &s
		case "resume_url":
			u.ResumeURL = &s
		default:
			return u, &FieldError{Field: k}
		}
	}
	return u, nil
}

func (s *Service) Update(ctx context.Context, employerID string, req UpdateRequest) (*model.Application, error) {
	u, err := BuildUpdate(req)
	if err != nil {
		return nil, err
	}
	return s.store.UpdateApplication(ctx, employerID, req.ApplicationID, u)
}
