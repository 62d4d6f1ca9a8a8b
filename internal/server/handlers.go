package server

import (
	"net/http"
	"strings"
	"time"

	"surefile/pkg/domain"
)

func (s *Server) handleBusiness(w http.ResponseWriter, r *http.Request, user domain.User) {
	switch r.Method {
	case http.MethodGet:
		b, err := s.app.GetBusiness(user.ID)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, b)
	case http.MethodPost:
		var req businessRequest
		if !decodeBody(w, r, &req) {
			return
		}
		b, err := s.app.UpsertBusiness(user.ID, domain.Business{
			BusinessName:      req.BusinessName,
			BusinessType:      req.BusinessType,
			Category:          req.Category,
			Turnover:          req.Turnover,
			GSTNumber:         req.GSTNumber,
			ComplianceOptions: req.ComplianceOptions,
		})
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, b)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleCompliance(w http.ResponseWriter, r *http.Request, user domain.User) {
	switch r.Method {
	case http.MethodGet:
		items, err := s.app.ListCompliances(user.ID)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, items)
	case http.MethodPost:
		var req complianceRequest
		if !decodeBody(w, r, &req) {
			return
		}
		dueDate, err := parseDate(req.DueDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "dueDate must be an RFC 3339 date")
			return
		}
		c, err := s.app.CreateCompliance(user.ID, domain.Compliance{
			Title:       req.Title,
			Description: req.Description,
			DueDate:     dueDate,
			Status:      domain.ComplianceStatus(req.Status),
			Type:        req.Type,
		})
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, c)
	default:
		methodNotAllowed(w)
	}
}

// handleComplianceByID serves PATCH /api/compliance/{id}/status.
func (s *Server) handleComplianceByID(w http.ResponseWriter, r *http.Request, user domain.User) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/compliance/")
	id, ok := strings.CutSuffix(rest, "/status")
	if !ok || id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodPatch {
		methodNotAllowed(w)
		return
	}
	var req complianceStatusRequest
	if !decodeBody(w, r, &req) {
		return
	}
	c, err := s.app.UpdateComplianceStatus(user.ID, id, domain.ComplianceStatus(req.Status))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleFiling(w http.ResponseWriter, r *http.Request, user domain.User) {
	switch r.Method {
	case http.MethodGet:
		items, err := s.app.ListFilings(user.ID)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, items)
	case http.MethodPost:
		var req filingRequest
		if !decodeBody(w, r, &req) {
			return
		}
		docs := make([]domain.Document, 0, len(req.Documents))
		for _, d := range req.Documents {
			docs = append(docs, domain.Document{Name: d.Name, URL: d.URL})
		}
		f, err := s.app.CreateFiling(user.ID, domain.Filing{
			FilingType: req.FilingType,
			Period:     req.Period,
			Status:     domain.FilingStatus(req.Status),
			Data: domain.FilingData{
				Sales:     req.Data.Sales,
				Tax:       req.Data.Tax,
				ITC:       req.Data.ITC,
				ChallanID: req.Data.ChallanID,
			},
			Documents: docs,
		})
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, f)
	default:
		methodNotAllowed(w)
	}
}

// parseDate accepts a full RFC 3339 timestamp or a bare date.
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}

type businessRequest struct {
	BusinessName      string   `json:"businessName" validate:"required"`
	BusinessType      string   `json:"businessType"`
	Category          string   `json:"category"`
	Turnover          string   `json:"turnover"`
	GSTNumber         string   `json:"gstNumber"`
	ComplianceOptions []string `json:"complianceOptions"`
}

type complianceRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	DueDate     string `json:"dueDate" validate:"required"`
	Status      string `json:"status"`
	Type        string `json:"type"`
}

type complianceStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type filingRequest struct {
	FilingType string `json:"filingType" validate:"required"`
	Period     string `json:"period" validate:"required"`
	Status     string `json:"status"`
	Data       struct {
		Sales     string `json:"sales"`
		Tax       string `json:"tax"`
		ITC       string `json:"itc"`
		ChallanID string `json:"challanId"`
	} `json:"data"`
	Documents []struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	} `json:"documents"`
}
