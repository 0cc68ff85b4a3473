package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"

	"github.com/sells-group/inspection-cli/internal/export"
	"github.com/sells-group/inspection-cli/internal/i18n"
	"github.com/sells-group/inspection-cli/internal/model"
	"github.com/sells-group/inspection-cli/internal/requirement"
)

const dateLayout = "2006-01-02"

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type contractRequest struct {
	OperatorID        string               `json:"operatorId"`
	ProcurementUnitID string               `json:"procurementUnitId"`
	Description       string               `json:"description"`
	StartDate         string               `json:"startDate"`
	EndDate           string               `json:"endDate"`
	Rules             []model.ContractRule `json:"rules"`
}

func (s *Server) handleCreateContract(w http.ResponseWriter, r *http.Request) {
	var req contractRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	dates, err := parseDates(req.StartDate, req.EndDate)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	c, err := s.rules.CreateContract(r.Context(), model.Contract{
		OperatorID:        req.OperatorID,
		ProcurementUnitID: req.ProcurementUnitID,
		Description:       req.Description,
		StartDate:         dates[0],
		EndDate:           dates[1],
		Rules:             req.Rules,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleGetContract(w http.ResponseWriter, r *http.Request) {
	c, err := s.rules.GetContract(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleMergeRules(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Template string `json:"template"`
	}
	if err := decodeJSON(r, &req); err != nil || req.Template == "" {
		badRequest(w, "template is required")
		return
	}

	report, err := s.rules.MergeTemplate(r.Context(), chi.URLParam(r, "id"), req.Template)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

type inspectionRequest struct {
	OperatorID string `json:"operatorId"`
	Season     string `json:"season"`
	StartDate  string `json:"startDate"`
	EndDate    string `json:"endDate"`
	MaxDate    string `json:"maxDate"`
}

func (s *Server) handleCreateInspection(w http.ResponseWriter, r *http.Request) {
	var req inspectionRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	dates, err := parseDates(req.StartDate, req.EndDate, req.MaxDate)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	insp, err := s.requirements.CreateInspection(r.Context(), model.Inspection{
		OperatorID: req.OperatorID,
		Season:     req.Season,
		StartDate:  dates[0],
		EndDate:    dates[1],
		MaxDate:    dates[2],
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, insp)
}

func (s *Server) handleGetInspection(w http.ResponseWriter, r *http.Request) {
	insp, err := s.requirements.GetInspection(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, insp)
}

type requirementsResponse struct {
	InspectionID string                       `json:"inspectionId"`
	Weeks        []requirement.WeekRef        `json:"weeks"`
	MaxWeekKey   int                          `json:"maxWeekKey"`
	Rows         []model.ExecutionRequirement `json:"rows"`
}

func writeState(w http.ResponseWriter, id string, st requirement.State) {
	resp := requirementsResponse{
		InspectionID: id,
		Weeks:        st.Weeks(),
		MaxWeekKey:   st.MaxWeekKey(),
		Rows:         st.Rows,
	}
	if resp.Rows == nil {
		resp.Rows = []model.ExecutionRequirement{}
	}
	if resp.Weeks == nil {
		resp.Weeks = []requirement.WeekRef{}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListRequirements(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	st, err := s.requirements.Load(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeState(w, id, st)
}

func (s *Server) handleSelectWeek(w http.ResponseWriter, r *http.Request) {
	var req requirement.WeekRef
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	id := chi.URLParam(r, "id")
	st, err := s.requirements.Select(r.Context(), id, req.Week, req.Year)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeState(w, id, st)
}

func (s *Server) handleAppendWeek(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	st, err := s.requirements.AppendNextWeek(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeState(w, id, st)
}

func (s *Server) handleRemoveWeek(w http.ResponseWriter, r *http.Request) {
	year, yerr := strconv.Atoi(chi.URLParam(r, "year"))
	week, werr := strconv.Atoi(chi.URLParam(r, "week"))
	if yerr != nil || werr != nil {
		badRequest(w, "year and week must be integers")
		return
	}

	id := chi.URLParam(r, "id")
	st, err := s.requirements.RemoveWeek(r.Context(), id, week, year)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeState(w, id, st)
}

type setRequirementRequest struct {
	Week           int    `json:"week"`
	Year           int    `json:"year"`
	Area           string `json:"area"`
	EquipmentClass int    `json:"equipmentClass"`
	Requirement    string `json:"requirement"`
}

func (s *Server) handleSetRequirement(w http.ResponseWriter, r *http.Request) {
	var req setRequirementRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	area, err := i18n.ParseArea(req.Area)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	id := chi.URLParam(r, "id")
	st, err := s.requirements.SetRequirement(r.Context(), id, model.ExecutionRequirement{
		Area:           area,
		EquipmentClass: req.EquipmentClass,
		Week:           req.Week,
		Year:           req.Year,
		Requirement:    req.Requirement,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeState(w, id, st)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	st, err := s.requirements.Load(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	loc := i18n.FromAcceptLanguage(r.Header.Get("Accept-Language"), s.locale)
	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, export.RequirementSheet, export.RequirementTable(loc), st.Rows); err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="requirements-%s.xlsx"`, id))
	w.Header().Set("Content-Language", loc.Tag().String())
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// parseDates parses YYYY-MM-DD values. Empty strings give the zero time.
func parseDates(values ...string) ([]time.Time, error) {
	out := make([]time.Time, len(values))
	for i, v := range values {
		if v == "" {
			continue
		}
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return nil, eris.Errorf("invalid date %q, want YYYY-MM-DD", v)
		}
		out[i] = t
	}
	return out, nil
}
