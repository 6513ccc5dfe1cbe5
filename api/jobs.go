package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/garnizeh/gigmarket/internal/market"
	"github.com/garnizeh/gigmarket/pkg/models"
)

// JobsHandler serves the job catalog.
type JobsHandler struct {
	catalog *market.Catalog
}

func NewJobsHandler(c *market.Catalog) *JobsHandler {
	return &JobsHandler{catalog: c}
}

type createJobRequest struct {
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Category     string          `json:"category"`
	Location     string          `json:"location"`
	Budget       json.RawMessage `json:"budget"`
	Duration     string          `json:"duration"`
	Requirements string          `json:"requirements"`
	ContactInfo  string          `json:"contact_info"`
}

type categoryResponse struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Categories lists the accepted job categories in display order.
func (h *JobsHandler) Categories(w http.ResponseWriter, r *http.Request) {
	all := models.Categories()
	out := make([]categoryResponse, 0, len(all))
	for _, c := range all {
		out = append(out, categoryResponse{Value: string(c), Label: c.Label()})
	}
	writeJSON(w, out, http.StatusOK)
}

// rawAmount returns a money amount sent either as a JSON number or a string.
func rawAmount(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return ""
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return str
	}
	return s
}

func (h *JobsHandler) CreateJob(w http.ResponseWriter, r *http.Request) {
	actor := ActorFromContext(r.Context())
	if !actor.Authenticated() {
		writeError(w, r, market.ErrUnauthenticated)
		return
	}

	var req createJobRequest
	if err := decodeBody(r.Context(), r, "create_job", &req); err != nil {
		writeDecodeError(w, r, err)
		return
	}

	job, err := h.catalog.CreateJob(r.Context(), actor, market.CreateJobInput{
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		Location:     req.Location,
		Budget:       rawAmount(req.Budget),
		Duration:     req.Duration,
		Requirements: req.Requirements,
		ContactInfo:  req.ContactInfo,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, job, http.StatusCreated)
}

func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := market.JobFilter{
		SearchTerm: q.Get("search"),
		Category:   q.Get("category"),
		Sort:       q.Get("sort"),
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeErrorBody(w, http.StatusBadRequest, "invalid_input", "limit must be a non-negative integer", "limit")
			return
		}
		f.Limit = n
	}

	jobs, err := h.catalog.ListJobs(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, jobs, http.StatusOK)
}

func (h *JobsHandler) RecentJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.catalog.RecentJobs(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, jobs, http.StatusOK)
}

func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.catalog.GetJob(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, job, http.StatusOK)
}

func (h *JobsHandler) CloseJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.catalog.CloseJob(r.Context(), ActorFromContext(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, job, http.StatusOK)
}
