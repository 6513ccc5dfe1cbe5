package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/garnizeh/gigmarket/internal/market"
	"github.com/garnizeh/gigmarket/pkg/models"
)

// ApplicationsHandler serves job applications and the poster's decisions.
type ApplicationsHandler struct {
	workflow *market.Workflow
}

func NewApplicationsHandler(wf *market.Workflow) *ApplicationsHandler {
	return &ApplicationsHandler{workflow: wf}
}

type submitApplicationRequest struct {
	Message      string          `json:"message"`
	ProposedRate json.RawMessage `json:"proposed_rate"`
}

type decisionRequest struct {
	Decision string `json:"decision"`
}

func (h *ApplicationsHandler) Submit(w http.ResponseWriter, r *http.Request) {
	actor := ActorFromContext(r.Context())
	if !actor.Authenticated() {
		writeError(w, r, market.ErrUnauthenticated)
		return
	}

	var req submitApplicationRequest
	if err := decodeBody(r.Context(), r, "submit_application", &req); err != nil {
		writeDecodeError(w, r, err)
		return
	}

	app, err := h.workflow.SubmitApplication(r.Context(), actor, mux.Vars(r)["id"], market.SubmitApplicationInput{
		Message:      req.Message,
		ProposedRate: rawAmount(req.ProposedRate),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, app, http.StatusCreated)
}

func (h *ApplicationsHandler) ListForJob(w http.ResponseWriter, r *http.Request) {
	apps, err := h.workflow.ListApplicationsForJob(r.Context(), ActorFromContext(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, apps, http.StatusOK)
}

func (h *ApplicationsHandler) Mine(w http.ResponseWriter, r *http.Request) {
	app, err := h.workflow.GetOwnApplication(r.Context(), ActorFromContext(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, app, http.StatusOK)
}

func (h *ApplicationsHandler) Decide(w http.ResponseWriter, r *http.Request) {
	actor := ActorFromContext(r.Context())
	if !actor.Authenticated() {
		writeError(w, r, market.ErrUnauthenticated)
		return
	}

	var req decisionRequest
	if err := decodeBody(r.Context(), r, "decision", &req); err != nil {
		writeDecodeError(w, r, err)
		return
	}
	decision, ok := models.ParseDecision(req.Decision)
	if !ok {
		writeErrorBody(w, http.StatusBadRequest, string(market.KindInvalidInput), "decision must be accept or reject", "decision")
		return
	}

	app, err := h.workflow.DecideApplication(r.Context(), actor, mux.Vars(r)["id"], decision)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, app, http.StatusOK)
}
