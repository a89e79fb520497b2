package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"repo_agent/internal/app/service"
	"repo_agent/internal/common"
	"repo_agent/internal/domain/model"
)

type JobHandler struct {
	jobService *service.JobService
}

func NewJobHandler(js *service.JobService) *JobHandler {
	return &JobHandler{jobService: js}
}

func (h *JobHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.submitChange)
	r.Get("/{jobID}/status", h.getStatus)
	r.Get("/{jobID}/result", h.getResult)
}

type statusResponse struct {
	Status string `json:"status"`
}

type resultResponse struct {
	Status string  `json:"status"`
	Result *string `json:"result"`
}

func (h *JobHandler) submitChange(w http.ResponseWriter, r *http.Request) {
	var req model.ChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	defer r.Body.Close()

	id, err := h.jobService.Submit(r.Context(), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	// Accepted (202) as execution is async
	common.RespondWithJSON(w, http.StatusAccepted, map[string]string{"job_id": id})
}

func (h *JobHandler) getStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	status := h.jobService.GetStatus(r.Context(), jobID)
	common.RespondWithJSON(w, http.StatusOK, statusResponse{Status: status})
}

func (h *JobHandler) getResult(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	status, result := h.jobService.GetResult(r.Context(), jobID)
	common.RespondWithJSON(w, http.StatusOK, resultResponse{Status: status, Result: result})
}
