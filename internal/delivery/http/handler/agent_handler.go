package handler

import (
	"net/http"

	"insurance-marketplace/internal/converter"
	"insurance-marketplace/internal/delivery/dto"
	"insurance-marketplace/internal/viewmodel"
	"insurance-marketplace/pkg/response"
	"insurance-marketplace/pkg/validator"

	"github.com/gorilla/mux"
)

type AgentHandler struct {
	agents    *viewmodel.AgentViewModel
	validator *validator.CustomValidator
}

func NewAgentHandler(agents *viewmodel.AgentViewModel, validator *validator.CustomValidator) *AgentHandler {
	return &AgentHandler{agents: agents, validator: validator}
}

// GetAll lists agents
// @Summary List agents
// @Tags Agents
// @Produce json
// @Success 200 {object} response.Response
// @Router /agents [get]
func (h *AgentHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	response.Success(w, http.StatusOK, "Agents retrieved successfully", h.agents.Agents())
}

// Get returns one agent
// @Summary Get agent by ID
// @Tags Agents
// @Produce json
// @Param id path string true "Agent ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /agents/{id} [get]
func (h *AgentHandler) Get(w http.ResponseWriter, r *http.Request) {
	agent, err := h.agents.Find(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		response.FromError(w, err, "Failed to get agent")
		return
	}
	if agent == nil {
		response.NotFound(w, "Agent not found")
		return
	}

	response.Success(w, http.StatusOK, "Agent retrieved successfully", agent)
}

// Create adds an agent
// @Summary Create agent
// @Tags Agents
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.AgentRequest true "Agent Request"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /agents [post]
func (h *AgentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.AgentRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	agent := converter.AgentRequestToEntity(&req)
	if err := h.agents.Add(r.Context(), agent); err != nil {
		response.FromError(w, err, "Failed to create agent")
		return
	}

	response.Success(w, http.StatusCreated, "Agent created successfully", agent)
}

// Update overwrites an agent
// @Summary Update agent
// @Tags Agents
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Agent ID"
// @Param request body dto.AgentRequest true "Agent Request"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /agents/{id} [put]
func (h *AgentHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.AgentRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	agent := converter.AgentRequestToEntity(&req)
	agent.ID = mux.Vars(r)["id"]
	if err := h.agents.Update(r.Context(), agent); err != nil {
		response.FromError(w, err, "Failed to update agent")
		return
	}

	response.Success(w, http.StatusOK, "Agent updated successfully", agent)
}

// Delete removes an agent
// @Summary Delete agent
// @Tags Agents
// @Security BearerAuth
// @Produce json
// @Param id path string true "Agent ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /agents/{id} [delete]
func (h *AgentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.agents.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		response.FromError(w, err, "Failed to delete agent")
		return
	}

	response.Success(w, http.StatusOK, "Agent deleted successfully", nil)
}
