/**
 * @description
 * This file contains the HTTP handlers for the AI endpoints: agent config
 * generation, free-text advice, and the save/list/get flows for exported
 * agent files.
 */
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jleboube/ai-agent-manager/internal/app"
)

// AIHandler holds the generation service the AI endpoints call into.
type AIHandler struct {
	generations *app.GenerationService
}

func NewAIHandler(generations *app.GenerationService) *AIHandler {
	return &AIHandler{generations: generations}
}

// handleGenerate handles POST /ai/generate.
func (h *AIHandler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req struct {
		Description string `json:"description"`
		AgentType   string `json:"agentType"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	config, provider, err := h.generations.Generate(r.Context(), userID, req.Description, req.AgentType)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"agent":    config,
		"provider": provider,
	})
}

// handleAdvice handles POST /ai/advice.
func (h *AIHandler) handleAdvice(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	advice, err := h.generations.Advice(r.Context(), userID, req.Prompt)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"advice": advice})
}

// handleSaveAgent handles POST /ai/save-agent.
func (h *AIHandler) handleSaveAgent(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req struct {
		AgentName   string `json:"agentName"`
		AgentType   string `json:"agentType"`
		AIProvider  string `json:"aiProvider"`
		FileContent string `json:"fileContent"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.AgentName == "" || req.FileContent == "" {
		respondWithError(w, http.StatusBadRequest, "agentName and fileContent are required")
		return
	}

	err := h.generations.SaveAgent(r.Context(), userID, app.SaveAgentInput{
		AgentName:   req.AgentName,
		AgentType:   req.AgentType,
		AIProvider:  req.AIProvider,
		FileContent: req.FileContent,
		Description: req.Description,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "agent saved"})
}

// handleMyAgents handles GET /ai/my-agents.
func (h *AIHandler) handleMyAgents(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	agents, err := h.generations.ListSavedAgents(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"agents": agents})
}

// handleGetAgent handles GET /ai/agent/{id}.
func (h *AIHandler) handleGetAgent(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	agent, err := h.generations.GetAgent(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"agent": agent})
}
