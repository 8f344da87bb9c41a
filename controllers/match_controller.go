package controllers

import (
	"encoding/json"
	"log"
	"net/http"

	"flare_server/services"
	"flare_server/utils"
)

// MatchController translates swipe/match REST calls into MatchService calls.
type MatchController struct {
	Matches  *services.MatchService
	Sessions SessionGetter
	Gateway  Broadcaster
}

func NewMatchController(matches *services.MatchService, sessions SessionGetter, gateway Broadcaster) *MatchController {
	return &MatchController{Matches: matches, Sessions: sessions, Gateway: gateway}
}

// HandleSwipe - POST /api/matches/swipe
func (c *MatchController) HandleSwipe(w http.ResponseWriter, r *http.Request) {
	session, serr := sessionFromRequest(r, c.Sessions)
	if serr != nil {
		utils.RespondServiceError(w, serr)
		return
	}
	var req struct {
		TargetID string `json:"targetId"`
		Action   string `json:"action"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}
	match, serr := c.Matches.RecordSwipe(session, req.TargetID, req.Action)
	if serr != nil {
		utils.RespondServiceError(w, serr)
		return
	}
	if match != nil && c.Gateway != nil {
		if err := c.Gateway.Broadcast("match_created", match); err != nil {
			log.Printf("match broadcast failed: %v", err)
		}
	}
	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"match":  match,
	})
}

// HandleListMatches - GET /api/matches
func (c *MatchController) HandleListMatches(w http.ResponseWriter, r *http.Request) {
	session, serr := sessionFromRequest(r, c.Sessions)
	if serr != nil {
		utils.RespondServiceError(w, serr)
		return
	}
	utils.RespondJSON(w, http.StatusOK, c.Matches.ListMatches(session.UserID))
}
