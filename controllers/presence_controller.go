package controllers

import (
	"encoding/json"
	"net/http"

	"flare_server/services"
	"flare_server/utils"
)

// PresenceController translates presence REST calls into PresenceService
// calls. The service itself announces updates over the gateway.
type PresenceController struct {
	Presence *services.PresenceService
	Sessions SessionGetter
}

func NewPresenceController(presence *services.PresenceService, sessions SessionGetter) *PresenceController {
	return &PresenceController{Presence: presence, Sessions: sessions}
}

// HandleUpdatePresence - POST /api/presence
func (c *PresenceController) HandleUpdatePresence(w http.ResponseWriter, r *http.Request) {
	session, serr := sessionFromRequest(r, c.Sessions)
	if serr != nil {
		utils.RespondServiceError(w, serr)
		return
	}
	var req struct {
		Lat    float64 `json:"lat"`
		Lng    float64 `json:"lng"`
		Status string  `json:"status,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}
	rec, serr := c.Presence.UpdatePresence(session, req.Lat, req.Lng, req.Status)
	if serr != nil {
		utils.RespondServiceError(w, serr)
		return
	}
	utils.RespondJSON(w, http.StatusOK, rec)
}

// HandleListPresence - GET /api/presence
func (c *PresenceController) HandleListPresence(w http.ResponseWriter, r *http.Request) {
	if _, serr := sessionFromRequest(r, c.Sessions); serr != nil {
		utils.RespondServiceError(w, serr)
		return
	}
	utils.RespondJSON(w, http.StatusOK, c.Presence.ListActivePresence())
}
