package controllers

import (
	"encoding/json"
	"net/http"

	"flare_server/services"
	"flare_server/utils"
)

// BlockController translates block REST calls into BlockService calls.
type BlockController struct {
	Blocks   *services.BlockService
	Sessions SessionGetter
}

func NewBlockController(blocks *services.BlockService, sessions SessionGetter) *BlockController {
	return &BlockController{Blocks: blocks, Sessions: sessions}
}

func (c *BlockController) decodeTarget(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req struct {
		TargetKey string `json:"targetKey"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return "", false
	}
	return req.TargetKey, true
}

// HandleBlock - POST /api/blocks
func (c *BlockController) HandleBlock(w http.ResponseWriter, r *http.Request) {
	session, serr := sessionFromRequest(r, c.Sessions)
	if serr != nil {
		utils.RespondServiceError(w, serr)
		return
	}
	target, ok := c.decodeTarget(w, r)
	if !ok {
		return
	}
	if serr := c.Blocks.Block(session, target); serr != nil {
		utils.RespondServiceError(w, serr)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// HandleUnblock - POST /api/blocks/remove
func (c *BlockController) HandleUnblock(w http.ResponseWriter, r *http.Request) {
	session, serr := sessionFromRequest(r, c.Sessions)
	if serr != nil {
		utils.RespondServiceError(w, serr)
		return
	}
	target, ok := c.decodeTarget(w, r)
	if !ok {
		return
	}
	if serr := c.Blocks.Unblock(session, target); serr != nil {
		utils.RespondServiceError(w, serr)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// HandleListBlocked - GET /api/blocks
func (c *BlockController) HandleListBlocked(w http.ResponseWriter, r *http.Request) {
	session, serr := sessionFromRequest(r, c.Sessions)
	if serr != nil {
		utils.RespondServiceError(w, serr)
		return
	}
	utils.RespondJSON(w, http.StatusOK, c.Blocks.ListBlocked(session.IdentityKey()))
}
