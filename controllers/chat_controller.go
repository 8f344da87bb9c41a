package controllers

import (
	"encoding/json"
	"log"
	"net/http"

	"flare_server/services"
	"flare_server/utils"
)

// ChatController translates chat REST calls into ChatService calls and pushes
// accepted messages out through the gateway.
type ChatController struct {
	Chat     *services.ChatService
	Sessions SessionGetter
	Gateway  Broadcaster
}

func NewChatController(chat *services.ChatService, sessions SessionGetter, gateway Broadcaster) *ChatController {
	return &ChatController{Chat: chat, Sessions: sessions, Gateway: gateway}
}

// HandleSendMessage - POST /api/chat/message
func (c *ChatController) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	session, serr := sessionFromRequest(r, c.Sessions)
	if serr != nil {
		utils.RespondServiceError(w, serr)
		return
	}
	var req services.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}
	msg, serr := c.Chat.Send(session, req)
	if serr != nil {
		utils.RespondServiceError(w, serr)
		return
	}
	if c.Gateway != nil {
		if err := c.Gateway.Broadcast("chat_message", msg); err != nil {
			log.Printf("chat broadcast failed: %v", err)
		}
	}
	utils.RespondJSON(w, http.StatusOK, msg)
}

// HandleListMessages - GET /api/chat/messages?counterpart=...&kind=...
func (c *ChatController) HandleListMessages(w http.ResponseWriter, r *http.Request) {
	session, serr := sessionFromRequest(r, c.Sessions)
	if serr != nil {
		utils.RespondServiceError(w, serr)
		return
	}
	counterpart := r.URL.Query().Get("counterpart")
	kind := r.URL.Query().Get("kind")
	msgs, serr := c.Chat.ListMessages(session, counterpart, kind)
	if serr != nil {
		utils.RespondServiceError(w, serr)
		return
	}
	utils.RespondJSON(w, http.StatusOK, msgs)
}

// HandleListThreads - GET /api/chat/threads
func (c *ChatController) HandleListThreads(w http.ResponseWriter, r *http.Request) {
	session, serr := sessionFromRequest(r, c.Sessions)
	if serr != nil {
		utils.RespondServiceError(w, serr)
		return
	}
	threads, serr := c.Chat.ListThreads(session)
	if serr != nil {
		utils.RespondServiceError(w, serr)
		return
	}
	utils.RespondJSON(w, http.StatusOK, threads)
}

// HandleMarkRead - POST /api/chat/messages/mark-as-read
func (c *ChatController) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	session, serr := sessionFromRequest(r, c.Sessions)
	if serr != nil {
		utils.RespondServiceError(w, serr)
		return
	}
	var req struct {
		CounterpartKey string `json:"counterpartKey"`
		Kind           string `json:"kind"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}
	if serr := c.Chat.MarkRead(session, req.CounterpartKey, req.Kind); serr != nil {
		utils.RespondServiceError(w, serr)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "success"})
}
