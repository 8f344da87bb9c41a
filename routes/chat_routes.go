package routes

import (
	"flare_server/controllers"
	"flare_server/services"

	"github.com/gorilla/mux"
)

// RegisterChatRoutes sets up routes for chat operations under /api/chat
func RegisterChatRoutes(r *mux.Router, chatService *services.ChatService, sessions controllers.SessionGetter, gateway controllers.Broadcaster) {
	controller := controllers.NewChatController(chatService, sessions, gateway)

	chatRouter := r.PathPrefix("/api/chat").Subrouter()
	chatRouter.HandleFunc("/message", controller.HandleSendMessage).Methods("POST")
	chatRouter.HandleFunc("/messages", controller.HandleListMessages).Methods("GET")
	chatRouter.HandleFunc("/messages/mark-as-read", controller.HandleMarkRead).Methods("POST")
	chatRouter.HandleFunc("/threads", controller.HandleListThreads).Methods("GET")
}
