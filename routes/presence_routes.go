package routes

import (
	"flare_server/controllers"
	"flare_server/services"

	"github.com/gorilla/mux"
)

// RegisterPresenceRoutes sets up routes for presence operations under /api/presence
func RegisterPresenceRoutes(r *mux.Router, presenceService *services.PresenceService, sessions controllers.SessionGetter) {
	controller := controllers.NewPresenceController(presenceService, sessions)

	presenceRouter := r.PathPrefix("/api/presence").Subrouter()
	presenceRouter.HandleFunc("", controller.HandleUpdatePresence).Methods("POST")
	presenceRouter.HandleFunc("", controller.HandleListPresence).Methods("GET")
}
