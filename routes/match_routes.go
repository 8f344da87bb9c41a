package routes

import (
	"flare_server/controllers"
	"flare_server/services"

	"github.com/gorilla/mux"
)

// RegisterMatchRoutes sets up routes for swipe/match operations under /api/matches
func RegisterMatchRoutes(r *mux.Router, matchService *services.MatchService, sessions controllers.SessionGetter, gateway controllers.Broadcaster) {
	controller := controllers.NewMatchController(matchService, sessions, gateway)

	matchRouter := r.PathPrefix("/api/matches").Subrouter()
	matchRouter.HandleFunc("/swipe", controller.HandleSwipe).Methods("POST")
	matchRouter.HandleFunc("", controller.HandleListMatches).Methods("GET")
}
