package routes

import (
	"flare_server/controllers"
	"flare_server/services"

	"github.com/gorilla/mux"
)

// RegisterBlockRoutes sets up routes for block operations under /api/blocks
func RegisterBlockRoutes(r *mux.Router, blockService *services.BlockService, sessions controllers.SessionGetter) {
	controller := controllers.NewBlockController(blockService, sessions)

	blockRouter := r.PathPrefix("/api/blocks").Subrouter()
	blockRouter.HandleFunc("", controller.HandleBlock).Methods("POST")
	blockRouter.HandleFunc("/remove", controller.HandleUnblock).Methods("POST")
	blockRouter.HandleFunc("", controller.HandleListBlocked).Methods("GET")
}
