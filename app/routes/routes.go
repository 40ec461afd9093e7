package routes

import (
	"postviewer/app/controllers"
	"postviewer/app/middleware"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// SetupViewerRoutes defines the viewer's routes. Each route delivers one
// browser event to the caller's session page.
func SetupViewerRoutes(pc *controllers.PageController, logger *zap.Logger) *mux.Router {
	router := mux.NewRouter()

	// Apply global middleware
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recoverer(logger))

	// Page ready
	router.HandleFunc("/", pc.Index).Methods("GET")

	// Select change
	router.HandleFunc("/select", pc.Select).Methods("POST")

	// Toggle click
	router.HandleFunc("/toggle", pc.Toggle).Methods("POST")
	router.HandleFunc("/toggle/{postId:[0-9]+}", pc.Toggle).Methods("POST")

	router.HandleFunc("/healthz", pc.Health).Methods("GET")

	return router
}

// SetupFixtureRoutes defines the JSONPlaceholder-compatible fixture API.
func SetupFixtureRoutes(fc *controllers.FixtureController, logger *zap.Logger) *mux.Router {
	router := mux.NewRouter()

	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recoverer(logger))
	router.Use(middleware.ContentTypeJSON)

	router.HandleFunc("/users", fc.Users).Methods("GET")
	router.HandleFunc("/users/{id:[0-9]+}", fc.User).Methods("GET")
	router.HandleFunc("/posts", fc.Posts).Methods("GET")
	router.HandleFunc("/comments", fc.Comments).Methods("GET")

	return router
}
