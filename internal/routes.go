package internal

import (
	"net/http"

	"infcheck/internal/controllers"
	"infcheck/internal/providers"
)

func InitRoutes(apiController *controllers.ApiController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Post("/upload", http.HandlerFunc(apiController.Upload))
	routers.Get("/session", http.HandlerFunc(apiController.GetSession))
	routers.Post("/session/approve", http.HandlerFunc(apiController.ApproveSession))
	routers.Get("/export", http.HandlerFunc(apiController.Export))
	routers.Get("/roster", http.HandlerFunc(apiController.GetRoster))
	routers.Post("/roster/edit", http.HandlerFunc(apiController.EditRoster))
	routers.Post("/roster/add", http.HandlerFunc(apiController.AddRoster))
	routers.Post("/roster/sync", http.HandlerFunc(apiController.SyncRoster))
	routers.Get("/history", http.HandlerFunc(apiController.History))
	return routers
}
