package internal

import (
	"net/http"

	"heatmapd/internal/controllers"
	"heatmapd/internal/providers"
)

func InitRoutes(apiController *controllers.ApiController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/athlete", http.HandlerFunc(apiController.GetAthlete))
	routers.Get("/activities", http.HandlerFunc(apiController.GetActivities))
	routers.Post("/heatmaps", http.HandlerFunc(apiController.GenerateHeatmaps))
	routers.Get("/insights", http.HandlerFunc(apiController.GetInsights))
	routers.Post("/cache/clear", http.HandlerFunc(apiController.ClearCache))
	return routers
}
