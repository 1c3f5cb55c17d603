package controllers

import (
	"net/http"
	"strconv"
	"time"

	json "github.com/goccy/go-json"

	"heatmapd/internal/providers"
	"heatmapd/internal/services"
)

const maxRequestBodySize = 1 << 20 // 1 MB

type ApiController struct {
	logger  providers.Logger
	service services.HeatmapServiceInterface
	cache   providers.CacheProviderInterface
}

func NewApiController(logger providers.Logger, service services.HeatmapServiceInterface, cache providers.CacheProviderInterface) *ApiController {
	return &ApiController{
		logger:  logger,
		service: service,
		cache:   cache,
	}
}

func daysParam(r *http.Request) int {
	days, err := strconv.Atoi(r.URL.Query().Get("days"))
	if err != nil || days < 0 {
		return 0
	}
	return days
}

func (ac *ApiController) serveFromCacheOrCompute(w http.ResponseWriter, r *http.Request, cacheKey string, compute func() (any, error)) {
	if data, ok := ac.cache.Get(cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	result, err := compute()
	if err != nil {
		ac.logger.Errorf(providers.GetLogTypeByRequestType(r.Method), "%s failed: %s", r.URL.Path, err)
		http.Error(w, "Bad Gateway", http.StatusBadGateway)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ac.cache.Set(cacheKey, gson)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func (ac *ApiController) GetAthlete(w http.ResponseWriter, r *http.Request) {
	ac.serveFromCacheOrCompute(w, r, "athlete", func() (any, error) {
		return ac.service.Athlete(r.Context())
	})
}

type activityRow struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Type            string    `json:"type"`
	StartDate       time.Time `json:"start_date"`
	DistanceKm      float64   `json:"distance_km"`
	MovingTimeHours float64   `json:"moving_time_hours"`
	AverageSpeedKmh float64   `json:"average_speed_kmh"`
	ElevationGainM  float64   `json:"elevation_gain_m"`
}

type activitiesResponse struct {
	Count      int           `json:"count"`
	Activities []activityRow `json:"activities"`
}

func (ac *ApiController) GetActivities(w http.ResponseWriter, r *http.Request) {
	days := daysParam(r)
	ac.serveFromCacheOrCompute(w, r, "activities:"+strconv.Itoa(days), func() (any, error) {
		activities, err := ac.service.Activities(r.Context(), days)
		if err != nil {
			return nil, err
		}

		rows := make([]activityRow, 0, len(activities))
		for i := range activities {
			a := &activities[i]
			rows = append(rows, activityRow{
				ID:              a.ID,
				Name:            a.Name,
				Type:            a.Type,
				StartDate:       a.StartDate,
				DistanceKm:      a.DistanceKm(),
				MovingTimeHours: a.MovingTimeHours(),
				AverageSpeedKmh: a.AverageSpeedKmh(),
				ElevationGainM:  a.ElevationGain,
			})
		}
		return &activitiesResponse{Count: len(rows), Activities: rows}, nil
	})
}

type heatmapRequest struct {
	Days     int      `json:"days"`
	Limit    int      `json:"limit"`
	MapTypes []string `json:"map_types"`
}

func (ac *ApiController) GenerateHeatmaps(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload heatmapRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	bundle, err := ac.service.Heatmaps(r.Context(), payload.Days, payload.Limit, payload.MapTypes)
	if err != nil {
		ac.logger.Errorf(providers.TypePost, "Heatmap generation failed: %s", err)
		http.Error(w, "Bad Gateway", http.StatusBadGateway)
		return
	}

	writeJSON(w, bundle)
}

func (ac *ApiController) GetInsights(w http.ResponseWriter, r *http.Request) {
	days := daysParam(r)
	ac.serveFromCacheOrCompute(w, r, "insights:"+strconv.Itoa(days), func() (any, error) {
		return ac.service.Insights(r.Context(), days)
	})
}

func (ac *ApiController) ClearCache(w http.ResponseWriter, r *http.Request) {
	if err := ac.service.ClearCache(); err != nil {
		ac.logger.Errorf(providers.TypePost, "Cache clear failed: %s", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]string{"status": "cleared"})
}

func writeJSON(w http.ResponseWriter, v any) {
	gson, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}
