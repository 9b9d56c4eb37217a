package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	mux.HandleFunc("GET /v1/stats", handler.ListStats)
}

func registerPlayerRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/players/search", handler.SearchPlayers)
	mux.HandleFunc("GET /v1/players/{playerID}", handler.GetPlayer)
	mux.HandleFunc("GET /v1/players/{playerID}/analysis", handler.AnalyzePlayer)
}

func registerAnalysisRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/analysis/board", handler.AnalyzeBoard)
}

func registerAdminRoutes(mux *http.ServeMux, handler *Handler, adminToken string) {
	mux.Handle("POST /v1/admin/players/{playerID}/refresh", RequireAdminToken(adminToken, http.HandlerFunc(handler.RefreshPlayer)))
	mux.Handle("POST /v1/admin/players/warm", RequireAdminToken(adminToken, http.HandlerFunc(handler.WarmPlayers)))
	mux.Handle("DELETE /v1/admin/cache", RequireAdminToken(adminToken, http.HandlerFunc(handler.ClearCache)))
	mux.Handle("GET /v1/admin/cache/stats", RequireAdminToken(adminToken, http.HandlerFunc(handler.CacheStats)))
}
