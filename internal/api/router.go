package api

import (
	"database/sql"
	"net/http"
	"time"
)

// Config carries the dependencies the router needs.
type Config struct {
	DB            *sql.DB
	JWTSecret     string
	UploadDir     string
	SecurityCodes map[string]string
	AllowedOrigin string
	Dev           bool
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(cfg Config) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: cfg.DB, JWTSecret: cfg.JWTSecret, SecurityCodes: cfg.SecurityCodes, Dev: cfg.Dev}
	itemHandler := &ItemHandler{DB: cfg.DB, UploadDir: cfg.UploadDir, Dev: cfg.Dev}
	claimHandler := &ClaimHandler{DB: cfg.DB, Dev: cfg.Dev}

	authMW := AuthMiddleware(cfg.JWTSecret, cfg.DB)

	loginLimiter := NewRateLimiter(5, 15*time.Minute, "Too many login attempts, please try again later")
	registerLimiter := NewRateLimiter(5, time.Hour, "Too many account registrations from this IP, please try again later")
	verifyLimiter := NewRateLimiter(3, time.Minute, "Too many verification attempts, please try again later")
	apiLimiter := NewRateLimiter(100, 15*time.Minute, "Too many requests, please try again later")

	// limited applies the general rate limit to item and claim routes. Auth
	// routes carry their own stricter limiters instead.
	limited := apiLimiter.Middleware

	// Auth: registration, verification and login are public, each behind
	// a dedicated limiter.
	mux.Handle("POST /api/auth/register", registerLimiter.Middleware(http.HandlerFunc(authHandler.Register)))
	mux.Handle("POST /api/auth/register-security", registerLimiter.Middleware(http.HandlerFunc(authHandler.RegisterSecurity)))
	mux.Handle("POST /api/auth/verify-email", verifyLimiter.Middleware(http.HandlerFunc(authHandler.VerifyEmail)))
	mux.Handle("POST /api/auth/login", loginLimiter.Middleware(http.HandlerFunc(authHandler.Login)))
	mux.Handle("GET /api/auth/me", authMW(http.HandlerFunc(authHandler.Me)))
	mux.Handle("PUT /api/auth/profile", authMW(http.HandlerFunc(authHandler.UpdateProfile)))
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))

	// Items. Browsing is public; reporting and mutation need a session, and
	// status changes, deletion, and on-behalf writes are security only.
	mux.Handle("GET /api/items", limited(http.HandlerFunc(itemHandler.List)))
	mux.Handle("GET /api/items/public/found-items", limited(http.HandlerFunc(itemHandler.PublicFoundItems)))
	mux.Handle("GET /api/items/{id}", limited(http.HandlerFunc(itemHandler.Get)))
	mux.Handle("POST /api/items/lost", limited(authMW(http.HandlerFunc(itemHandler.ReportLost))))
	mux.Handle("POST /api/items/found", limited(authMW(http.HandlerFunc(itemHandler.ReportFound))))
	mux.Handle("GET /api/items/lost/my-items", limited(authMW(http.HandlerFunc(itemHandler.MyLostItems))))
	mux.Handle("GET /api/items/found/my-items", limited(authMW(http.HandlerFunc(itemHandler.MyFoundItems))))
	mux.Handle("POST /api/items/security", limited(authMW(RequireSecurity(http.HandlerFunc(itemHandler.SecurityCreate)))))
	mux.Handle("PUT /api/items/{id}", limited(authMW(http.HandlerFunc(itemHandler.Update))))
	// "security/{id}" and "{id}/status" cannot both be registered: neither
	// pattern is more specific than the other, which ServeMux rejects. One
	// two-segment pattern takes both and dispatches on the literal.
	securityUpdate := RequireSecurity(http.HandlerFunc(itemHandler.SecurityUpdate))
	statusUpdate := RequireSecurity(http.HandlerFunc(itemHandler.UpdateStatus))
	mux.Handle("PUT /api/items/{first}/{second}", limited(authMW(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch first, second := r.PathValue("first"), r.PathValue("second"); {
		case first == "security":
			r.SetPathValue("id", second)
			securityUpdate.ServeHTTP(w, r)
		case second == "status":
			r.SetPathValue("id", first)
			statusUpdate.ServeHTTP(w, r)
		default:
			jsonError(w, http.StatusNotFound, "Route not found")
		}
	}))))
	mux.Handle("DELETE /api/items/{id}", limited(authMW(RequireSecurity(http.HandlerFunc(itemHandler.Delete)))))
	mux.Handle("GET /api/items/{id}/claims", limited(authMW(http.HandlerFunc(itemHandler.ItemClaims))))

	// Claims.
	mux.Handle("POST /api/claims", limited(authMW(http.HandlerFunc(claimHandler.Create))))
	mux.Handle("GET /api/claims/my-claims", limited(authMW(http.HandlerFunc(claimHandler.MyClaims))))
	mux.Handle("GET /api/claims/{id}", limited(authMW(http.HandlerFunc(claimHandler.Get))))
	mux.Handle("PUT /api/claims/{id}", limited(authMW(http.HandlerFunc(claimHandler.Update))))
	mux.Handle("DELETE /api/claims/{id}", limited(authMW(http.HandlerFunc(claimHandler.Delete))))

	// Uploaded item photos.
	mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))))

	// Everything else is a JSON 404.
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		jsonError(w, http.StatusNotFound, "Route not found")
	})

	var handler http.Handler = mux
	handler = SecurityHeaders(cfg.AllowedOrigin)(handler)
	handler = LoggingMiddleware(handler)

	return handler
}
