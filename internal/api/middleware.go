package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

const (
	corsAllowOrigin     = "Access-Control-Allow-Origin"
	corsAllowMethods    = "Access-Control-Allow-Methods"
	corsAllowHeaders    = "Access-Control-Allow-Headers"
	allowedOrigin       = "*"
	allowedMethods      = "GET, POST, OPTIONS"
	allowedHeaders      = "Content-Type, Authorization, x-webhook-signature, x-webhook-timestamp"
	internalServerError = "Internal server error"
)

func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(corsAllowOrigin, allowedOrigin)
		w.Header().Set(corsAllowMethods, allowedMethods)
		w.Header().Set(corsAllowHeaders, allowedHeaders)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func LoggingMiddleware(log *slog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			log.Info("request",
				"method", r.Method,
				"path", r.RequestURI,
				"duration", time.Since(start).String())
		})
	}
}

func RecoveryMiddleware(log *slog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.Error("panic recovered", "err", err, "path", r.RequestURI)
					http.Error(w, internalServerError, http.StatusInternalServerError)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
