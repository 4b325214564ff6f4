package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/theaivault/backend/internal/auth"
)

func SetupRoutes(
	genHandler *GenerationHandler,
	accountHandler *AccountHandler,
	paymentHandler *PaymentHandler,
	authMW *auth.Middleware,
	log *slog.Logger,
) *mux.Router {
	r := mux.NewRouter()

	r.Use(CORSMiddleware)
	r.Use(LoggingMiddleware(log))
	r.Use(RecoveryMiddleware(log))

	v1 := r.PathPrefix("/api/v1").Subrouter()

	// Public: no token expected.
	v1.HandleFunc("/plans", paymentHandler.ListPlans).Methods("GET")
	v1.HandleFunc("/usage", genHandler.Usage).Methods("GET")
	v1.HandleFunc("/payments/webhook", paymentHandler.Webhook).Methods("POST")

	// Generation: anonymous callers get the free-sample path.
	v1.Handle("/videos/generate", authMW.OptionalAuth(http.HandlerFunc(genHandler.GenerateVideo))).Methods("POST")
	v1.Handle("/videos/operations/{operation:.+}", authMW.OptionalAuth(http.HandlerFunc(genHandler.VideoOperationStatus))).Methods("GET")
	v1.Handle("/images/generate", authMW.RequireAuth(http.HandlerFunc(genHandler.GenerateImage))).Methods("POST")
	v1.Handle("/text/generate", authMW.RequireAuth(http.HandlerFunc(genHandler.GenerateText))).Methods("POST")

	// Account and payments: token required.
	v1.Handle("/profile", authMW.RequireAuth(http.HandlerFunc(accountHandler.CreateProfile))).Methods("POST")
	v1.Handle("/balance", authMW.RequireAuth(http.HandlerFunc(accountHandler.GetBalance))).Methods("GET")
	v1.Handle("/payments/orders", authMW.RequireAuth(http.HandlerFunc(paymentHandler.CreateOrder))).Methods("POST")
	v1.Handle("/payments/confirm", authMW.RequireAuth(http.HandlerFunc(paymentHandler.Confirm))).Methods("POST")

	return r
}
