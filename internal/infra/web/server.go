package web

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"clinic-credit-service/internal/infra/logging"
	"clinic-credit-service/internal/infra/metrics"
	"clinic-credit-service/internal/usecase"
)

type Server struct {
	qrUC       usecase.QRTokenUseCase
	redeemUC   usecase.RedemptionUseCase
	txUC       usecase.TransactionUseCase
	userPlanUC usecase.UserPlanUseCase
	planUC     usecase.PlanUseCase
	clinicUC   usecase.ClinicUseCase
	patientUC  usecase.PatientUseCase
	statsUC    usecase.StatsUseCase

	auth        *AuthManager
	adminAPIKey string
	validate    *validator.Validate
	ready       func(ctx context.Context) error
	limiter     usecase.RateLimiter
	log         *zerolog.Logger
}

// SetReadyCheck installs a dependency probe run by the health endpoint.
func (s *Server) SetReadyCheck(fn func(ctx context.Context) error) { s.ready = fn }

// SetRateLimiter throttles the redemption endpoint per clinic.
func (s *Server) SetRateLimiter(l usecase.RateLimiter) { s.limiter = l }

func NewServer(
	qrUC usecase.QRTokenUseCase,
	redeemUC usecase.RedemptionUseCase,
	txUC usecase.TransactionUseCase,
	userPlanUC usecase.UserPlanUseCase,
	planUC usecase.PlanUseCase,
	clinicUC usecase.ClinicUseCase,
	patientUC usecase.PatientUseCase,
	statsUC usecase.StatsUseCase,
	auth *AuthManager,
	adminAPIKey string,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		qrUC:        qrUC,
		redeemUC:    redeemUC,
		txUC:        txUC,
		userPlanUC:  userPlanUC,
		planUC:      planUC,
		clinicUC:    clinicUC,
		patientUC:   patientUC,
		statsUC:     statsUC,
		auth:        auth,
		adminAPIKey: adminAPIKey,
		validate:    validator.New(),
		log:         logger,
	}
}

// Router builds the chi mux with the full route tree.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(s.metricsMiddleware)

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/token", s.handleMintToken)

		// Patient surface
		r.Group(func(r chi.Router) {
			r.Use(s.requireRole(RolePatient))
			r.Post("/qr-tokens", s.handleIssueQR)
			r.Get("/me/user-plans", s.handleMyUserPlans)
			r.Get("/user-plans/{id}/transactions", s.handleUserPlanTransactions)
		})

		// Clinic surface
		r.Group(func(r chi.Router) {
			r.Use(s.requireRole(RoleClinic))
			r.With(s.rateLimitByClinic).Post("/redemptions", s.handleRedeem)
			r.Get("/me/transactions", s.handleClinicTransactions)
		})

		// Any authenticated caller
		r.Group(func(r chi.Router) {
			r.Use(s.requireRole(RolePatient, RoleClinic))
			r.Get("/plans", s.handleListPlans)
			r.Get("/clinics", s.handleListClinics)
			r.Get("/transactions/code/{code}", s.handleGetTransactionByCode)
		})

		// Admin surface
		r.Group(func(r chi.Router) {
			r.Use(s.requireRole())
			r.Post("/plans", s.handleCreatePlan)
			r.Delete("/plans/{id}", s.handleDeactivatePlan)
			r.Post("/clinics", s.handleRegisterClinic)
			r.Delete("/clinics/{id}", s.handleDeactivateClinic)
			r.Post("/patients", s.handleRegisterPatient)
			r.Get("/patients/{id}", s.handleGetPatient)
			r.Get("/patients/{id}/user-plans", s.handlePatientUserPlans)
			r.Post("/user-plans", s.handleGrantUserPlan)
			r.Get("/transactions/{id}", s.handleGetTransaction)
			r.Post("/transactions/{id}/cancel", s.handleCancelTransaction)
			r.Get("/stats", s.handleStats)
		})
	})

	return r
}

// rateLimitByClinic throttles redemptions per clinic. A limiter outage
// fails open; the debit path is still serialized by the database.
func (s *Server) rateLimitByClinic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil {
			claims := sessionFromContext(r.Context())
			ok, err := s.limiter.Allow(r.Context(), "redeem:"+claims.Subject)
			if err != nil {
				logging.With(r.Context(), s.log).Warn().Err(err).Msg("rate limiter unavailable, allowing request")
			} else if !ok {
				writeError(w, http.StatusTooManyRequests, "rate_limited", "too many redemptions, slow down")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// metricsMiddleware records request counts and latency per route
// pattern so path parameters don't explode label cardinality, and
// emits a completion line stamped with the chi request id.
func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := logging.WithRequestID(r.Context(), chimw.GetReqID(r.Context()))
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		metrics.ObserveHTTPRequest(route, r.Method, strconv.Itoa(ww.Status()), float64(time.Since(start).Milliseconds()))
		logging.With(ctx, s.log).Debug().
			Str("method", r.Method).Str("route", route).
			Int("status", ww.Status()).Dur("elapsed", time.Since(start)).
			Msg("request handled")
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready(r.Context()); err != nil {
			s.log.Warn().Err(err).Msg("health check failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
