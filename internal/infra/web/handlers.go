package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"clinic-credit-service/internal/domain/model"
	"clinic-credit-service/internal/infra/metrics"
	"clinic-credit-service/internal/usecase"
)

// ===== Auth =====

type mintTokenRequest struct {
	Role    string `json:"role" validate:"required,oneof=patient clinic admin"`
	Subject string `json:"subject" validate:"required"`
}

// handleMintToken exchanges the admin API key for a role-scoped session
// token. Patient and clinic apps obtain their tokens through this
// endpoint at login, driven by the backoffice.
func (s *Server) handleMintToken(w http.ResponseWriter, r *http.Request) {
	if s.adminAPIKey == "" {
		s.log.Error().Msg("admin API key is not configured")
		writeError(w, http.StatusForbidden, "forbidden", "token minting disabled")
		return
	}
	if r.Header.Get("X-Admin-Key") != s.adminAPIKey {
		writeError(w, http.StatusForbidden, "forbidden", "bad admin key")
		return
	}

	var req mintTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}

	token, err := s.auth.Mint(req.Role, req.Subject)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", "could not mint token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// ===== QR issuance =====

type issueQRRequest struct {
	UserPlanID string `json:"user_plan_id" validate:"required,uuid4"`
	TTLMinutes int    `json:"ttl_minutes" validate:"omitempty,min=0"`
}

type issueQRResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Server) handleIssueQR(w http.ResponseWriter, r *http.Request) {
	session := sessionFromContext(r.Context())

	var req issueQRRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}

	ttl := time.Duration(req.TTLMinutes) * time.Minute
	token, claims, err := s.qrUC.Issue(r.Context(), session.Subject, req.UserPlanID, ttl)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	metrics.IncQRIssued()
	writeJSON(w, http.StatusCreated, issueQRResponse{Token: token, ExpiresAt: claims.ExpiresAt})
}

// ===== Redemption =====

type redeemRequest struct {
	QRToken            string   `json:"qr_token" validate:"required"`
	Credits            int64    `json:"credits" validate:"omitempty,min=1"`
	Amount             string   `json:"amount" validate:"omitempty"`
	ServiceDescription string   `json:"service_description" validate:"max=500"`
	Latitude           *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude          *float64 `json:"longitude" validate:"omitempty,longitude"`
}

type transactionResponse struct {
	ID                 string     `json:"id"`
	Code               string     `json:"code"`
	UserPlanID         string     `json:"user_plan_id"`
	ClinicID           string     `json:"clinic_id"`
	Status             string     `json:"status"`
	CreditsUsed        int64      `json:"credits_used"`
	Amount             string     `json:"amount"`
	ServiceDescription string     `json:"service_description,omitempty"`
	ValidatedAt        *time.Time `json:"validated_at,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	CancelReason       string     `json:"cancel_reason,omitempty"`
	Refunded           bool       `json:"refunded"`
	CreatedAt          time.Time  `json:"created_at"`
}

// redemptionResponse is what the clinic operator sees at the desk:
// the transaction, who the patient is, and the plan's new balance.
type redemptionResponse struct {
	Transaction      transactionResponse `json:"transaction"`
	PatientID        string              `json:"patient_id"`
	PatientName      string              `json:"patient_name"`
	CreditsRemaining int64               `json:"credits_remaining"`
}

func toRedemptionResponse(res *usecase.RedemptionResult) redemptionResponse {
	return redemptionResponse{
		Transaction:      toTransactionResponse(res.Transaction),
		PatientID:        res.PatientID,
		PatientName:      res.PatientName,
		CreditsRemaining: res.CreditsRemaining,
	}
}

func toTransactionResponse(t *model.Transaction) transactionResponse {
	return transactionResponse{
		ID:                 t.ID,
		Code:               t.Code,
		UserPlanID:         t.UserPlanID,
		ClinicID:           t.ClinicID,
		Status:             string(t.Status),
		CreditsUsed:        t.CreditsUsed,
		Amount:             t.Amount.String(),
		ServiceDescription: t.ServiceDescription,
		ValidatedAt:        t.ValidatedAt,
		CancelledAt:        t.CancelledAt,
		CancelReason:       t.CancelReason,
		Refunded:           t.Refunded,
		CreatedAt:          t.CreatedAt,
	}
}

func (s *Server) handleRedeem(w http.ResponseWriter, r *http.Request) {
	session := sessionFromContext(r.Context())
	start := time.Now()

	var req redeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}

	amount := decimal.Zero
	if req.Amount != "" {
		var err error
		amount, err = decimal.NewFromString(req.Amount)
		if err != nil || amount.IsNegative() {
			writeError(w, http.StatusBadRequest, "invalid_body", "amount must be a non-negative decimal")
			return
		}
	}

	res, err := s.redeemUC.Redeem(r.Context(), usecase.RedeemRequest{
		Token:              req.QRToken,
		ClinicID:           session.Subject,
		Credits:            req.Credits,
		Amount:             amount,
		ServiceDescription: req.ServiceDescription,
		ValidatedBy:        session.Subject,
		ClientIP:           r.RemoteAddr,
		Latitude:           req.Latitude,
		Longitude:          req.Longitude,
	})
	metrics.ObserveRedemptionLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.IncRedemption(errorOutcome(err))
		writeDomainError(w, err)
		return
	}
	metrics.IncRedemption("success")
	metrics.AddCreditsDebited(res.Transaction.ClinicID, res.Transaction.CreditsUsed)
	writeJSON(w, http.StatusCreated, toRedemptionResponse(res))
}

// ===== Transactions =====

type cancelRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
	Refund *bool  `json:"refund"`
}

func (s *Server) handleCancelTransaction(w http.ResponseWriter, r *http.Request) {
	session := sessionFromContext(r.Context())

	var req cancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}

	refund := true
	if req.Refund != nil {
		refund = *req.Refund
	}
	t, err := s.txUC.Cancel(r.Context(), usecase.CancelRequest{
		TransactionID: chi.URLParam(r, "id"),
		CancelledBy:   session.Subject,
		Reason:        req.Reason,
		Refund:        refund,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if t.Refunded {
		metrics.AddCreditsRefunded(t.CreditsUsed)
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(t))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	t, err := s.txUC.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(t))
}

func (s *Server) handleGetTransactionByCode(w http.ResponseWriter, r *http.Request) {
	t, err := s.txUC.GetByCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(t))
}

func pagination(r *http.Request) (limit, offset int) {
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func (s *Server) handleClinicTransactions(w http.ResponseWriter, r *http.Request) {
	session := sessionFromContext(r.Context())
	limit, offset := pagination(r)

	items, err := s.txUC.ListByClinic(r.Context(), session.Subject, limit, offset)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]transactionResponse, 0, len(items))
	for _, t := range items {
		out = append(out, toTransactionResponse(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUserPlanTransactions(w http.ResponseWriter, r *http.Request) {
	session := sessionFromContext(r.Context())
	userPlanID := chi.URLParam(r, "id")

	// Patients may only inspect their own plans.
	if session.Role == RolePatient {
		up, err := s.userPlanUC.Get(r.Context(), userPlanID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if up.PatientID != session.Subject {
			writeError(w, http.StatusForbidden, "forbidden", "not your plan")
			return
		}
	}

	limit, offset := pagination(r)
	items, err := s.txUC.ListByUserPlan(r.Context(), userPlanID, limit, offset)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]transactionResponse, 0, len(items))
	for _, t := range items {
		out = append(out, toTransactionResponse(t))
	}
	writeJSON(w, http.StatusOK, out)
}

// ===== User plans =====

type userPlanResponse struct {
	ID               string    `json:"id"`
	PatientID        string    `json:"patient_id"`
	PlanID           string    `json:"plan_id"`
	Credits          int64     `json:"credits"`
	CreditsRemaining int64     `json:"credits_remaining"`
	ExpiresAt        time.Time `json:"expires_at"`
	Active           bool      `json:"active"`
	CreatedAt        time.Time `json:"created_at"`
}

func toUserPlanResponse(up *model.UserPlan) userPlanResponse {
	return userPlanResponse{
		ID:               up.ID,
		PatientID:        up.PatientID,
		PlanID:           up.PlanID,
		Credits:          up.Credits,
		CreditsRemaining: up.CreditsRemaining,
		ExpiresAt:        up.ExpiresAt,
		Active:           up.Active,
		CreatedAt:        up.CreatedAt,
	}
}

func (s *Server) handleMyUserPlans(w http.ResponseWriter, r *http.Request) {
	session := sessionFromContext(r.Context())
	s.writeUserPlans(w, r, session.Subject)
}

func (s *Server) handlePatientUserPlans(w http.ResponseWriter, r *http.Request) {
	s.writeUserPlans(w, r, chi.URLParam(r, "id"))
}

func (s *Server) writeUserPlans(w http.ResponseWriter, r *http.Request, patientID string) {
	items, err := s.userPlanUC.ListActiveByPatient(r.Context(), patientID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]userPlanResponse, 0, len(items))
	for _, up := range items {
		out = append(out, toUserPlanResponse(up))
	}
	writeJSON(w, http.StatusOK, out)
}

type grantUserPlanRequest struct {
	PatientID string `json:"patient_id" validate:"required,uuid4"`
	PlanID    string `json:"plan_id" validate:"required,uuid4"`
}

func (s *Server) handleGrantUserPlan(w http.ResponseWriter, r *http.Request) {
	var req grantUserPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}

	up, err := s.userPlanUC.Grant(r.Context(), req.PatientID, req.PlanID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserPlanResponse(up))
}

// ===== Plans =====

type planCreateRequest struct {
	Name         string `json:"name" validate:"required,max=200"`
	Credits      int64  `json:"credits" validate:"required,min=1"`
	Price        string `json:"price" validate:"required"`
	ValidityDays int    `json:"validity_days" validate:"required,min=1"`
}

func (s *Server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	var req planCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() {
		writeError(w, http.StatusBadRequest, "invalid_body", "price must be a non-negative decimal")
		return
	}

	p, err := s.planUC.Create(r.Context(), req.Name, req.Credits, price, req.ValidityDays)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	items, err := s.planUC.ListActive(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleDeactivatePlan(w http.ResponseWriter, r *http.Request) {
	if err := s.planUC.Deactivate(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ===== Clinics =====

type clinicCreateRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	City    string `json:"city" validate:"max=100"`
	Address string `json:"address" validate:"max=300"`
}

func (s *Server) handleRegisterClinic(w http.ResponseWriter, r *http.Request) {
	var req clinicCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}

	c, err := s.clinicUC.Register(r.Context(), req.Name, req.City, req.Address)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleListClinics(w http.ResponseWriter, r *http.Request) {
	items, err := s.clinicUC.ListActive(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleDeactivateClinic(w http.ResponseWriter, r *http.Request) {
	if err := s.clinicUC.Deactivate(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ===== Patients =====

type patientCreateRequest struct {
	FullName string `json:"full_name" validate:"required,max=200"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"max=30"`
}

func (s *Server) handleRegisterPatient(w http.ResponseWriter, r *http.Request) {
	var req patientCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}

	p, err := s.patientUC.Register(r.Context(), req.FullName, req.Email, req.Phone)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleGetPatient(w http.ResponseWriter, r *http.Request) {
	p, err := s.patientUC.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// ===== Stats =====

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	patients, remaining, err := s.statsUC.Totals(ctx)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	byStatus, err := s.statsUC.RedemptionsByStatus(ctx)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	byClinic, err := s.statsUC.CreditsByClinic(ctx)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, statsResponse{
		TotalPatients:       patients,
		TotalCredits:        remaining,
		RedemptionsByStatus: byStatus,
		CreditsUsedByClinic: byClinic,
	})
}

type statsResponse struct {
	TotalPatients       int64            `json:"total_patients"`
	TotalCredits        int64            `json:"total_remaining_credits"`
	RedemptionsByStatus map[string]int64 `json:"redemptions_by_status"`
	CreditsUsedByClinic map[string]int64 `json:"credits_used_by_clinic"`
}
