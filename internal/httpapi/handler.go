package httpapi

import (
	"encoding/json"
	"errors"
	"expvar"
	"net/http"
	"strconv"
	"strings"
	"time"

	"waitline/internal/store"

	"github.com/google/uuid"
)

type Handler struct {
	store      store.TicketStore
	adminToken string
}

type Options struct {
	// AdminToken guards catalog mutations; empty disables them.
	AdminToken string
}

type joinRequest struct {
	RequestID    string `json:"request_id"`
	ServiceID    string `json:"service_id"`
	CustomerName string `json:"customer_name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
}

type advanceRequest struct {
	Status string `json:"status"`
}

type serviceRequest struct {
	Name          string `json:"name"`
	AvgMinutes    int    `json:"avg_minutes"`
	Icon          string `json:"icon"`
	NextServiceID string `json:"next_service_id"`
}

type errorResponse struct {
	Error responseError `json:"error"`
}

type responseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewHandler(store store.TicketStore, options Options) *Handler {
	return &Handler{store: store, adminToken: options.AdminToken}
}

func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", expvar.Handler())
	mux.HandleFunc("/healthz", h.handleHealth)
	mux.HandleFunc("/api/tickets", h.handleJoin)
	mux.HandleFunc("/api/tickets/active", h.handleListActive)
	mux.HandleFunc("/api/tickets/", h.handleTicket)
	mux.HandleFunc("/api/services", h.handleServices)
	mux.HandleFunc("/api/services/", h.handleServiceUpdate)
	mux.HandleFunc("/api/analytics", h.handleAnalytics)
	mux.HandleFunc("/api/events", h.handleEvents)
	return mux
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) handleJoin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req joinRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}

	req.RequestID = strings.TrimSpace(req.RequestID)
	req.ServiceID = strings.TrimSpace(req.ServiceID)
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)

	if req.ServiceID == "" || !isValidUUID(req.ServiceID) {
		writeError(w, http.StatusBadRequest, "invalid_request", "service_id must be a UUID")
		return
	}
	if req.RequestID != "" && !isValidUUID(req.RequestID) {
		writeError(w, http.StatusBadRequest, "invalid_request", "request_id must be a UUID when provided")
		return
	}
	if req.Phone != "" && !isValidPhone(req.Phone) {
		writeError(w, http.StatusBadRequest, "invalid_request", "phone must be 8-16 digits")
		return
	}

	ticket, _, err := h.store.JoinQueue(r.Context(), store.JoinInput{
		RequestID:    req.RequestID,
		ServiceID:    req.ServiceID,
		CustomerName: req.CustomerName,
		Email:        req.Email,
		Phone:        req.Phone,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}

	writeJSON(w, http.StatusOK, ticket)
}

func (h *Handler) handleListActive(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	serviceID := strings.TrimSpace(r.URL.Query().Get("service_id"))
	if serviceID != "" && !isValidUUID(serviceID) {
		writeError(w, http.StatusBadRequest, "invalid_request", "service_id must be a UUID when provided")
		return
	}

	tickets, err := h.store.ListActive(r.Context(), serviceID)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}

	writeJSON(w, http.StatusOK, tickets)
}

func (h *Handler) handleTicket(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/tickets/")
	parts := strings.Split(strings.Trim(path, "/"), "/")

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		h.handleTicketView(w, r, parts[0])
	case len(parts) == 3 && parts[1] == "actions" && r.Method == http.MethodPost:
		h.handleTicketAction(w, r, parts[0], parts[2])
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) handleTicketView(w http.ResponseWriter, r *http.Request, ticketID string) {
	if !isValidUUID(ticketID) {
		writeError(w, http.StatusBadRequest, "invalid_request", "ticket_id must be a UUID")
		return
	}

	view, err := h.store.GetTicketView(r.Context(), ticketID)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) handleTicketAction(w http.ResponseWriter, r *http.Request, ticketID, action string) {
	if !isValidUUID(ticketID) {
		writeError(w, http.StatusBadRequest, "invalid_request", "ticket_id must be a UUID")
		return
	}

	switch action {
	case "checkin":
		ticket, err := h.store.CheckIn(r.Context(), ticketID, time.Now().UTC())
		if err != nil {
			status, code, msg := mapError(err)
			writeError(w, status, code, msg)
			return
		}
		writeJSON(w, http.StatusOK, ticket)
	case "advance":
		var req advanceRequest
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
			return
		}
		req.Status = strings.TrimSpace(req.Status)
		if !store.KnownStatus(req.Status) {
			writeError(w, http.StatusBadRequest, "invalid_request", "status must be one of arriving, waiting, serving, completed")
			return
		}
		ticket, err := h.store.Advance(r.Context(), store.AdvanceInput{
			TicketID:   ticketID,
			NewStatus:  req.Status,
			OccurredAt: time.Now().UTC(),
		})
		if err != nil {
			status, code, msg := mapError(err)
			writeError(w, status, code, msg)
			return
		}
		writeJSON(w, http.StatusOK, ticket)
	case "snooze":
		if err := h.store.Snooze(r.Context(), ticketID, time.Now().UTC()); err != nil {
			status, code, msg := mapError(err)
			writeError(w, status, code, msg)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) handleServices(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		services, err := h.store.ListServices(r.Context())
		if err != nil {
			status, code, msg := mapError(err)
			writeError(w, status, code, msg)
			return
		}
		writeJSON(w, http.StatusOK, services)
	case http.MethodPost:
		if !h.authorizeAdmin(w, r) {
			return
		}
		req, ok := decodeServiceRequest(w, r)
		if !ok {
			return
		}
		if req.Name == "" {
			writeError(w, http.StatusBadRequest, "invalid_request", "name is required")
			return
		}
		service, err := h.store.CreateService(r.Context(), store.ServiceInput{
			Name:          req.Name,
			AvgMinutes:    req.AvgMinutes,
			Icon:          req.Icon,
			NextServiceID: req.NextServiceID,
		})
		if err != nil {
			status, code, msg := mapError(err)
			writeError(w, status, code, msg)
			return
		}
		writeJSON(w, http.StatusOK, service)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleServiceUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !h.authorizeAdmin(w, r) {
		return
	}

	serviceID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/services/"), "/")
	if !isValidUUID(serviceID) {
		writeError(w, http.StatusBadRequest, "invalid_request", "service_id must be a UUID")
		return
	}

	req, ok := decodeServiceRequest(w, r)
	if !ok {
		return
	}

	service, err := h.store.UpdateService(r.Context(), serviceID, store.ServiceInput{
		Name:          req.Name,
		AvgMinutes:    req.AvgMinutes,
		Icon:          req.Icon,
		NextServiceID: req.NextServiceID,
	})
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, service)
}

func (h *Handler) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	from, ok := parseTimeParam(w, r, "from")
	if !ok {
		return
	}
	to, ok := parseTimeParam(w, r, "to")
	if !ok {
		return
	}

	report, err := h.store.Analytics(r.Context(), from, to)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	after, ok := parseTimeParam(w, r, "after")
	if !ok {
		return
	}

	limit := 100
	if limitRaw := strings.TrimSpace(r.URL.Query().Get("limit")); limitRaw != "" {
		parsed, err := strconv.Atoi(limitRaw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "invalid_request", "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	events, err := h.store.ListOutboxEvents(r.Context(), after, limit)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}

	writeJSON(w, http.StatusOK, events)
}

func (h *Handler) authorizeAdmin(w http.ResponseWriter, r *http.Request) bool {
	if h.adminToken == "" {
		writeError(w, http.StatusForbidden, "admin_disabled", "catalog administration is disabled")
		return false
	}
	if r.Header.Get("X-Admin-Token") != h.adminToken {
		writeError(w, http.StatusForbidden, "access_denied", "access denied")
		return false
	}
	return true
}

func decodeServiceRequest(w http.ResponseWriter, r *http.Request) (serviceRequest, bool) {
	var req serviceRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return serviceRequest{}, false
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Icon = strings.TrimSpace(req.Icon)
	req.NextServiceID = strings.TrimSpace(req.NextServiceID)
	if req.NextServiceID != "" && !isValidUUID(req.NextServiceID) {
		writeError(w, http.StatusBadRequest, "invalid_request", "next_service_id must be a UUID when provided")
		return serviceRequest{}, false
	}
	return req, true
}

func parseTimeParam(w http.ResponseWriter, r *http.Request, name string) (time.Time, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return time.Time{}, true
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", name+" must be an RFC3339 timestamp")
		return time.Time{}, false
	}
	return parsed, true
}

func isValidUUID(value string) bool {
	_, err := uuid.Parse(value)
	return err == nil
}

func isValidPhone(value string) bool {
	if len(value) < 8 || len(value) > 16 {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func mapError(err error) (int, string, string) {
	switch {
	case errors.Is(err, store.ErrServiceNotFound):
		return http.StatusNotFound, "service_not_found", "service not found"
	case errors.Is(err, store.ErrTicketNotFound):
		return http.StatusNotFound, "ticket_not_found", "ticket not found"
	case errors.Is(err, store.ErrInvalidTransition):
		return http.StatusConflict, "invalid_transition", "status change is not allowed from the ticket's current state"
	case errors.Is(err, store.ErrInvalidState):
		return http.StatusConflict, "invalid_state", "ticket state does not allow this action"
	case errors.Is(err, store.ErrNoSuccessor):
		return http.StatusConflict, "no_successor", "ticket is already last in line"
	case errors.Is(err, store.ErrConflict):
		return http.StatusConflict, "conflict", "concurrent update detected, retry the request"
	case errors.Is(err, store.ErrRelayCycle):
		return http.StatusConflict, "relay_cycle", "next_service would form a relay cycle"
	case errors.Is(err, store.ErrDuplicateService):
		return http.StatusConflict, "duplicate_service", "service name already exists"
	default:
		return http.StatusInternalServerError, "internal_error", "internal server error"
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Error: responseError{
			Code:    code,
			Message: message,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}
