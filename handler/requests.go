package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"download-request-service/model"
	"download-request-service/resolver"
	"download-request-service/store"
	"download-request-service/utils"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

// CreateRequest handles POST /requests - a customer submits a request for
// replacement download links.
func (h *RequestHandler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, h.operationTimeout())
	defer cancel()

	var input struct {
		CustomerEmail   string `json:"customerEmail"`
		CustomerName    string `json:"customerName"`
		OrderID         string `json:"orderID"`
		ProjectTitle    string `json:"projectTitle"`
		Reason          string `json:"reason"`
		Priority        string `json:"priority"`
		CustomerMessage string `json:"customerMessage"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		log.Error().Err(err).Msg("Failed to decode request body")
		SendJSONError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	if err := utils.ValidateEmail(input.CustomerEmail); err != nil {
		log.Warn().Err(err).Str("email", input.CustomerEmail).Msg("Invalid customer email")
		SendJSONError(w, http.StatusBadRequest, err, "")
		return
	}

	reason := model.RequestReason(input.Reason)
	if err := utils.ValidateReason(reason); err != nil {
		SendJSONError(w, http.StatusBadRequest, err, "Valid reasons: link_expired, lost_email, download_failed, device_change, other")
		return
	}

	priority := model.RequestPriority(input.Priority)
	if input.Priority == "" {
		priority = model.PriorityNormal
	}
	if err := utils.ValidatePriority(priority); err != nil {
		SendJSONError(w, http.StatusBadRequest, err, "Valid priorities: low, normal, high, urgent")
		return
	}

	orderID := input.OrderID
	if orderID == "" {
		orderID = resolver.UnknownOrderID
	}

	req, err := h.requests.Create(ctx, model.DownloadLinkRequest{
		CustomerEmail:   input.CustomerEmail,
		CustomerName:    input.CustomerName,
		OrderID:         orderID,
		ProjectTitle:    input.ProjectTitle,
		Reason:          reason,
		Priority:        priority,
		CustomerMessage: input.CustomerMessage,
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to store request")
		SendJSONError(w, http.StatusInternalServerError, err, "Failed to store request")
		return
	}

	SendJSONSuccess(w, http.StatusCreated, req)
}

// ListRequests handles GET /requests?status= - requests in creation order,
// optionally filtered by a single status.
func (h *RequestHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, h.operationTimeout())
	defer cancel()

	status := model.RequestStatus(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		SendJSONError(w, http.StatusBadRequest, errors.New("unknown status filter"), "Valid statuses: pending, processing, completed, rejected")
		return
	}

	requests, err := h.requests.List(ctx, status)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list requests")
		SendJSONError(w, http.StatusInternalServerError, err, "Failed to list requests")
		return
	}

	SendJSONSuccess(w, http.StatusOK, map[string]interface{}{
		"requests": requests,
		"total":    len(requests),
	})
}

// GetRequest handles GET /requests/{id}
func (h *RequestHandler) GetRequest(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, h.operationTimeout())
	defer cancel()

	id := mux.Vars(r)["id"]

	req, err := h.requests.Get(ctx, id)
	if errors.Is(err, store.ErrRequestNotFound) {
		SendJSONError(w, http.StatusNotFound, err, "")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("request_id", id).Msg("Failed to fetch request")
		SendJSONError(w, http.StatusInternalServerError, err, "Failed to fetch request")
		return
	}

	SendJSONSuccess(w, http.StatusOK, req)
}
