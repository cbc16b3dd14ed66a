package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"download-request-service/store"
	"download-request-service/utils"
	"download-request-service/workflow"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

type processInput struct {
	ProcessedBy string `json:"processedBy"`
	Message     string `json:"message"`
}

func decodeProcessInput(w http.ResponseWriter, r *http.Request) (processInput, bool) {
	var input processInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		log.Error().Err(err).Msg("Failed to decode process request body")
		SendJSONError(w, http.StatusBadRequest, err, "Invalid request body")
		return input, false
	}
	if err := utils.ValidateEmail(input.ProcessedBy); err != nil {
		SendJSONError(w, http.StatusBadRequest, err, "processedBy must be the acting administrator's email")
		return input, false
	}
	return input, true
}

// ApproveRequest handles POST /requests/{id}/approve - runs the full
// approval workflow: resolve order and documents, mint secure tokens, send
// the delivery email, record completion. Resolution failures come back as a
// rejected request, not an error.
func (h *RequestHandler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, h.operationTimeout())
	defer cancel()

	id := mux.Vars(r)["id"]

	input, ok := decodeProcessInput(w, r)
	if !ok {
		return
	}

	result, err := h.manager.Approve(ctx, id, input.ProcessedBy, input.Message)
	switch {
	case errors.Is(err, store.ErrRequestNotFound):
		SendJSONError(w, http.StatusNotFound, err, "")
		return
	case errors.Is(err, store.ErrStatusConflict):
		SendJSONError(w, http.StatusConflict, err, "Re-fetch the request to see its current status")
		return
	case errors.Is(err, workflow.ErrIssuanceFailed), errors.Is(err, workflow.ErrDispatchFailed):
		// Request stays in processing; the operator may retry the approval
		log.Error().Err(err).Str("request_id", id).Msg("Approval failed mid-flight")
		SendJSONError(w, http.StatusBadGateway, err, "The request remains in processing; retry the approval")
		return
	case err != nil:
		log.Error().Err(err).Str("request_id", id).Msg("Approval failed")
		SendJSONError(w, http.StatusInternalServerError, err, "Failed to process request")
		return
	}

	SendJSONSuccess(w, http.StatusOK, map[string]interface{}{
		"request":        result.Request,
		"linksGenerated": len(result.Tokens),
	})
}

// RejectRequest handles POST /requests/{id}/reject
func (h *RequestHandler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, h.operationTimeout())
	defer cancel()

	id := mux.Vars(r)["id"]

	input, ok := decodeProcessInput(w, r)
	if !ok {
		return
	}

	req, err := h.manager.Reject(ctx, id, input.ProcessedBy, input.Message)
	switch {
	case errors.Is(err, store.ErrRequestNotFound):
		SendJSONError(w, http.StatusNotFound, err, "")
		return
	case errors.Is(err, store.ErrStatusConflict):
		SendJSONError(w, http.StatusConflict, err, "Only pending requests can be rejected directly")
		return
	case err != nil:
		log.Error().Err(err).Str("request_id", id).Msg("Rejection failed")
		SendJSONError(w, http.StatusInternalServerError, err, "Failed to reject request")
		return
	}

	SendJSONSuccess(w, http.StatusOK, req)
}

// SendStatusEmail handles POST /requests/{id}/emails/{type} - the operator
// sends an acknowledgment or completion email, optionally with a custom body.
func (h *RequestHandler) SendStatusEmail(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, h.operationTimeout())
	defer cancel()

	vars := mux.Vars(r)
	id := vars["id"]
	emailType := vars["type"]

	if emailType != "acknowledgment" && emailType != "completion" {
		SendJSONError(w, http.StatusBadRequest, errors.New("unknown email type"), "Valid types: acknowledgment, completion")
		return
	}

	var input struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		SendJSONError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	req, err := h.requests.Get(ctx, id)
	if errors.Is(err, store.ErrRequestNotFound) {
		SendJSONError(w, http.StatusNotFound, err, "")
		return
	}
	if err != nil {
		SendJSONError(w, http.StatusInternalServerError, err, "Failed to fetch request")
		return
	}

	if emailType == "acknowledgment" {
		err = h.mailer.SendRequestAcknowledgment(req, input.Message)
	} else {
		err = h.mailer.SendRequestCompletion(req, input.Message)
	}
	if err != nil {
		log.Error().Err(err).
			Str("request_id", id).
			Str("email_type", emailType).
			Msg("Failed to send status email")
		SendJSONError(w, http.StatusBadGateway, err, "Email transport failed")
		return
	}

	SendJSONSuccess(w, http.StatusOK, map[string]string{
		"status": "sent",
		"type":   emailType,
		"to":     req.CustomerEmail,
	})
}
