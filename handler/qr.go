package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"github.com/skip2/go-qrcode"
)

// TokenQR handles GET /download/{token}/qr - renders a QR code for a secure
// download URL so customers can pull a document onto another device.
func (h *RequestHandler) TokenQR(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, h.operationTimeout())
	defer cancel()

	code := mux.Vars(r)["token"]

	exists, err := h.issuer.Exists(ctx, code)
	if err != nil {
		log.Error().Err(err).Msg("Failed to check token existence for QR")
		SendJSONError(w, http.StatusInternalServerError, err, "Failed to verify token")
		return
	}
	if !exists {
		SendJSONError(w, http.StatusNotFound, errors.New("token not found"), "Token is unknown, expired or used up")
		return
	}

	query := r.URL.Query()

	// Size parameter (default: 256, min: 128, max: 1024)
	size := 256
	if sizeStr := query.Get("size"); sizeStr != "" {
		parsedSize, err := strconv.Atoi(sizeStr)
		if err != nil {
			SendJSONError(w, http.StatusBadRequest, errors.New("invalid size parameter"), "Size must be a number")
			return
		}
		if parsedSize < 128 || parsedSize > 1024 {
			SendJSONError(w, http.StatusBadRequest, errors.New("size out of range"), "Size must be between 128 and 1024")
			return
		}
		size = parsedSize
	}

	level := qrcode.Medium
	if levelStr := query.Get("level"); levelStr != "" {
		switch levelStr {
		case "low":
			level = qrcode.Low
		case "medium":
			level = qrcode.Medium
		case "high":
			level = qrcode.High
		case "highest":
			level = qrcode.Highest
		default:
			SendJSONError(w, http.StatusBadRequest, errors.New("invalid level parameter"), "Level must be: low, medium, high, or highest")
			return
		}
	}

	secureURL := fmt.Sprintf("%s/download/%s", h.baseURL, code)

	png, err := qrcode.Encode(secureURL, level, size)
	if err != nil {
		log.Error().Err(err).Msg("Failed to generate QR code")
		SendJSONError(w, http.StatusInternalServerError, err, "Failed to generate QR code")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store") // secure URL, never cache
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))

	if _, err := w.Write(png); err != nil {
		log.Error().Err(err).Msg("Failed to write QR code response")
	}
}
