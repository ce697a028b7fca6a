package server

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// detailResponse is the error body shape shared by every failing endpoint:
// an http status plus a free-text detail string, nothing more.
type detailResponse struct {
	Detail string `json:"detail"`
}

func respondJSON(logger *zap.Logger, w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("unable to encode response body", zap.Error(err))
	}
}

func respondDetail(logger *zap.Logger, w http.ResponseWriter, status int, detail string) {
	respondJSON(logger, w, status, detailResponse{Detail: detail})
}
