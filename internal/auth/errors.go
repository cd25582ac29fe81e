package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

type ErrorKind string

const (
	NonceMatchFailed        ErrorKind = "NonceMatchFailed"
	ShopParamMissing        ErrorKind = "ShopParamMissing"
	InvalidHmac             ErrorKind = "InvalidHmac"
	AccessTokenFetchFailure ErrorKind = "AccessTokenFetchFailure"
)

func (k ErrorKind) Status() int {
	switch k {
	case NonceMatchFailed:
		return http.StatusForbidden
	case AccessTokenFetchFailure:
		return http.StatusUnauthorized
	default:
		return http.StatusBadRequest
	}
}

// ErrorResponse is the JSON body of every rejected auth request.
type ErrorResponse struct {
	ErrorMessage ErrorKind `json:"errorMessage"`
	ShopOrigin   string    `json:"shopOrigin,omitempty"`
}

func writeAuthError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, kind ErrorKind, shop string, attrs ...any) {
	body := ErrorResponse{ErrorMessage: kind, ShopOrigin: shop}
	args := append([]any{"errorMessage", string(kind), "shopOrigin", shop}, attrs...)
	logger.ErrorContext(r.Context(), "shopify auth rejected", args...)
	oauthResults.WithLabelValues(string(kind)).Inc()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(kind.Status())
	_ = json.NewEncoder(w).Encode(body)
}
