package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/Freeeeeet/agency_backoffice/internal/service"
	"go.uber.org/zap"
)

const maxBodySize = 1 << 20

// errorResponse тело ответа с ошибкой. Action - операция, которая не удалась
type errorResponse struct {
	Error  string   `json:"error"`
	Action string   `json:"action,omitempty"`
	Fields []string `json:"fields,omitempty"`
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return err
	}

	// Запрещаем второй JSON-объект в body
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("only one JSON object is allowed")
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeBadJSON(w http.ResponseWriter, err error) {
	writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
}

// writeServiceError переводит ошибку сервиса в HTTP ответ:
// валидация - 400 со списком полей, не найдено - 404, остальное - 500
func writeServiceError(w http.ResponseWriter, logger *zap.Logger, action string, err error) {
	var v *service.ValidationError
	switch {
	case errors.As(err, &v):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: v.Reason, Action: v.Action, Fields: v.Fields})
	case errors.Is(err, service.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error(), Action: action})
	default:
		logger.Error("Request failed", zap.String("action", action), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error", Action: action})
	}
}

// queryLimit читает ?limit=, 0 если не задан
func queryLimit(r *http.Request) (uint64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, errors.New("limit must be a non-negative integer")
	}
	return limit, nil
}
