package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/Freeeeeet/agency_backoffice/internal/cache"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const (
	IdempotencyHeader    = "Idempotency-Key"
	IdempotencyHitHeader = "X-Idempotency-Hit"

	idempotencyProcessing = "PROCESSING"
)

// storedResponse ответ, сохранённый под ключом идемпотентности
type storedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// RequestLogger access log запросов через zap
func RequestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			logger.Info("HTTP request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", chimw.GetReqID(r.Context())),
			)
		})
	}
}

// Idempotency повторный POST/PUT/PATCH с тем же Idempotency-Key получает
// сохранённый ответ, а не выполняется второй раз. Пока первый запрос
// не завершён, повтор получает 409. Ответы 5xx не сохраняются
func Idempotency(c cache.Cache, lockTTL, resultTTL time.Duration, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost && r.Method != http.MethodPut && r.Method != http.MethodPatch {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get(IdempotencyHeader)
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			key := cache.IdempotencyKey(r.Method, r.URL.Path, header)
			ctx := r.Context()

			data, ok, err := c.Get(ctx, key)
			if err != nil {
				// Без кеша запрос всё равно выполняется
				logger.Warn("Idempotency lookup failed", zap.String("key", key), zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			if ok {
				replay(w, data)
				return
			}

			acquired, err := c.SetNX(ctx, key, []byte(idempotencyProcessing), lockTTL)
			if err != nil {
				logger.Warn("Idempotency lock failed", zap.String("key", key), zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			if !acquired {
				writeError(w, http.StatusConflict, "request with this idempotency key is in progress")
				return
			}

			// Клиент мог уже отключиться, ключ всё равно надо освободить или записать
			storeCtx := context.WithoutCancel(ctx)
			release := func() {
				if err := c.Del(storeCtx, key); err != nil {
					logger.Warn("Failed to release idempotency key", zap.String("key", key), zap.Error(err))
				}
			}

			// Паника хендлера освобождает ключ и уходит дальше в Recoverer
			defer func() {
				if rec := recover(); rec != nil {
					release()
					panic(rec)
				}
			}()

			var body bytes.Buffer
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			ww.Tee(&body)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			if status >= http.StatusInternalServerError {
				release()
				return
			}

			stored, err := json.Marshal(storedResponse{
				Status:      status,
				ContentType: ww.Header().Get("Content-Type"),
				Body:        body.Bytes(),
			})
			if err != nil {
				logger.Warn("Failed to encode idempotent response", zap.Error(err))
				return
			}
			if err := c.Set(storeCtx, key, stored, resultTTL); err != nil {
				logger.Warn("Failed to store idempotent response", zap.String("key", key), zap.Error(err))
			}
		})
	}
}

func replay(w http.ResponseWriter, data []byte) {
	if string(data) == idempotencyProcessing {
		writeError(w, http.StatusConflict, "request with this idempotency key is in progress")
		return
	}

	var stored storedResponse
	if err := json.Unmarshal(data, &stored); err != nil {
		writeError(w, http.StatusConflict, "request already processed")
		return
	}

	w.Header().Set(IdempotencyHitHeader, "true")
	if stored.ContentType != "" {
		w.Header().Set("Content-Type", stored.ContentType)
	}
	w.WriteHeader(stored.Status)
	_, _ = w.Write(stored.Body)
}
