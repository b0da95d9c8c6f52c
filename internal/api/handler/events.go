package handler

import (
	"encoding/json"
	"net/http"

	"github.com/vfg2006/ad-performance-reconciler/internal/consumer"
	"github.com/vfg2006/ad-performance-reconciler/internal/domain"
	"github.com/vfg2006/ad-performance-reconciler/pkg/apiErrors"
	"github.com/vfg2006/ad-performance-reconciler/pkg/log"
)

// IngestEvent recebe uma mensagem da stream push e a coloca na fila interna
// de ingestão. A resposta é 202: o processamento é assíncrono e a
// idempotência por message_id cobre reentregas do produtor.
func IngestEvent(ingestQueue *consumer.Consumer) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		var msg domain.QueueMessage
		if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
			logger.WithField("error", err.Error()).Warn("events: invalid message body")
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Corpo da mensagem inválido", nil)
			return
		}

		if msg.MessageID == "" || msg.AccountID == "" || msg.DatasetID == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData,
				"message_id, account_id e dataset_id são obrigatórios", nil)
			return
		}

		if !ingestQueue.Enqueue(&msg) {
			// Fila cheia: o produtor deve reentregar mais tarde
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "queue_full",
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]string{
			"status":     "accepted",
			"message_id": msg.MessageID,
		})
	})
}
