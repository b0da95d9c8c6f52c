package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/vfg2006/ad-performance-reconciler/internal/usecases/backfilling"
	"github.com/vfg2006/ad-performance-reconciler/pkg/apiErrors"
	"github.com/vfg2006/ad-performance-reconciler/pkg/log"
)

// CheckBackfillDate informa se uma data local de uma conta precisa de
// backfill da stream push
func CheckBackfillDate(service backfilling.Detector) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		params := httprouter.ParamsFromContext(r.Context())
		id := params.ByName("id")
		date := params.ByName("date")

		if _, err := time.Parse(time.DateOnly, date); err != nil {
			logger.WithFields(log.Fields{
				"account_id": id,
				"date":       date,
			}).Warn("backfill: invalid date parameter")

			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Data inválida, use YYYY-MM-DD", nil)
			return
		}

		result, err := service.CheckBackfill(id, date)
		if err != nil {
			logger.WithFields(log.Fields{
				"account_id": id,
				"date":       date,
				"error":      err.Error(),
			}).Error("backfill: failed to check date")

			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao verificar backfill", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			logger.WithFields(log.Fields{
				"account_id": id,
				"error":      err.Error(),
			}).Error("backfill: failed to encode response")

			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}
