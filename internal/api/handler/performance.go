package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/vfg2006/ad-performance-reconciler/internal/domain"
	"github.com/vfg2006/ad-performance-reconciler/internal/usecases/fusing"
	"github.com/vfg2006/ad-performance-reconciler/pkg/apiErrors"
	"github.com/vfg2006/ad-performance-reconciler/pkg/log"
	"github.com/vfg2006/ad-performance-reconciler/pkg/utils"
)

// GetMergedPerformance retorna a visão fundida de performance de uma conta,
// com a estratégia de merge escolhida pelo propósito de consumo
func GetMergedPerformance(service fusing.Engine) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		id := httprouter.ParamsFromContext(r.Context()).ByName("id")

		purpose := domain.Purpose(r.URL.Query().Get("purpose"))
		if purpose == "" {
			purpose = domain.PurposeRealtimeDisplay
		}

		startDate, err := utils.ParseDate(r.URL.Query().Get("start_date"))
		if err != nil {
			logger.WithFields(log.Fields{
				"account_id": id,
				"start_date": r.URL.Query().Get("start_date"),
				"error":      err.Error(),
			}).Warn("performance: invalid start_date parameter")

			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "start_date inválida, use YYYY-MM-DD", nil)
			return
		}

		endDate, err := utils.ParseDate(r.URL.Query().Get("end_date"))
		if err != nil {
			logger.WithFields(log.Fields{
				"account_id": id,
				"end_date":   r.URL.Query().Get("end_date"),
				"error":      err.Error(),
			}).Warn("performance: invalid end_date parameter")

			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "end_date inválida, use YYYY-MM-DD", nil)
			return
		}

		// O dia corrente entra por padrão; include_today=false é o corte
		// explícito do chamador
		filters := &domain.MergedViewFilters{
			StartDate:    startDate,
			EndDate:      endDate,
			ExcludeToday: r.URL.Query().Get("include_today") == "false",
		}

		logger.WithFields(log.Fields{
			"account_id": id,
			"purpose":    string(purpose),
		}).Info("performance: fetching merged view")

		view, err := service.GetMergedView(id, filters, purpose)
		if err != nil {
			writeFusionError(w, logger, id, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(view); err != nil {
			logger.WithFields(log.Fields{
				"account_id": id,
				"error":      err.Error(),
			}).Error("performance: failed to encode response")

			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}

// GetPerformanceTimeline retorna a série temporal agregada por dia, semana
// ISO ou mês
func GetPerformanceTimeline(service fusing.Engine) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		id := httprouter.ParamsFromContext(r.Context()).ByName("id")

		granularity := domain.Granularity(r.URL.Query().Get("granularity"))
		if granularity == "" {
			granularity = domain.GranularityDay
		}

		startDate, err := utils.ParseDate(r.URL.Query().Get("start_date"))
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "start_date inválida, use YYYY-MM-DD", nil)
			return
		}

		endDate, err := utils.ParseDate(r.URL.Query().Get("end_date"))
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "end_date inválida, use YYYY-MM-DD", nil)
			return
		}

		logger.WithFields(log.Fields{
			"account_id":  id,
			"granularity": string(granularity),
		}).Info("performance: fetching timeline aggregate")

		timeline, err := service.GetTimelineAggregate(id, startDate, endDate, granularity)
		if err != nil {
			writeFusionError(w, logger, id, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(timeline); err != nil {
			logger.WithFields(log.Fields{
				"account_id": id,
				"error":      err.Error(),
			}).Error("performance: failed to encode timeline response")

			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}

// writeFusionError traduz os erros do motor de fusão para os códigos da API
func writeFusionError(w http.ResponseWriter, logger log.Logger, accountID string, err error) {
	switch {
	case errors.Is(err, fusing.ErrAccountNotFound):
		apiErrors.WriteError(w, apiErrors.ErrAccountNotFound, "Conta de anúncios não encontrada", nil)
	case errors.Is(err, fusing.ErrMissingDates):
		apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "start_date e end_date são obrigatórias", nil)
	case errors.Is(err, fusing.ErrInvalidDateRange):
		apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "start_date posterior a end_date", nil)
	case errors.Is(err, fusing.ErrUnknownPurpose):
		apiErrors.WriteError(w, apiErrors.ErrUnknownPurpose, "Propósito de consumo desconhecido", nil)
	case errors.Is(err, fusing.ErrInvalidGranularity):
		apiErrors.WriteError(w, apiErrors.ErrInvalidGranularity, "Granularidade inválida, use day, week ou month", nil)
	default:
		logger.WithFields(log.Fields{
			"account_id": accountID,
			"error":      err.Error(),
		}).Error("performance: failed to build merged view")

		apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao montar a visão de performance", nil)
	}
}
