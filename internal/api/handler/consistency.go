package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/vfg2006/ad-performance-reconciler/infrastructure/repository"
	"github.com/vfg2006/ad-performance-reconciler/internal/scheduler"
	"github.com/vfg2006/ad-performance-reconciler/internal/usecases/checking"
	"github.com/vfg2006/ad-performance-reconciler/pkg/apiErrors"
	"github.com/vfg2006/ad-performance-reconciler/pkg/log"
)

// GetConsistencyResult retorna o resultado da última verificação de
// consistência da conta, produzido pela varredura agendada
func GetConsistencyResult(syncService *scheduler.ConsistencyCheckSyncService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		id := httprouter.ParamsFromContext(r.Context()).ByName("id")

		result := syncService.LastResult(id)
		if result == nil {
			apiErrors.WriteError(w, apiErrors.ErrAccountNotFound,
				"Nenhuma verificação de consistência registrada para a conta", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			logger.WithFields(log.Fields{
				"account_id": id,
				"error":      err.Error(),
			}).Error("consistency: failed to encode response")

			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}

// RunConsistencyCheck roda a verificação de consistência da conta sob
// demanda e retorna o resultado completo
func RunConsistencyCheck(accountRepo repository.AccountRepository, checker checking.Checker) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		id := httprouter.ParamsFromContext(r.Context()).ByName("id")

		account, err := accountRepo.GetAccountByID(id)
		if err != nil {
			logger.WithFields(log.Fields{
				"account_id": id,
				"error":      err.Error(),
			}).Error("consistency: failed to load account")

			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao buscar a conta", nil)
			return
		}
		if account == nil {
			apiErrors.WriteError(w, apiErrors.ErrAccountNotFound, "Conta de anúncios não encontrada", nil)
			return
		}

		logger.WithField("account_id", id).Info("consistency: running on-demand check")

		result, err := checker.CheckAccount(account)
		if err != nil {
			logger.WithFields(log.Fields{
				"account_id": id,
				"error":      err.Error(),
			}).Error("consistency: check failed")

			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao verificar consistência", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			logger.WithFields(log.Fields{
				"account_id": id,
				"error":      err.Error(),
			}).Error("consistency: failed to encode response")

			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}
