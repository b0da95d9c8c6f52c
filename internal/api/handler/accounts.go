package handler

import (
	"encoding/json"
	"net/http"

	"github.com/vfg2006/ad-performance-reconciler/infrastructure/repository"
	"github.com/vfg2006/ad-performance-reconciler/internal/domain"
	"github.com/vfg2006/ad-performance-reconciler/pkg/apiErrors"
	"github.com/vfg2006/ad-performance-reconciler/pkg/log"
)

// AdAccountList lista as contas de anúncios ativas conhecidas pelo motor
func AdAccountList(accountRepo repository.AccountRepository) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		statuses := []domain.AdAccountStatus{domain.AdAccountStatusActive}
		if r.URL.Query().Get("include_inactive") == "true" {
			statuses = append(statuses, domain.AdAccountStatusInactive)
		}

		accounts, err := accountRepo.ListAccounts(statuses)
		if err != nil {
			logger.WithField("error", err.Error()).Error("accounts: failed to list accounts")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao listar contas", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(accounts); err != nil {
			logger.WithField("error", err.Error()).Error("accounts: failed to encode response")
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}
