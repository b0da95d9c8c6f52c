package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/ad-performance-reconciler/internal/scheduler"
	"github.com/vfg2006/ad-performance-reconciler/pkg/apiErrors"
)

// CronJobType define o tipo de cron job que será executada
const (
	CronJobTypeReconciliation = "reconciliation"
	CronJobTypeConsistency    = "consistency"
	CronJobTypeBackfill       = "backfill"
	CronJobTypeAll            = "all"
)

// CronJobServices contém os serviços de cron necessários para executar manualmente
type CronJobServices struct {
	ReconciliationSyncService   *scheduler.ReconciliationSyncService
	ConsistencyCheckSyncService *scheduler.ConsistencyCheckSyncService
	BackfillScanSyncService     *scheduler.BackfillScanSyncService
}

// RunCronJob executa manualmente uma cron job específica
func RunCronJob(services CronJobServices) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - RunCronJob")

		// Obter o tipo de cron job da URL
		cronType := httprouter.ParamsFromContext(r.Context()).ByName("type")
		if cronType == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "Tipo de cron job não especificado", nil)
			return
		}

		// Validar o tipo de cron job
		switch cronType {
		case CronJobTypeReconciliation:
			if services.ReconciliationSyncService == nil {
				apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Serviço de reconciliação não disponível", nil)
				return
			}
			services.ReconciliationSyncService.TriggerManualSync()

		case CronJobTypeConsistency:
			if services.ConsistencyCheckSyncService == nil {
				apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Serviço de verificação de consistência não disponível", nil)
				return
			}
			services.ConsistencyCheckSyncService.TriggerManualSync()

		case CronJobTypeBackfill:
			if services.BackfillScanSyncService == nil {
				apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Serviço de varredura de backfill não disponível", nil)
				return
			}
			services.BackfillScanSyncService.TriggerManualSync()

		case CronJobTypeAll:
			if services.ReconciliationSyncService != nil {
				services.ReconciliationSyncService.TriggerManualSync()
			}
			if services.ConsistencyCheckSyncService != nil {
				services.ConsistencyCheckSyncService.TriggerManualSync()
			}
			if services.BackfillScanSyncService != nil {
				services.BackfillScanSyncService.TriggerManualSync()
			}

		default:
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Tipo de cron job desconhecido", map[string]any{
				"type": cronType,
			})
			return
		}

		logrus.WithField("type", cronType).Info("Cron job disparada manualmente")

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]string{
			"status": "started",
			"type":   cronType,
		})
	}
}

// GetCronStatus retorna o status de todos os agendadores
func GetCronStatus(services CronJobServices) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := map[string]any{}

		if services.ReconciliationSyncService != nil {
			status[CronJobTypeReconciliation] = services.ReconciliationSyncService.GetStatus()
		}
		if services.ConsistencyCheckSyncService != nil {
			status[CronJobTypeConsistency] = services.ConsistencyCheckSyncService.GetStatus()
		}
		if services.BackfillScanSyncService != nil {
			status[CronJobTypeBackfill] = services.BackfillScanSyncService.GetStatus()
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(status); err != nil {
			logrus.WithError(err).Error("Erro ao serializar status das cron jobs")
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}
