package handler

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vfg2006/ad-performance-reconciler/infrastructure/repository"
	"github.com/vfg2006/ad-performance-reconciler/internal/api/handler/router"
	"github.com/vfg2006/ad-performance-reconciler/internal/consumer"
	"github.com/vfg2006/ad-performance-reconciler/internal/scheduler"
	"github.com/vfg2006/ad-performance-reconciler/internal/usecases/backfilling"
	"github.com/vfg2006/ad-performance-reconciler/internal/usecases/checking"
	"github.com/vfg2006/ad-performance-reconciler/internal/usecases/fusing"
)

func Healthcheck() []router.Route {
	return []router.Route{
		{
			Path:    "/healthcheck",
			Method:  http.MethodGet,
			Handler: HealthcheckHandler(),
		},
	}
}

func Metrics() []router.Route {
	return []router.Route{
		{
			Path:    "/metrics",
			Method:  http.MethodGet,
			Handler: promhttp.Handler(),
		},
	}
}

func AdAccounts(accountRepo repository.AccountRepository) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/accounts",
			Method:  http.MethodGet,
			Handler: AdAccountList(accountRepo),
		},
	}
}

func Performance(service fusing.Engine) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/accounts/:id/performance",
			Method:  http.MethodGet,
			Handler: GetMergedPerformance(service),
		},
		{
			Path:    "/v1/accounts/:id/performance/timeline",
			Method:  http.MethodGet,
			Handler: GetPerformanceTimeline(service),
		},
	}
}

func Backfill(service backfilling.Detector) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/accounts/:id/backfill/:date",
			Method:  http.MethodGet,
			Handler: CheckBackfillDate(service),
		},
	}
}

func Consistency(
	accountRepo repository.AccountRepository,
	checker checking.Checker,
	syncService *scheduler.ConsistencyCheckSyncService,
) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/consistency/:id",
			Method:  http.MethodGet,
			Handler: GetConsistencyResult(syncService),
		},
		{
			Path:    "/v1/consistency/:id/run",
			Method:  http.MethodPost,
			Handler: RunConsistencyCheck(accountRepo, checker),
		},
	}
}

func Events(ingestQueue *consumer.Consumer) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/events",
			Method:  http.MethodPost,
			Handler: IngestEvent(ingestQueue),
		},
	}
}

func CronJobs(services CronJobServices) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/cron/:type/run",
			Method:  http.MethodPost,
			Handler: RunCronJob(services),
		},
		{
			Path:    "/v1/cron/status",
			Method:  http.MethodGet,
			Handler: GetCronStatus(services),
		},
	}
}
