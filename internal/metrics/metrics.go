package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EventsEnqueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "adperf_events_enqueued_total",
		Help: "Total de mensagens colocadas na fila interna de ingestão.",
	})

	EventsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "adperf_events_dropped_total",
		Help: "Total de mensagens descartadas por fila interna cheia.",
	})

	EventsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adperf_events_processed_total",
		Help: "Total de eventos processados pela ingestão, por categoria e status.",
	}, []string{"category", "status"})

	FinalizedWriteRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "adperf_finalized_write_rejections_total",
		Help: "Total de escritas push recusadas pela guarda de finalização.",
	})

	RecordsFinalized = promauto.NewCounter(prometheus.CounterOpts{
		Name: "adperf_records_finalized_total",
		Help: "Total de registros canônicos gravados pela reconciliação.",
	})

	ConsistencyCellsFlagged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "adperf_consistency_cells_flagged_total",
		Help: "Total de células (data, campanha) sinalizadas por divergência entre origens.",
	})

	BackfillCandidates = promauto.NewCounter(prometheus.CounterOpts{
		Name: "adperf_backfill_candidates_total",
		Help: "Total de datas detectadas como candidatas a backfill.",
	})

	QueueUtilization = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "adperf_ingest_queue_utilization_ratio",
		Help: "Utilização atual da fila interna de ingestão (0–1).",
	})
)
