package consumer

import (
	"context"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/ad-performance-reconciler/infrastructure/repository"
	"github.com/vfg2006/ad-performance-reconciler/internal/config"
	"github.com/vfg2006/ad-performance-reconciler/internal/domain"
	"github.com/vfg2006/ad-performance-reconciler/internal/metrics"
	"github.com/vfg2006/ad-performance-reconciler/internal/usecases/ingesting"
	"github.com/vfg2006/ad-performance-reconciler/internal/usecases/timezoning"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// pushPayload é o corpo bruto de uma mensagem da stream push. Todas as
// categorias compartilham o mesmo envelope; os campos de métrica presentes
// dependem do dataset de origem.
type pushPayload struct {
	EventTime             string  `json:"event_time"`
	CampaignID            string  `json:"campaign_id"`
	AdGroupID             *string `json:"ad_group_id,omitempty"`
	Impressions           int64   `json:"impressions"`
	Clicks                int64   `json:"clicks"`
	Cost                  float64 `json:"cost"`
	AttributedSales       float64 `json:"attributed_sales"`
	AttributedConversions int64   `json:"attributed_conversions"`
	BudgetUsagePercent    float64 `json:"budget_usage_percent"`
}

// Consumer drena a fila interna de mensagens push com um pool fixo de
// workers. A fila é limitada: mensagem que não cabe é descartada na entrada
// e conta no adperf_events_dropped_total, nunca bloqueia o produtor.
type Consumer struct {
	queue       chan *domain.QueueMessage
	workers     int
	accountRepo repository.AccountRepository
	resolver    timezoning.Resolver
	ingestor    ingesting.Ingestor
	wg          sync.WaitGroup
	started     bool
	startMutex  sync.Mutex
}

// New cria o consumidor da fila interna de ingestão
func New(
	cfg config.Ingestion,
	accountRepo repository.AccountRepository,
	resolver timezoning.Resolver,
	ingestor ingesting.Ingestor,
) *Consumer {
	return &Consumer{
		queue:       make(chan *domain.QueueMessage, cfg.QueueSize),
		workers:     cfg.Workers,
		accountRepo: accountRepo,
		resolver:    resolver,
		ingestor:    ingestor,
	}
}

// Start sobe os workers de ingestão. Workers param quando o contexto é
// cancelado ou quando Drain fecha a fila.
func (c *Consumer) Start(ctx context.Context) {
	c.startMutex.Lock()
	defer c.startMutex.Unlock()
	if c.started {
		return
	}
	c.started = true

	logrus.WithFields(logrus.Fields{
		"workers":    c.workers,
		"queue_size": cap(c.queue),
	}).Info("Iniciando consumidor da fila de ingestão")

	for i := 0; i < c.workers; i++ {
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			c.run(ctx)
		}()
	}
}

func (c *Consumer) run(ctx context.Context) {
	for {
		select {
		case msg, ok := <-c.queue:
			if !ok {
				return
			}
			c.handle(msg)
			metrics.QueueUtilization.Set(c.Utilization())
		case <-ctx.Done():
			return
		}
	}
}

// Enqueue coloca uma mensagem na fila sem bloquear. Retorna false quando a
// fila está cheia; nesse caso a mensagem é descartada e o broker fica
// responsável por reentregá-la.
func (c *Consumer) Enqueue(msg *domain.QueueMessage) bool {
	select {
	case c.queue <- msg:
		metrics.EventsEnqueued.Inc()
		metrics.QueueUtilization.Set(c.Utilization())
		return true
	default:
		metrics.EventsDropped.Inc()
		logrus.WithFields(logrus.Fields{
			"message_id": msg.MessageID,
			"dataset_id": msg.DatasetID,
		}).Warn("Fila de ingestão cheia, mensagem descartada")
		return false
	}
}

// Utilization retorna a ocupação atual da fila (0–1)
func (c *Consumer) Utilization() float64 {
	if cap(c.queue) == 0 {
		return 0
	}
	return float64(len(c.queue)) / float64(cap(c.queue))
}

// QueueLen retorna quantas mensagens aguardam processamento
func (c *Consumer) QueueLen() int {
	return len(c.queue)
}

// Drain fecha a fila e espera os workers esvaziarem o que restou
func (c *Consumer) Drain() {
	close(c.queue)
	c.wg.Wait()
}

func (c *Consumer) handle(msg *domain.QueueMessage) {
	event, err := c.decode(msg)
	if err != nil {
		// Mensagem indecodificável nunca é reenfileirada: reentrega não
		// conserta payload quebrado
		logrus.WithError(err).WithFields(logrus.Fields{
			"message_id": msg.MessageID,
			"dataset_id": msg.DatasetID,
		}).Error("Erro ao decodificar mensagem da fila")
		metrics.EventsProcessed.WithLabelValues(domain.DatasetCategoryUnknown.String(), "decode_error").Inc()
		return
	}

	account, err := c.accountRepo.GetAccountByExternalID(msg.AccountID)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"message_id":  msg.MessageID,
			"external_id": msg.AccountID,
		}).Error("Erro ao resolver conta da mensagem")
		metrics.EventsProcessed.WithLabelValues(event.DatasetCategory.String(), "error").Inc()
		return
	}
	if account == nil {
		logrus.WithFields(logrus.Fields{
			"message_id":  msg.MessageID,
			"external_id": msg.AccountID,
		}).Warn("Conta desconhecida, mensagem ignorada")
		metrics.EventsProcessed.WithLabelValues(event.DatasetCategory.String(), "unknown_account").Inc()
		return
	}

	timezone := c.resolver.ResolveTimezone(account.MarketplaceCode, account.TimezoneOverride)

	if err := c.ingestor.ProcessEvent(event, account.ID, timezone); err != nil {
		if ingesting.IsSkip(err) {
			return
		}
		logrus.WithError(err).WithFields(logrus.Fields{
			"message_id": msg.MessageID,
			"account_id": account.ID,
		}).Error("Erro ao ingerir evento da stream push")
	}
}

// decode converte o envelope bruto da fila em um evento tipado. O payload é
// o mesmo para todas as categorias; só os ponteiros de métrica relevantes
// são preenchidos.
func (c *Consumer) decode(msg *domain.QueueMessage) (*domain.IncomingEvent, error) {
	category, err := domain.ParseDatasetCategory(msg.DatasetID)
	if err != nil {
		return nil, err
	}

	var payload pushPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return nil, err
	}

	event := &domain.IncomingEvent{
		MessageID:       msg.MessageID,
		DatasetCategory: category,
		PushTimestamp:   msg.Timestamp,
		EventTime:       payload.EventTime,
		CampaignID:      payload.CampaignID,
		AdGroupID:       payload.AdGroupID,
	}
	if event.PushTimestamp.IsZero() {
		event.PushTimestamp = time.Now().UTC()
	}

	switch category {
	case domain.DatasetCategoryTraffic:
		event.Traffic = &domain.TrafficPayload{
			Impressions: payload.Impressions,
			Clicks:      payload.Clicks,
			Cost:        payload.Cost,
		}
	case domain.DatasetCategoryConversion:
		event.Conversion = &domain.ConversionPayload{
			Sales:  payload.AttributedSales,
			Orders: payload.AttributedConversions,
		}
	case domain.DatasetCategoryBudget:
		event.Budget = &domain.BudgetPayload{
			BudgetUsagePercent: payload.BudgetUsagePercent,
		}
	}

	return event, nil
}
