package fusing

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/ad-performance-reconciler/infrastructure/repository"
	"github.com/vfg2006/ad-performance-reconciler/internal/config"
	"github.com/vfg2006/ad-performance-reconciler/internal/domain"
	"github.com/vfg2006/ad-performance-reconciler/internal/usecases/timezoning"
)

// Engine é o motor de fusão de dados: dado um período e uma finalidade de
// consumo, devolve a visão unificada das duas origens com anotações de origem
// e atualidade. Chamadas sempre devolvem o melhor resultado possível com
// warnings; só entradas claramente inválidas retornam erro.
type Engine interface {
	GetMergedView(accountID string, filters *domain.MergedViewFilters, purpose domain.Purpose) (*domain.MergedViewResponse, error)
	GetTimelineAggregate(accountID string, startDate, endDate *time.Time, granularity domain.Granularity) (*domain.TimelineAggregate, error)
}

type service struct {
	cfg         *config.Config
	resolver    timezoning.Resolver
	accountRepo repository.AccountRepository
	recordRepo  repository.PerformanceRecordRepository
	policies    PolicyTable

	// injetável para testes com datas fixas
	now func() time.Time
}

// NewService cria o motor de fusão com a tabela padrão de políticas
func NewService(
	cfg *config.Config,
	resolver timezoning.Resolver,
	accountRepo repository.AccountRepository,
	recordRepo repository.PerformanceRecordRepository,
) Engine {
	return &service{
		cfg:         cfg,
		resolver:    resolver,
		accountRepo: accountRepo,
		recordRepo:  recordRepo,
		policies:    DefaultPolicyTable(cfg),
		now:         time.Now,
	}
}

func (s *service) GetMergedView(accountID string, filters *domain.MergedViewFilters, purpose domain.Purpose) (*domain.MergedViewResponse, error) {
	if filters == nil || filters.StartDate == nil || filters.EndDate == nil {
		return nil, ErrMissingDates
	}

	if filters.StartDate.After(*filters.EndDate) {
		return nil, ErrInvalidDateRange
	}

	policy, ok := s.policies[purpose]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPurpose, purpose)
	}

	account, err := s.accountRepo.GetAccountByID(accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, accountID)
	}

	timezone := s.resolver.ResolveTimezone(account.MarketplaceCode, account.TimezoneOverride)
	today := s.resolver.LocalDateOfTime(s.now(), timezone)

	response := &domain.MergedViewResponse{
		Records:  []*domain.PerformanceRecord{},
		Purpose:  purpose,
		Warnings: []string{},
	}

	startDate := filters.StartDate.Format(time.DateOnly)
	endDate, warnings := s.effectiveEndDate(filters, policy, today)
	response.Warnings = append(response.Warnings, warnings...)

	if endDate < startDate {
		// O período inteiro caiu dentro da exclusão. Não é erro: devolvemos
		// vazio e explicamos no warning.
		response.Warnings = append(response.Warnings, "período solicitado ficou vazio após as exclusões da política")
		response.DataSource = "none"
		response.Freshness = domain.FreshnessStale
		return response, nil
	}

	batchRecords, err := s.recordRepo.GetByDateRange(accountID, startDate, endDate, domain.DataSourceBatch)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"account_id": accountID,
			"error":      err.Error(),
		}).Error("Erro ao buscar registros canônicos, seguindo só com push")
		response.Warnings = append(response.Warnings, "origem canônica indisponível, resultado parcial")
		batchRecords = nil
	}

	pushRecords, err := s.recordRepo.GetByDateRange(accountID, startDate, endDate, domain.DataSourcePush)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"account_id": accountID,
			"error":      err.Error(),
		}).Error("Erro ao buscar registros push, seguindo só com canônico")
		response.Warnings = append(response.Warnings, "origem push indisponível, resultado parcial")
		pushRecords = nil
	}

	response.Records = policy.Merge(batchRecords, pushRecords, MergeContext{
		Today:      today,
		PushWeight: s.cfg.Fusion.PushWeight,
	})

	response.DataSource = annotateDataSource(response.Records)
	freshness, freshWarnings := s.classifyFreshness(accountID, policy)
	response.Freshness = freshness
	response.Warnings = append(response.Warnings, freshWarnings...)

	if len(response.Records) == 0 {
		response.Warnings = append(response.Warnings, "nenhum registro encontrado no período")
	}

	return response, nil
}

func (s *service) GetTimelineAggregate(accountID string, startDate, endDate *time.Time, granularity domain.Granularity) (*domain.TimelineAggregate, error) {
	if !granularity.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidGranularity, granularity)
	}

	// A série temporal alimenta dashboards, então usa a mesma política da
	// exibição em tempo real: histórico canônico com o dia corrente vindo do
	// push
	view, err := s.GetMergedView(accountID, &domain.MergedViewFilters{
		StartDate: startDate,
		EndDate:   endDate,
	}, domain.PurposeRealtimeDisplay)
	if err != nil {
		return nil, err
	}

	buckets := make(map[string]*domain.PerformanceMetrics)
	order := make([]string, 0)
	totals := domain.PerformanceMetrics{}

	for _, record := range view.Records {
		period, err := periodKey(record.LocalDate, granularity)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"local_date": record.LocalDate,
				"error":      err.Error(),
			}).Warn("Registro com data inválida ignorado na agregação")
			continue
		}

		bucket, exists := buckets[period]
		if !exists {
			bucket = &domain.PerformanceMetrics{}
			buckets[period] = bucket
			order = append(order, period)
		}

		bucket.Add(record.Metrics)
		totals.Add(record.Metrics)
	}

	series := make([]*domain.TimelinePoint, 0, len(order))
	for _, period := range order {
		series = append(series, &domain.TimelinePoint{
			Period:  period,
			Metrics: *buckets[period],
		})
	}

	return &domain.TimelineAggregate{
		Series:     series,
		Totals:     totals,
		DataSource: view.DataSource,
	}, nil
}

// effectiveEndDate aplica as exclusões de data da política sobre o fim do
// período. A exclusão de dias recentes do algorithm_input é incondicional:
// vale mesmo quando há dado mais fresco disponível.
func (s *service) effectiveEndDate(filters *domain.MergedViewFilters, policy Policy, today string) (string, []string) {
	endDate := filters.EndDate.Format(time.DateOnly)
	warnings := []string{}

	capEnd := func(maxDate, reason string) {
		if endDate > maxDate {
			endDate = maxDate
			warnings = append(warnings, reason)
		}
	}

	if filters.ExcludeToday && endDate >= today {
		capEnd(previousDay(today), "dia corrente excluído a pedido do chamador")
	}

	if policy.ExcludeCurrentDay {
		capEnd(previousDay(today), "dia corrente excluído pela política")
	}

	if policy.ExclusionDays > 0 {
		capEnd(daysBefore(today, policy.ExclusionDays),
			fmt.Sprintf("últimos %d dias excluídos pela janela de exclusão da política", policy.ExclusionDays))
	}

	return endDate, warnings
}

// classifyFreshness compara a última atualização de cada origem de que a
// política depende com a idade máxima configurada daquela origem
func (s *service) classifyFreshness(accountID string, policy Policy) (domain.Freshness, []string) {
	maxAges := map[domain.DataSource]time.Duration{
		domain.DataSourcePush:  s.cfg.PushMaxAge(),
		domain.DataSourceBatch: s.cfg.BatchMaxAge(),
	}

	warnings := []string{}
	fresh, stale := 0, 0

	for _, source := range policy.ReliesOnSources {
		latest, err := s.recordRepo.LatestUpdate(accountID, source)
		if err != nil || latest == nil {
			stale++
			warnings = append(warnings, fmt.Sprintf("origem %s sem atualização conhecida", source))
			continue
		}

		if s.now().Sub(*latest) <= maxAges[source] {
			fresh++
		} else {
			stale++
			warnings = append(warnings, fmt.Sprintf("origem %s desatualizada desde %s", source, latest.Format(time.RFC3339)))
		}
	}

	switch {
	case stale == 0:
		return domain.FreshnessFresh, warnings
	case fresh == 0:
		return domain.FreshnessStale, warnings
	default:
		return domain.FreshnessMixed, warnings
	}
}

// annotateDataSource resume de quais origens os registros mesclados vieram
func annotateDataSource(records []*domain.PerformanceRecord) string {
	hasPush, hasBatch := false, false
	for _, record := range records {
		switch record.DataSource {
		case domain.DataSourcePush:
			hasPush = true
		case domain.DataSourceBatch:
			hasBatch = true
		}
	}

	switch {
	case hasPush && hasBatch:
		return "mixed"
	case hasPush:
		return string(domain.DataSourcePush)
	case hasBatch:
		return string(domain.DataSourceBatch)
	default:
		return "none"
	}
}

func periodKey(localDate string, granularity domain.Granularity) (string, error) {
	date, err := time.Parse(time.DateOnly, localDate)
	if err != nil {
		return "", err
	}

	switch granularity {
	case domain.GranularityWeek:
		year, week := date.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week), nil
	case domain.GranularityMonth:
		return date.Format("2006-01"), nil
	default:
		return localDate, nil
	}
}

func previousDay(date string) string {
	return daysBefore(date, 1)
}

func daysBefore(date string, days int) string {
	parsed, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return date
	}
	return parsed.AddDate(0, 0, -days).Format(time.DateOnly)
}
