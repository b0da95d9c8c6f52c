package timezoning

import (
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/ad-performance-reconciler/internal/config"
)

// Resolver resolve o fuso horário de um marketplace e converte instantes UTC
// em datas do calendário local. Nenhum método retorna erro: a pipeline de
// ingestão não pode parar por causa de um timestamp ou fuso ruim, então os
// casos degradados caem para UTC e são apenas logados.
type Resolver interface {
	// ResolveTimezone resolve o nome IANA do fuso de um marketplace.
	// Ordem de resolução: override por conta > tabela estática > UTC.
	ResolveTimezone(marketplaceCode string, accountOverride *string) string

	// LocalDateOf converte um timestamp UTC (RFC3339) para a data local
	// (YYYY-MM-DD) no fuso informado. Timestamp malformado ou fuso
	// desconhecido degradam para o recorte da data do texto original.
	LocalDateOf(utcTimestamp, timezone string) string

	// LocalDateOfTime é a variante para instantes já parseados
	LocalDateOfTime(utcTime time.Time, timezone string) string
}

type service struct {
	marketplaceTimezones map[string]string
}

// NewService cria o resolvedor com a tabela imutável de fusos da configuração
func NewService(cfg *config.Config) Resolver {
	return &service{
		marketplaceTimezones: cfg.MarketplaceTimezones,
	}
}

func (s *service) ResolveTimezone(marketplaceCode string, accountOverride *string) string {
	if accountOverride != nil && *accountOverride != "" {
		if _, err := time.LoadLocation(*accountOverride); err == nil {
			return *accountOverride
		}

		logrus.WithFields(logrus.Fields{
			"marketplace_code": marketplaceCode,
			"override":         *accountOverride,
		}).Warn("Override de fuso da conta não é um nome IANA válido, usando tabela de marketplaces")
	}

	if tz, ok := s.marketplaceTimezones[strings.ToUpper(marketplaceCode)]; ok {
		return tz
	}

	logrus.WithField("marketplace_code", marketplaceCode).
		Warn("Marketplace sem fuso mapeado, usando UTC")

	return "UTC"
}

func (s *service) LocalDateOf(utcTimestamp, timezone string) string {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"timezone": timezone,
			"error":    err.Error(),
		}).Warn("Fuso horário desconhecido, degradando para recorte da data UTC")
		return fallbackDate(utcTimestamp)
	}

	parsed, err := time.Parse(time.RFC3339, utcTimestamp)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"timestamp": utcTimestamp,
			"error":     err.Error(),
		}).Warn("Timestamp malformado, degradando para recorte da data UTC")
		return fallbackDate(utcTimestamp)
	}

	return parsed.In(loc).Format(time.DateOnly)
}

func (s *service) LocalDateOfTime(utcTime time.Time, timezone string) string {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"timezone": timezone,
			"error":    err.Error(),
		}).Warn("Fuso horário desconhecido, degradando para data UTC")
		return utcTime.UTC().Format(time.DateOnly)
	}

	return utcTime.In(loc).Format(time.DateOnly)
}

// fallbackDate recorta a parte de data de um timestamp textual. Mesmo quando o
// timestamp não parseia como RFC3339, o prefixo YYYY-MM-DD costuma estar lá e
// é melhor bucket aproximado do que descartar o evento.
func fallbackDate(raw string) string {
	if idx := strings.IndexAny(raw, "T "); idx > 0 {
		return raw[:idx]
	}
	if len(raw) > 10 {
		return raw[:10]
	}
	return raw
}
