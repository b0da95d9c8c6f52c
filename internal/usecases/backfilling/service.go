package backfilling

import (
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/ad-performance-reconciler/infrastructure/repository"
	"github.com/vfg2006/ad-performance-reconciler/internal/domain"
	"github.com/vfg2006/ad-performance-reconciler/internal/metrics"
)

var (
	ErrAccountIDRequired = errors.New("account ID é obrigatório")
	ErrDateRequired      = errors.New("data local é obrigatória")
)

// Detector identifica datas locais em que a stream push não produziu nada mas
// o relatório canônico tem dados — candidatas a backfill. A execução do
// backfill em si é de um job agendado externo; aqui só detectamos e
// reportamos.
type Detector interface {
	CheckBackfill(accountID, localDate string) (*domain.BackfillCheckResult, error)
}

type service struct {
	recordRepo repository.PerformanceRecordRepository
}

// NewService cria o detector de backfill
func NewService(recordRepo repository.PerformanceRecordRepository) Detector {
	return &service{
		recordRepo: recordRepo,
	}
}

func (s *service) CheckBackfill(accountID, localDate string) (*domain.BackfillCheckResult, error) {
	if accountID == "" {
		return nil, ErrAccountIDRequired
	}
	if localDate == "" {
		return nil, ErrDateRequired
	}

	counts, err := s.recordRepo.CountBySource(accountID, localDate)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "erro ao contar registros por origem")
	}

	pushCount := counts[domain.DataSourcePush]
	batchCount := counts[domain.DataSourceBatch]

	result := &domain.BackfillCheckResult{
		AccountID: accountID,
		LocalDate: localDate,
	}

	// Qualquer presença de push, por parcial que seja, significa "não está
	// faltando": a divergência de valores é assunto do verificador de
	// consistência, não do backfill
	if pushCount > 0 {
		result.NeedsBackfill = false
		result.Message = fmt.Sprintf("%d registro(s) push presentes, backfill não é necessário", pushCount)
		return result, nil
	}

	if batchCount == 0 {
		result.NeedsBackfill = false
		result.Message = "nenhuma origem tem dados para a data"
		return result, nil
	}

	result.NeedsBackfill = true
	result.CandidateCount = batchCount
	result.Message = fmt.Sprintf("%d registro(s) canônicos sem contrapartida push", batchCount)

	metrics.BackfillCandidates.Inc()
	logrus.WithFields(logrus.Fields{
		"account_id":      accountID,
		"local_date":      localDate,
		"candidate_count": batchCount,
	}).Info("Data candidata a backfill detectada")

	return result, nil
}
