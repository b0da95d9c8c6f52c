package backfilling

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vfg2006/ad-performance-reconciler/infrastructure/repository/mocks"
	"github.com/vfg2006/ad-performance-reconciler/internal/domain"
	"go.uber.org/mock/gomock"
)

func TestCheckBackfillValidacoes(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	recordRepo := mocks.NewMockPerformanceRecordRepository(ctrl)
	detector := NewService(recordRepo)

	result, err := detector.CheckBackfill("", "2024-01-10")
	assert.ErrorIs(t, err, ErrAccountIDRequired)
	assert.Nil(t, result)

	result, err = detector.CheckBackfill("ACC001", "")
	assert.ErrorIs(t, err, ErrDateRequired)
	assert.Nil(t, result)
}

func TestCheckBackfill(t *testing.T) {
	tests := []struct {
		name                  string
		counts                map[domain.DataSource]int
		countErr              error
		expectedErr           bool
		expectedNeedsBackfill bool
		expectedCandidates    int
	}{
		{
			name: "Data sem push e com canônico é candidata",
			counts: map[domain.DataSource]int{
				domain.DataSourceBatch: 5,
			},
			expectedNeedsBackfill: true,
			expectedCandidates:    5,
		},
		{
			name: "Qualquer presença de push descarta a candidatura",
			counts: map[domain.DataSource]int{
				domain.DataSourcePush:  1,
				domain.DataSourceBatch: 5,
			},
			expectedNeedsBackfill: false,
		},
		{
			name:                  "Nenhuma origem com dados não é candidata",
			counts:                map[domain.DataSource]int{},
			expectedNeedsBackfill: false,
		},
		{
			name: "Push presente sem canônico não é candidata",
			counts: map[domain.DataSource]int{
				domain.DataSourcePush: 3,
			},
			expectedNeedsBackfill: false,
		},
		{
			name:        "Erro do repositório é propagado",
			countErr:    errors.New("connection refused"),
			expectedErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			recordRepo := mocks.NewMockPerformanceRecordRepository(ctrl)
			recordRepo.EXPECT().
				CountBySource("ACC001", "2024-01-10").
				Return(tt.counts, tt.countErr)

			detector := NewService(recordRepo)

			result, err := detector.CheckBackfill("ACC001", "2024-01-10")
			if tt.expectedErr {
				assert.Error(t, err)
				assert.Nil(t, result)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, "ACC001", result.AccountID)
			assert.Equal(t, "2024-01-10", result.LocalDate)
			assert.Equal(t, tt.expectedNeedsBackfill, result.NeedsBackfill)
			assert.Equal(t, tt.expectedCandidates, result.CandidateCount)
			assert.NotEmpty(t, result.Message)
		})
	}
}
