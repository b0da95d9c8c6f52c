package fusing

import (
	"fmt"

	"github.com/vfg2006/ad-performance-reconciler/internal/config"
	"github.com/vfg2006/ad-performance-reconciler/internal/domain"
)

// Policy descreve como uma finalidade de consumo mescla as duas origens.
// Políticas novas entram pela tabela, sem tocar nas existentes.
type Policy struct {
	Name string

	// Merge é a estratégia de mesclagem da política
	Merge MergeFunc

	// ExcludeCurrentDay remove o dia local corrente do período solicitado
	ExcludeCurrentDay bool

	// ExclusionDays remove os N dias locais mais recentes (contando o dia
	// corrente) do período. É um controle de correção, não de performance:
	// dados ainda sujeitos a revisão de atribuição não podem alimentar
	// decisões automatizadas, mesmo que existam e estejam fresquinhos.
	ExclusionDays int

	// ReliesOnSources lista as origens de que a política depende, usadas na
	// classificação de atualidade
	ReliesOnSources []domain.DataSource
}

// PolicyTable mapeia finalidade -> política. A tabela é fixa por construção:
// o chamador escolhe a finalidade, nunca a política.
type PolicyTable map[domain.Purpose]Policy

// DefaultPolicyTable monta a tabela padrão de políticas a partir da
// configuração imutável
func DefaultPolicyTable(cfg *config.Config) PolicyTable {
	return PolicyTable{
		domain.PurposeRealtimeDisplay: {
			Name:            "push_first",
			Merge:           MergePushFirst,
			ReliesOnSources: []domain.DataSource{domain.DataSourcePush, domain.DataSourceBatch},
		},
		domain.PurposeHistoricalAnalysis: {
			Name:              "batch_first",
			Merge:             MergeBatchFirst,
			ExcludeCurrentDay: true,
			ReliesOnSources:   []domain.DataSource{domain.DataSourceBatch},
		},
		domain.PurposeReportExport: {
			Name:            "weighted",
			Merge:           MergeWeighted,
			ReliesOnSources: []domain.DataSource{domain.DataSourcePush, domain.DataSourceBatch},
		},
		domain.PurposeAlgorithmInput: {
			Name:            "batch_first",
			Merge:           MergeBatchFirst,
			ExclusionDays:   cfg.Fusion.AlgorithmExclusionDays,
			ReliesOnSources: []domain.DataSource{domain.DataSourceBatch},
		},
	}
}

// Register adiciona uma política nova à tabela. Recusa sobrescrever uma
// finalidade existente: alterar política em produção é mudança de contrato,
// não configuração.
func (t PolicyTable) Register(purpose domain.Purpose, policy Policy) error {
	if _, exists := t[purpose]; exists {
		return fmt.Errorf("política já registrada para a finalidade %q", purpose)
	}
	if policy.Merge == nil {
		return fmt.Errorf("política %q sem estratégia de mesclagem", policy.Name)
	}

	t[purpose] = policy
	return nil
}
