package ingesting

import (
	"errors"
)

// Erros específicos do contexto de ingestão. Duplicata e célula finalizada
// não são falhas de verdade — são resultados esperados da entrega
// pelo-menos-uma-vez e da imutabilidade do canônico — mas circulam como
// sentinelas para que o lote os classifique como "pulados".
var (
	// Resultados esperados (contam como skipped)
	ErrDuplicateMessage           = errors.New("mensagem já processada")
	ErrFinalizedCell              = errors.New("célula já finalizada, escrita push recusada")
	ErrUnsupportedDatasetCategory = errors.New("categoria de dataset não suportada")

	// Falhas de verdade (contam como errors)
	ErrMissingPayload     = errors.New("evento sem payload para a categoria")
	ErrPersistenceFailure = errors.New("falha de persistência ao gravar evento")
)

// IsSkip informa se o erro é um dos resultados esperados que não exigem
// reprocessamento nem log de erro
func IsSkip(err error) bool {
	return errors.Is(err, ErrDuplicateMessage) ||
		errors.Is(err, ErrFinalizedCell) ||
		errors.Is(err, ErrUnsupportedDatasetCategory)
}
