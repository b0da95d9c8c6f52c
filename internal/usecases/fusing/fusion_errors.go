package fusing

import (
	"errors"
)

// Erros de entrada claramente inválida — os únicos casos em que o motor de
// fusão falha em vez de devolver um resultado com warnings
var (
	ErrAccountNotFound    = errors.New("conta não encontrada")
	ErrMissingDates       = errors.New("é necessário informar as datas de início e fim")
	ErrInvalidDateRange   = errors.New("a data de início não pode ser posterior à data de fim")
	ErrUnknownPurpose     = errors.New("finalidade de consumo desconhecida")
	ErrInvalidGranularity = errors.New("granularidade desconhecida")
)
