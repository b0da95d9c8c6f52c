package utils

import "time"

// ParseDate converte uma data YYYY-MM-DD em *time.Time. String vazia retorna
// nil sem erro, para que parâmetros opcionais fiquem distinguíveis de datas
// inválidas.
func ParseDate(dateStr string) (*time.Time, error) {
	if dateStr == "" {
		return nil, nil
	}

	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return nil, err
	}

	return &date, nil
}
