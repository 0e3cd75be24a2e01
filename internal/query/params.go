package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vladislavdragonenkov/costumeshop/internal/domain"
)

// Params — параметры выборки в текстовом виде, как они приходят от транспорта.
type Params struct {
	Field         string
	Operator      string
	Value         string
	SortField     string
	SortDirection string
	Page          string
	Limit         string
}

// ListQuery разбирает параметры. Фильтр включается только при непустом Field.
func (p Params) ListQuery() (domain.ListQuery, error) {
	q := domain.ListQuery{SortField: strings.TrimSpace(p.SortField)}

	dir, err := domain.ParseSortDirection(p.SortDirection)
	if err != nil {
		return domain.ListQuery{}, err
	}
	q.SortDirection = dir

	if q.Page, err = parseCount("page", p.Page); err != nil {
		return domain.ListQuery{}, err
	}
	if q.Limit, err = parseCount("limit", p.Limit); err != nil {
		return domain.ListQuery{}, err
	}

	if field := strings.TrimSpace(p.Field); field != "" {
		q.Filter = &domain.Predicate{
			Field:    field,
			Operator: domain.Operator(strings.ToLower(strings.TrimSpace(p.Operator))),
			Value:    p.Value,
		}
	}
	return q, nil
}

func parseCount(name, raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer, got %q", domain.ErrInvalidOperand, name, raw)
	}
	if n < 1 {
		return 0, fmt.Errorf("%w: %s must be positive, got %d", domain.ErrInvalidOperand, name, n)
	}
	return n, nil
}
