package domain

import (
	"fmt"
	"strings"
)

// Operator — оператор фильтра.
type Operator string

const (
	// OperatorEquals — точное совпадение; для целых колонок значение разбирается как число.
	OperatorEquals Operator = "equals"
	// OperatorContains — вхождение подстроки с учётом регистра, только для текстовых колонок.
	OperatorContains Operator = "contains"
)

// Predicate — фильтр по одному полю.
type Predicate struct {
	Field    string
	Operator Operator
	Value    string
}

// SortDirection — направление сортировки.
type SortDirection string

const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

// ParseSortDirection разбирает направление без учёта регистра; пустая строка означает ASC.
func ParseSortDirection(raw string) (SortDirection, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "", string(SortAsc):
		return SortAsc, nil
	case string(SortDesc):
		return SortDesc, nil
	default:
		return "", fmt.Errorf("%w: sort direction %q", ErrInvalidOperand, raw)
	}
}

const (
	// DefaultPage — номер страницы по умолчанию.
	DefaultPage = 1
	// DefaultLimit — размер страницы по умолчанию.
	DefaultLimit = 10
)

// ListQuery — параметры выборки списка.
// Нулевые Page и Limit означают значения по умолчанию, пустой SortField — сортировку вида.
type ListQuery struct {
	// Scope — равенства по полям из вложенных маршрутов (SHOP_ID, OFFER_ID).
	Scope         map[string]string
	Filter        *Predicate
	SortField     string
	SortDirection SortDirection
	Page          int
	Limit         int
}
