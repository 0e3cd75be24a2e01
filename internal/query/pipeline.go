// Package query реализует конвейер выборки: область (scope) → фильтр → сортировка → страница.
package query

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/vladislavdragonenkov/costumeshop/internal/domain"
)

// Apply прогоняет записи через весь конвейер с учётом значений по умолчанию.
// Пустой SortField заменяется на defaultSort.
func Apply[R domain.Record](records []R, q domain.ListQuery, defaultSort string) ([]R, error) {
	page, limit, err := normalizePaging(q.Page, q.Limit)
	if err != nil {
		return nil, err
	}
	dir, err := domain.ParseSortDirection(string(q.SortDirection))
	if err != nil {
		return nil, err
	}
	field := q.SortField
	if field == "" {
		field = defaultSort
	}

	out := Scope(records, q.Scope)
	if q.Filter != nil && q.Filter.Field != "" {
		if out, err = Filter(out, *q.Filter); err != nil {
			return nil, err
		}
	}
	if out, err = Sort(out, field, dir); err != nil {
		return nil, err
	}
	return Paginate(out, page, limit), nil
}

func normalizePaging(page, limit int) (int, int, error) {
	if page < 0 {
		return 0, 0, fmt.Errorf("%w: page must be positive, got %d", domain.ErrInvalidOperand, page)
	}
	if limit < 0 {
		return 0, 0, fmt.Errorf("%w: limit must be positive, got %d", domain.ErrInvalidOperand, limit)
	}
	if page == 0 {
		page = domain.DefaultPage
	}
	if limit == 0 {
		limit = domain.DefaultLimit
	}
	return page, limit, nil
}

// Scope оставляет записи, у которых все поля области равны заданным значениям.
// Запись без нужного поля в область не попадает.
func Scope[R domain.Record](records []R, scope map[string]string) []R {
	if len(scope) == 0 {
		return records
	}
	out := make([]R, 0, len(records))
	for _, rec := range records {
		if MatchesScope(rec, scope) {
			out = append(out, rec)
		}
	}
	return out
}

// MatchesScope проверяет одну запись на соответствие области.
func MatchesScope(rec domain.Record, scope map[string]string) bool {
	for field, want := range scope {
		v, err := rec.Field(field)
		if err != nil || !equalsText(v, want) {
			return false
		}
	}
	return true
}

// Filter оставляет записи, удовлетворяющие предикату. Порядок сохраняется.
func Filter[R domain.Record](records []R, p domain.Predicate) ([]R, error) {
	op := domain.Operator(strings.ToLower(string(p.Operator)))
	if op == "" {
		op = domain.OperatorEquals
	}
	if op != domain.OperatorEquals && op != domain.OperatorContains {
		return nil, fmt.Errorf("%w: operator %q", domain.ErrInvalidOperand, p.Operator)
	}

	out := make([]R, 0, len(records))
	for _, rec := range records {
		v, err := rec.Field(p.Field)
		if err != nil {
			return nil, fmt.Errorf("%w: filter field %q", domain.ErrInvalidOperand, p.Field)
		}
		var match bool
		switch op {
		case domain.OperatorEquals:
			match = equalsText(v, p.Value)
		case domain.OperatorContains:
			// contains определён только для текстовых полей; число не приводится к строке.
			if v.Type() == domain.FieldInt {
				return nil, fmt.Errorf("%w: contains is not supported for integer field %q", domain.ErrInvalidOperand, p.Field)
			}
			match = strings.Contains(v.String(), p.Value)
		}
		if match {
			out = append(out, rec)
		}
	}
	return out, nil
}

// equalsText сравнивает значение поля с текстом запроса.
// Для целых полей текст разбирается как число; неразборчивый текст ничему не равен.
func equalsText(v domain.Value, text string) bool {
	if v.Type() == domain.FieldInt {
		n, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
		return err == nil && n == v.Int()
	}
	return v.String() == text
}

// Sort возвращает новый срез, упорядоченный по полю. Сортировка устойчивая.
func Sort[R domain.Record](records []R, field string, dir domain.SortDirection) ([]R, error) {
	if !strings.EqualFold(string(dir), string(domain.SortAsc)) && !strings.EqualFold(string(dir), string(domain.SortDesc)) {
		return nil, fmt.Errorf("%w: sort direction %q", domain.ErrInvalidOperand, dir)
	}
	desc := strings.EqualFold(string(dir), string(domain.SortDesc))

	keys := make([]domain.Value, len(records))
	for i, rec := range records {
		v, err := rec.Field(field)
		if err != nil {
			return nil, fmt.Errorf("%w: sort field %q", domain.ErrInvalidOperand, field)
		}
		keys[i] = v
	}

	idx := make([]int, len(records))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		c := keys[idx[a]].Compare(keys[idx[b]])
		if desc {
			return c > 0
		}
		return c < 0
	})

	out := make([]R, len(records))
	for i, j := range idx {
		out[i] = records[j]
	}
	return out, nil
}

// Paginate возвращает страницу page (с 1) размером limit. Страница за пределами даёт пустой срез.
func Paginate[R domain.Record](records []R, page, limit int) []R {
	if page < 1 || limit < 1 {
		return []R{}
	}
	if page-1 > len(records)/limit {
		return []R{}
	}
	start := (page - 1) * limit
	if start >= len(records) {
		return []R{}
	}
	end := start + limit
	if end > len(records) {
		end = len(records)
	}
	out := make([]R, end-start)
	copy(out, records[start:end])
	return out
}
