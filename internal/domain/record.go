package domain

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/structs"
	strcase "github.com/stoewer/go-strcase"
)

// Column описывает одну объявленную колонку таблицы.
type Column struct {
	Name string
	Type FieldType
}

// Schema описывает вид записей: имя таблицы, колонки, идентификатор и сортировку по умолчанию.
type Schema struct {
	// Collection — имя таблицы и множественное имя ресурса ("shops").
	Collection string
	// Singular — единственное имя ресурса ("shop").
	Singular string
	// Title — имя вида для сообщений ("Shop").
	Title string
	// PluralTitle — множественное имя для ссылок ("Shops").
	PluralTitle string
	Columns     []Column
	Identity    string
	DefaultSort string
}

// Header возвращает объявленные колонки в порядке схемы.
func (s Schema) Header() []string {
	header := make([]string, 0, len(s.Columns))
	for _, c := range s.Columns {
		header = append(header, c.Name)
	}
	return header
}

// Column ищет объявленную колонку по имени. Имена вида "shopName" приводятся к "SHOP_NAME".
func (s Schema) Column(name string) (Column, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	normalized := NormalizeFieldName(name)
	for _, c := range s.Columns {
		if c.Name == normalized {
			return c, true
		}
	}
	return Column{}, false
}

// IdentityColumn возвращает колонку-идентификатор.
func (s Schema) IdentityColumn() Column {
	c, _ := s.Column(s.Identity)
	return c
}

// RequiredColumns возвращает все колонки, кроме идентификатора.
func (s Schema) RequiredColumns() []Column {
	cols := make([]Column, 0, len(s.Columns))
	for _, c := range s.Columns {
		if c.Name != s.Identity {
			cols = append(cols, c)
		}
	}
	return cols
}

// ValidateComplete проверяет, что во входных данных есть все обязательные поля
// с истинными значениями и что целочисленные поля разбираются как целые.
func (s Schema) ValidateComplete(in Input) error {
	var missing, invalid []string
	for _, c := range s.RequiredColumns() {
		v, ok := in.Get(c.Name)
		if !ok {
			missing = append(missing, c.Name)
			continue
		}
		coerced, err := Coerce(c.Type, v)
		if err != nil {
			invalid = append(invalid, c.Name)
			continue
		}
		if !coerced.Truthy() {
			missing = append(missing, c.Name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %w: %s", ErrValidationFailed, ErrMissingRequired, strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return fmt.Errorf("%w: fields must be integers: %s", ErrValidationFailed, strings.Join(invalid, ", "))
	}
	return nil
}

// NormalizeFieldName приводит имя поля к виду колонок таблицы (UPPER_SNAKE_CASE).
func NormalizeFieldName(name string) string {
	return strcase.UpperSnakeCase(strings.TrimSpace(name))
}

// Record — общая часть всех видов записей.
type Record interface {
	// Identity возвращает значение поля-идентификатора.
	Identity() Value
	// Field возвращает значение объявленной или дополнительной колонки.
	Field(name string) (Value, error)
	// SetField присваивает значение колонке, приводя его к её типу.
	SetField(name string, value Value) error
	Extra(name string) (string, bool)
	SetExtra(name, value string)
	ExtraNames() []string
}

// ExtraColumns хранит колонки таблицы, которых нет в схеме (например OFFER_ID у костюмов).
// Они переживают цикл загрузки и сохранения и попадают в ответы через AsMap, но не в json.Marshal самой записи.
type ExtraColumns struct {
	names  []string
	values map[string]string
}

// Extra возвращает значение дополнительной колонки.
func (e *ExtraColumns) Extra(name string) (string, bool) {
	if e.values == nil {
		return "", false
	}
	v, ok := e.values[name]
	return v, ok
}

// SetExtra задаёт значение дополнительной колонки, запоминая порядок появления.
func (e *ExtraColumns) SetExtra(name, value string) {
	if e.values == nil {
		e.values = make(map[string]string)
	}
	if _, ok := e.values[name]; !ok {
		e.names = append(e.names, name)
	}
	e.values[name] = value
}

// ExtraNames возвращает имена дополнительных колонок в порядке появления.
func (e *ExtraColumns) ExtraNames() []string {
	out := make([]string, len(e.names))
	copy(out, e.names)
	return out
}

// CopyExtras переносит дополнительные колонки из одной записи в другую.
func CopyExtras(dst, src Record) {
	for _, name := range src.ExtraNames() {
		v, _ := src.Extra(name)
		dst.SetExtra(name, v)
	}
}

// AsMap возвращает объявленные поля записи и её дополнительные колонки одной картой.
func AsMap(rec Record) map[string]any {
	out := structs.Map(rec)
	names := rec.ExtraNames()
	sort.Strings(names)
	for _, name := range names {
		if _, declared := out[name]; declared {
			continue
		}
		v, _ := rec.Extra(name)
		out[name] = v
	}
	return out
}

// Input — набор значений полей, пришедших от транспорта.
type Input map[string]Value

// Get ищет значение по точному имени, затем по нормализованному.
func (in Input) Get(name string) (Value, bool) {
	if v, ok := in[name]; ok {
		return v, true
	}
	for key, v := range in {
		if NormalizeFieldName(key) == name {
			return v, true
		}
	}
	return Value{}, false
}

// Keys возвращает ключи в отсортированном порядке.
func (in Input) Keys() []string {
	keys := make([]string, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func unknownField(name string) error {
	return fmt.Errorf("%w: %s", ErrUnknownField, name)
}

// setDeclared разбирает присваивание объявленной колонке: возвращает приведённое значение
// либо ErrUnknownField, если колонки нет в схеме.
func setDeclared(s Schema, name string, value Value) (Column, Value, error) {
	col, ok := s.Column(name)
	if !ok {
		return Column{}, Value{}, unknownField(name)
	}
	coerced, err := Coerce(col.Type, value)
	if err != nil {
		return Column{}, Value{}, fmt.Errorf("%w: %s: %v", ErrValidationFailed, col.Name, err)
	}
	return col, coerced, nil
}
