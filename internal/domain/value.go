package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// FieldType задаёт тип колонки записи.
type FieldType int

const (
	// FieldString — текстовая колонка.
	FieldString FieldType = iota
	// FieldInt — целочисленная колонка.
	FieldInt
)

func (t FieldType) String() string {
	switch t {
	case FieldInt:
		return "integer"
	default:
		return "string"
	}
}

// Value — значение поля записи: либо целое, либо строка.
// Нулевое значение равно пустой строке.
type Value struct {
	typ FieldType
	str string
	num int64
}

// StringValue создаёт текстовое значение.
func StringValue(s string) Value {
	return Value{typ: FieldString, str: s}
}

// IntValue создаёт целочисленное значение.
func IntValue(n int64) Value {
	return Value{typ: FieldInt, num: n}
}

// ParseValue разбирает текст ячейки в значение указанного типа.
// Пустая ячейка целочисленной колонки читается как 0.
func ParseValue(t FieldType, text string) (Value, error) {
	if t != FieldInt {
		return StringValue(text), nil
	}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return IntValue(0), nil
	}
	n, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return Value{}, fmt.Errorf("parse %q as integer: %w", text, err)
	}
	return IntValue(n), nil
}

// Coerce приводит значение к типу колонки.
func Coerce(t FieldType, v Value) (Value, error) {
	if v.typ == t {
		return v, nil
	}
	if t == FieldInt {
		return ParseValue(FieldInt, v.str)
	}
	return StringValue(v.String()), nil
}

// Type возвращает тип значения.
func (v Value) Type() FieldType { return v.typ }

// Int возвращает целое; для строк всегда 0.
func (v Value) Int() int64 { return v.num }

// String возвращает текстовую форму значения, в которой оно хранится в таблице.
func (v Value) String() string {
	if v.typ == FieldInt {
		return strconv.FormatInt(v.num, 10)
	}
	return v.str
}

// Truthy — непустая строка или ненулевое целое.
func (v Value) Truthy() bool {
	if v.typ == FieldInt {
		return v.num != 0
	}
	return v.str != ""
}

// Interface возвращает значение как int64 или string.
func (v Value) Interface() any {
	if v.typ == FieldInt {
		return v.num
	}
	return v.str
}

// Compare выполняет трёхстороннее сравнение: целые сравниваются численно,
// остальное по текстовой форме.
func (v Value) Compare(other Value) int {
	if v.typ == FieldInt && other.typ == FieldInt {
		switch {
		case v.num < other.num:
			return -1
		case v.num > other.num:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(v.String(), other.String())
}

// Equal сравнивает значения по правилам Compare.
func (v Value) Equal(other Value) bool {
	return v.Compare(other) == 0
}
