package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"

	"github.com/qri-io/jsonschema"
	"github.com/tidwall/gjson"

	"github.com/vladislavdragonenkov/costumeshop/internal/domain"
)

// maxBodyBytes ограничивает размер тела запроса.
const maxBodyBytes = 1 << 20

// InputDecoder проверяет JSON-документ записи по JSON Schema вида и превращает его в domain.Input.
// Схема проверяет только типы: обязательность полей решает сервис коллекции.
type InputDecoder struct {
	schema *jsonschema.Schema
}

// NewInputDecoder компилирует схему вида s.
func NewInputDecoder(s domain.Schema) (*InputDecoder, error) {
	raw, err := json.Marshal(recordJSONSchema(s))
	if err != nil {
		return nil, err
	}
	schema := &jsonschema.Schema{}
	if err := json.Unmarshal(raw, schema); err != nil {
		return nil, fmt.Errorf("compile %s body schema: %w", s.Collection, err)
	}
	return &InputDecoder{schema: schema}, nil
}

// recordJSONSchema описывает объект записи. Целые колонки принимают и числа, и строки
// с числом; строковые колонки принимают также числа (идентификаторы-метки времени).
func recordJSONSchema(s domain.Schema) map[string]any {
	props := make(map[string]any, len(s.Columns))
	for _, c := range s.Columns {
		switch c.Type {
		case domain.FieldInt:
			props[c.Name] = map[string]any{"type": []string{"integer", "string", "null"}}
		default:
			props[c.Name] = map[string]any{"type": []string{"string", "number", "null"}}
		}
	}
	return map[string]any{
		"title":      s.Title,
		"type":       "object",
		"properties": props,
	}
}

// Decode читает тело запроса и разбирает его как DecodeBytes.
func (d *InputDecoder) Decode(ctx context.Context, r *http.Request) (domain.Input, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", domain.ErrValidationFailed, err)
	}
	return d.DecodeBytes(ctx, body)
}

// DecodeBytes проверяет документ и возвращает входные значения. Ключи с null пропускаются.
func (d *InputDecoder) DecodeBytes(ctx context.Context, body []byte) (domain.Input, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: request body is not valid JSON", domain.ErrValidationFailed)
	}
	keyErrs, err := d.schema.ValidateBytes(ctx, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidationFailed, err)
	}
	if len(keyErrs) > 0 {
		flaws := make([]string, 0, len(keyErrs))
		for _, ke := range keyErrs {
			flaws = append(flaws, ke.Error())
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrValidationFailed, strings.Join(flaws, "; "))
	}

	in := domain.Input{}
	gjson.ParseBytes(body).ForEach(func(key, value gjson.Result) bool {
		switch value.Type {
		case gjson.Null:
		case gjson.String:
			in[key.String()] = domain.StringValue(value.String())
		case gjson.Number:
			if f := value.Float(); f == math.Trunc(f) && math.Abs(f) < 1<<53 {
				in[key.String()] = domain.IntValue(value.Int())
			} else {
				in[key.String()] = domain.StringValue(value.Raw)
			}
		default:
			in[key.String()] = domain.StringValue(value.Raw)
		}
		return true
	})
	return in, nil
}
