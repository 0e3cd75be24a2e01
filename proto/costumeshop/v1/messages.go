package costumeshopv1

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/types/known/structpb"
)

// Filter — фильтр запроса списка.
type Filter struct {
	Field    string
	Operator string
	Value    string
}

// ListRequest — типизированная форма запроса GetShops/GetCostumes/GetOffers.
type ListRequest struct {
	Filter        *Filter
	SortField     string
	SortDirection string
	Page          int
	Limit         int
}

// Struct кодирует запрос в Struct. Нулевые поля не передаются.
func (r ListRequest) Struct() (*structpb.Struct, error) {
	fields := map[string]any{}
	if r.Filter != nil {
		fields["filter"] = map[string]any{
			"field":    r.Filter.Field,
			"operator": r.Filter.Operator,
			"value":    r.Filter.Value,
		}
	}
	if r.SortField != "" {
		fields["sortField"] = r.SortField
	}
	if r.SortDirection != "" {
		fields["sortDirection"] = r.SortDirection
	}
	if r.Page != 0 {
		fields["page"] = r.Page
	}
	if r.Limit != 0 {
		fields["limit"] = r.Limit
	}
	return structpb.NewStruct(fields)
}

// ParseListRequest разбирает Struct запроса списка. Отсутствующий запрос равен пустому.
func ParseListRequest(in *structpb.Struct) (ListRequest, error) {
	var req ListRequest
	fields := in.GetFields()

	if v, ok := fields["filter"]; ok {
		if _, isNull := v.GetKind().(*structpb.Value_NullValue); !isNull {
			filter := v.GetStructValue()
			if filter == nil {
				return ListRequest{}, fmt.Errorf("filter must be an object")
			}
			f := filter.GetFields()
			req.Filter = &Filter{
				Field:    f["field"].GetStringValue(),
				Operator: f["operator"].GetStringValue(),
				Value:    textOf(f["value"]),
			}
		}
	}
	req.SortField = fields["sortField"].GetStringValue()
	req.SortDirection = fields["sortDirection"].GetStringValue()

	var err error
	if req.Page, err = intOf(fields, "page"); err != nil {
		return ListRequest{}, err
	}
	if req.Limit, err = intOf(fields, "limit"); err != nil {
		return ListRequest{}, err
	}
	return req, nil
}

// IDRequest собирает запрос записи по идентификатору ({"SHOP_ID": 1}).
func IDRequest(field string, id any) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{field: id})
}

// IDFromRequest возвращает идентификатор из запроса в текстовом виде.
func IDFromRequest(in *structpb.Struct, field string) (string, bool) {
	v, ok := in.GetFields()[field]
	if !ok {
		return "", false
	}
	switch v.GetKind().(type) {
	case *structpb.Value_StringValue, *structpb.Value_NumberValue:
		return textOf(v), true
	default:
		return "", false
	}
}

// textOf возвращает строку или целое число значения в текстовом виде.
func textOf(v *structpb.Value) string {
	if n, ok := v.GetKind().(*structpb.Value_NumberValue); ok {
		if n.NumberValue == math.Trunc(n.NumberValue) {
			return fmt.Sprintf("%.0f", n.NumberValue)
		}
		return fmt.Sprint(n.NumberValue)
	}
	return v.GetStringValue()
}

func intOf(fields map[string]*structpb.Value, name string) (int, error) {
	v, ok := fields[name]
	if !ok {
		return 0, nil
	}
	switch kind := v.GetKind().(type) {
	case *structpb.Value_NullValue:
		return 0, nil
	case *structpb.Value_NumberValue:
		if kind.NumberValue != math.Trunc(kind.NumberValue) {
			return 0, fmt.Errorf("%s must be an integer", name)
		}
		return int(kind.NumberValue), nil
	default:
		return 0, fmt.Errorf("%s must be a number", name)
	}
}
