package domain

// ShopSchema описывает таблицу магазинов.
var ShopSchema = Schema{
	Collection:  "shops",
	Singular:    "shop",
	Title:       "Shop",
	PluralTitle: "Shops",
	Columns: []Column{
		{Name: "SHOP_ID", Type: FieldInt},
		{Name: "SHOP_NAME", Type: FieldString},
		{Name: "CITY", Type: FieldString},
		{Name: "ADDRESS", Type: FieldString},
		{Name: "PHONE", Type: FieldString},
	},
	Identity:    "SHOP_ID",
	DefaultSort: "SHOP_NAME",
}

// Shop — магазин костюмов.
type Shop struct {
	ExtraColumns `json:"-" structs:"-"`

	ID      int64  `json:"SHOP_ID" structs:"SHOP_ID"`
	Name    string `json:"SHOP_NAME" structs:"SHOP_NAME"`
	City    string `json:"CITY" structs:"CITY"`
	Address string `json:"ADDRESS" structs:"ADDRESS"`
	Phone   string `json:"PHONE" structs:"PHONE"`
}

// NewShop возвращает пустую запись магазина.
func NewShop() *Shop { return &Shop{} }

func (s *Shop) Identity() Value { return IntValue(s.ID) }

func (s *Shop) Field(name string) (Value, error) {
	col, ok := ShopSchema.Column(name)
	if !ok {
		if v, ok := s.Extra(name); ok {
			return StringValue(v), nil
		}
		return Value{}, unknownField(name)
	}
	switch col.Name {
	case "SHOP_ID":
		return IntValue(s.ID), nil
	case "SHOP_NAME":
		return StringValue(s.Name), nil
	case "CITY":
		return StringValue(s.City), nil
	case "ADDRESS":
		return StringValue(s.Address), nil
	default:
		return StringValue(s.Phone), nil
	}
}

func (s *Shop) SetField(name string, value Value) error {
	col, v, err := setDeclared(ShopSchema, name, value)
	if err != nil {
		return setExtraFallback(s, name, value, err)
	}
	switch col.Name {
	case "SHOP_ID":
		s.ID = v.Int()
	case "SHOP_NAME":
		s.Name = v.String()
	case "CITY":
		s.City = v.String()
	case "ADDRESS":
		s.Address = v.String()
	case "PHONE":
		s.Phone = v.String()
	}
	return nil
}
