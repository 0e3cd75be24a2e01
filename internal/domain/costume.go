package domain

// CostumeSchema описывает таблицу костюмов.
var CostumeSchema = Schema{
	Collection:  "costumes",
	Singular:    "costume",
	Title:       "Costume",
	PluralTitle: "Costumes",
	Columns: []Column{
		{Name: "COSTUME_ID", Type: FieldString},
		{Name: "COSTUME_NAME", Type: FieldString},
		{Name: "TYPE", Type: FieldString},
		{Name: "SIZE", Type: FieldString},
		{Name: "AVAILABLE", Type: FieldInt},
		{Name: "SHOP_ID", Type: FieldInt},
	},
	Identity:    "COSTUME_ID",
	DefaultSort: "COSTUME_NAME",
}

// Costume — костюм в ассортименте магазина.
// AVAILABLE хранится как целое: пустая ячейка читается как 0.
type Costume struct {
	ExtraColumns `json:"-" structs:"-"`

	ID        string `json:"COSTUME_ID" structs:"COSTUME_ID"`
	Name      string `json:"COSTUME_NAME" structs:"COSTUME_NAME"`
	Type      string `json:"TYPE" structs:"TYPE"`
	Size      string `json:"SIZE" structs:"SIZE"`
	Available int64  `json:"AVAILABLE" structs:"AVAILABLE"`
	ShopID    int64  `json:"SHOP_ID" structs:"SHOP_ID"`
}

func NewCostume() *Costume { return &Costume{} }

func (c *Costume) Identity() Value { return StringValue(c.ID) }

func (c *Costume) Field(name string) (Value, error) {
	col, ok := CostumeSchema.Column(name)
	if !ok {
		if v, ok := c.Extra(name); ok {
			return StringValue(v), nil
		}
		return Value{}, unknownField(name)
	}
	switch col.Name {
	case "COSTUME_ID":
		return StringValue(c.ID), nil
	case "COSTUME_NAME":
		return StringValue(c.Name), nil
	case "TYPE":
		return StringValue(c.Type), nil
	case "SIZE":
		return StringValue(c.Size), nil
	case "AVAILABLE":
		return IntValue(c.Available), nil
	default:
		return IntValue(c.ShopID), nil
	}
}

func (c *Costume) SetField(name string, value Value) error {
	col, v, err := setDeclared(CostumeSchema, name, value)
	if err != nil {
		return setExtraFallback(c, name, value, err)
	}
	switch col.Name {
	case "COSTUME_ID":
		c.ID = v.String()
	case "COSTUME_NAME":
		c.Name = v.String()
	case "TYPE":
		c.Type = v.String()
	case "SIZE":
		c.Size = v.String()
	case "AVAILABLE":
		c.Available = v.Int()
	case "SHOP_ID":
		c.ShopID = v.Int()
	}
	return nil
}
