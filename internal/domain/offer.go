package domain

import "errors"

// OfferSchema описывает таблицу акций.
var OfferSchema = Schema{
	Collection:  "offers",
	Singular:    "offer",
	Title:       "Offer",
	PluralTitle: "Offers",
	Columns: []Column{
		{Name: "OFFER_ID", Type: FieldString},
		{Name: "SHOP_ID", Type: FieldInt},
		{Name: "DISCOUNT", Type: FieldString},
		{Name: "TITLE", Type: FieldString},
		{Name: "DESCRIPTION", Type: FieldString},
	},
	Identity:    "OFFER_ID",
	DefaultSort: "TITLE",
}

// Offer — акция магазина. DISCOUNT хранится как есть, например "20%".
type Offer struct {
	ExtraColumns `json:"-" structs:"-"`

	ID          string `json:"OFFER_ID" structs:"OFFER_ID"`
	ShopID      int64  `json:"SHOP_ID" structs:"SHOP_ID"`
	Discount    string `json:"DISCOUNT" structs:"DISCOUNT"`
	Title       string `json:"TITLE" structs:"TITLE"`
	Description string `json:"DESCRIPTION" structs:"DESCRIPTION"`
}

func NewOffer() *Offer { return &Offer{} }

func (o *Offer) Identity() Value { return StringValue(o.ID) }

func (o *Offer) Field(name string) (Value, error) {
	col, ok := OfferSchema.Column(name)
	if !ok {
		if v, ok := o.Extra(name); ok {
			return StringValue(v), nil
		}
		return Value{}, unknownField(name)
	}
	switch col.Name {
	case "OFFER_ID":
		return StringValue(o.ID), nil
	case "SHOP_ID":
		return IntValue(o.ShopID), nil
	case "DISCOUNT":
		return StringValue(o.Discount), nil
	case "TITLE":
		return StringValue(o.Title), nil
	default:
		return StringValue(o.Description), nil
	}
}

func (o *Offer) SetField(name string, value Value) error {
	col, v, err := setDeclared(OfferSchema, name, value)
	if err != nil {
		return setExtraFallback(o, name, value, err)
	}
	switch col.Name {
	case "OFFER_ID":
		o.ID = v.String()
	case "SHOP_ID":
		o.ShopID = v.Int()
	case "DISCOUNT":
		o.Discount = v.String()
	case "TITLE":
		o.Title = v.String()
	case "DESCRIPTION":
		o.Description = v.String()
	}
	return nil
}

// setExtraFallback позволяет менять уже существующие дополнительные колонки.
// Новые колонки через SetField не создаются.
func setExtraFallback(rec Record, name string, value Value, cause error) error {
	if !errors.Is(cause, ErrUnknownField) {
		return cause
	}
	if _, ok := rec.Extra(name); !ok {
		return cause
	}
	rec.SetExtra(name, value.String())
	return nil
}
