package rest_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/costumeshop/internal/domain"
	"github.com/vladislavdragonenkov/costumeshop/internal/service/rest"
)

func TestInputDecoderDecodeBytes(t *testing.T) {
	decoder, err := rest.NewInputDecoder(domain.OfferSchema)
	require.NoError(t, err)

	in, err := decoder.DecodeBytes(context.Background(), []byte(`{"SHOP_ID": 3, "TITLE": "Halloween", "DISCOUNT": 12.5, "OFFER_ID": 1730000000000, "DESCRIPTION": null}`))
	require.NoError(t, err)

	assert.Equal(t, domain.IntValue(3), in["SHOP_ID"])
	assert.Equal(t, domain.StringValue("Halloween"), in["TITLE"])
	assert.Equal(t, domain.StringValue("12.5"), in["DISCOUNT"])
	assert.Equal(t, domain.IntValue(1730000000000), in["OFFER_ID"])
	_, present := in["DESCRIPTION"]
	assert.False(t, present, "null keys are skipped")
}

func TestInputDecoderRejects(t *testing.T) {
	decoder, err := rest.NewInputDecoder(domain.ShopSchema)
	require.NoError(t, err)

	for name, body := range map[string]string{
		"not json":     `{"SHOP_NAME":`,
		"not object":   `["Maskarada"]`,
		"object value": `{"SHOP_NAME": {"first": "Mask"}}`,
		"float id":     `{"SHOP_ID": 1.5}`,
	} {
		_, err := decoder.DecodeBytes(context.Background(), []byte(body))
		assert.ErrorIs(t, err, domain.ErrValidationFailed, name)
	}
}
