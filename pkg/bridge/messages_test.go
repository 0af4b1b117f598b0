package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeOpen_IngredientShop(t *testing.T) {
	raw := `{"action":"openIngredientShop","categories":[
		{"label":"Vegetables","icon":"fas fa-carrot","items":[
			{"item":"tomato","label":"Tomato","price":3},
			{"item":"lettuce","label":"Lettuce","price":2}]},
		{"label":"Meat","items":[{"item":"beef","label":"Beef","price":12}]}]}`

	open, err := DecodeOpen([]byte(raw))
	require.NoError(t, err)
	require.NotNil(t, open.Ingredient)
	assert.Equal(t, ActionOpenIngredientShop, open.Action())
	assert.Len(t, open.Ingredient.Categories, 2)
	assert.Equal(t, int64(12), open.Ingredient.Categories[1].Items[0].Price)
}

func TestDecodeOpen_OfflineShop(t *testing.T) {
	raw := `{"action":"openOfflineShop","restaurant":"Burger Shot","items":[
		{"item":"burger","label":"Burger","price":12,"stock":5}]}`

	open, err := DecodeOpen([]byte(raw))
	require.NoError(t, err)
	require.NotNil(t, open.Offline)
	assert.Equal(t, "Burger Shot", open.Offline.Restaurant)
	assert.Equal(t, 5, open.Offline.Items[0].Stock)
	assert.Equal(t, "burger", open.Offline.Items[0].Item)
}

func TestDecodeOpen_Cashier(t *testing.T) {
	open, err := DecodeOpen([]byte(`{"action":"openCashier","restaurant":"Pizza This"}`))
	require.NoError(t, err)
	require.NotNil(t, open.Cashier)
	assert.Equal(t, ActionOpenCashier, open.Action())
}

func TestDecodeOpen_Rejects(t *testing.T) {
	tests := map[string]string{
		"not json":          `{"action":`,
		"missing action":    `{"categories":[]}`,
		"unknown action":    `{"action":"openBossMenu"}`,
		"wrong type":        `{"action":"openOfflineShop","restaurant":"X","items":[{"item":"a","price":"free"}]}`,
		"no restaurant":     `{"action":"openOfflineShop","items":[]}`,
		"negative stock":    `{"action":"openOfflineShop","restaurant":"X","items":[{"item":"a","price":1,"stock":-1}]}`,
		"negative price":    `{"action":"openIngredientShop","categories":[{"label":"c","items":[{"item":"a","price":-5}]}]}`,
		"empty item key":    `{"action":"openIngredientShop","categories":[{"label":"c","items":[{"item":" ","price":5}]}]}`,
		"duplicate across":  `{"action":"openIngredientShop","categories":[{"items":[{"item":"a","price":1}]},{"items":[{"item":"a","price":2}]}]}`,
		"duplicate offline": `{"action":"openOfflineShop","restaurant":"X","items":[{"item":"a","price":1},{"item":"a","price":1}]}`,
	}

	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeOpen([]byte(raw))
			assert.ErrorIs(t, err, ErrMalformedPayload)
		})
	}
}

func TestErrorCategory(t *testing.T) {
	assert.Equal(t, ErrorOutOfStock, ParseErrorCategory("out_of_stock"))
	assert.Equal(t, ErrorUnknown, ParseErrorCategory("server_on_fire"))
	assert.Equal(t, ErrorNone, ParseErrorCategory(""))

	assert.Equal(t, "Not enough money", ErrorInsufficientFunds.Message())
	assert.Equal(t, "An error occurred", ErrorUnknown.Message())
	assert.Equal(t, "inventory_full", ErrorInventoryFull.Error())
}

func TestValidPaymentMethod(t *testing.T) {
	assert.True(t, ValidPaymentMethod("cash"))
	assert.True(t, ValidPaymentMethod("bank"))
	assert.False(t, ValidPaymentMethod("crypto"))
	assert.False(t, ValidPaymentMethod(""))
}
