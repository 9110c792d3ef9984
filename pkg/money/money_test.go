package money

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Paise
		wantErr bool
	}{
		{in: "25.50", want: 2550},
		{in: "₹ 1,250", want: 125000},
		{in: "0.005", want: 1},
		{in: "9", want: 900},
		{in: "", wantErr: true},
		{in: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPaise_ApplyRate(t *testing.T) {
	rate := decimal.RequireFromString("0.18")

	assert.Equal(t, Paise(1314), Paise(7300).ApplyRate(rate))
	// 0.18 * 25 = 4.5 paise rounds half away from zero
	assert.Equal(t, Paise(5), Paise(25).ApplyRate(rate))
}

func TestPaise_CheckedTimes(t *testing.T) {
	got, ok := MustParse("25.50").CheckedTimes(4)
	require.True(t, ok)
	assert.Equal(t, MustParse("102"), got)

	_, ok = Paise(1 << 40).CheckedTimes(1 << 30)
	assert.False(t, ok)

	_, ok = Paise(2550).CheckedTimes(-1)
	assert.False(t, ok)

	got, ok = Paise(0).CheckedTimes(1 << 62)
	assert.True(t, ok)
	assert.Zero(t, got)
}

func TestPaise_JSON(t *testing.T) {
	type line struct {
		Price Paise `json:"price"`
	}

	out, err := json.Marshal(line{Price: 2550})
	require.NoError(t, err)
	assert.JSONEq(t, `{"price": 25.50}`, string(out))

	var fromNumber line
	require.NoError(t, json.Unmarshal([]byte(`{"price": 22}`), &fromNumber))
	assert.Equal(t, Paise(2200), fromNumber.Price)

	var fromString line
	require.NoError(t, json.Unmarshal([]byte(`{"price": "₹30.00"}`), &fromString))
	assert.Equal(t, Paise(3000), fromString.Price)

	var bad line
	assert.Error(t, json.Unmarshal([]byte(`{"price": "thirty"}`), &bad))
}

func TestPaise_String(t *testing.T) {
	assert.Equal(t, "₹73.00", Paise(7300).String())
	assert.Equal(t, "0.09", Paise(9).Decimal())
}
