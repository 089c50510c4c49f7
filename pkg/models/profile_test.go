package models

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RMahshie/srtk/pkg/siteresponse"
)

func threeLayers(t *testing.T) []Layer {
	t.Helper()
	rows := [][]float64{
		{10, 300, 200, 1900, 50, 20},
		{10, 500, 300, 1900, 50, 20},
		{0, 1000, 800, 2100, 100, 50},
	}
	layers := make([]Layer, len(rows))
	for i, r := range rows {
		l, err := NewLayer(r...)
		require.NoError(t, err)
		layers[i] = l
	}
	return layers
}

func TestNewProfile(t *testing.T) {
	p, err := NewProfile(threeLayers(t))
	require.NoError(t, err)
	assert.Equal(t, 3, p.Len())

	vs, err := p.Column(Vs)
	require.NoError(t, err)
	assert.Equal(t, []float64{200, 300, 800}, vs)

	hl, err := p.Column(Hl)
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 10, 0}, hl)
}

func TestNewProfile_CopiesInput(t *testing.T) {
	layers := threeLayers(t)
	p, err := NewProfile(layers)
	require.NoError(t, err)

	layers[0] = Layer{}
	vs, err := p.Column(Vs)
	require.NoError(t, err)
	assert.Equal(t, 200.0, vs[0])
}

func TestNewProfile_HalfSpaceThicknessDefaultsToZero(t *testing.T) {
	p, err := NewProfile([]Layer{
		{Thickness: Float(5), Vs: Float(150)},
		{Vs: Float(600)},
	})
	require.NoError(t, err)

	hl, err := p.Column(Hl)
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 0}, hl)
}

func TestNewProfile_Errors(t *testing.T) {
	tests := []struct {
		name   string
		layers []Layer
	}{
		{"empty", nil},
		{"interior layer without thickness", []Layer{{Vs: Float(200)}, {Vs: Float(800)}}},
		{"interior layer of zero thickness", []Layer{{Thickness: Float(0), Vs: Float(200)}, {Vs: Float(800)}}},
		{"negative velocity", []Layer{{Thickness: Float(10), Vs: Float(-200)}, {Vs: Float(800)}}},
		{"zero density", []Layer{{Thickness: Float(0), Density: Float(0)}}},
		{"NaN quality factor", []Layer{{Thickness: Float(0), Qs: Float(math.NaN())}}},
		{"infinite velocity", []Layer{{Thickness: Float(0), Vp: Float(math.Inf(1))}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProfile(tt.layers)
			assert.ErrorIs(t, err, siteresponse.ErrInvalidProfile)
		})
	}
}

func TestProfile_ColumnMissingValue(t *testing.T) {
	p, err := NewProfile([]Layer{
		LayerFromMap(map[ParamKey]float64{Hl: 10, Vs: 200, Qs: 20}),
		LayerFromMap(map[ParamKey]float64{Hl: 0, Vs: 800}),
	})
	require.NoError(t, err)

	_, err = p.Column(Qs)
	assert.ErrorIs(t, err, siteresponse.ErrInvalidProfile)
	assert.False(t, p.HasColumn(Qs))
	assert.True(t, p.HasColumn(Vs))

	_, err = p.Column("Vx")
	assert.ErrorIs(t, err, siteresponse.ErrInvalidProfile)
}

func TestNewLayer(t *testing.T) {
	l, err := NewLayer(10, 300, 200)
	require.NoError(t, err)

	v, ok := l.Get(Vs)
	assert.True(t, ok)
	assert.Equal(t, 200.0, v)

	_, ok = l.Get(Dn)
	assert.False(t, ok)

	_, err = NewLayer(1, 2, 3, 4, 5, 6, 7)
	assert.ErrorIs(t, err, siteresponse.ErrInvalidProfile)
}

func TestLayerFromMap_IgnoresUnknownKeys(t *testing.T) {
	l := LayerFromMap(map[ParamKey]float64{Dn: 1800, "Vx": 1})
	assert.Equal(t, Layer{Density: Float(1800)}, l)
}

func TestParseParamKey(t *testing.T) {
	k, err := ParseParamKey("Qs")
	require.NoError(t, err)
	assert.Equal(t, Qs, k)

	_, err = ParseParamKey("qs")
	assert.ErrorIs(t, err, siteresponse.ErrInvalidProfile)
}

func TestProfile_InsertAndDeleteLayer(t *testing.T) {
	p, err := NewProfile(threeLayers(t))
	require.NoError(t, err)

	soft, err := NewLayer(2, 200, 100, 1700, 20, 10)
	require.NoError(t, err)
	require.NoError(t, p.InsertLayer(0, soft))

	vs, err := p.Column(Vs)
	require.NoError(t, err)
	assert.Equal(t, []float64{100, 200, 300, 800}, vs)

	require.NoError(t, p.DeleteLayer(1))
	vs, err = p.Column(Vs)
	require.NoError(t, err)
	assert.Equal(t, []float64{100, 300, 800}, vs)
}

func TestProfile_InvalidMutationLeavesProfileUnchanged(t *testing.T) {
	p, err := NewProfile(threeLayers(t))
	require.NoError(t, err)

	// The current half-space has zero thickness and cannot become an
	// interior layer.
	err = p.AddLayer(Layer{Vs: Float(1500)})
	assert.ErrorIs(t, err, siteresponse.ErrInvalidProfile)

	err = p.InsertLayer(5, Layer{})
	assert.ErrorIs(t, err, siteresponse.ErrInvalidProfile)

	err = p.DeleteLayer(-1)
	assert.ErrorIs(t, err, siteresponse.ErrInvalidProfile)

	assert.Equal(t, 3, p.Len())
	vs, err := p.Column(Vs)
	require.NoError(t, err)
	assert.Equal(t, []float64{200, 300, 800}, vs)
}

func TestProfile_DeleteLastLayer(t *testing.T) {
	p, err := NewProfile([]Layer{{Vs: Float(500)}})
	require.NoError(t, err)

	err = p.DeleteLayer(0)
	assert.ErrorIs(t, err, siteresponse.ErrInvalidProfile)
	assert.Equal(t, 1, p.Len())
}

func TestProfile_UnmarshalJSONValidates(t *testing.T) {
	var p Profile
	require.NoError(t, json.Unmarshal([]byte(`[{"hl":10,"vs":200},{"vs":800}]`), &p))
	assert.Equal(t, 2, p.Len())

	data, err := json.Marshal(&p)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"hl":10,"vs":200},{"hl":0,"vs":800}]`, string(data))

	err = json.Unmarshal([]byte(`[{"vs":200},{"vs":800}]`), &p)
	assert.ErrorIs(t, err, siteresponse.ErrInvalidProfile)
}
