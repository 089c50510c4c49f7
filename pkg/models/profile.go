package models

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"

	"github.com/RMahshie/srtk/pkg/siteresponse"
)

// ParamKey names a layer parameter column.
type ParamKey string

const (
	Hl ParamKey = "Hl" // thickness, m
	Vp ParamKey = "Vp" // P-wave velocity, m/s
	Vs ParamKey = "Vs" // S-wave velocity, m/s
	Dn ParamKey = "Dn" // density, kg/m³
	Qp ParamKey = "Qp" // P-wave quality factor
	Qs ParamKey = "Qs" // S-wave quality factor
)

// ParamKeys is the fixed column order of list-based layer input.
var ParamKeys = []ParamKey{Hl, Vp, Vs, Dn, Qp, Qs}

// ParseParamKey returns the key matching s exactly.
func ParseParamKey(s string) (ParamKey, error) {
	for _, k := range ParamKeys {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: unknown parameter %q", siteresponse.ErrInvalidProfile, s)
}

// Layer is one horizontal soil layer. Absent parameters are nil.
type Layer struct {
	Thickness *float64 `json:"hl,omitempty" validate:"omitempty,gte=0" doc:"Layer thickness in m (0 for the half-space)"`
	Vp        *float64 `json:"vp,omitempty" validate:"omitempty,gt=0" doc:"P-wave velocity in m/s"`
	Vs        *float64 `json:"vs,omitempty" validate:"omitempty,gt=0" doc:"S-wave velocity in m/s"`
	Density   *float64 `json:"dn,omitempty" validate:"omitempty,gt=0" doc:"Density in kg/m3"`
	Qp        *float64 `json:"qp,omitempty" validate:"omitempty,gt=0" doc:"P-wave quality factor"`
	Qs        *float64 `json:"qs,omitempty" validate:"omitempty,gt=0" doc:"S-wave quality factor"`
}

// Float returns a pointer to v, for building layers inline.
func Float(v float64) *float64 {
	return &v
}

// NewLayer builds a layer from values ordered as ParamKeys. Missing trailing
// values are left absent.
func NewLayer(values ...float64) (Layer, error) {
	if len(values) > len(ParamKeys) {
		return Layer{}, fmt.Errorf("%w: %d values for %d parameters", siteresponse.ErrInvalidProfile, len(values), len(ParamKeys))
	}
	var l Layer
	for i, v := range values {
		*l.field(ParamKeys[i]) = Float(v)
	}
	return l, nil
}

// LayerFromMap builds a layer from a key/value mapping. Keys not present
// stay absent.
func LayerFromMap(m map[ParamKey]float64) Layer {
	var l Layer
	for k, v := range m {
		if f := l.field(k); f != nil {
			*f = Float(v)
		}
	}
	return l
}

// Get returns the value of a parameter and whether it is present.
func (l Layer) Get(key ParamKey) (float64, bool) {
	f := l.field(key)
	if f == nil || *f == nil {
		return 0, false
	}
	return **f, true
}

func (l *Layer) field(key ParamKey) **float64 {
	switch key {
	case Hl:
		return &l.Thickness
	case Vp:
		return &l.Vp
	case Vs:
		return &l.Vs
	case Dn:
		return &l.Density
	case Qp:
		return &l.Qp
	case Qs:
		return &l.Qs
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Profile is an ordered, validated stack of layers from the surface down.
// The last layer is the half-space; its thickness is ignored.
type Profile struct {
	layers []Layer
}

// NewProfile validates layers and returns a profile holding a copy of them.
func NewProfile(layers []Layer) (*Profile, error) {
	ls := make([]Layer, len(layers))
	copy(ls, layers)
	if err := validateLayers(ls); err != nil {
		return nil, err
	}
	return &Profile{layers: ls}, nil
}

func validateLayers(layers []Layer) error {
	if len(layers) == 0 {
		return fmt.Errorf("%w: empty layer stack", siteresponse.ErrInvalidProfile)
	}

	last := len(layers) - 1
	for i := range layers {
		l := &layers[i]
		if err := validate.Struct(l); err != nil {
			return fmt.Errorf("%w: layer %d: %v", siteresponse.ErrInvalidProfile, i, err)
		}
		for _, k := range ParamKeys {
			if v, ok := l.Get(k); ok && (math.IsInf(v, 0) || math.IsNaN(v)) {
				return fmt.Errorf("%w: layer %d %s is %v", siteresponse.ErrInvalidProfile, i, k, v)
			}
		}

		if i == last {
			if l.Thickness == nil {
				l.Thickness = Float(0)
			}
			continue
		}
		if l.Thickness == nil || *l.Thickness <= 0 {
			return fmt.Errorf("%w: layer %d needs a positive thickness", siteresponse.ErrInvalidProfile, i)
		}
	}
	return nil
}

// Len returns the number of layers, half-space included.
func (p *Profile) Len() int {
	return len(p.layers)
}

// Layers returns a copy of the layer stack.
func (p *Profile) Layers() []Layer {
	out := make([]Layer, len(p.layers))
	copy(out, p.layers)
	return out
}

// Column returns one parameter for every layer, top to bottom.
func (p *Profile) Column(key ParamKey) ([]float64, error) {
	if (&Layer{}).field(key) == nil {
		return nil, fmt.Errorf("%w: unknown parameter %q", siteresponse.ErrInvalidProfile, key)
	}

	out := make([]float64, len(p.layers))
	for i, l := range p.layers {
		v, ok := l.Get(key)
		if !ok {
			return nil, fmt.Errorf("%w: layer %d has no %s", siteresponse.ErrInvalidProfile, i, key)
		}
		out[i] = v
	}
	return out, nil
}

// HasColumn reports whether every layer carries key.
func (p *Profile) HasColumn(key ParamKey) bool {
	_, err := p.Column(key)
	return err == nil
}

// AddLayer appends l at the bottom of the stack, where it becomes the new
// half-space.
func (p *Profile) AddLayer(l Layer) error {
	return p.InsertLayer(len(p.layers), l)
}

// InsertLayer inserts l before index i. The profile is left unchanged when
// the result would be invalid.
func (p *Profile) InsertLayer(i int, l Layer) error {
	if i < 0 || i > len(p.layers) {
		return fmt.Errorf("%w: layer index %d out of range", siteresponse.ErrInvalidProfile, i)
	}

	next := make([]Layer, 0, len(p.layers)+1)
	next = append(next, p.layers[:i]...)
	next = append(next, l)
	next = append(next, p.layers[i:]...)
	return p.replace(next)
}

// DeleteLayer removes the layer at index i. A profile keeps at least one
// layer.
func (p *Profile) DeleteLayer(i int) error {
	if i < 0 || i >= len(p.layers) {
		return fmt.Errorf("%w: layer index %d out of range", siteresponse.ErrInvalidProfile, i)
	}

	next := make([]Layer, 0, len(p.layers)-1)
	next = append(next, p.layers[:i]...)
	next = append(next, p.layers[i+1:]...)
	return p.replace(next)
}

func (p *Profile) replace(layers []Layer) error {
	if err := validateLayers(layers); err != nil {
		return err
	}
	p.layers = layers
	return nil
}

// MarshalJSON encodes the profile as its layer array.
func (p *Profile) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.layers)
}

// UnmarshalJSON decodes and validates a layer array.
func (p *Profile) UnmarshalJSON(data []byte) error {
	var layers []Layer
	if err := json.Unmarshal(data, &layers); err != nil {
		return err
	}
	if err := validateLayers(layers); err != nil {
		return err
	}
	p.layers = layers
	return nil
}
