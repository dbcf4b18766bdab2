package physics

import (
	"errors"
	"math"
	"sort"
	"testing"

	"github.com/kajencik/3DMolecules/internal/dynamo"
)

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *Params)
		wantErr bool
	}{
		{"defaults", func(p *Params) {}, false},
		{"unbounded speed", func(p *Params) { p.MaxSpeed = math.Inf(1) }, false},
		{"zero gravity", func(p *Params) { p.Gravity = 0 }, false},
		{"negative viscosity", func(p *Params) { p.Viscosity = -0.1 }, true},
		{"nan cohesion", func(p *Params) { p.Cohesion = math.NaN() }, true},
		{"restitution above one", func(p *Params) { p.Restitution = 1.5 }, true},
		{"zero max speed", func(p *Params) { p.MaxSpeed = 0 }, true},
		{"infinite gravity", func(p *Params) { p.Gravity = math.Inf(-1) }, true},
		{"margin eats radius", func(p *Params) { p.Vessel.Margin = 6 }, true},
		{"nan restitution", func(p *Params) { p.Restitution = math.NaN() }, true},
		{"infinite viscosity", func(p *Params) { p.Viscosity = math.Inf(1) }, true},
		{"infinite separation", func(p *Params) { p.Separation = math.Inf(1) }, true},
		{"nan max speed", func(p *Params) { p.MaxSpeed = math.NaN() }, true},
		{"infinite vessel radius", func(p *Params) { p.Vessel.Radius = math.Inf(1) }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mutate(&p)
			err := p.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, dynamo.ErrParameterBounds) {
				t.Errorf("error %v does not wrap ErrParameterBounds", err)
			}
		})
	}
}

func TestParamsWith(t *testing.T) {
	base := DefaultParams()
	for _, name := range ParamNames() {
		next, err := base.With(name, 0.25)
		if err != nil {
			t.Fatalf("With(%q): %v", name, err)
		}
		if got := next.GetParams()[name]; got != 0.25 {
			t.Errorf("With(%q) stored %v", name, got)
		}
	}
	if base != DefaultParams() {
		t.Error("With mutated the receiver")
	}

	if _, err := base.With("warp_factor", 1); !errors.Is(err, dynamo.ErrUnknownParameter) {
		t.Errorf("unknown name error = %v", err)
	}
}

func TestParamNames(t *testing.T) {
	names := ParamNames()
	if len(names) != 14 {
		t.Errorf("got %d names, want 14", len(names))
	}
	if !sort.StringsAreSorted(names) {
		t.Errorf("names not sorted: %v", names)
	}
}
