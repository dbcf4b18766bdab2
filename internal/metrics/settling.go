package metrics

import (
	"gonum.org/v1/gonum/stat"

	"github.com/kajencik/3DMolecules/internal/dynamo"
)

// MeanHeight tracks the population's mean world z. A falling value that
// levels off indicates the contents have settled.
type MeanHeight struct {
	name    string
	samples []float64
}

func NewMeanHeight() *MeanHeight {
	return &MeanHeight{name: "mean_height"}
}

func (m *MeanHeight) Name() string { return m.name }

func (m *MeanHeight) Observe(ps []dynamo.Particle, d dynamo.Diagnostics, t float64) {
	if len(ps) == 0 {
		return
	}
	zs := make([]float64, len(ps))
	for i := range ps {
		zs[i] = ps[i].Position.Z()
	}
	m.samples = append(m.samples, stat.Mean(zs, nil))
}

func (m *MeanHeight) Value() float64 {
	if len(m.samples) == 0 {
		return 0
	}
	return stat.Mean(m.samples, nil)
}

func (m *MeanHeight) Reset() { m.samples = m.samples[:0] }
