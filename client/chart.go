package client

import (
	"fmt"

	"github.com/tntchem/devhub/store"
)

// Point is one plotted compound: pKa on the x axis, energy in eV on the y
// axis.
type Point struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Name string  `json:"name"`
}

// ChartPoints projects compounds onto the pKa/energy scatter. Compounds
// missing either value are excluded rather than plotted at zero.
func ChartPoints(compounds []*store.Compound) []Point {
	var points []Point
	for _, c := range compounds {
		if c.Properties.PKa == nil || c.Properties.EnergyEV == nil {
			continue
		}
		points = append(points, Point{
			X:    *c.Properties.PKa,
			Y:    *c.Properties.EnergyEV,
			Name: c.Name,
		})
	}
	return points
}

// TooltipLabel renders the hover label for one point.
func (p Point) TooltipLabel() string {
	return fmt.Sprintf("%s: pKa=%g, Energy=%g eV", p.Name, p.X, p.Y)
}
