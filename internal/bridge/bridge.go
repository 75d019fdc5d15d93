package bridge

import (
	"fmt"

	"github.com/alexiusacademia/bridgepsci/internal/fe"
	"github.com/alexiusacademia/bridgepsci/internal/params"
)

// Densities in N·s²/mm⁴ (tonne/mm³).
const (
	concreteDensity = 2.5e-9
	pavementDensity = 2e-9
)

// Tag bases of the node families.
const (
	deckBase     = 100000
	pavementBase = 300000
	barrierBase  = 1010000
	supportBase  = 10000000
	springBase   = 100000000
)

// pavementLift is the height of the pavement mid-plane above the deck
// reference, less half the pavement thickness.
const pavementLift = 220

// GirderNode returns the tag of column j on girder g (1-based).
func GirderNode(g, j int) int { return 1000*g + j + 1 }

// DeckNode returns the tag of column j on deck line i.
func DeckNode(i, j int) int { return deckBase + 1000*i + j + 1 }

// PavementNode returns the tag of column j on pavement line i.
func PavementNode(i, j int) int { return pavementBase + 1000*i + j + 1 }

// BarrierNode returns the tag of column j of the barrier beam.
func BarrierNode(j int) int { return barrierBase + j + 1 }

// DiaphragmNode returns the tag of the node over girder g (1-based) of
// transverse member number (1 start, 2 end, 3+ cross beams).
func DiaphragmNode(number, g int) int { return 100 + 10*number + g }

// Spring is one bearing: a fixed support node and the spring node tied to
// the girder end.
type Spring struct {
	Number  int
	Girder  int
	Support int
	Node    int
	// Stiffness holds kh axial, kh transverse and kv.
	Stiffness [3]float64
}

// Bridge is a built model with the tag layout its analyses need.
type Bridge struct {
	*fe.Model
	Config *Config
	Layout *Layout
	// Girders holds the node tags of every girder line.
	Girders [][]int
	// CrossBeams holds the column index of each cross beam.
	CrossBeams []int
	Springs    []Spring
}

// Build assembles the model described by s.
func Build(s params.Set) (*Bridge, error) {
	c, err := ConfigFromSet(s)
	if err != nil {
		return nil, err
	}
	return BuildConfig(c)
}

// BuildConfig assembles the model for a checked configuration.
func BuildConfig(c *Config) (*Bridge, error) {
	b := &Bridge{Model: fe.NewModel(), Config: c, Layout: NewLayout(c)}
	for _, x := range c.CrossBeams {
		j := b.Layout.Column(x)
		if j < 0 {
			return nil, fmt.Errorf("cross beam at %g mm does not fall on a girder node (spacing %g mm)",
				x, c.Length/float64(c.Division()))
		}
		b.CrossBeams = append(b.CrossBeams, j)
	}

	b.Exec("model", "basic", "-ndm", 3, "-ndf", 6)
	for g := 1; g <= c.Girders; g++ {
		b.girder(g)
	}
	b.deck()
	b.barrier()
	last := b.Layout.Columns() - 1
	b.diaphragm(1, 0, c.Diaphragm1)
	b.diaphragm(2, last, c.Diaphragm2)
	for k, j := range b.CrossBeams {
		b.diaphragm(3+k, j, c.Diaphragm2)
	}
	b.springs()
	b.links()
	b.pavement()

	if err := b.Err(); err != nil {
		return nil, err
	}
	return b, nil
}

// Midspan returns the middle node of girder g.
func (b *Bridge) Midspan(g int) int {
	return GirderNode(g, (b.Layout.Columns()-1)/2)
}

// GirderOf returns the girder number carrying node tag, or 0.
func (b *Bridge) GirderOf(tag int) int {
	for g, line := range b.Girders {
		if tag >= line[0] && tag <= line[len(line)-1] {
			return g + 1
		}
	}
	return 0
}
