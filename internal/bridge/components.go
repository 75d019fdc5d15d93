package bridge

import "github.com/alexiusacademia/bridgepsci/internal/fe"

// Girder fiber discretisation: fibers along y and z for each of the five
// quad patches, top flange first.
var patchFibers = [5][2]int{{2, 5}, {1, 2}, {3, 1}, {2, 3}, {1, 3}}

const integrationPoints = 5

// patches returns the five quad patches of the girder cross-section as
// vertex lists (z1 y1 ... z4 y4), truncated to whole mm.
func (c *Config) patches() [5][8]int {
	b1, b3, b5 := c.B[0], c.B[2], c.B[4]
	h1, h2, h3, h4, h5 := c.H[0], c.H[1], c.H[2], c.H[3], c.H[4]
	raw := [5][8]float64{
		{-h1, -b1 / 2, 0, -b1 / 2, 0, b1 / 2, -h1, b1 / 2},
		{-h1 - h2, -b3 / 2, -h1, -b1 / 2, -h1, b1 / 2, -h1 - h2, b3 / 2},
		{-h1 - h3 + h4, -b3 / 2, -h1 - h2, -b3 / 2, -h1 - h2, b3 / 2, -h1 - h3 + h4, b3 / 2},
		{-h1 - h3, -b5 / 2, -h1 - h3 + h4, -b3 / 2, -h1 - h3 + h4, b3 / 2, -h1 - h3, b5 / 2},
		{-h1 - h3 - h5, -b5 / 2, -h1 - h3, -b5 / 2, -h1 - h3, b5 / 2, -h1 - h3 - h5, b5 / 2},
	}
	var out [5][8]int
	for i := range raw {
		for k, v := range raw[i] {
			out[i][k] = int(v)
		}
	}
	return out
}

// TendonAt returns the vertical and lateral position of tendon k at
// longitudinal offset x from the girder start. The profile is a parabola
// symmetric about midspan through the intercept there and the coefficient
// value at tendon_horizontal_length from it.
func (c *Config) TendonAt(k int, x float64) (z, y float64) {
	u := x - c.Length/2
	span2 := c.TendonHalfLen * c.TendonHalfLen
	a := (c.ZCoef[k] - c.ZIntercept[k]) / span2
	b := (c.YCoef[k] - c.YIntercept[k]) / span2
	return a*u*u + c.ZIntercept[k] - c.GirderDepth, b*u*u + c.YIntercept[k]
}

func (b *Bridge) girder(g int) {
	c, l := b.Config, b.Layout
	concrete, strand, prestressed, transf := 1000+g, 10+g, 100+g, 1000+g
	ec := c.EGirder[g-1]

	b.Exec("uniaxialMaterial", "Elastic", concrete, ec)
	b.Exec("uniaxialMaterial", "Steel01", strand, 1364.0, c.Ep, 0.0236)
	b.Exec("uniaxialMaterial", "InitStressMaterial", prestressed, strand, c.PE)
	b.Exec("geomTransf", "Linear", transf, 0, 0, 1)

	y := l.GirderY[g-1]
	n := l.Columns()
	tags := make([]int, n)
	mass := lump(n, concreteDensity*c.Ag*l.Stations[1]/2)
	for j := range tags {
		tags[j] = GirderNode(g, j)
		b.Node(tags[j], l.Skewed(y, j), y*1000, -c.Centroid)
	}
	for j, tag := range tags {
		b.Mass(tag, 0, 0, mass[j])
	}

	j3 := (c.B[0]*cube(c.H[0]) + c.B[2]*cube(c.H[2]) + c.B[4]*cube(c.H[4])) / 3
	gj := ec / 2 / 1.17 * j3
	patches := c.patches()
	for j, tag := range tags {
		var body []fe.Command
		for p, v := range patches {
			args := []any{"quad", concrete, patchFibers[p][0], patchFibers[p][1]}
			for _, x := range v {
				args = append(args, x)
			}
			body = append(body, fe.Cmd("patch", args...))
			for k := 0; k < c.Tendons; k++ {
				z, ty := c.TendonAt(k, l.Stations[j])
				if float64(v[0]) < z && z < float64(v[2]) && c.Ap[k] > 0 {
					body = append(body, fe.Cmd("layer", "straight", prestressed, 1, c.Ap[k], z, ty, z, ty))
				}
			}
		}
		b.Block("section", []any{"Fiber", tag, "-GJ", gj}, body...)
	}
	for j := 0; j < n-1; j++ {
		b.Exec("beamIntegration", "Legendre", tags[j], tags[j], integrationPoints)
		b.Exec("element", "dispBeamColumn", tags[j], tags[j], tags[j+1], transf, tags[j])
	}
	b.Girders = append(b.Girders, tags)
}

func cube(x float64) float64 { return x * x * x }

// plates meshes a shell layer over every deck line. section gives the
// section tag and thickness of zone k, z the elevation of line i in zone k.
func (b *Bridge) plates(node func(i, j int) int, z func(k int) float64,
	section func(k int) (tag int, t float64), density float64) {
	l := b.Layout
	n := l.Columns()
	zones := len(l.Zones) - 1
	for k := 0; k < zones; k++ {
		hi := l.Zones[k+1]
		if k == zones-1 {
			hi++
		}
		for i := l.Zones[k]; i < hi; i++ {
			for j := 0; j < n; j++ {
				b.Node(node(i, j), l.Skewed(l.Lines[i], j), l.Lines[i]*1000, z(k))
			}
		}
	}

	mass := make([][]float64, len(l.Lines))
	for i := range mass {
		mass[i] = make([]float64, n)
	}
	for k := 0; k < zones; k++ {
		sec, t := section(k)
		for i := l.Zones[k]; i < l.Zones[k+1]; i++ {
			dy := (l.Lines[i+1] - l.Lines[i]) * 1000
			for j := 1; j < n; j++ {
				b.Exec("element", "ShellNLDKGQ", node(i, j-1),
					node(i, j-1), node(i, j), node(i+1, j), node(i+1, j-1), sec)
				q := t * (l.Stations[j] - l.Stations[j-1]) * dy * density / 4
				mass[i][j-1] += q
				mass[i][j] += q
				mass[i+1][j] += q
				mass[i+1][j-1] += q
			}
		}
	}
	for i := range mass {
		for j, m := range mass[i] {
			b.Mass(node(i, j), 0, 0, m)
		}
	}
}

func (b *Bridge) deck() {
	c := b.Config
	zones := len(b.Layout.Zones) - 1
	for k := 0; k < zones; k++ {
		b.Exec("section", "ElasticMembranePlateSection", 101+k, c.EDeck[k], 0.17, c.deckThickness(k), 0)
	}
	b.plates(DeckNode,
		func(k int) float64 { return c.Thickness[k] / 2 },
		func(k int) (int, float64) { return 101 + k, c.deckThickness(k) },
		concreteDensity)
}

// deckThickness is the mean of the thickness stations bounding zone k.
func (c *Config) deckThickness(k int) float64 {
	return (c.Thickness[k] + c.Thickness[k+1]) / 2
}

func (b *Bridge) pavement() {
	c := b.Config
	zones := len(b.Layout.Zones) - 1
	for k := 0; k < zones; k++ {
		b.Exec("section", "ElasticMembranePlateSection", 301+k, c.PaveE, 0.1, c.PaveThick, 0)
	}
	b.plates(PavementNode,
		func(int) float64 { return c.PaveThick/2 + pavementLift },
		func(k int) (int, float64) { return 301 + k, c.PaveThick },
		pavementDensity)
	for i := range b.Layout.Lines {
		for j := 0; j < b.Layout.Columns(); j++ {
			b.Exec("rigidLink", "beam", DeckNode(i, j), PavementNode(i, j))
		}
	}
}

func (b *Bridge) barrier() {
	c, l := b.Config, b.Layout
	const transf, section = 11, 21
	w, h := c.BarrierWidth*1000, c.BarrierHeight*1000
	y := l.Lines[0]*1000 + w/2
	area := w * h
	n := l.Columns()
	mass := lump(n, concreteDensity*area*l.Stations[1]/2)
	for j := 0; j < n; j++ {
		b.Node(BarrierNode(j), -y*l.Tan+l.Stations[j], y, h/2+c.Thickness[0]+c.PaveThick)
	}
	for j := 0; j < n; j++ {
		b.Mass(BarrierNode(j), 0, 0, mass[j])
	}
	b.Exec("geomTransf", "Linear", transf, 0, 0, 1)
	iz, iy := w*cube(h)/12, h*cube(w)/12
	b.Exec("section", "Elastic", section, c.BarrierE, area, iz, iy, c.BarrierE/2/1.2, iz+iy)
	for j := 0; j < n-1; j++ {
		b.Exec("beamIntegration", "Legendre", BarrierNode(j), section, integrationPoints)
		b.Exec("element", "dispBeamColumn", BarrierNode(j), BarrierNode(j), BarrierNode(j+1), transf, BarrierNode(j))
	}
}

// diaphragm places transverse member number across every girder at column
// j. Segment i spans girders i and i+1 and uses ec[i-1].
func (b *Bridge) diaphragm(number, j int, ec []float64) {
	c, l := b.Config, b.Layout
	h, t := c.DiaphragmHeight, c.DiaphragmThickness
	length := c.Spacing / l.Cos * 1000
	area := h * t
	iz, iy := t*cube(h)/12, h*cube(t)/12

	mass := lump(c.Girders, concreteDensity*area*length/2)
	for g := 1; g <= c.Girders; g++ {
		at := b.MustCoord(GirderNode(g, j))
		b.Node(DiaphragmNode(number, g), at.X, at.Y, -h/2)
	}
	for g := 1; g <= c.Girders; g++ {
		b.Mass(DiaphragmNode(number, g), 0, 0, mass[g-1])
	}
	for g := 1; g < c.Girders; g++ {
		tag := DiaphragmNode(number, g)
		b.Exec("geomTransf", "Linear", tag, 0, -l.Sin, l.Cos)
		b.Exec("section", "Elastic", tag, ec[g-1], area, iz, iy, ec[g-1]/2/1.17, iz+iy)
		b.Exec("beamIntegration", "Legendre", tag, tag, integrationPoints)
		b.Exec("element", "dispBeamColumn", tag, tag, tag+1, tag, tag)
	}
}

// springs supports both ends of every girder on six zero-length springs.
// Bearing rows 0..n-1 are the start supports, n..2n-1 the end supports.
func (b *Bridge) springs() {
	c := b.Config
	last := b.Layout.Columns() - 1
	for g := 1; g <= c.Girders; g++ {
		b.spring(2*g-1, g, GirderNode(g, 0), c.Bearings[g-1])
		b.spring(2*g, g, GirderNode(g, last), c.Bearings[c.Girders+g-1])
	}
}

func (b *Bridge) spring(s, g, at int, row []float64) {
	sp := Spring{Number: s, Girder: g, Support: supportBase + s, Node: springBase + s}
	copy(sp.Stiffness[:], row)
	mats := [6]int{s*100 - s, s*1000 - s, s * 10000, s*100000 + s, s*1000000 + s, s*10000000 + s}
	b.Exec("uniaxialMaterial", "Elastic", mats[2], sp.Stiffness[2])
	b.Exec("uniaxialMaterial", "Elastic", mats[0], sp.Stiffness[0])
	b.Exec("uniaxialMaterial", "Elastic", mats[1], sp.Stiffness[1])
	for d := 3; d < 6; d++ {
		b.Exec("uniaxialMaterial", "Elastic", mats[d], 0.0)
	}
	p := b.MustCoord(at)
	z := -float64(int(b.Config.GirderDepth))
	b.Node(sp.Support, p.X, p.Y, z)
	b.Node(sp.Node, p.X, p.Y, z)
	for d := 0; d < 6; d++ {
		b.Exec("element", "zeroLength", sp.Support+100*d, sp.Node, sp.Support, "-mat", mats[d], "-dir", d+1)
	}
	b.Springs = append(b.Springs, sp)
}

// links ties the girders to the deck, the barrier to the first deck line,
// the bearings to the girder ends and the girders to the diaphragms.
func (b *Bridge) links() {
	c, l := b.Config, b.Layout
	for g, tags := range b.Girders {
		for j, tag := range tags {
			b.Exec("rigidLink", "beam", tag, DeckNode(l.GirderLines[g], j))
		}
	}
	for j := 0; j < l.Columns(); j++ {
		b.Exec("rigidLink", "beam", DeckNode(0, j), BarrierNode(j))
	}
	for _, sp := range b.Springs {
		b.Exec("fix", sp.Support, 1, 1, 1, 1, 1, 1)
		tags := b.Girders[sp.Girder-1]
		end := tags[0]
		if sp.Number%2 == 0 {
			end = tags[len(tags)-1]
		}
		b.Exec("rigidLink", "beam", end, sp.Node)
	}
	for g := 1; g <= c.Girders; g++ {
		tags := b.Girders[g-1]
		b.Exec("rigidLink", "beam", DiaphragmNode(1, g), tags[0])
		b.Exec("rigidLink", "beam", DiaphragmNode(2, g), tags[len(tags)-1])
		for k, j := range b.CrossBeams {
			b.Exec("rigidLink", "beam", tags[j], DiaphragmNode(3+k, g))
		}
	}
}
