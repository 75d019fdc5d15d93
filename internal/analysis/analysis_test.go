package analysis

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexiusacademia/bridgepsci/internal/bridge"
	"github.com/alexiusacademia/bridgepsci/internal/fe"
	"github.com/alexiusacademia/bridgepsci/internal/params"
)

var (
	modelOnce sync.Once
	model     *bridge.Bridge
	modelErr  error
)

func defaultBridge(t *testing.T) *bridge.Bridge {
	t.Helper()
	modelOnce.Do(func() { model, modelErr = bridge.Build(params.Defaults()) })
	require.NoError(t, modelErr)
	return model
}

// probeEngine answers every nodeDisp and eigen probe of a program.
func probeEngine(disp func(stage, node int) float64, eigen []float64) fe.EngineFunc {
	return func(_ context.Context, p *fe.Program) (*fe.Output, error) {
		out := &fe.Output{Probes: map[string][]float64{}}
		for _, s := range p.Steps {
			if s.Kind != fe.Probe {
				continue
			}
			switch s.Cmd.Name {
			case "nodeDisp":
				stage := 0
				if strings.HasPrefix(s.Label, "d1_") {
					stage = 1
				}
				out.Probes[s.Label] = []float64{disp(stage, s.Cmd.Args[0].(int))}
			case "eigen":
				out.Probes[s.Label] = eigen[:s.Cmd.Args[0].(int)]
			}
		}
		return out, nil
	}
}

func TestModalOptionsDefaults(t *testing.T) {
	b := defaultBridge(t)
	o, err := ModalOptionsFromSet(params.Defaults(), b)
	require.NoError(t, err)
	assert.Equal(t, []int{1075, 2075, 3075, 4075, 5075, 6075}, o.CheckNodes)
	assert.Equal(t, [2]int{3075, 4075}, o.LoadNodes)
	assert.Equal(t, -290000.0, o.PointLoad)
	assert.Equal(t, 3, o.NumEigen)

	o, err = ModalOptionsFromSet(params.Defaults().
		With("check_nodes", []int{2075}).
		With("load_nodes", []int{2075, 5075}), b)
	require.NoError(t, err)
	assert.Equal(t, []int{2075}, o.CheckNodes)
	assert.Equal(t, [2]int{2075, 5075}, o.LoadNodes)

	_, err = ModalOptionsFromSet(params.Defaults().With("check_nodes", []int{99}), b)
	assert.ErrorContains(t, err, "node 99")

	_, err = ModalOptionsFromSet(params.Defaults().With("load_nodes", []int{3075}), b)
	var ve *params.ValueError
	assert.ErrorAs(t, err, &ve)
}

func TestModalProgram(t *testing.T) {
	b := defaultBridge(t)
	o, err := ModalOptionsFromSet(params.Defaults(), b)
	require.NoError(t, err)
	p := ModalProgram(b, o)

	assert.Equal(t, len(b.Steps)+3*12+2*6+1, len(p.Steps))
	assert.Equal(t, len(b.Steps), len(b.Program.Steps), "model program must not grow")

	patterns := p.Find("pattern")
	require.Len(t, patterns, 3)
	assert.Equal(t, []any{3075, 0.0, 0.0, 0.0, 0.0, 0.0, 0.0}, patterns[0].Body[0].Args)
	assert.Equal(t, []any{3075, 0.0, 0.0, -145000.0, 0.0, 0.0, 0.0}, patterns[1].Body[0].Args)
	assert.Equal(t, []any{4075, 0.0, 0.0, -145000.0, 0.0, 0.0, 0.0}, patterns[2].Body[0].Args)

	last := p.Steps[len(p.Steps)-1]
	assert.Equal(t, fe.Probe, last.Kind)
	assert.Equal(t, EigenProbe, last.Label)
}

func TestModal(t *testing.T) {
	b := defaultBridge(t)
	o, err := ModalOptionsFromSet(params.Defaults(), b)
	require.NoError(t, err)

	eng := probeEngine(func(stage, node int) float64 {
		if stage == 0 {
			return -0.5
		}
		return -0.5 - float64(node)/1000
	}, []float64{100, 400, 900})

	r, err := Modal(context.Background(), eng, b, o)
	require.NoError(t, err)
	require.Len(t, r.Deflections, 6)
	assert.InDelta(t, -1.075, r.Deflections[0], 1e-12)
	assert.InDelta(t, -6.075, r.Deflections[5], 1e-12)
	assert.Equal(t, []float64{100, 400, 900}, r.Eigenvalues)
	for i, l := range r.Eigenvalues {
		assert.InDelta(t, math.Sqrt(l)/(2*math.Pi), r.Frequencies[i], 1e-12)
	}
}

func TestModalEngineFailure(t *testing.T) {
	b := defaultBridge(t)
	o, err := ModalOptionsFromSet(params.Defaults(), b)
	require.NoError(t, err)
	boom := errors.New("engine crashed")
	eng := fe.EngineFunc(func(context.Context, *fe.Program) (*fe.Output, error) { return nil, boom })
	_, err = Modal(context.Background(), eng, b, o)
	assert.ErrorIs(t, err, boom)
}

func TestModalMissingEigenvalues(t *testing.T) {
	b := defaultBridge(t)
	o, err := ModalOptionsFromSet(params.Defaults(), b)
	require.NoError(t, err)
	eng := probeEngine(func(int, int) float64 { return 0 }, []float64{100, 400, 900})
	o.NumEigen = 2
	eng2 := fe.EngineFunc(func(ctx context.Context, p *fe.Program) (*fe.Output, error) {
		out, _ := eng(ctx, p)
		out.Probes[EigenProbe] = []float64{100}
		return out, nil
	})
	_, err = Modal(context.Background(), eng2, b, o)
	assert.ErrorContains(t, err, "1 eigenvalues, want 2")
}

func TestRayleigh(t *testing.T) {
	a, k := Rayleigh([]float64{100, 400, 900}, 0.015)
	assert.InDelta(t, 0.225, a, 1e-12)
	assert.InDelta(t, 0.00075, k, 1e-12)

	// Fewer than three modes use the last one.
	a, k = Rayleigh([]float64{100, 400}, 0.015)
	assert.InDelta(t, 0.015*2*10*20/30, a, 1e-12)
	assert.InDelta(t, 0.03/30, k, 1e-12)
}

func TestMovingOptions(t *testing.T) {
	b := defaultBridge(t)
	o, err := MovingOptionsFromSet(params.Defaults(), b)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 4}, o.LaneGirders)
	assert.Equal(t, []int{0, 0, 0, 1, 1, 1}, o.Vehicle.Lanes)
	assert.Equal(t, 4600.0, o.Vehicle.Length())

	o, err = MovingOptionsFromSet(params.Defaults().Without("vehicle_lanes"), b)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 0, 1, 1, 1}, o.Vehicle.Lanes)

	_, err = MovingOptionsFromSet(params.Defaults().With("girder3_start_tag", 3002), b)
	assert.ErrorContains(t, err, "3002")

	_, err = MovingOptionsFromSet(params.Defaults().With("vehicle_distances_mm", []float64{0}), b)
	var ve *params.ValueError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "vehicle_distances_mm", ve.Key)

	_, err = MovingOptionsFromSet(params.Defaults().With("vehicle_lanes", []int{0, 0, 0, 1, 1, 2}), b)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "vehicle_lanes", ve.Key)
}

func sumAt(loads map[int][]float64, it int) float64 {
	total := 0.0
	for _, v := range loads {
		total += v[it]
	}
	return total
}

func TestLoadHistoriesConserveAxleLoad(t *testing.T) {
	b := defaultBridge(t)
	o, err := MovingOptionsFromSet(params.Defaults(), b)
	require.NoError(t, err)
	h := LoadHistories(b, o)

	assert.Equal(t, 174, h.Steps)
	require.Len(t, h.Loads, 2)
	assert.Len(t, h.Loads[3], 149)

	// Only the lead axles are on the span at t = 0.
	assert.InDelta(t, 30650, sumAt(h.Loads[3], 0), 1e-6)
	assert.InDelta(t, 30650, sumAt(h.Loads[4], 0), 1e-6)

	// At t = 5 s every axle is on the span.
	lane := 30650.0 + 57350 + 55410
	assert.InDelta(t, lane, sumAt(h.Loads[3], 50), 1e-6)
	assert.InDelta(t, lane, sumAt(h.Loads[4], 50), 1e-6)

	// The vehicle has left before the free-vibration tail.
	assert.Zero(t, sumAt(h.Loads[3], h.Steps-1))

	// A lead axle exactly on a node loads that node only.
	last := b.Girders[2][148]
	assert.InDelta(t, 30650, h.Loads[3][last][0], 1e-6)
}

func TestMovingLoad(t *testing.T) {
	b := defaultBridge(t)
	o, err := MovingOptionsFromSet(params.Defaults(), b)
	require.NoError(t, err)

	var programs []*fe.Program
	eng := fe.EngineFunc(func(_ context.Context, p *fe.Program) (*fe.Output, error) {
		programs = append(programs, p)
		if p.Count("analyze") == 0 {
			return &fe.Output{Probes: map[string][]float64{EigenProbe: {100, 400, 900}}}, nil
		}
		return &fe.Output{Files: map[string][]byte{
			AccelFile(3075): []byte("0.1 9.81\n0.2 -19.62\n"),
			AccelFile(4075): []byte("0.1 0\n0.2 4.905\n"),
		}}, nil
	})

	r, err := MovingLoad(context.Background(), eng, b, o)
	require.NoError(t, err)
	require.Len(t, programs, 2, "eigen run then transient run")
	assert.InDelta(t, 0.225, r.AlphaM, 1e-12)
	assert.InDelta(t, 0.00075, r.BetaK, 1e-12)
	require.Len(t, r.Traces, 2)
	assert.Equal(t, 3, r.Traces[0].Girder)
	assert.Equal(t, []float64{0.1, 0.2}, r.Traces[0].Time)
	assert.Equal(t, []float64{9.81, -19.62}, r.Traces[0].Accel)
	assert.Equal(t, 4075, r.Traces[1].Node)

	p := programs[1]
	assert.Equal(t, p.Count("timeSeries"), p.Count("pattern"))
	assert.Positive(t, p.Count("timeSeries"))
	assert.Equal(t, 2, p.Count("recorder"))
	for _, ts := range p.Find("timeSeries") {
		values := ts.Args[5].([]float64)
		assert.Len(t, values, 174)
	}
	analyze := p.Steps[len(p.Steps)-1]
	assert.Equal(t, fe.Check, analyze.Kind)
	assert.Equal(t, []any{174, 0.1}, analyze.Cmd.Args)

	// Known eigenvalues skip the extraction run.
	programs = nil
	o.Eigenvalues = []float64{100, 400, 900}
	_, err = MovingLoad(context.Background(), eng, b, o)
	require.NoError(t, err)
	assert.Len(t, programs, 1)
}

func TestMovingLoadMissingRecorder(t *testing.T) {
	b := defaultBridge(t)
	o, err := MovingOptionsFromSet(params.Defaults(), b)
	require.NoError(t, err)
	o.Eigenvalues = []float64{100, 400, 900}
	eng := fe.EngineFunc(func(context.Context, *fe.Program) (*fe.Output, error) {
		return &fe.Output{Dir: t.TempDir()}, nil
	})
	_, err = MovingLoad(context.Background(), eng, b, o)
	assert.ErrorContains(t, err, AccelFile(3075))
}

func TestMovingLoadRejectsNegativeEigenvalue(t *testing.T) {
	b := defaultBridge(t)
	o, err := MovingOptionsFromSet(params.Defaults(), b)
	require.NoError(t, err)
	o.Eigenvalues = []float64{-1, 400, 900}
	_, err = MovingLoad(context.Background(), probeEngine(nil, nil), b, o)
	assert.ErrorContains(t, err, "eigenvalue 1")
}
