package audiounit

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kqcore/korender/internal/connections"
	"github.com/kqcore/korender/internal/device"
)

type stubImpl struct{}

func (stubImpl) TypeTag() string { return "stub" }

func TestBuildNestedGraphBypass(t *testing.T) {
	au := New(KindEffect)
	au.In.SendPorts = device.PortSet(0).With(0)
	au.Out.RecvPorts = device.PortSet(0).With(0)

	err := au.Build([]connections.Spec{{SendName: "in", SendPort: 0, RecvName: "out", RecvPort: 0}})
	assert.NoError(t, err)

	var order []string
	au.Graph.Traverse(func(n *connections.Node) { order = append(order, n.Name) })
	assert.Equal(t, []string{"in", "out"}, order)
}

func TestResolveStreamLooksUpProcTable(t *testing.T) {
	au := New(KindEffect)
	d := device.New(1, stubImpl{})
	au.AddProcessor("lfo1", d)
	au.StreamMap = []StreamMapEntry{{Name: "wobble", Proc: "lfo1"}}

	got, ok := au.ResolveStream("wobble")
	assert.True(t, ok)
	assert.Same(t, d, got)

	_, ok = au.ResolveStream("missing")
	assert.False(t, ok)
}

func TestExpressionFilterDefaultsOpen(t *testing.T) {
	au := New(KindInstrument)
	assert.True(t, au.PassesExpressionFilter("anything"))
	au.ExpressionFilt = []string{"mf"}
	assert.False(t, au.PassesExpressionFilter("anything"))
	assert.True(t, au.PassesExpressionFilter("mf"))
}
