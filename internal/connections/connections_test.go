package connections

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kqcore/korender/internal/device"
)

type stubImpl struct{ tag string }

func (s stubImpl) TypeTag() string { return s.tag }

func mkDevice(id uint32, recv, send device.PortSet) *device.Device {
	d := device.New(id, stubImpl{tag: "stub"})
	d.RecvPorts = recv
	d.SendPorts = send
	return d
}

func TestBuildSimpleChain(t *testing.T) {
	devices := map[string]*device.Device{
		"master": mkDevice(0, device.PortSet(0).With(0), 0),
		"proc":   mkDevice(1, 0, device.PortSet(0).With(0)),
	}
	g, err := Build(devices, "master", []Spec{{SendName: "proc", SendPort: 0, RecvName: "master", RecvPort: 0}})
	assert.NoError(t, err)

	var order []string
	g.Traverse(func(n *Node) { order = append(order, n.Name) })
	assert.Equal(t, []string{"proc", "master"}, order)
}

func TestBuildRejectsSelfLoop(t *testing.T) {
	devices := map[string]*device.Device{
		"master": mkDevice(0, device.PortSet(0).With(0), device.PortSet(0).With(0)),
	}
	_, err := Build(devices, "master", []Spec{{SendName: "master", SendPort: 0, RecvName: "master", RecvPort: 0}})
	assert.Error(t, err)
}

func TestBuildRejectsCycle(t *testing.T) {
	devices := map[string]*device.Device{
		"master": mkDevice(0, device.PortSet(0).With(0), 0),
		"a":      mkDevice(1, device.PortSet(0).With(0), device.PortSet(0).With(0)),
		"b":      mkDevice(2, device.PortSet(0).With(0), device.PortSet(0).With(0)),
	}
	_, err := Build(devices, "master", []Spec{
		{SendName: "a", SendPort: 0, RecvName: "master", RecvPort: 0},
		{SendName: "b", SendPort: 0, RecvName: "a", RecvPort: 0},
		{SendName: "a", SendPort: 0, RecvName: "b", RecvPort: 0},
	})
	assert.Error(t, err)
}

func TestBuildRejectsMissingPort(t *testing.T) {
	devices := map[string]*device.Device{
		"master": mkDevice(0, 0, 0), // no receive port 0 declared
		"proc":   mkDevice(1, 0, device.PortSet(0).With(0)),
	}
	_, err := Build(devices, "master", []Spec{{SendName: "proc", SendPort: 0, RecvName: "master", RecvPort: 0}})
	assert.Error(t, err)
}

func TestEmptyGraphRendersSilence(t *testing.T) {
	devices := map[string]*device.Device{
		"master": mkDevice(0, 0, 0),
	}
	g, err := Build(devices, "master", nil)
	assert.NoError(t, err)
	var rendered int
	g.Traverse(func(n *Node) { rendered++ })
	assert.Equal(t, 1, rendered)
}
