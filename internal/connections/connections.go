// Package connections implements the device graph: a DAG of Device-nodes
// joined by send->receive port edges, with cycle detection and the
// depth-first rendering traversal (spec §4.4).
package connections

import (
	"fmt"

	"github.com/kqcore/korender/internal/device"
)

// NodeKind tags what a Device-node wraps.
type NodeKind int

const (
	NodeMaster NodeKind = iota
	NodeProcessor
	NodeAudioUnit
)

// Edge is one incoming connection: a sender node/port feeding one of this
// node's receive ports.
type Edge struct {
	SenderNode *Node
	SenderPort int
}

// Node is one Connections graph vertex, referencing exactly one Device.
type Node struct {
	Name   string
	Kind   NodeKind
	Dev    *device.Device
	Recv   map[int][]Edge // receive port -> incoming edges, insertion order
	depth  int
	visited int // render generation stamp
}

// Spec is a single (send_path, receive_path) pair as read from
// p_connections.json, identifying a device by name and a port number.
type Spec struct {
	SendName string
	SendPort int
	RecvName string
	RecvPort int
}

// Graph is a built Connections DAG.
type Graph struct {
	Nodes      map[string]*Node
	MasterName string
	genCounter int
}

// Error kinds raised by Build, per spec §4.4/§7.
type BuildError struct {
	Kind string // "cycle" | "port" | "resource"
	Msg  string
}

func (e *BuildError) Error() string { return fmt.Sprintf("connections: %s: %s", e.Kind, e.Msg) }

// Build resolves a list of edge specs against a name->Device table, creating
// Device-nodes and validating: no self-loops, no cycles, every edge targets
// an existent port, and exactly one master-sink node exists.
func Build(devices map[string]*device.Device, masterName string, specs []Spec) (*Graph, error) {
	g := &Graph{Nodes: map[string]*Node{}, MasterName: masterName}

	ensure := func(name string) (*Node, error) {
		if n, ok := g.Nodes[name]; ok {
			return n, nil
		}
		dev, ok := devices[name]
		if !ok || !dev.Exists {
			return nil, &BuildError{Kind: "resource", Msg: fmt.Sprintf("unknown device %q", name)}
		}
		kind := NodeProcessor
		if name == masterName {
			kind = NodeMaster
		} else if _, isAU := dev.Impl.(interface{ IsAudioUnit() bool }); isAU {
			kind = NodeAudioUnit
		}
		n := &Node{Name: name, Kind: kind, Dev: dev, Recv: map[int][]Edge{}}
		g.Nodes[name] = n
		return n, nil
	}

	if _, err := ensure(masterName); err != nil {
		return nil, err
	}

	for _, s := range specs {
		if s.SendName == s.RecvName && s.SendPort == s.RecvPort {
			return nil, &BuildError{Kind: "cycle", Msg: fmt.Sprintf("self-loop on %s port %d", s.SendName, s.SendPort)}
		}
		sender, err := ensure(s.SendName)
		if err != nil {
			return nil, err
		}
		receiver, err := ensure(s.RecvName)
		if err != nil {
			return nil, err
		}
		if !sender.Dev.SendPorts.Has(s.SendPort) {
			return nil, &BuildError{Kind: "port", Msg: fmt.Sprintf("%s has no send port %d", s.SendName, s.SendPort)}
		}
		if !receiver.Dev.RecvPorts.Has(s.RecvPort) {
			return nil, &BuildError{Kind: "port", Msg: fmt.Sprintf("%s has no receive port %d", s.RecvName, s.RecvPort)}
		}
		receiver.Recv[s.RecvPort] = append(receiver.Recv[s.RecvPort], Edge{SenderNode: sender, SenderPort: s.SendPort})
	}

	if err := detectCycles(g); err != nil {
		return nil, err
	}
	computeDepths(g)
	return g, nil
}

func detectCycles(g *Graph) error {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := map[string]int{}
	var visit func(n *Node) error
	visit = func(n *Node) error {
		color[n.Name] = gray
		for _, edges := range n.Recv {
			for _, e := range edges {
				switch color[e.SenderNode.Name] {
				case gray:
					return &BuildError{Kind: "cycle", Msg: fmt.Sprintf("cycle through %s", e.SenderNode.Name)}
				case white:
					if err := visit(e.SenderNode); err != nil {
						return err
					}
				}
			}
		}
		color[n.Name] = black
		return nil
	}
	for _, n := range g.Nodes {
		if color[n.Name] == white {
			if err := visit(n); err != nil {
				return err
			}
		}
	}
	return nil
}

// computeDepths fills subgraph_depth (longest path length from each node to
// a leaf) so the scheduler can pre-size per-thread state vectors (spec §4.4
// "Cycle and depth queries").
func computeDepths(g *Graph) {
	memo := map[string]int{}
	var depth func(n *Node) int
	depth = func(n *Node) int {
		if d, ok := memo[n.Name]; ok {
			return d
		}
		best := 0
		for _, edges := range n.Recv {
			for _, e := range edges {
				d := 1 + depth(e.SenderNode)
				if d > best {
					best = d
				}
			}
		}
		memo[n.Name] = best
		n.depth = best
		return best
	}
	for _, n := range g.Nodes {
		depth(n)
	}
}

// Depth returns the precomputed subgraph depth of a node by name.
func (g *Graph) Depth(name string) int {
	if n, ok := g.Nodes[name]; ok {
		return n.depth
	}
	return 0
}

// Traverse walks the graph depth-first from the master sink, calling
// render(node) exactly once per node per call, after all of that node's
// senders have been rendered (spec §4.4 rendering traversal).
func (g *Graph) Traverse(render func(n *Node)) {
	g.genCounter++
	gen := g.genCounter
	var visit func(n *Node)
	visit = func(n *Node) {
		if n.visited == gen {
			return
		}
		n.visited = gen
		for _, edges := range n.Recv {
			for _, e := range edges {
				visit(e.SenderNode)
			}
		}
		render(n)
	}
	if master, ok := g.Nodes[g.MasterName]; ok {
		visit(master)
	}
}
