// Package loops finds message feedback loops between applications.
package loops

import (
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/analyzer/extract"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// SelfSubscription is an application subscribed to a topic it publishes.
type SelfSubscription struct {
	Application string `json:"application" toon:"application"`
	Topic       string `json:"topic" toon:"topic"`
}

// PingPong is a two-application loop: First publishes Forward which Second
// consumes, and Second publishes Backward which First consumes. First < Second.
type PingPong struct {
	First    string `json:"first" toon:"first"`
	Second   string `json:"second" toon:"second"`
	Forward  string `json:"forward" toon:"forward"`
	Backward string `json:"backward" toon:"backward"`
}

// Cluster is a strongly connected set of applications in the message flow
// graph: every member can reach every other through published topics.
type Cluster struct {
	Applications []string `json:"applications" toon:"applications"`
}

// Analysis lists every loop of a snapshot, each list sorted.
type Analysis struct {
	SelfSubscriptions []SelfSubscription `json:"self_subscriptions" toon:"self_subscriptions"`
	PingPongs         []PingPong         `json:"ping_pongs" toon:"ping_pongs"`
	Clusters          []Cluster          `json:"clusters" toon:"clusters"`
}

// Total returns the number of findings.
func (a *Analysis) Total() int {
	return len(a.SelfSubscriptions) + len(a.PingPongs) + len(a.Clusters)
}

// Detect finds self-subscriptions, ping-pong pairs and feedback clusters.
func Detect(g *extract.Graph) *Analysis {
	out := &Analysis{
		SelfSubscriptions: make([]SelfSubscription, 0),
		PingPongs:         make([]PingPong, 0),
		Clusters:          make([]Cluster, 0),
	}

	// Ordinals follow id order, so nested ordinal loops emit sorted results.
	for a := range g.Publishes {
		self := roaring.And(g.Publishes[a], g.Subscribes[a])
		for _, t := range self.ToArray() {
			out.SelfSubscriptions = append(out.SelfSubscriptions, SelfSubscription{
				Application: g.Applications.ID(uint32(a)),
				Topic:       g.Topics.ID(t),
			})
		}
	}

	flow := FlowGraph(g)
	apps := g.Applications.Len()
	for s1 := 0; s1 < apps; s1++ {
		for s2 := s1 + 1; s2 < apps; s2++ {
			if !flow.HasEdgeFromTo(int64(s1), int64(s2)) || !flow.HasEdgeFromTo(int64(s2), int64(s1)) {
				continue
			}
			for _, t1 := range g.Publishes[s1].ToArray() {
				if !g.Subscribers[t1].Contains(uint32(s2)) {
					continue
				}
				for _, t2 := range g.Publishes[s2].ToArray() {
					if g.Subscribers[t2].Contains(uint32(s1)) {
						out.PingPongs = append(out.PingPongs, PingPong{
							First:    g.Applications.ID(uint32(s1)),
							Second:   g.Applications.ID(uint32(s2)),
							Forward:  g.Topics.ID(t1),
							Backward: g.Topics.ID(t2),
						})
					}
				}
			}
		}
	}

	for _, scc := range topo.TarjanSCC(flow) {
		if len(scc) < 2 {
			continue
		}
		members := make([]string, len(scc))
		for i, n := range scc {
			members[i] = g.Applications.ID(uint32(n.ID()))
		}
		sort.Strings(members)
		out.Clusters = append(out.Clusters, Cluster{Applications: members})
	}
	sort.Slice(out.Clusters, func(i, j int) bool {
		return out.Clusters[i].Applications[0] < out.Clusters[j].Applications[0]
	})

	return out
}

// FlowGraph links publisher to subscriber for every topic. Node ids are
// application ordinals; self-subscriptions produce no edge.
func FlowGraph(g *extract.Graph) *simple.DirectedGraph {
	flow := simple.NewDirectedGraph()
	for a := 0; a < g.Applications.Len(); a++ {
		flow.AddNode(simple.Node(int64(a)))
	}
	for t := range g.Publishers {
		for _, p := range g.Publishers[t].ToArray() {
			for _, s := range g.Subscribers[t].ToArray() {
				if p == s {
					continue
				}
				flow.SetEdge(simple.Edge{F: simple.Node(int64(p)), T: simple.Node(int64(s))})
			}
		}
	}
	return flow
}
