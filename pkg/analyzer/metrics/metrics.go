// Package metrics derives raw structural metrics for every entity of a snapshot.
//
// Each calculator reads the shared adjacency sets only, so rows are computed in
// parallel; the returned table is always in ascending id order.
package metrics

import (
	"github.com/RoaringBitmap/roaring/v2"
	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/analyzer/category"
	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/analyzer/extract"
	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/models"
	"github.com/sourcegraph/conc/iter"
	"gonum.org/v1/gonum/graph/simple"
)

// Compute builds the metric table of one entity kind.
func Compute(kind models.Kind, g *extract.Graph, cats category.Categories, s Settings) *Table {
	switch kind {
	case models.KindApplication:
		return Applications(g, cats)
	case models.KindTopic:
		return Topics(g, s.LowConnectivityDegree)
	case models.KindNode:
		return Nodes(g)
	case models.KindLibrary:
		return Libraries(g)
	default:
		return &Table{Kind: kind}
	}
}

// Applications computes R, A, RA, TC and LE for every application.
func Applications(g *extract.Graph, cats category.Categories) *Table {
	topicCategory := make([]string, g.Topics.Len())
	for i := range topicCategory {
		id := g.Topics.ID(uint32(i))
		if c, ok := cats[id]; ok {
			topicCategory[i] = c
		} else {
			topicCategory[i] = g.Topics.Name(uint32(i))
		}
	}

	rows := iter.Map(ordinals(g.Applications.Len()), func(a *uint32) Row {
		pubs, subs := g.Publishes[*a], g.Subscribes[*a]

		reached := roaring.New()
		eachOrdinal(pubs, func(t uint32) { reached.Or(g.Subscribers[t]) })
		eachOrdinal(subs, func(t uint32) { reached.Or(g.Publishers[t]) })
		reached.Remove(*a)

		y := float64(pubs.GetCardinality())
		x := float64(subs.GetCardinality())
		r := float64(reached.GetCardinality())

		contexts := make(map[string]struct{})
		eachOrdinal(g.Interactions(*a), func(t uint32) { contexts[topicCategory[t]] = struct{}{} })

		return Row{
			ID:   g.Applications.ID(*a),
			Name: g.Applications.Name(*a),
			Values: []float64{
				r,
				r / (y + 1),
				(y - x) / (y + x + 1),
				float64(len(contexts)),
				float64(g.UsesLibs[*a].GetCardinality()),
			},
		}
	})
	return &Table{Kind: models.KindApplication, Codes: Codes(models.KindApplication), Rows: rows}
}

// Topics computes C, I, PS and LCR for every topic. Participants with at most
// lowDegree topics in Y(a) ∪ A(a) count toward LCR.
func Topics(g *extract.Graph, lowDegree int) *Table {
	rows := iter.Map(ordinals(g.Topics.Len()), func(t *uint32) Row {
		y := float64(g.Publishers[*t].GetCardinality())
		x := float64(g.Subscribers[*t].GetCardinality())
		coverage := y + x
		participants := g.Participants(*t)

		hosts := roaring.New()
		low := 0
		eachOrdinal(participants, func(a uint32) {
			hosts.Or(g.HostedOn[a])
			if g.Interactions(a).GetCardinality() <= uint64(max(lowDegree, 0)) {
				low++
			}
		})

		imbalance := y - x
		if imbalance < 0 {
			imbalance = -imbalance
		}

		return Row{
			ID:   g.Topics.ID(*t),
			Name: g.Topics.Name(*t),
			Values: []float64{
				coverage,
				imbalance / (coverage + 1),
				float64(hosts.GetCardinality()),
				float64(low) / (float64(participants.GetCardinality()) + 1),
			},
		}
	})
	return &Table{Kind: models.KindTopic, Codes: Codes(models.KindTopic), Rows: rows}
}

// Nodes computes ND and NID for every node.
//
// NID tests every co-located pair against the communication graph, so it is
// quadratic in the applications hosted by a node.
func Nodes(g *extract.Graph) *Table {
	comm := CommunicationGraph(g)

	rows := iter.Map(ordinals(g.Nodes.Len()), func(n *uint32) Row {
		hosted := g.Hosted[*n].ToArray()
		pairs := 0
		for i := 0; i < len(hosted); i++ {
			for j := i + 1; j < len(hosted); j++ {
				if comm.HasEdgeBetween(int64(hosted[i]), int64(hosted[j])) {
					pairs++
				}
			}
		}
		return Row{
			ID:     g.Nodes.ID(*n),
			Name:   g.Nodes.Name(*n),
			Values: []float64{float64(len(hosted)), float64(pairs)},
		}
	})
	return &Table{Kind: models.KindNode, Codes: Codes(models.KindNode), Rows: rows}
}

// CommunicationGraph links two applications when some topic has one of them
// publishing and the other subscribing. Node ids are application ordinals.
func CommunicationGraph(g *extract.Graph) *simple.UndirectedGraph {
	comm := simple.NewUndirectedGraph()
	for t := range g.Publishers {
		pubs := g.Publishers[t].ToArray()
		subs := g.Subscribers[t].ToArray()
		for _, p := range pubs {
			for _, s := range subs {
				if p == s {
					continue
				}
				comm.SetEdge(simple.Edge{F: simple.Node(int64(p)), T: simple.Node(int64(s))})
			}
		}
	}
	return comm
}

// Libraries computes LC and LCon for every library.
func Libraries(g *extract.Graph) *Table {
	rows := iter.Map(ordinals(g.Libraries.Len()), func(l *uint32) Row {
		users := g.Users[*l]
		var concentration uint64
		for _, hosted := range g.Hosted {
			if c := users.AndCardinality(hosted); c > concentration {
				concentration = c
			}
		}
		return Row{
			ID:     g.Libraries.ID(*l),
			Name:   g.Libraries.Name(*l),
			Values: []float64{float64(users.GetCardinality()), float64(concentration)},
		}
	})
	return &Table{Kind: models.KindLibrary, Codes: Codes(models.KindLibrary), Rows: rows}
}

func ordinals(n int) []uint32 {
	out := make([]uint32, n)
	for i := range out {
		out[i] = uint32(i)
	}
	return out
}

func eachOrdinal(set *roaring.Bitmap, fn func(uint32)) {
	it := set.Iterator()
	for it.HasNext() {
		fn(it.Next())
	}
}
