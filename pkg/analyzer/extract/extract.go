// Package extract turns a snapshot's entity and edge lists into adjacency sets.
package extract

import (
	"github.com/RoaringBitmap/roaring/v2"
	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/models"
)

// Option configures extraction.
type Option func(*options)

type options struct {
	strict bool
}

// WithStrict makes dangling edges fail extraction instead of being dropped.
func WithStrict(strict bool) Option {
	return func(o *options) {
		o.strict = strict
	}
}

// Extract builds the adjacency sets of snap. Edges whose source is not an
// application or whose target is not in the relation's target collection are
// dropped and recorded in Graph.Dropped, or rejected with a
// *DanglingReferenceError when strict.
func Extract(snap *models.Snapshot, opts ...Option) (*Graph, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	g := &Graph{
		Applications: newIndex(snap.Applications),
		Topics:       newIndex(snap.Entities(models.KindTopic)),
		Nodes:        newIndex(snap.Nodes),
		Libraries:    newIndex(snap.Libraries),
	}
	apps, topics := g.Applications.Len(), g.Topics.Len()
	g.Publishes = newSets(apps)
	g.Subscribes = newSets(apps)
	g.UsesLibs = newSets(apps)
	g.HostedOn = newSets(apps)
	g.Publishers = newSets(topics)
	g.Subscribers = newSets(topics)
	g.Hosted = newSets(g.Nodes.Len())
	g.Users = newSets(g.Libraries.Len())

	for _, rel := range models.Relations {
		target := g.Index(rel.Target())
		for _, e := range snap.Relationships.Edges(rel) {
			from, fromOK := g.Applications.Lookup(e.From)
			to, toOK := target.Lookup(e.To)
			if !fromOK || !toOK {
				dropped := DroppedEdge{Relation: rel, From: e.From, To: e.To, Dangling: dangling(fromOK, toOK)}
				if o.strict {
					return nil, &DanglingReferenceError{Edge: dropped}
				}
				g.Dropped = append(g.Dropped, dropped)
				continue
			}
			g.link(rel, from, to)
		}
	}
	return g, nil
}

func (g *Graph) link(rel models.Relation, app, other uint32) {
	switch rel {
	case models.RelationPublishesTo:
		g.Publishes[app].Add(other)
		g.Publishers[other].Add(app)
	case models.RelationSubscribesTo:
		g.Subscribes[app].Add(other)
		g.Subscribers[other].Add(app)
	case models.RelationRunsOn:
		g.HostedOn[app].Add(other)
		g.Hosted[other].Add(app)
	case models.RelationUses:
		g.UsesLibs[app].Add(other)
		g.Users[other].Add(app)
	}
}

func dangling(fromOK, toOK bool) Endpoint {
	switch {
	case !fromOK && !toOK:
		return EndpointBoth
	case !fromOK:
		return EndpointFrom
	default:
		return EndpointTo
	}
}

func newSets(n int) []*roaring.Bitmap {
	sets := make([]*roaring.Bitmap, n)
	for i := range sets {
		sets[i] = roaring.New()
	}
	return sets
}

// Participants returns Y(t) ∪ A(t) for topic t as a new set.
func (g *Graph) Participants(topic uint32) *roaring.Bitmap {
	return roaring.Or(g.Publishers[topic], g.Subscribers[topic])
}

// Interactions returns Y(a) ∪ A(a) for application a as a new set.
func (g *Graph) Interactions(app uint32) *roaring.Bitmap {
	return roaring.Or(g.Publishes[app], g.Subscribes[app])
}
