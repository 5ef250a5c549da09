package extract

import (
	"fmt"
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/models"
)

// Index maps the ids of one collection to dense ordinals.
// Ordinals follow ascending id order, so iterating a bitmap visits ids sorted.
type Index struct {
	ids   []string
	names []string
	pos   map[string]uint32
}

func newIndex(entities []models.Entity) Index {
	sorted := make([]models.Entity, len(entities))
	copy(sorted, entities)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	idx := Index{
		ids:   make([]string, len(sorted)),
		names: make([]string, len(sorted)),
		pos:   make(map[string]uint32, len(sorted)),
	}
	for i, e := range sorted {
		idx.ids[i] = e.ID
		idx.names[i] = e.DisplayName()
		idx.pos[e.ID] = uint32(i)
	}
	return idx
}

// Len returns the collection size.
func (x Index) Len() int { return len(x.ids) }

// ID returns the id at ordinal i.
func (x Index) ID(i uint32) string { return x.ids[i] }

// Name returns the display name at ordinal i.
func (x Index) Name(i uint32) string { return x.names[i] }

// IDs returns all ids in ascending order.
func (x Index) IDs() []string { return x.ids }

// Lookup returns the ordinal of id and whether it is a member.
func (x Index) Lookup(id string) (uint32, bool) {
	i, ok := x.pos[id]
	return i, ok
}

// IDsOf resolves a bitmap of ordinals back to sorted ids.
func (x Index) IDsOf(set *roaring.Bitmap) []string {
	out := make([]string, 0, set.GetCardinality())
	it := set.Iterator()
	for it.HasNext() {
		out = append(out, x.ids[it.Next()])
	}
	return out
}

// Graph holds the adjacency sets of one snapshot.
// Every slice is indexed by the ordinal of its owning entity; every set holds
// ordinals of the related collection. Entities without edges have empty sets.
type Graph struct {
	Applications Index
	Topics       Index
	Nodes        Index
	Libraries    Index

	Publishes   []*roaring.Bitmap // Y(a): topics application a publishes to
	Subscribes  []*roaring.Bitmap // A(a): topics application a subscribes to
	Publishers  []*roaring.Bitmap // Y(t): applications publishing to topic t
	Subscribers []*roaring.Bitmap // A(t): applications subscribed to topic t
	Hosted      []*roaring.Bitmap // S(n): applications running on node n
	UsesLibs    []*roaring.Bitmap // L(a): libraries used by application a
	Users       []*roaring.Bitmap // U(l): applications using library l
	HostedOn    []*roaring.Bitmap // H(a): nodes running application a

	// Dropped lists edges whose endpoints fell outside the expected collections.
	Dropped []DroppedEdge
}

// Index returns the id index of the given collection.
func (g *Graph) Index(kind models.Kind) Index {
	switch kind {
	case models.KindApplication:
		return g.Applications
	case models.KindTopic:
		return g.Topics
	case models.KindNode:
		return g.Nodes
	case models.KindLibrary:
		return g.Libraries
	default:
		return Index{}
	}
}

// Endpoint says which side of an edge failed to resolve.
type Endpoint string

const (
	EndpointFrom Endpoint = "from"
	EndpointTo   Endpoint = "to"
	EndpointBoth Endpoint = "both"
)

// DroppedEdge records an edge that was not materialized.
type DroppedEdge struct {
	Relation models.Relation `json:"relation" toon:"relation"`
	From     string          `json:"from" toon:"from"`
	To       string          `json:"to" toon:"to"`
	Dangling Endpoint        `json:"dangling" toon:"dangling"`
}

// DanglingReferenceError is returned in strict mode for the first edge whose
// endpoint does not belong to the expected collection.
type DanglingReferenceError struct {
	Edge DroppedEdge
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("dangling reference in %s: %s -> %s (%s endpoint not found)",
		e.Edge.Relation, e.Edge.From, e.Edge.To, e.Edge.Dangling)
}
