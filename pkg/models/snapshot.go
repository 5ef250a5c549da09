package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Kind identifies one of the four entity collections of a snapshot.
type Kind string

// String implements fmt.Stringer for toon serialization.
func (k Kind) String() string {
	return string(k)
}

const (
	KindApplication Kind = "application"
	KindTopic       Kind = "topic"
	KindNode        Kind = "node"
	KindLibrary     Kind = "library"
)

// Kinds lists every entity kind in report order.
var Kinds = []Kind{KindApplication, KindTopic, KindNode, KindLibrary}

// Plural returns the collection name used in snapshot documents.
func (k Kind) Plural() string {
	switch k {
	case KindApplication:
		return "applications"
	case KindTopic:
		return "topics"
	case KindNode:
		return "nodes"
	case KindLibrary:
		return "libraries"
	default:
		return string(k)
	}
}

// ParseKind accepts a kind in singular or plural form. An empty string
// yields the empty kind, meaning "all kinds".
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", nil
	}
	for _, k := range Kinds {
		if s == string(k) || s == k.Plural() {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown entity kind %q", s)
}

// Relation names a directed edge list of a snapshot.
type Relation string

const (
	RelationPublishesTo  Relation = "publishes_to"
	RelationSubscribesTo Relation = "subscribes_to"
	RelationRunsOn       Relation = "runs_on"
	RelationUses         Relation = "uses"
)

// Relations lists every relation in document order.
var Relations = []Relation{RelationPublishesTo, RelationSubscribesTo, RelationRunsOn, RelationUses}

// Target returns the entity kind an edge of this relation must point to.
// Every relation originates at an application.
func (r Relation) Target() Kind {
	switch r {
	case RelationPublishesTo, RelationSubscribesTo:
		return KindTopic
	case RelationRunsOn:
		return KindNode
	case RelationUses:
		return KindLibrary
	default:
		return ""
	}
}

// Entity is a named member of one of the snapshot collections.
type Entity struct {
	ID   string `json:"id" yaml:"id" toon:"id"`
	Name string `json:"name,omitempty" yaml:"name,omitempty" toon:"name,omitempty"`
}

// DisplayName returns the name, falling back to the id when unset.
func (e Entity) DisplayName() string {
	if e.Name == "" {
		return e.ID
	}
	return e.Name
}

// QoS holds the optional delivery attributes of a topic.
type QoS struct {
	Durability        string `json:"durability,omitempty" yaml:"durability,omitempty" toon:"durability,omitempty"`
	Reliability       string `json:"reliability,omitempty" yaml:"reliability,omitempty" toon:"reliability,omitempty"`
	TransportPriority Scalar `json:"transport_priority,omitempty" yaml:"transport_priority,omitempty" toon:"transport_priority,omitempty"`
}

// Scalar is a string attribute that documents may also spell as a bare number.
type Scalar string

// UnmarshalJSON accepts both "5" and 5.
func (s *Scalar) UnmarshalJSON(data []byte) error {
	text := strings.TrimSpace(string(data))
	if text == "null" {
		return nil
	}
	if strings.HasPrefix(text, `"`) {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = Scalar(v)
		return nil
	}
	*s = Scalar(text)
	return nil
}

// Topic is a message channel. Size and QoS are descriptive only.
type Topic struct {
	Entity `yaml:",inline"`
	Size   int  `json:"size,omitempty" yaml:"size,omitempty" toon:"size,omitempty"`
	QoS    *QoS `json:"qos,omitempty" yaml:"qos,omitempty" toon:"qos,omitempty"`
}

// Edge is a directed relationship between two entity ids.
type Edge struct {
	From string `json:"from" yaml:"from" toon:"from"`
	To   string `json:"to" yaml:"to" toon:"to"`
}

// Relationships groups the four application-origin edge lists.
type Relationships struct {
	PublishesTo  []Edge `json:"publishes_to,omitempty" yaml:"publishes_to,omitempty" toon:"publishes_to,omitempty"`
	SubscribesTo []Edge `json:"subscribes_to,omitempty" yaml:"subscribes_to,omitempty" toon:"subscribes_to,omitempty"`
	RunsOn       []Edge `json:"runs_on,omitempty" yaml:"runs_on,omitempty" toon:"runs_on,omitempty"`
	Uses         []Edge `json:"uses,omitempty" yaml:"uses,omitempty" toon:"uses,omitempty"`
}

// Edges returns the edge list of the given relation.
func (r Relationships) Edges(rel Relation) []Edge {
	switch rel {
	case RelationPublishesTo:
		return r.PublishesTo
	case RelationSubscribesTo:
		return r.SubscribesTo
	case RelationRunsOn:
		return r.RunsOn
	case RelationUses:
		return r.Uses
	default:
		return nil
	}
}

// Snapshot is one static, already-loaded architecture graph.
// It is never mutated once loaded.
type Snapshot struct {
	Applications  []Entity      `json:"applications" yaml:"applications" toon:"applications"`
	Topics        []Topic       `json:"topics" yaml:"topics" toon:"topics"`
	Nodes         []Entity      `json:"nodes" yaml:"nodes" toon:"nodes"`
	Libraries     []Entity      `json:"libraries" yaml:"libraries" toon:"libraries"`
	Relationships Relationships `json:"relationships" yaml:"relationships" toon:"relationships"`
}

// Entities returns the id/name records of the given collection.
func (s *Snapshot) Entities(kind Kind) []Entity {
	switch kind {
	case KindApplication:
		return s.Applications
	case KindTopic:
		out := make([]Entity, len(s.Topics))
		for i, t := range s.Topics {
			out[i] = t.Entity
		}
		return out
	case KindNode:
		return s.Nodes
	case KindLibrary:
		return s.Libraries
	default:
		return nil
	}
}

// EdgeCount returns the total number of edges across all relations.
func (s *Snapshot) EdgeCount() int {
	n := 0
	for _, rel := range Relations {
		n += len(s.Relationships.Edges(rel))
	}
	return n
}
