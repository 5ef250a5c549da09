// Package inventory summarizes the size and shape of a snapshot: topic sizes,
// fan-in and fan-out per topic, applications per node, topic usage per
// application and QoS attribute distributions.
package inventory

import (
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/analyzer/extract"
	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/models"
	"gonum.org/v1/gonum/stat"
)

// Count is an entity with an integer tally.
type Count struct {
	ID    string `json:"id" toon:"id"`
	Name  string `json:"name" toon:"name"`
	Count int    `json:"count" toon:"count"`
}

// Usage is the topic usage of one application.
type Usage struct {
	ID         string `json:"id" toon:"id"`
	Name       string `json:"name" toon:"name"`
	Publishes  int    `json:"publishes" toon:"publishes"`
	Subscribes int    `json:"subscribes" toon:"subscribes"`
	Total      int    `json:"total" toon:"total"`
}

// ValueCount tallies one QoS attribute value.
type ValueCount struct {
	Value string `json:"value" toon:"value"`
	Count int    `json:"count" toon:"count"`
}

// QoS holds the value distributions of the topic QoS attributes.
type QoS struct {
	Durability        []ValueCount `json:"durability" toon:"durability"`
	Reliability       []ValueCount `json:"reliability" toon:"reliability"`
	TransportPriority []ValueCount `json:"transport_priority" toon:"transport_priority"`
}

// Summary holds distribution statistics over the collections.
type Summary struct {
	Applications       int     `json:"applications" toon:"applications"`
	Topics             int     `json:"topics" toon:"topics"`
	Nodes              int     `json:"nodes" toon:"nodes"`
	Libraries          int     `json:"libraries" toon:"libraries"`
	MeanTopicsPerApp   float64 `json:"mean_topics_per_app" toon:"mean_topics_per_app"`
	StdDevTopicsPerApp float64 `json:"stddev_topics_per_app" toon:"stddev_topics_per_app"`
	MeanAppsPerNode    float64 `json:"mean_apps_per_node" toon:"mean_apps_per_node"`
	TotalTopicBytes    int     `json:"total_topic_bytes" toon:"total_topic_bytes"`
}

// Stats is the basic inventory of a snapshot. Every list is sorted by its
// tally descending, ties by ascending id.
type Stats struct {
	Summary             Summary `json:"summary" toon:"summary"`
	TopicsBySize        []Count `json:"topics_by_size" toon:"topics_by_size"`
	TopicsByPublishers  []Count `json:"topics_by_publishers" toon:"topics_by_publishers"`
	TopicsBySubscribers []Count `json:"topics_by_subscribers" toon:"topics_by_subscribers"`
	AppsPerNode         []Count `json:"apps_per_node" toon:"apps_per_node"`
	AppTopicUsage       []Usage `json:"app_topic_usage" toon:"app_topic_usage"`
	QoS                 QoS     `json:"qos" toon:"qos"`
}

// Compute builds the inventory. Relationship counts come from g, so dangling
// and duplicate edges are not counted.
func Compute(snap *models.Snapshot, g *extract.Graph) *Stats {
	s := &Stats{
		Summary: Summary{
			Applications: g.Applications.Len(),
			Topics:       g.Topics.Len(),
			Nodes:        g.Nodes.Len(),
			Libraries:    g.Libraries.Len(),
		},
	}

	s.TopicsBySize = make([]Count, 0, len(snap.Topics))
	for _, t := range snap.Topics {
		s.TopicsBySize = append(s.TopicsBySize, Count{ID: t.ID, Name: t.DisplayName(), Count: t.Size})
		s.Summary.TotalTopicBytes += t.Size
	}
	sortCounts(s.TopicsBySize)

	s.TopicsByPublishers = tally(g.Topics, g.Publishers)
	s.TopicsBySubscribers = tally(g.Topics, g.Subscribers)
	s.AppsPerNode = tally(g.Nodes, g.Hosted)

	s.AppTopicUsage = make([]Usage, g.Applications.Len())
	perApp := make([]float64, g.Applications.Len())
	for i := range s.AppTopicUsage {
		a := uint32(i)
		pub := int(g.Publishes[a].GetCardinality())
		sub := int(g.Subscribes[a].GetCardinality())
		s.AppTopicUsage[i] = Usage{
			ID:         g.Applications.ID(a),
			Name:       g.Applications.Name(a),
			Publishes:  pub,
			Subscribes: sub,
			Total:      pub + sub,
		}
		perApp[i] = float64(pub + sub)
	}
	sort.SliceStable(s.AppTopicUsage, func(i, j int) bool {
		return s.AppTopicUsage[i].Total > s.AppTopicUsage[j].Total
	})

	s.Summary.MeanTopicsPerApp = mean(perApp)
	if len(perApp) > 1 {
		s.Summary.StdDevTopicsPerApp = stat.StdDev(perApp, nil)
	}
	perNode := make([]float64, len(s.AppsPerNode))
	for i, c := range s.AppsPerNode {
		perNode[i] = float64(c.Count)
	}
	s.Summary.MeanAppsPerNode = mean(perNode)

	s.QoS = qos(snap.Topics)
	return s
}

// tally counts each set of sets, one entry per member of idx.
func tally(idx extract.Index, sets []*roaring.Bitmap) []Count {
	out := make([]Count, idx.Len())
	for i := range out {
		out[i] = Count{
			ID:    idx.ID(uint32(i)),
			Name:  idx.Name(uint32(i)),
			Count: int(sets[i].GetCardinality()),
		}
	}
	sortCounts(out)
	return out
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// sortCounts orders by count descending, then id ascending.
func sortCounts(counts []Count) {
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].ID < counts[j].ID
	})
}

func qos(topics []models.Topic) QoS {
	durability := map[string]int{}
	reliability := map[string]int{}
	priority := map[string]int{}
	for _, t := range topics {
		if t.QoS == nil {
			continue
		}
		if t.QoS.Durability != "" {
			durability[t.QoS.Durability]++
		}
		if t.QoS.Reliability != "" {
			reliability[t.QoS.Reliability]++
		}
		if t.QoS.TransportPriority != "" {
			priority[string(t.QoS.TransportPriority)]++
		}
	}
	return QoS{
		Durability:        values(durability),
		Reliability:       values(reliability),
		TransportPriority: values(priority),
	}
}

func values(m map[string]int) []ValueCount {
	out := make([]ValueCount, 0, len(m))
	for v, c := range m {
		out = append(out, ValueCount{Value: v, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	return out
}
