package inventory

import (
	"math"
	"testing"

	"github.com/canetizen/structural-analysis-on-distributed-systems/internal/testutil"
	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/analyzer/extract"
	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compute(t *testing.T, snap *models.Snapshot) *Stats {
	t.Helper()
	g, err := extract.Extract(snap)
	require.NoError(t, err)
	return Compute(snap, g)
}

func ids(counts []Count) []string {
	out := make([]string, len(counts))
	for i, c := range counts {
		out[i] = c.ID
	}
	return out
}

func TestCompute_SmartCity(t *testing.T) {
	s := compute(t, testutil.SmartCity())

	assert.Equal(t,
		[]string{"diag/log", "plan/route", "sensor/camera/front", "sensor/camera/rear", "sensor/lidar"},
		ids(s.TopicsByPublishers))
	assert.Equal(t, 2, s.TopicsByPublishers[0].Count)
	assert.Equal(t, 0, s.TopicsByPublishers[4].Count)

	assert.Equal(t, []Count{
		{ID: "edge1", Name: "edge1", Count: 3},
		{ID: "cloud", Name: "cloud", Count: 2},
		{ID: "edge2", Name: "edge2", Count: 1},
	}, s.AppsPerNode)

	usage := make([]string, len(s.AppTopicUsage))
	for i, u := range s.AppTopicUsage {
		usage[i] = u.ID
	}
	assert.Equal(t, []string{"fusion", "dashboard", "planner", "cam_front", "cam_rear", "logger"}, usage)
	assert.Equal(t, Usage{ID: "fusion", Name: "fusion", Publishes: 2, Subscribes: 3, Total: 5}, s.AppTopicUsage[0])

	assert.Equal(t, 6, s.Summary.Applications)
	assert.InDelta(t, 2.0, s.Summary.MeanTopicsPerApp, 1e-12)
	assert.InDelta(t, math.Sqrt(2.4), s.Summary.StdDevTopicsPerApp, 1e-9)
	assert.InDelta(t, 2.0, s.Summary.MeanAppsPerNode, 1e-12)
}

func TestCompute_TopicSizesAndQoS(t *testing.T) {
	snap := &models.Snapshot{
		Topics: []models.Topic{
			{Entity: models.Entity{ID: "t1"}, Size: 64, QoS: &models.QoS{Durability: "VOLATILE", Reliability: "RELIABLE", TransportPriority: "5"}},
			{Entity: models.Entity{ID: "t2", Name: "two"}, Size: 1024, QoS: &models.QoS{Durability: "PERSISTENT", Reliability: "RELIABLE"}},
			{Entity: models.Entity{ID: "t3"}, Size: 64},
		},
	}

	s := compute(t, snap)

	assert.Equal(t, []Count{
		{ID: "t2", Name: "two", Count: 1024},
		{ID: "t1", Name: "t1", Count: 64},
		{ID: "t3", Name: "t3", Count: 64},
	}, s.TopicsBySize)
	assert.Equal(t, 1152, s.Summary.TotalTopicBytes)
	assert.Equal(t, []ValueCount{{Value: "RELIABLE", Count: 2}}, s.QoS.Reliability)
	assert.Equal(t, []ValueCount{{Value: "PERSISTENT", Count: 1}, {Value: "VOLATILE", Count: 1}}, s.QoS.Durability)
	assert.Equal(t, []ValueCount{{Value: "5", Count: 1}}, s.QoS.TransportPriority)
}

func TestCompute_Empty(t *testing.T) {
	s := compute(t, &models.Snapshot{})

	assert.Empty(t, s.TopicsBySize)
	assert.Empty(t, s.AppTopicUsage)
	assert.Zero(t, s.Summary.MeanTopicsPerApp)
	assert.Zero(t, s.Summary.StdDevTopicsPerApp)
	assert.Empty(t, s.QoS.Durability)
}
