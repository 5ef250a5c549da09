package metrics

import (
	"testing"

	"github.com/canetizen/structural-analysis-on-distributed-systems/internal/testutil"
	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/analyzer/category"
	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/analyzer/extract"
	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compute(t *testing.T, snap *models.Snapshot, kind models.Kind) *Table {
	t.Helper()
	g, err := extract.Extract(snap)
	require.NoError(t, err)
	cats := category.Build(snap.Entities(models.KindTopic), category.DefaultMinPrefixLen)
	return Compute(kind, g, cats, DefaultSettings())
}

func value(t *testing.T, table *Table, id string, code Code) float64 {
	t.Helper()
	v, ok := table.Value(id, code)
	require.True(t, ok, "missing %s for %s", code, id)
	return v
}

func TestApplications_PublisherSubscriberPair(t *testing.T) {
	snap := testutil.NewSnapshot().
		Apps("A1", "A2").
		Topics("T1").
		Pub("A1", "T1").
		Sub("A2", "T1").
		Build()

	table := compute(t, snap, models.KindApplication)

	assert.Equal(t, 1.0, value(t, table, "A1", Reach))
	assert.Equal(t, 1.0, value(t, table, "A2", Reach))
	assert.Greater(t, value(t, table, "A1", RoleAsymmetry), 0.0)
	assert.Less(t, value(t, table, "A2", RoleAsymmetry), 0.0)
	assert.InDelta(t, 0.5, value(t, table, "A1", RoleAsymmetry), 1e-12)
	assert.InDelta(t, -0.5, value(t, table, "A2", RoleAsymmetry), 1e-12)
}

func TestApplications_ReachExcludesSelf(t *testing.T) {
	snap := testutil.NewSnapshot().
		Apps("loop", "other").
		Topics("echo").
		Pub("loop", "echo").
		Sub("loop", "echo").
		Build()

	table := compute(t, snap, models.KindApplication)

	assert.Equal(t, 0.0, value(t, table, "loop", Reach))
	assert.Equal(t, 0.0, value(t, table, "loop", Amplification))
	assert.Equal(t, 0.0, value(t, table, "other", Reach))
}

func TestApplications_SmartCity(t *testing.T) {
	table := compute(t, testutil.SmartCity(), models.KindApplication)

	require.Equal(t, []Code{Reach, Amplification, RoleAsymmetry, TopicContext, LibraryExposure}, table.Codes)
	ids := make([]string, len(table.Rows))
	for i, r := range table.Rows {
		ids[i] = r.ID
	}
	assert.Equal(t, []string{"cam_front", "cam_rear", "dashboard", "fusion", "logger", "planner"}, ids)

	tests := []struct {
		id                string
		r, amp, ra, tc, le float64
	}{
		{"cam_front", 1, 0.5, 0.5, 1, 2},
		{"cam_rear", 1, 0.5, 0.5, 1, 2},
		{"dashboard", 2, 2, -2.0 / 3.0, 2, 1},
		{"fusion", 5, 5.0 / 3.0, -1.0 / 6.0, 4, 2},
		{"logger", 2, 2, -0.5, 1, 0},
		{"planner", 3, 1.5, 0, 2, 1},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.r, value(t, table, tt.id, Reach))
			assert.InDelta(t, tt.amp, value(t, table, tt.id, Amplification), 1e-12)
			assert.InDelta(t, tt.ra, value(t, table, tt.id, RoleAsymmetry), 1e-12)
			assert.Equal(t, tt.tc, value(t, table, tt.id, TopicContext))
			assert.Equal(t, tt.le, value(t, table, tt.id, LibraryExposure))
		})
	}
}

func TestTopics_SmartCity(t *testing.T) {
	table := compute(t, testutil.SmartCity(), models.KindTopic)

	tests := []struct {
		id            string
		c, i, ps, lcr float64
	}{
		{"diag/log", 4, 0, 3, 0.6},
		{"plan/route", 3, 0.25, 3, 0.5},
		{"sensor/camera/front", 2, 0, 1, 1.0 / 3.0},
		{"sensor/camera/rear", 2, 0, 1, 1.0 / 3.0},
		{"sensor/lidar", 1, 0.5, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.c, value(t, table, tt.id, Coverage))
			assert.InDelta(t, tt.i, value(t, table, tt.id, Imbalance), 1e-12)
			assert.Equal(t, tt.ps, value(t, table, tt.id, PhysicalSpread))
			assert.InDelta(t, tt.lcr, value(t, table, tt.id, LowConnectivity), 1e-12)
		})
	}
}

func TestTopics_LowConnectivityDegree(t *testing.T) {
	snap := testutil.NewSnapshot().
		Apps("a", "b").
		Topics("t1", "t2", "t3").
		Pub("a", "t1", "t2", "t3").
		Sub("b", "t1").
		Build()
	g, err := extract.Extract(snap)
	require.NoError(t, err)

	strict := Topics(g, 0)
	v, _ := strict.Value("t1", LowConnectivity)
	assert.Equal(t, 0.0, v)

	loose := Topics(g, 3)
	v, _ = loose.Value("t1", LowConnectivity)
	assert.InDelta(t, 2.0/3.0, v, 1e-12)
}

func TestNodes_SmartCity(t *testing.T) {
	table := compute(t, testutil.SmartCity(), models.KindNode)

	assert.Equal(t, 2.0, value(t, table, "cloud", NodeDensity))
	assert.Equal(t, 0.0, value(t, table, "cloud", NodeInteractionDensity))
	assert.Equal(t, 3.0, value(t, table, "edge1", NodeDensity))
	assert.Equal(t, 2.0, value(t, table, "edge1", NodeInteractionDensity))
	assert.Equal(t, 1.0, value(t, table, "edge2", NodeDensity))
	assert.Equal(t, 0.0, value(t, table, "edge2", NodeInteractionDensity))
}

func TestNodes_PairCountedOnce(t *testing.T) {
	snap := testutil.NewSnapshot().
		Apps("a", "b").
		Topics("t1", "t2").
		Nodes("n", "empty").
		Pub("a", "t1", "t2").
		Sub("b", "t1", "t2").
		Pub("b", "t1").
		Sub("a", "t1").
		Run("a", "n").
		Run("b", "n").
		Build()

	table := compute(t, snap, models.KindNode)

	assert.Equal(t, 1.0, value(t, table, "n", NodeInteractionDensity))
	assert.Equal(t, 0.0, value(t, table, "empty", NodeDensity))
	assert.Equal(t, 0.0, value(t, table, "empty", NodeInteractionDensity))
}

func TestLibraries_SmartCity(t *testing.T) {
	table := compute(t, testutil.SmartCity(), models.KindLibrary)

	assert.Equal(t, 2.0, value(t, table, "opencv", LibraryCoverage))
	assert.Equal(t, 2.0, value(t, table, "opencv", LibraryConcentration))
	assert.Equal(t, 2.0, value(t, table, "protobuf", LibraryCoverage))
	assert.Equal(t, 1.0, value(t, table, "protobuf", LibraryConcentration))
	assert.Equal(t, 4.0, value(t, table, "ros2", LibraryCoverage))
	assert.Equal(t, 3.0, value(t, table, "ros2", LibraryConcentration))
}

func TestLibraries_Unused(t *testing.T) {
	snap := testutil.NewSnapshot().Apps("a").Nodes("n").Libs("dead").Run("a", "n").Build()

	table := compute(t, snap, models.KindLibrary)

	assert.Equal(t, 0.0, value(t, table, "dead", LibraryCoverage))
	assert.Equal(t, 0.0, value(t, table, "dead", LibraryConcentration))
}

func TestCompute_DisconnectedGraphHasFloorValues(t *testing.T) {
	snap := testutil.NewSnapshot().Apps("a", "b").Topics("t").Nodes("n").Libs("l").Build()

	for _, kind := range models.Kinds {
		table := compute(t, snap, kind)
		for _, row := range table.Rows {
			for j, v := range row.Values {
				assert.Zero(t, v, "%s %s %s", kind, row.ID, table.Codes[j])
			}
		}
	}
}

func TestCompute_EmptySnapshot(t *testing.T) {
	for _, kind := range models.Kinds {
		table := compute(t, &models.Snapshot{}, kind)
		assert.Empty(t, table.Rows)
		assert.Equal(t, Codes(kind), table.Codes)
	}
}

func TestCommunicationGraph_SkipsSelfLoops(t *testing.T) {
	snap := testutil.NewSnapshot().Apps("a").Topics("t").Pub("a", "t").Sub("a", "t").Build()
	g, err := extract.Extract(snap)
	require.NoError(t, err)

	comm := CommunicationGraph(g)

	assert.Equal(t, 0, comm.Edges().Len())
}
