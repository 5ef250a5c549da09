package extract

import (
	"errors"
	"testing"

	"github.com/canetizen/structural-analysis-on-distributed-systems/internal/testutil"
	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_SmartCity(t *testing.T) {
	g, err := Extract(testutil.SmartCity())
	require.NoError(t, err)

	assert.Equal(t, []string{"cam_front", "cam_rear", "dashboard", "fusion", "logger", "planner"}, g.Applications.IDs())
	assert.Equal(t, []string{"cloud", "edge1", "edge2"}, g.Nodes.IDs())
	assert.Empty(t, g.Dropped)

	fusion, ok := g.Applications.Lookup("fusion")
	require.True(t, ok)
	assert.Equal(t, []string{"diag/log", "plan/route"}, g.Topics.IDsOf(g.Publishes[fusion]))
	assert.Equal(t, []string{"sensor/camera/front", "sensor/camera/rear", "sensor/lidar"}, g.Topics.IDsOf(g.Subscribes[fusion]))
	assert.Equal(t, []string{"protobuf", "ros2"}, g.Libraries.IDsOf(g.UsesLibs[fusion]))
	assert.Equal(t, []string{"edge1"}, g.Nodes.IDsOf(g.HostedOn[fusion]))

	diag, _ := g.Topics.Lookup("diag/log")
	assert.Equal(t, []string{"fusion", "planner"}, g.Applications.IDsOf(g.Publishers[diag]))
	assert.Equal(t, []string{"dashboard", "logger"}, g.Applications.IDsOf(g.Subscribers[diag]))
	assert.Equal(t, []string{"dashboard", "fusion", "logger", "planner"}, g.Applications.IDsOf(g.Participants(diag)))

	edge1, _ := g.Nodes.Lookup("edge1")
	assert.Equal(t, []string{"cam_front", "cam_rear", "fusion"}, g.Applications.IDsOf(g.Hosted[edge1]))

	ros2, _ := g.Libraries.Lookup("ros2")
	assert.Equal(t, []string{"cam_front", "cam_rear", "fusion", "planner"}, g.Applications.IDsOf(g.Users[ros2]))

	assert.Equal(t, 5, int(g.Interactions(fusion).GetCardinality()))
}

func TestExtract_IsolatedEntitiesHaveEmptySets(t *testing.T) {
	snap := testutil.NewSnapshot().Apps("a").Topics("t").Nodes("n").Libs("l").Build()

	g, err := Extract(snap)
	require.NoError(t, err)

	assert.True(t, g.Publishes[0].IsEmpty())
	assert.True(t, g.Subscribers[0].IsEmpty())
	assert.True(t, g.Hosted[0].IsEmpty())
	assert.True(t, g.Users[0].IsEmpty())
	assert.True(t, g.HostedOn[0].IsEmpty())
}

func TestExtract_DuplicateEdgesCollapse(t *testing.T) {
	snap := testutil.NewSnapshot().Apps("a").Topics("t").Pub("a", "t", "t").Build()

	g, err := Extract(snap)
	require.NoError(t, err)

	assert.Equal(t, uint64(1), g.Publishes[0].GetCardinality())
}

func TestExtract_DanglingEdges(t *testing.T) {
	snap := testutil.NewSnapshot().
		Apps("a").Topics("t").Nodes("n").
		Pub("a", "missing").
		Sub("ghost", "t").
		Run("ghost", "nowhere").
		Use("a", "t"). // topic id is not a library
		Pub("a", "t").
		Build()

	g, err := Extract(snap)
	require.NoError(t, err)

	assert.Equal(t, []DroppedEdge{
		{Relation: models.RelationPublishesTo, From: "a", To: "missing", Dangling: EndpointTo},
		{Relation: models.RelationSubscribesTo, From: "ghost", To: "t", Dangling: EndpointFrom},
		{Relation: models.RelationRunsOn, From: "ghost", To: "nowhere", Dangling: EndpointBoth},
		{Relation: models.RelationUses, From: "a", To: "t", Dangling: EndpointTo},
	}, g.Dropped)
	assert.Equal(t, uint64(1), g.Publishes[0].GetCardinality())
	assert.True(t, g.Subscribers[0].IsEmpty())
}

func TestExtract_Strict(t *testing.T) {
	snap := testutil.NewSnapshot().Apps("a").Nodes("n").Run("a", "x").Build()

	_, err := Extract(snap, WithStrict(true))

	var dangling *DanglingReferenceError
	require.True(t, errors.As(err, &dangling))
	assert.Equal(t, models.RelationRunsOn, dangling.Edge.Relation)
	assert.Equal(t, "x", dangling.Edge.To)
	assert.Contains(t, err.Error(), "runs_on: a -> x (to endpoint not found)")
}

func TestIndex_NamesAndKinds(t *testing.T) {
	snap := testutil.NewSnapshot().NamedTopic("t2", "second").Topics("t1").Build()
	snap.Applications = []models.Entity{{ID: "x"}}

	g, err := Extract(snap)
	require.NoError(t, err)

	assert.Equal(t, "t1", g.Topics.Name(0))
	assert.Equal(t, "second", g.Topics.Name(1))
	assert.Equal(t, "x", g.Applications.Name(0), "name falls back to id")
	assert.Equal(t, g.Topics, g.Index(models.KindTopic))
	assert.Equal(t, 0, g.Index("unknown").Len())

	_, ok := g.Topics.Lookup("nope")
	assert.False(t, ok)
}
