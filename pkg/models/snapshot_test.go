package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{
		"":             "",
		"topic":        KindTopic,
		"Libraries":    KindLibrary,
		" node ":       KindNode,
		"applications": KindApplication,
	} {
		got, err := ParseKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseKind("broker")
	assert.Error(t, err)
}

func TestKind_Plural(t *testing.T) {
	assert.Equal(t, "applications", KindApplication.Plural())
	assert.Equal(t, "topics", KindTopic.Plural())
	assert.Equal(t, "nodes", KindNode.Plural())
	assert.Equal(t, "libraries", KindLibrary.Plural())
}

func TestScalar_UnmarshalJSON(t *testing.T) {
	var q QoS
	require.NoError(t, json.Unmarshal([]byte(`{"transport_priority": 5}`), &q))
	assert.Equal(t, Scalar("5"), q.TransportPriority)

	require.NoError(t, json.Unmarshal([]byte(`{"transport_priority": "HIGH"}`), &q))
	assert.Equal(t, Scalar("HIGH"), q.TransportPriority)

	q = QoS{}
	require.NoError(t, json.Unmarshal([]byte(`{"transport_priority": null}`), &q))
	assert.Empty(t, q.TransportPriority)
}

func TestEntity_DisplayName(t *testing.T) {
	assert.Equal(t, "a1", Entity{ID: "a1"}.DisplayName())
	assert.Equal(t, "Fusion", Entity{ID: "a1", Name: "Fusion"}.DisplayName())
}

func TestSnapshot_Entities(t *testing.T) {
	snap := &Snapshot{
		Applications: []Entity{{ID: "a"}},
		Topics:       []Topic{{Entity: Entity{ID: "t", Name: "T"}, Size: 8}},
		Relationships: Relationships{
			PublishesTo: []Edge{{From: "a", To: "t"}},
			RunsOn:      []Edge{{From: "a", To: "n"}},
		},
	}

	assert.Equal(t, []Entity{{ID: "t", Name: "T"}}, snap.Entities(KindTopic))
	assert.Len(t, snap.Entities(KindApplication), 1)
	assert.Empty(t, snap.Entities(KindNode))
	assert.Equal(t, 2, snap.EdgeCount())
}
