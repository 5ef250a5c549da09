package category

import (
	"testing"

	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/models"
	"github.com/stretchr/testify/assert"
)

func topics(names ...string) []models.Entity {
	out := make([]models.Entity, len(names))
	for i, n := range names {
		out[i] = models.Entity{ID: n, Name: n}
	}
	return out
}

func TestLongestCommonPrefix(t *testing.T) {
	tests := []struct {
		a, b, want string
	}{
		{"sensor/camera/front", "sensor/camera/rear", "sensor/camera/"},
		{"abc", "abd", "ab"},
		{"abc", "abc", "abc"},
		{"abc", "xyz", ""},
		{"", "abc", ""},
		{"Topic", "topic", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LongestCommonPrefix(tt.a, tt.b), "%q vs %q", tt.a, tt.b)
	}
}

func TestBuild(t *testing.T) {
	cats := Build(topics(
		"sensor/camera/front", "sensor/camera/rear", "sensor/lidar", "plan/route", "diag/log",
	), DefaultMinPrefixLen)

	assert.Equal(t, Categories{
		"sensor/camera/front": "sensor/camera/",
		"sensor/camera/rear":  "sensor/camera/",
		"sensor/lidar":        "sensor/",
		"plan/route":          "plan/route",
		"diag/log":            "diag/log",
	}, cats)
	assert.Equal(t, 4, cats.Distinct())
}

func TestBuild_MinPrefixLength(t *testing.T) {
	in := topics("abX", "abY")

	assert.Equal(t, Categories{"abX": "abX", "abY": "abY"}, Build(in, 3))
	assert.Equal(t, Categories{"abX": "ab", "abY": "ab"}, Build(in, 2))
}

func TestBuild_UsesNamesNotIDs(t *testing.T) {
	in := []models.Entity{
		{ID: "1", Name: "orders/created"},
		{ID: "2", Name: "orders/paid"},
		{ID: "3"},
	}

	cats := Build(in, DefaultMinPrefixLen)

	assert.Equal(t, "orders/", cats["1"])
	assert.Equal(t, "orders/", cats["2"])
	assert.Equal(t, "3", cats["3"])
}

func TestBuild_SingleAndEmpty(t *testing.T) {
	assert.Equal(t, Categories{"only": "only"}, Build(topics("only"), 3))
	assert.Empty(t, Build(nil, 3))
}

func TestBuild_IdenticalNames(t *testing.T) {
	in := []models.Entity{{ID: "a", Name: "same"}, {ID: "b", Name: "same"}}

	assert.Equal(t, Categories{"a": "same", "b": "same"}, Build(in, 3))
}

func TestAssignments(t *testing.T) {
	cats := Categories{"t2": "x/", "t1": "x/"}

	got := cats.Assignments(map[string]string{"t1": "x/one", "t2": "x/two"})

	assert.Equal(t, []Assignment{
		{TopicID: "t1", Name: "x/one", Category: "x/"},
		{TopicID: "t2", Name: "x/two", Category: "x/"},
	}, got)
	assert.Equal(t, 1, cats.Distinct())
}
