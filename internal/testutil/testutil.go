// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/models"
)

// SnapshotBuilder assembles snapshots edge by edge. Entities referenced by an
// edge are not created implicitly, so dangling edges can be expressed.
type SnapshotBuilder struct {
	snap models.Snapshot
}

// NewSnapshot starts an empty snapshot.
func NewSnapshot() *SnapshotBuilder {
	return &SnapshotBuilder{}
}

// Apps adds applications whose name equals their id.
func (b *SnapshotBuilder) Apps(ids ...string) *SnapshotBuilder {
	for _, id := range ids {
		b.snap.Applications = append(b.snap.Applications, models.Entity{ID: id, Name: id})
	}
	return b
}

// Topics adds topics whose name equals their id.
func (b *SnapshotBuilder) Topics(ids ...string) *SnapshotBuilder {
	for _, id := range ids {
		b.snap.Topics = append(b.snap.Topics, models.Topic{Entity: models.Entity{ID: id, Name: id}})
	}
	return b
}

// NamedTopic adds a topic with a display name distinct from its id.
func (b *SnapshotBuilder) NamedTopic(id, name string) *SnapshotBuilder {
	b.snap.Topics = append(b.snap.Topics, models.Topic{Entity: models.Entity{ID: id, Name: name}})
	return b
}

// Nodes adds nodes whose name equals their id.
func (b *SnapshotBuilder) Nodes(ids ...string) *SnapshotBuilder {
	for _, id := range ids {
		b.snap.Nodes = append(b.snap.Nodes, models.Entity{ID: id, Name: id})
	}
	return b
}

// Libs adds libraries whose name equals their id.
func (b *SnapshotBuilder) Libs(ids ...string) *SnapshotBuilder {
	for _, id := range ids {
		b.snap.Libraries = append(b.snap.Libraries, models.Entity{ID: id, Name: id})
	}
	return b
}

// Pub adds app -> topic publishes_to edges.
func (b *SnapshotBuilder) Pub(app string, topics ...string) *SnapshotBuilder {
	for _, t := range topics {
		b.snap.Relationships.PublishesTo = append(b.snap.Relationships.PublishesTo, models.Edge{From: app, To: t})
	}
	return b
}

// Sub adds app -> topic subscribes_to edges.
func (b *SnapshotBuilder) Sub(app string, topics ...string) *SnapshotBuilder {
	for _, t := range topics {
		b.snap.Relationships.SubscribesTo = append(b.snap.Relationships.SubscribesTo, models.Edge{From: app, To: t})
	}
	return b
}

// Run adds an app -> node runs_on edge.
func (b *SnapshotBuilder) Run(app, node string) *SnapshotBuilder {
	b.snap.Relationships.RunsOn = append(b.snap.Relationships.RunsOn, models.Edge{From: app, To: node})
	return b
}

// Use adds app -> library uses edges.
func (b *SnapshotBuilder) Use(app string, libs ...string) *SnapshotBuilder {
	for _, l := range libs {
		b.snap.Relationships.Uses = append(b.snap.Relationships.Uses, models.Edge{From: app, To: l})
	}
	return b
}

// Build returns a copy of the assembled snapshot.
func (b *SnapshotBuilder) Build() *models.Snapshot {
	s := b.snap
	return &s
}

// SmartCity returns a small but non-trivial system exercising every relation.
func SmartCity() *models.Snapshot {
	return NewSnapshot().
		Apps("cam_front", "cam_rear", "fusion", "planner", "logger", "dashboard").
		Topics("sensor/camera/front", "sensor/camera/rear", "sensor/lidar", "plan/route", "diag/log").
		Nodes("edge1", "edge2", "cloud").
		Libs("ros2", "opencv", "protobuf").
		Pub("cam_front", "sensor/camera/front").
		Pub("cam_rear", "sensor/camera/rear").
		Sub("fusion", "sensor/camera/front", "sensor/camera/rear", "sensor/lidar").
		Pub("fusion", "plan/route").
		Sub("planner", "plan/route").
		Pub("planner", "diag/log").
		Pub("fusion", "diag/log").
		Sub("logger", "diag/log").
		Sub("dashboard", "plan/route", "diag/log").
		Run("cam_front", "edge1").
		Run("cam_rear", "edge1").
		Run("fusion", "edge1").
		Run("planner", "edge2").
		Run("logger", "cloud").
		Run("dashboard", "cloud").
		Use("cam_front", "ros2", "opencv").
		Use("cam_rear", "ros2", "opencv").
		Use("fusion", "ros2", "protobuf").
		Use("planner", "ros2").
		Use("dashboard", "protobuf").
		Build()
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll(%s) error: %v", dir, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile(%s) error: %v", path, err)
	}
}

// WriteSnapshot serializes snap as JSON into dir/name and returns the path.
func WriteSnapshot(t *testing.T, dir, name string, snap *models.Snapshot) string {
	t.Helper()
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		t.Fatalf("Marshal snapshot error: %v", err)
	}
	path := filepath.Join(dir, name)
	WriteFile(t, path, string(data))
	return path
}

// ReadFile reads content from a file.
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile(%s) error: %v", path, err)
	}
	return string(data)
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
