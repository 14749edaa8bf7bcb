package catalog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ritikZ18/screen-recoder-da/internal/types"
)

func openTest(t *testing.T) *Catalog {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "db", "catalog.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestCatalog_RecordAndList(t *testing.T) {
	c := openTest(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	recs := []types.RecordingInfo{
		{ID: "a", OutputPath: "/v/a.mp4", SidecarPath: "/v/a.meta.json", Source: "monitor:0",
			StartedAt: base, Duration: 12.5, Frames: 375, DroppedFrames: 2},
		{ID: "b", OutputPath: "/v/b.mp4", Source: "window:0x2a",
			StartedAt: base.Add(time.Hour), Duration: 3, Frames: 90},
	}
	for _, r := range recs {
		if err := c.Record(ctx, r); err != nil {
			t.Fatalf("Record(%s) error = %v", r.ID, err)
		}
	}

	got, err := c.List(ctx, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 2 || got[0].ID != "b" || got[1].ID != "a" {
		t.Fatalf("List() order = %+v, want b then a", got)
	}
	a := got[1]
	if !a.StartedAt.Equal(recs[0].StartedAt) || a.SidecarPath != recs[0].SidecarPath ||
		a.Duration != 12.5 || a.Frames != 375 || a.DroppedFrames != 2 || a.Source != "monitor:0" {
		t.Errorf("List()[1] = %+v, want %+v", a, recs[0])
	}

	limited, err := c.List(ctx, 1)
	if err != nil || len(limited) != 1 {
		t.Errorf("List(1) = %d rows, %v", len(limited), err)
	}
}

func TestCatalog_Upsert(t *testing.T) {
	c := openTest(t)
	ctx := context.Background()

	rec := types.RecordingInfo{ID: "a", OutputPath: "/v/a.mp4", Source: "monitor:0", StartedAt: time.Unix(0, 0).UTC()}
	if err := c.Record(ctx, rec); err != nil {
		t.Fatal(err)
	}
	rec.Frames = 10
	if err := c.Record(ctx, rec); err != nil {
		t.Fatal(err)
	}

	got, ok, err := c.Get(ctx, "a")
	if err != nil || !ok {
		t.Fatalf("Get() = %v, %v", ok, err)
	}
	if got.Frames != 10 {
		t.Errorf("Frames = %d, want 10", got.Frames)
	}
	if _, ok, _ := c.Get(ctx, "missing"); ok {
		t.Error("Get(missing) ok = true")
	}
}
