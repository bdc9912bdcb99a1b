package archive_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/ghtask/pkg/domain/model"
	"github.com/m-mizutani/ghtask/pkg/infra/archive"
)

func TestFile_Save(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "notifications.json")
	a := archive.NewFile(path)

	first := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	second := first.Add(time.Minute)

	gt.NoError(t, a.Save(ctx, first, []model.RawNotification{{"id": "1", "reason": "mention"}}))
	gt.NoError(t, a.Save(ctx, second, []model.RawNotification{{"id": "2", "reason": "assign"}}))

	raw, err := os.ReadFile(path)
	gt.NoError(t, err)

	var got map[string][]map[string]any
	gt.NoError(t, json.Unmarshal(raw, &got))
	gt.Number(t, len(got)).Equal(2)
	gt.Value(t, got["2024-03-01_09:30:00"][0]["id"]).Equal("1")
	gt.Value(t, got["2024-03-01_09:31:00"][0]["reason"]).Equal("assign")
}

func TestFile_SaveCorruptArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notifications.json")
	gt.NoError(t, os.WriteFile(path, []byte("{broken"), 0o600))

	err := archive.NewFile(path).Save(context.Background(), time.Now(), []model.RawNotification{{"id": "1"}})
	gt.Error(t, err)
}

func TestObjectName(t *testing.T) {
	ts := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	gt.Value(t, archive.ObjectName("ghtask/raw", ts)).Equal("ghtask/raw/2024-03-01_09:30:00.json")
	gt.Value(t, archive.ObjectName("", ts)).Equal("2024-03-01_09:30:00.json")
}

func TestGCS_Save(t *testing.T) {
	bucket := os.Getenv("TEST_GCS_BUCKET")
	if bucket == "" {
		t.Skip("TEST_GCS_BUCKET not set")
	}

	ctx := context.Background()
	a, err := archive.NewGCS(ctx, bucket, "ghtask-test")
	gt.NoError(t, err)
	t.Cleanup(func() { _ = a.Shutdown() })

	gt.NoError(t, a.Save(ctx, time.Now(), []model.RawNotification{{"id": "1", "reason": "mention"}}))
}
