package notify

import (
	"bytes"
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolioapi/internal/logging"
)

func TestFeed_NotifyFillsDefaults(t *testing.T) {
	var buf bytes.Buffer
	feed := NewFeed(0, logging.New(&buf, time.UTC, 0))
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	feed.now = func() time.Time { return fixed }

	feed.Notify(context.Background(), Notification{Title: "File deleted", Description: "File has been removed from your portfolio."})

	got := feed.List("")
	require.Len(t, got, 1)
	assert.NotEmpty(t, got[0].ID)
	assert.Equal(t, VariantDefault, got[0].Variant)
	assert.Equal(t, fixed, got[0].CreatedAt)
	assert.Contains(t, buf.String(), `"title":"File deleted"`)
	assert.Equal(t, DefaultHistory, feed.size)
}

func TestFeed_KeepsMostRecent(t *testing.T) {
	feed := NewFeed(3, logging.Discard())
	for i := 0; i < 5; i++ {
		feed.Notify(context.Background(), Notification{ID: strconv.Itoa(i), Title: "n"})
	}

	got := feed.List("")
	require.Len(t, got, 3)
	assert.Equal(t, "2", got[0].ID)
	assert.Equal(t, "4", got[2].ID)
}

func TestFeed_ListSince(t *testing.T) {
	feed := NewFeed(10, logging.Discard())
	for _, id := range []string{"a", "b", "c"} {
		feed.Notify(context.Background(), Notification{ID: id})
	}

	tests := []struct {
		name  string
		since string
		want  []string
	}{
		{"empty since", "", []string{"a", "b", "c"}},
		{"middle", "a", []string{"b", "c"}},
		{"latest", "c", []string{}},
		{"unknown", "zzz", []string{"a", "b", "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids := []string{}
			for _, n := range feed.List(tt.since) {
				ids = append(ids, n.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestFeed_DestructiveLogsWarn(t *testing.T) {
	var buf bytes.Buffer
	feed := NewFeed(1, logging.New(&buf, time.UTC, 0))

	feed.Notify(context.Background(), Notification{Title: "Upload failed", Variant: VariantDestructive})

	assert.Contains(t, buf.String(), `"level":"warn"`)
}
