package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialtrack/internal/domain/analytics"
)

func setupCache(t *testing.T) (*ReportCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client, err := NewClient(context.Background(), mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return NewReportCache(client, time.Minute), mr
}

func TestReportCache_SetGet(t *testing.T) {
	ctx := context.Background()
	c, mr := setupCache(t)

	key := Key("alice", "dashboard", "all", "2026-03-18")
	assert.Equal(t, "report:"+ownerSegment("alice")+":dashboard:all:2026-03-18", key)
	assert.Equal(t, key, Key("alice", "dashboard", "all", "2026-03-18"))
	assert.NotEqual(t, key, Key("bob", "dashboard", "all", "2026-03-18"))

	var miss analytics.Dashboard
	found, err := c.Get(ctx, key, &miss)
	require.NoError(t, err)
	assert.False(t, found)

	want := analytics.Dashboard{
		Stats:           analytics.DashboardStats{TotalPosts: 3, AvgEngagement: 4.5},
		Recommendations: []analytics.Recommendation{{Type: "timing", Priority: analytics.PriorityHigh, Title: "Post at 18:00"}},
		Alerts:          []analytics.Alert{},
	}
	require.NoError(t, c.Set(ctx, key, want))

	var got analytics.Dashboard
	found, err = c.Get(ctx, key, &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, want, got)

	assert.Equal(t, time.Minute, mr.TTL(key))

	mr.FastForward(2 * time.Minute)
	found, err = c.Get(ctx, key, &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestReportCache_InvalidateOwner(t *testing.T) {
	ctx := context.Background()
	c, mr := setupCache(t)

	require.NoError(t, c.Set(ctx, Key("alice", "report", "all", "d"), 1))
	require.NoError(t, c.Set(ctx, Key("alice", "trends", "p1", "d"), 2))
	require.NoError(t, c.Set(ctx, Key("bob", "report", "all", "d"), 3))

	require.NoError(t, c.Invalidate(ctx, "alice"))

	assert.False(t, mr.Exists(Key("alice", "report", "all", "d")))
	assert.False(t, mr.Exists(Key("alice", "trends", "p1", "d")))
	assert.True(t, mr.Exists(Key("bob", "report", "all", "d")))

	require.NoError(t, c.Invalidate(ctx, "nobody"))
}

func TestReportCache_InvalidateGlobOwner(t *testing.T) {
	tests := []struct {
		name   string
		owner  string
		others []string
	}{
		{"star", "a*", []string{"ab", "a", "a*b"}},
		{"question mark", "a?", []string{"ab", "ac"}},
		{"character class", "[ab]", []string{"a", "b"}},
		{"escape", `a\*`, []string{`a\b`, "a*"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			c, mr := setupCache(t)

			require.NoError(t, c.Set(ctx, Key(tt.owner, "report", "all", "d"), 1))
			for _, other := range tt.others {
				require.NoError(t, c.Set(ctx, Key(other, "report", "all", "d"), 2))
			}

			require.NoError(t, c.Invalidate(ctx, tt.owner))

			assert.False(t, mr.Exists(Key(tt.owner, "report", "all", "d")))
			for _, other := range tt.others {
				assert.True(t, mr.Exists(Key(other, "report", "all", "d")), other)
			}
		})
	}
}

func TestReportCache_CorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, mr := setupCache(t)

	key := Key("alice", "report")
	require.NoError(t, mr.Set(key, "{not json"))

	var got analytics.Report
	found, err := c.Get(ctx, key, &got)
	assert.Error(t, err)
	assert.False(t, found)
}

func TestReportCache_NilIsEmpty(t *testing.T) {
	var c *ReportCache
	ctx := context.Background()

	var got analytics.Report
	found, err := c.Get(ctx, "k", &got)
	assert.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, c.Set(ctx, "k", got))
	assert.NoError(t, c.Invalidate(ctx, "alice"))
}

func TestNewClient_Errors(t *testing.T) {
	_, err := NewClient(context.Background(), "redis://%zz")
	assert.Error(t, err)

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err = NewClient(context.Background(), addr)
	assert.Error(t, err)
}
