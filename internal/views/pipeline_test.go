package views

import (
	"strings"
	"testing"
)

func TestPipelineRendersStagesInOrder(t *testing.T) {
	sql, args, err := From("videos", "v").
		Match("v.published").
		Match("v.title ILIKE ?", "%cats%").
		Join("users", "u", "u.id = v.owner_id").
		Compute("(SELECT count(*) FROM likes l WHERE l.video_id = v.id)", "likes_count").
		Compute("EXISTS (SELECT 1 FROM likes l WHERE l.video_id = v.id AND l.liker_id = ?)", "is_liked", "viewer-1").
		Sort("v.created_at", true).
		Project("v.id", "v.title", "u.username").
		SQL()
	if err != nil {
		t.Fatalf("render pipeline: %v", err)
	}

	wantOrder := []string{"SELECT", "v.id, v.title, u.username", "likes_count", "FROM videos v", "LEFT JOIN users u", "WHERE", "(v.published)", "ORDER BY v.created_at DESC"}
	pos := 0
	for _, part := range wantOrder {
		idx := strings.Index(sql[pos:], part)
		if idx < 0 {
			t.Fatalf("expected %q after position %d in:\n%s", part, pos, sql)
		}
		pos += idx
	}

	if len(args) != 2 {
		t.Fatalf("expected 2 bound args, got %d: %v", len(args), args)
	}
	// Placeholders bind in render order: the select list first, then the
	// where clause.
	if args[0] != "viewer-1" || args[1] != "%cats%" {
		t.Fatalf("args bound out of order: %v", args)
	}
	if !strings.Contains(sql, "$1") || !strings.Contains(sql, "$2") {
		t.Fatalf("expected positional placeholders in:\n%s", sql)
	}
	if strings.Contains(sql, "?") {
		t.Fatalf("unrewritten placeholder left in:\n%s", sql)
	}
}

func TestPipelineMatchAnyGroupsAgainstPostFilter(t *testing.T) {
	sql, _, err := From("videos", "v").
		MatchAny().
		Match("v.title ILIKE ?", "%a%").
		Match("v.owner_id = ?", "owner-1").
		Sort("v.created_at", true).
		PostFilter("v.published OR v.owner_id = ?", "viewer-1").
		Project("v.id").
		SQL()
	if err != nil {
		t.Fatalf("render pipeline: %v", err)
	}

	if !strings.Contains(sql, "(($1") && !strings.Contains(sql, "((v.title") {
		t.Fatalf("expected match group to be parenthesized in:\n%s", sql)
	}
	if !strings.Contains(sql, " OR ") {
		t.Fatalf("expected OR-joined matches in:\n%s", sql)
	}
	// The OR group must not leak past the visibility post-filter.
	whereIdx := strings.Index(sql, "WHERE ")
	if whereIdx < 0 {
		t.Fatalf("no WHERE clause in:\n%s", sql)
	}
	where := sql[whereIdx:]
	if !strings.Contains(where, ") AND (") {
		t.Fatalf("expected post-filter ANDed against the match group in:\n%s", where)
	}
}

func TestPipelineRejectsOutOfOrderStages(t *testing.T) {
	_, _, err := From("videos", "v").
		Sort("v.created_at", true).
		Match("v.published").
		Project("v.id").
		SQL()
	if err == nil {
		t.Fatal("expected stage-order error for match after sort")
	}
	if !strings.Contains(err.Error(), "match stage after sort stage") {
		t.Fatalf("unexpected error: %v", err)
	}

	_, _, err = From("videos", "v").
		Sort("v.created_at", true).
		PostFilter("v.published").
		Join("users", "u", "u.id = v.owner_id").
		Project("v.id").
		SQL()
	if err == nil {
		t.Fatal("expected stage-order error for join after post-filter")
	}
}

func TestPipelineErrorStickiness(t *testing.T) {
	p := From("videos", "v").
		Compute("count(*)", "c").
		Match("v.published")

	// Later, individually valid stages must not clear the earlier violation.
	p.Sort("v.created_at", false).Project("v.id")

	if _, _, err := p.SQL(); err == nil {
		t.Fatal("expected poisoned pipeline to keep its error")
	}
}

func TestPipelineRequiresProjection(t *testing.T) {
	if _, _, err := From("videos", "v").Match("v.published").SQL(); err == nil {
		t.Fatal("expected error for pipeline without projection")
	}
}

func TestPipelineGroupByMovesPostFilterToHaving(t *testing.T) {
	sql, _, err := From("playlists", "p").
		Join("playlist_videos", "pv", "pv.playlist_id = p.id").
		Compute("count(pv.video_id)", "video_count").
		GroupBy("p.id").
		PostFilter("count(pv.video_id) > ?", 0).
		Project("p.id").
		SQL()
	if err != nil {
		t.Fatalf("render pipeline: %v", err)
	}

	if !strings.Contains(sql, "GROUP BY p.id") {
		t.Fatalf("expected GROUP BY in:\n%s", sql)
	}
	if !strings.Contains(sql, "HAVING") {
		t.Fatalf("expected HAVING for grouped post-filter in:\n%s", sql)
	}
	if strings.Contains(strings.Split(sql, "GROUP BY")[0], "count(pv.video_id) > ") {
		t.Fatalf("grouped post-filter leaked into WHERE in:\n%s", sql)
	}
}

func TestNormalizePage(t *testing.T) {
	cases := []struct {
		page, limit         int
		wantPage, wantLimit int
	}{
		{0, 0, 1, 10},
		{-3, -1, 1, 10},
		{2, 25, 2, 25},
		{1, 500, 1, 100},
	}

	for _, tc := range cases {
		page, limit := NormalizePage(tc.page, tc.limit)
		if page != tc.wantPage || limit != tc.wantLimit {
			t.Fatalf("NormalizePage(%d, %d) = (%d, %d), want (%d, %d)",
				tc.page, tc.limit, page, limit, tc.wantPage, tc.wantLimit)
		}
	}
}
