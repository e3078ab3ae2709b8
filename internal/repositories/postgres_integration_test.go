package repositories

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/cockroachdb/cockroach-go/v2/testserver"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clipstream/backend/internal/models"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	server, err := testserver.NewTestServer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "start cockroach test server: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, server.PGURL().String())
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect to cockroach test server: %v\n", err)
		server.Stop()
		os.Exit(1)
	}

	if err := applyMigrations(ctx, pool); err != nil {
		fmt.Fprintf(os.Stderr, "apply migrations: %v\n", err)
		pool.Close()
		server.Stop()
		os.Exit(1)
	}

	testPool = pool

	code := m.Run()

	pool.Close()
	server.Stop()

	os.Exit(code)
}

func TestPostgresUserRepository_CreateFindAndRotate(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	repo := NewPostgresUserRepository(testPool)
	user := createTestUser(t, repo, "alice")

	dup := user
	dup.ID = uuid.NewString()
	if err := repo.Create(ctx, dup); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate username, got %v", err)
	}

	fetched, err := repo.FindByUsernameOrEmail(ctx, "alice")
	if err != nil {
		t.Fatalf("find by username: %v", err)
	}
	if fetched.ID != user.ID {
		t.Fatalf("expected user %s, got %s", user.ID, fetched.ID)
	}

	fetched, err = repo.FindByUsernameOrEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("find by email: %v", err)
	}
	if fetched.ID != user.ID {
		t.Fatalf("expected user %s, got %s", user.ID, fetched.ID)
	}

	if err := repo.SetRefreshToken(ctx, user.ID, "token-1"); err != nil {
		t.Fatalf("set refresh token: %v", err)
	}
	fetched, _ = repo.FindByID(ctx, user.ID)
	if fetched.RefreshToken != "token-1" {
		t.Fatalf("expected stored refresh token, got %q", fetched.RefreshToken)
	}

	// Clearing stores NULL, surfaced as the empty string.
	if err := repo.SetRefreshToken(ctx, user.ID, ""); err != nil {
		t.Fatalf("clear refresh token: %v", err)
	}
	fetched, _ = repo.FindByID(ctx, user.ID)
	if fetched.RefreshToken != "" {
		t.Fatalf("expected cleared refresh token, got %q", fetched.RefreshToken)
	}

	if _, err := repo.FindByID(ctx, uuid.NewString()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing user, got %v", err)
	}
}

func TestPostgresVideoRepository_LifecycleAndCascade(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	users := NewPostgresUserRepository(testPool)
	videos := NewPostgresVideoRepository(testPool)
	comments := NewPostgresCommentRepository(testPool)
	likes := NewPostgresLikeRepository(testPool)

	owner := createTestUser(t, users, "owner")
	video := createTestVideo(t, videos, owner.ID, "first clip", true)

	published, err := videos.TogglePublished(ctx, video.ID)
	if err != nil {
		t.Fatalf("toggle published: %v", err)
	}
	if published {
		t.Fatal("expected toggle to unpublish")
	}
	published, err = videos.TogglePublished(ctx, video.ID)
	if err != nil {
		t.Fatalf("toggle published: %v", err)
	}
	if !published {
		t.Fatal("expected second toggle to republish")
	}

	for i := 0; i < 3; i++ {
		if err := videos.IncrementViews(ctx, video.ID); err != nil {
			t.Fatalf("increment views: %v", err)
		}
	}
	fetched, err := videos.FindByID(ctx, video.ID)
	if err != nil {
		t.Fatalf("find video: %v", err)
	}
	if fetched.Views != 3 {
		t.Fatalf("expected 3 views, got %d", fetched.Views)
	}

	comment := models.Comment{
		ID:        uuid.NewString(),
		OwnerID:   owner.ID,
		VideoID:   video.ID,
		Content:   "first",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := comments.Create(ctx, comment); err != nil {
		t.Fatalf("create comment: %v", err)
	}
	if _, err := likes.Toggle(ctx, owner.ID, models.LikeTargetVideo, video.ID); err != nil {
		t.Fatalf("like video: %v", err)
	}

	if err := videos.Delete(ctx, video.ID); err != nil {
		t.Fatalf("delete video: %v", err)
	}

	if _, err := comments.FindByID(ctx, comment.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected comment cascade-deleted, got %v", err)
	}

	var likeCount int
	if err := testPool.QueryRow(ctx, `SELECT count(*) FROM likes`).Scan(&likeCount); err != nil {
		t.Fatalf("count likes: %v", err)
	}
	if likeCount != 0 {
		t.Fatalf("expected like cascade-deleted, got %d rows", likeCount)
	}
}

func TestPostgresLikeRepository_ToggleIsPresenceBased(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	users := NewPostgresUserRepository(testPool)
	videos := NewPostgresVideoRepository(testPool)
	likes := NewPostgresLikeRepository(testPool)

	owner := createTestUser(t, users, "owner")
	liker := createTestUser(t, users, "liker")
	video := createTestVideo(t, videos, owner.ID, "clip", true)

	liked, err := likes.Toggle(ctx, liker.ID, models.LikeTargetVideo, video.ID)
	if err != nil {
		t.Fatalf("toggle like: %v", err)
	}
	if !liked {
		t.Fatal("first toggle should like")
	}

	liked, err = likes.Toggle(ctx, liker.ID, models.LikeTargetVideo, video.ID)
	if err != nil {
		t.Fatalf("toggle like: %v", err)
	}
	if liked {
		t.Fatal("second toggle should unlike")
	}

	var count int
	if err := testPool.QueryRow(ctx, `SELECT count(*) FROM likes WHERE liker_id = $1`, liker.ID).Scan(&count); err != nil {
		t.Fatalf("count likes: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no like rows after untoggle, got %d", count)
	}

	// Liking a tweet and a video from the same user coexist; they hit
	// different partial indexes.
	tweets := NewPostgresTweetRepository(testPool)
	tweet := models.Tweet{ID: uuid.NewString(), OwnerID: owner.ID, Content: "hi", CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC()}
	if err := tweets.Create(ctx, tweet); err != nil {
		t.Fatalf("create tweet: %v", err)
	}
	if _, err := likes.Toggle(ctx, liker.ID, models.LikeTargetVideo, video.ID); err != nil {
		t.Fatalf("like video: %v", err)
	}
	if _, err := likes.Toggle(ctx, liker.ID, models.LikeTargetTweet, tweet.ID); err != nil {
		t.Fatalf("like tweet: %v", err)
	}
	if err := testPool.QueryRow(ctx, `SELECT count(*) FROM likes WHERE liker_id = $1`, liker.ID).Scan(&count); err != nil {
		t.Fatalf("count likes: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected independent like rows per target kind, got %d", count)
	}
}

func TestPostgresSubscriptionRepository_Toggle(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	users := NewPostgresUserRepository(testPool)
	subs := NewPostgresSubscriptionRepository(testPool)

	channel := createTestUser(t, users, "channel")
	fan := createTestUser(t, users, "fan")

	subscribed, err := subs.Toggle(ctx, fan.ID, channel.ID)
	if err != nil {
		t.Fatalf("toggle subscription: %v", err)
	}
	if !subscribed {
		t.Fatal("first toggle should subscribe")
	}

	subscribed, err = subs.Toggle(ctx, fan.ID, channel.ID)
	if err != nil {
		t.Fatalf("toggle subscription: %v", err)
	}
	if subscribed {
		t.Fatal("second toggle should unsubscribe")
	}
}

func TestPostgresPlaylistRepository_MembershipOrderAndIdempotence(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	users := NewPostgresUserRepository(testPool)
	videos := NewPostgresVideoRepository(testPool)
	playlists := NewPostgresPlaylistRepository(testPool)

	owner := createTestUser(t, users, "owner")
	first := createTestVideo(t, videos, owner.ID, "first", true)
	second := createTestVideo(t, videos, owner.ID, "second", true)

	playlist := models.Playlist{
		ID:        uuid.NewString(),
		OwnerID:   owner.ID,
		Name:      "mix",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := playlists.Create(ctx, playlist); err != nil {
		t.Fatalf("create playlist: %v", err)
	}

	if err := playlists.AddVideo(ctx, playlist.ID, first.ID); err != nil {
		t.Fatalf("add first video: %v", err)
	}
	if err := playlists.AddVideo(ctx, playlist.ID, second.ID); err != nil {
		t.Fatalf("add second video: %v", err)
	}
	// Re-adding an existing member is a no-op, not an error.
	if err := playlists.AddVideo(ctx, playlist.ID, first.ID); err != nil {
		t.Fatalf("re-add first video: %v", err)
	}

	var count int
	if err := testPool.QueryRow(ctx, `SELECT count(*) FROM playlist_videos WHERE playlist_id = $1`, playlist.ID).Scan(&count); err != nil {
		t.Fatalf("count members: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 members, got %d", count)
	}

	var firstPos, secondPos int64
	if err := testPool.QueryRow(ctx, `SELECT position FROM playlist_videos WHERE playlist_id = $1 AND video_id = $2`, playlist.ID, first.ID).Scan(&firstPos); err != nil {
		t.Fatalf("read first position: %v", err)
	}
	if err := testPool.QueryRow(ctx, `SELECT position FROM playlist_videos WHERE playlist_id = $1 AND video_id = $2`, playlist.ID, second.ID).Scan(&secondPos); err != nil {
		t.Fatalf("read second position: %v", err)
	}
	if firstPos >= secondPos {
		t.Fatalf("expected insertion order preserved, got positions %d and %d", firstPos, secondPos)
	}

	if err := playlists.RemoveVideo(ctx, playlist.ID, first.ID); err != nil {
		t.Fatalf("remove video: %v", err)
	}
	if err := playlists.RemoveVideo(ctx, playlist.ID, first.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound removing absent member, got %v", err)
	}
}

func applyMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	migrationsDir := filepath.Join("..", "..", "migrations")
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		contents, err := os.ReadFile(filepath.Join(migrationsDir, entry.Name()))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}

		if _, err := pool.Exec(ctx, string(contents)); err != nil {
			return fmt.Errorf("apply migration %s: %w", entry.Name(), err)
		}
	}

	return nil
}

func resetDatabase(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	conn, err := testPool.Acquire(ctx)
	if err != nil {
		t.Fatalf("acquire connection: %v", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "TRUNCATE TABLE likes, subscriptions, playlist_videos, playlists, comments, tweets, videos, users CASCADE"); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}

func createTestUser(t *testing.T, repo *PostgresUserRepository, username string) models.User {
	t.Helper()
	user := models.User{
		ID:        uuid.NewString(),
		Username:  username,
		Email:     username + "@example.com",
		FullName:  username,
		Password:  "password-hash",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("create test user: %v", err)
	}
	return user
}

func createTestVideo(t *testing.T, repo *PostgresVideoRepository, ownerID, title string, published bool) models.Video {
	t.Helper()
	video := models.Video{
		ID:           uuid.NewString(),
		OwnerID:      ownerID,
		VideoURL:     "https://media.test/videos/" + uuid.NewString(),
		ThumbnailURL: "https://media.test/thumbnails/" + uuid.NewString(),
		Title:        title,
		Duration:     12.5,
		Published:    published,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	if err := repo.Create(context.Background(), video); err != nil {
		t.Fatalf("create test video: %v", err)
	}
	return video
}
