package handlers

import (
	"context"
	"fmt"

	"github.com/clipstream/backend/internal/models"
	"github.com/clipstream/backend/internal/repositories"
	"github.com/clipstream/backend/internal/views"
)

type fakeUserStore struct {
	users map[string]models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]models.User)}
}

func (s *fakeUserStore) Create(_ context.Context, user models.User) error {
	for _, existing := range s.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return repositories.ErrConflict
		}
	}
	s.users[user.ID] = user
	return nil
}

func (s *fakeUserStore) FindByID(_ context.Context, id string) (models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	return user, nil
}

func (s *fakeUserStore) FindByUsernameOrEmail(_ context.Context, identifier string) (models.User, error) {
	for _, user := range s.users {
		if user.Username == identifier || user.Email == identifier {
			return user, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func (s *fakeUserStore) UpdateProfile(_ context.Context, user models.User) error {
	stored, ok := s.users[user.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	stored.FullName = user.FullName
	stored.Email = user.Email
	s.users[user.ID] = stored
	return nil
}

func (s *fakeUserStore) UpdatePassword(_ context.Context, id, passwordHash string) error {
	return s.update(id, func(u *models.User) { u.Password = passwordHash })
}

func (s *fakeUserStore) UpdateAvatar(_ context.Context, id, avatarURL string) error {
	return s.update(id, func(u *models.User) { u.AvatarURL = avatarURL })
}

func (s *fakeUserStore) UpdateCover(_ context.Context, id, coverURL string) error {
	return s.update(id, func(u *models.User) { u.CoverURL = coverURL })
}

func (s *fakeUserStore) SetRefreshToken(_ context.Context, id, refreshToken string) error {
	return s.update(id, func(u *models.User) { u.RefreshToken = refreshToken })
}

func (s *fakeUserStore) update(id string, apply func(*models.User)) error {
	user, ok := s.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	apply(&user)
	s.users[id] = user
	return nil
}

type fakeVideoStore struct {
	videos map[string]models.Video
}

func newFakeVideoStore() *fakeVideoStore {
	return &fakeVideoStore{videos: make(map[string]models.Video)}
}

func (s *fakeVideoStore) Create(_ context.Context, video models.Video) error {
	s.videos[video.ID] = video
	return nil
}

func (s *fakeVideoStore) FindByID(_ context.Context, id string) (models.Video, error) {
	video, ok := s.videos[id]
	if !ok {
		return models.Video{}, repositories.ErrNotFound
	}
	return video, nil
}

func (s *fakeVideoStore) UpdateDetails(_ context.Context, video models.Video) error {
	if _, ok := s.videos[video.ID]; !ok {
		return repositories.ErrNotFound
	}
	s.videos[video.ID] = video
	return nil
}

func (s *fakeVideoStore) TogglePublished(_ context.Context, id string) (bool, error) {
	video, ok := s.videos[id]
	if !ok {
		return false, repositories.ErrNotFound
	}
	video.Published = !video.Published
	s.videos[id] = video
	return video.Published, nil
}

func (s *fakeVideoStore) IncrementViews(_ context.Context, id string) error {
	video, ok := s.videos[id]
	if !ok {
		return repositories.ErrNotFound
	}
	video.Views++
	s.videos[id] = video
	return nil
}

func (s *fakeVideoStore) Delete(_ context.Context, id string) error {
	if _, ok := s.videos[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.videos, id)
	return nil
}

type fakeCommentStore struct {
	comments map[string]models.Comment
}

func newFakeCommentStore() *fakeCommentStore {
	return &fakeCommentStore{comments: make(map[string]models.Comment)}
}

func (s *fakeCommentStore) Create(_ context.Context, comment models.Comment) error {
	s.comments[comment.ID] = comment
	return nil
}

func (s *fakeCommentStore) FindByID(_ context.Context, id string) (models.Comment, error) {
	comment, ok := s.comments[id]
	if !ok {
		return models.Comment{}, repositories.ErrNotFound
	}
	return comment, nil
}

func (s *fakeCommentStore) UpdateContent(_ context.Context, id, content string) error {
	comment, ok := s.comments[id]
	if !ok {
		return repositories.ErrNotFound
	}
	comment.Content = content
	s.comments[id] = comment
	return nil
}

func (s *fakeCommentStore) Delete(_ context.Context, id string) error {
	if _, ok := s.comments[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.comments, id)
	return nil
}

type fakeTweetStore struct {
	tweets map[string]models.Tweet
}

func newFakeTweetStore() *fakeTweetStore {
	return &fakeTweetStore{tweets: make(map[string]models.Tweet)}
}

func (s *fakeTweetStore) Create(_ context.Context, tweet models.Tweet) error {
	s.tweets[tweet.ID] = tweet
	return nil
}

func (s *fakeTweetStore) FindByID(_ context.Context, id string) (models.Tweet, error) {
	tweet, ok := s.tweets[id]
	if !ok {
		return models.Tweet{}, repositories.ErrNotFound
	}
	return tweet, nil
}

func (s *fakeTweetStore) UpdateContent(_ context.Context, id, content string) error {
	tweet, ok := s.tweets[id]
	if !ok {
		return repositories.ErrNotFound
	}
	tweet.Content = content
	s.tweets[id] = tweet
	return nil
}

func (s *fakeTweetStore) Delete(_ context.Context, id string) error {
	if _, ok := s.tweets[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.tweets, id)
	return nil
}

type fakePlaylistStore struct {
	playlists map[string]models.Playlist
	members   map[string][]string
}

func newFakePlaylistStore() *fakePlaylistStore {
	return &fakePlaylistStore{
		playlists: make(map[string]models.Playlist),
		members:   make(map[string][]string),
	}
}

func (s *fakePlaylistStore) Create(_ context.Context, playlist models.Playlist) error {
	s.playlists[playlist.ID] = playlist
	return nil
}

func (s *fakePlaylistStore) FindByID(_ context.Context, id string) (models.Playlist, error) {
	playlist, ok := s.playlists[id]
	if !ok {
		return models.Playlist{}, repositories.ErrNotFound
	}
	return playlist, nil
}

func (s *fakePlaylistStore) UpdateDetails(_ context.Context, id, name, description string) error {
	playlist, ok := s.playlists[id]
	if !ok {
		return repositories.ErrNotFound
	}
	playlist.Name = name
	playlist.Description = description
	s.playlists[id] = playlist
	return nil
}

func (s *fakePlaylistStore) Delete(_ context.Context, id string) error {
	if _, ok := s.playlists[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.playlists, id)
	delete(s.members, id)
	return nil
}

func (s *fakePlaylistStore) AddVideo(_ context.Context, playlistID, videoID string) error {
	for _, member := range s.members[playlistID] {
		if member == videoID {
			return nil
		}
	}
	s.members[playlistID] = append(s.members[playlistID], videoID)
	return nil
}

func (s *fakePlaylistStore) RemoveVideo(_ context.Context, playlistID, videoID string) error {
	members := s.members[playlistID]
	for i, member := range members {
		if member == videoID {
			s.members[playlistID] = append(members[:i], members[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}

// fakeLikeStore mirrors the presence-is-state semantics of the real edge
// repository: toggling flips map membership.
type fakeLikeStore struct {
	edges map[string]bool
}

func newFakeLikeStore() *fakeLikeStore {
	return &fakeLikeStore{edges: make(map[string]bool)}
}

func (s *fakeLikeStore) Toggle(_ context.Context, likerID string, target models.LikeTarget, targetID string) (bool, error) {
	key := fmt.Sprintf("%s|%s|%s", likerID, target, targetID)
	if s.edges[key] {
		delete(s.edges, key)
		return false, nil
	}
	s.edges[key] = true
	return true, nil
}

type fakeSubscriptionStore struct {
	edges map[string]bool
}

func newFakeSubscriptionStore() *fakeSubscriptionStore {
	return &fakeSubscriptionStore{edges: make(map[string]bool)}
}

func (s *fakeSubscriptionStore) Toggle(_ context.Context, subscriberID, channelID string) (bool, error) {
	key := subscriberID + "|" + channelID
	if s.edges[key] {
		delete(s.edges, key)
		return false, nil
	}
	s.edges[key] = true
	return true, nil
}

// fakeMediaStore records uploads and deletions. Deletions of URLs listed in
// failDeletes return an error, for exercising the purge-keeps-going paths.
type fakeMediaStore struct {
	uploads     int
	uploaded    []string
	deleted     []string
	failDeletes map[string]bool
	failUpload  bool
}

func newFakeMediaStore() *fakeMediaStore {
	return &fakeMediaStore{failDeletes: make(map[string]bool)}
}

func (s *fakeMediaStore) Upload(_ context.Context, localPath, keyPrefix string) (string, error) {
	if s.failUpload {
		return "", fmt.Errorf("upload %s: backend unavailable", localPath)
	}
	s.uploads++
	url := fmt.Sprintf("https://media.test/%s/object-%d", keyPrefix, s.uploads)
	s.uploaded = append(s.uploaded, url)
	return url, nil
}

func (s *fakeMediaStore) Delete(_ context.Context, objectURL string) error {
	if s.failDeletes[objectURL] {
		return fmt.Errorf("delete %s: backend unavailable", objectURL)
	}
	s.deleted = append(s.deleted, objectURL)
	return nil
}

type fakeProber struct {
	duration float64
	err      error
}

func (p fakeProber) Duration(_ context.Context, _ string) (float64, error) {
	return p.duration, p.err
}

type fakeLimiter struct {
	allow bool
}

func (l fakeLimiter) Allow(string) bool { return l.allow }

// stubComposer returns canned view values; handler tests only assert that
// the right view was requested and its result passed through.
type stubComposer struct {
	profile     views.ChannelProfile
	feed        views.Page[views.VideoCard]
	feedOpts    views.FeedOptions
	likers      []views.VideoLike
	playlists   []views.PlaylistSummary
	playlist    views.PlaylistDetail
	tweets      []views.TweetCard
	comments    views.Page[views.CommentCard]
	subscribers []views.ChannelSubscriber
	channels    []views.SubscribedChannel
	stats       views.ChannelStats
	dashVideos  views.Page[views.DashboardVideo]
	err         error
}

func (c *stubComposer) ChannelProfile(_ context.Context, _, _ string) (views.ChannelProfile, error) {
	return c.profile, c.err
}

func (c *stubComposer) ChannelSubscribers(_ context.Context, _, _ string) ([]views.ChannelSubscriber, error) {
	return c.subscribers, c.err
}

func (c *stubComposer) SubscribedChannels(_ context.Context, _ string) ([]views.SubscribedChannel, error) {
	return c.channels, c.err
}

func (c *stubComposer) VideoFeed(_ context.Context, opts views.FeedOptions) (views.Page[views.VideoCard], error) {
	c.feedOpts = opts
	return c.feed, c.err
}

func (c *stubComposer) VideoLikers(_ context.Context, _ string) ([]views.VideoLike, error) {
	return c.likers, c.err
}

func (c *stubComposer) UserPlaylists(_ context.Context, _ string) ([]views.PlaylistSummary, error) {
	return c.playlists, c.err
}

func (c *stubComposer) PlaylistDetail(_ context.Context, _ string) (views.PlaylistDetail, error) {
	return c.playlist, c.err
}

func (c *stubComposer) TweetFeed(_ context.Context, _, _ string) ([]views.TweetCard, error) {
	return c.tweets, c.err
}

func (c *stubComposer) CommentThread(_ context.Context, _, _ string, _, _ int) (views.Page[views.CommentCard], error) {
	return c.comments, c.err
}

func (c *stubComposer) ChannelStats(_ context.Context, _ string) (views.ChannelStats, error) {
	return c.stats, c.err
}

func (c *stubComposer) ChannelVideos(_ context.Context, _ string, _, _ int) (views.Page[views.DashboardVideo], error) {
	return c.dashVideos, c.err
}
