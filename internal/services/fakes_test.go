package services

import (
	"context"
	"errors"
	"maps"
	"mime/multipart"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fathima-sithara/video-service/internal/auth"
	"github.com/fathima-sithara/video-service/internal/events"
	"github.com/fathima-sithara/video-service/internal/models"
	"github.com/fathima-sithara/video-service/internal/pagination"
	"github.com/fathima-sithara/video-service/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type likeKey struct {
	target models.LikeTarget
	actor  primitive.ObjectID
}

type subKey struct {
	channel, subscriber primitive.ObjectID
}

// memStore is an in-memory stand-in for the collections. Each repository
// adapter below views one collection of it.
type memStore struct {
	mu        sync.Mutex
	clock     time.Time
	users     map[primitive.ObjectID]*models.User
	videos    map[primitive.ObjectID]*models.Video
	comments  map[primitive.ObjectID]*models.Comment
	tweets    map[primitive.ObjectID]*models.Tweet
	likes     map[likeKey]time.Time
	subs      map[subKey]time.Time
	playlists map[primitive.ObjectID]*models.Playlist

	// failVideoDelete makes the next video delete fail.
	failVideoDelete bool
}

func newMemStore() *memStore {
	return &memStore{
		clock:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		users:     map[primitive.ObjectID]*models.User{},
		videos:    map[primitive.ObjectID]*models.Video{},
		comments:  map[primitive.ObjectID]*models.Comment{},
		tweets:    map[primitive.ObjectID]*models.Tweet{},
		likes:     map[likeKey]time.Time{},
		subs:      map[subKey]time.Time{},
		playlists: map[primitive.ObjectID]*models.Playlist{},
	}
}

func (m *memStore) now() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memStore) likeCount(target models.LikeTarget) int64 {
	var n int64
	for k := range m.likes {
		if k.target == target {
			n++
		}
	}
	return n
}

func (m *memStore) subscriberCount(channel primitive.ObjectID) int64 {
	var n int64
	for k := range m.subs {
		if k.channel == channel {
			n++
		}
	}
	return n
}

func (m *memStore) summary(id primitive.ObjectID) models.OwnerSummary {
	u, ok := m.users[id]
	if !ok {
		return models.OwnerSummary{ID: id}
	}
	return models.OwnerSummary{ID: u.ID, UserName: u.UserName, FullName: u.FullName, Avatar: u.Avatar.URL}
}

func (m *memStore) card(v *models.Video, withOwner bool) models.VideoCard {
	c := models.VideoCard{
		ID:          v.ID,
		Title:       v.Title,
		Description: v.Description,
		VideoFile:   v.VideoFile,
		Thumbnail:   v.Thumbnail,
		Duration:    v.Duration,
		Views:       v.Views,
		IsPublished: v.IsPublished,
		LikesCount:  m.likeCount(models.VideoTarget(v.ID)),
		CreatedAt:   v.CreatedAt,
	}
	if withOwner {
		s := m.summary(v.Owner)
		c.Owner = &s
	}
	return c
}

// memTx restores the collections when the unit of work fails.
type memTx struct{ m *memStore }

func (t memTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.m.mu.Lock()
	videos, comments, tweets := maps.Clone(t.m.videos), maps.Clone(t.m.comments), maps.Clone(t.m.tweets)
	likes := maps.Clone(t.m.likes)
	t.m.mu.Unlock()

	if err := fn(ctx); err != nil {
		t.m.mu.Lock()
		t.m.videos, t.m.comments, t.m.tweets, t.m.likes = videos, comments, tweets, likes
		t.m.mu.Unlock()
		return err
	}
	return nil
}

type memUsers struct{ m *memStore }

func (r memUsers) Create(_ context.Context, u *models.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, o := range r.m.users {
		if o.Email == u.Email || o.UserName == u.UserName {
			return repository.ErrDuplicate
		}
	}
	u.ID = primitive.NewObjectID()
	now := r.m.now()
	u.CreatedAt, u.UpdatedAt = now, now
	cp := *u
	r.m.users[u.ID] = &cp
	return nil
}

func (r memUsers) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r memUsers) FindByLogin(_ context.Context, email, userName string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if (email != "" && u.Email == email) || (userName != "" && u.UserName == userName) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r memUsers) Exists(ctx context.Context, email, userName string) (bool, error) {
	_, err := r.FindByLogin(ctx, email, userName)
	return err == nil, nil
}

func (r memUsers) update(id primitive.ObjectID, fn func(u *models.User) error) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if err := fn(u); err != nil {
		return nil, err
	}
	u.UpdatedAt = r.m.now()
	cp := *u
	return &cp, nil
}

func (r memUsers) UpdateAccount(_ context.Context, id primitive.ObjectID, fullName, email string) (*models.User, error) {
	return r.update(id, func(u *models.User) error {
		for _, o := range r.m.users {
			if o.ID != id && o.Email == email {
				return repository.ErrDuplicate
			}
		}
		u.FullName, u.Email = fullName, email
		return nil
	})
}

func (r memUsers) SetPassword(_ context.Context, id primitive.ObjectID, hash string) error {
	_, err := r.update(id, func(u *models.User) error { u.Password = hash; return nil })
	return err
}

func (r memUsers) SetRefreshToken(_ context.Context, id primitive.ObjectID, digest string) error {
	_, err := r.update(id, func(u *models.User) error { u.RefreshToken = digest; return nil })
	return err
}

func (r memUsers) SetAsset(_ context.Context, id primitive.ObjectID, field string, a models.Asset) (*models.User, error) {
	return r.update(id, func(u *models.User) error {
		if field == repository.CoverImageField {
			u.CoverImage = a
		} else {
			u.Avatar = a
		}
		return nil
	})
}

func (r memUsers) AddToWatchHistory(_ context.Context, id, videoID primitive.ObjectID) error {
	_, err := r.update(id, func(u *models.User) error {
		if !slices.Contains(u.WatchHistory, videoID) {
			u.WatchHistory = append(u.WatchHistory, videoID)
		}
		return nil
	})
	return err
}

func (r memUsers) ChannelProfile(_ context.Context, userName string, viewer primitive.ObjectID) (*models.ChannelProfile, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if u.UserName != userName {
			continue
		}
		p := &models.ChannelProfile{
			ID:               u.ID,
			UserName:         u.UserName,
			FullName:         u.FullName,
			Email:            u.Email,
			Avatar:           u.Avatar,
			CoverImage:       u.CoverImage,
			SubscribersCount: r.m.subscriberCount(u.ID),
		}
		for k := range r.m.subs {
			if k.subscriber == u.ID {
				p.SubscribedToCount++
			}
		}
		_, p.IsSubscribed = r.m.subs[subKey{u.ID, viewer}]
		return p, nil
	}
	return nil, repository.ErrNotFound
}

func (r memUsers) WatchHistory(_ context.Context, id primitive.ObjectID) ([]models.VideoCard, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := []models.VideoCard{}
	for i := len(u.WatchHistory) - 1; i >= 0; i-- {
		if v, ok := r.m.videos[u.WatchHistory[i]]; ok && v.IsPublished {
			out = append(out, r.m.card(v, true))
		}
	}
	return out, nil
}

type memVideos struct{ m *memStore }

func (r memVideos) Create(_ context.Context, v *models.Video) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	v.ID = primitive.NewObjectID()
	now := r.m.now()
	v.CreatedAt, v.UpdatedAt = now, now
	cp := *v
	r.m.videos[v.ID] = &cp
	return nil
}

func (r memVideos) FindByID(_ context.Context, id primitive.ObjectID) (*models.Video, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	v, ok := r.m.videos[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (r memVideos) update(id primitive.ObjectID, fn func(v *models.Video)) (*models.Video, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	v, ok := r.m.videos[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	fn(v)
	v.UpdatedAt = r.m.now()
	cp := *v
	return &cp, nil
}

func (r memVideos) Update(_ context.Context, id primitive.ObjectID, upd repository.VideoUpdate) (*models.Video, error) {
	return r.update(id, func(v *models.Video) {
		if upd.Title != nil {
			v.Title = *upd.Title
		}
		if upd.Description != nil {
			v.Description = *upd.Description
		}
		if upd.Thumbnail != nil {
			v.Thumbnail = *upd.Thumbnail
		}
	})
}

func (r memVideos) SetPublished(_ context.Context, id primitive.ObjectID, published bool) (*models.Video, error) {
	return r.update(id, func(v *models.Video) { v.IsPublished = published })
}

func (r memVideos) IncrementViews(_ context.Context, id primitive.ObjectID) error {
	_, err := r.update(id, func(v *models.Video) { v.Views++ })
	return err
}

func (r memVideos) Delete(_ context.Context, id primitive.ObjectID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.failVideoDelete {
		r.m.failVideoDelete = false
		return errors.New("connection reset")
	}
	delete(r.m.videos, id)
	return nil
}

func (r memVideos) Detail(_ context.Context, id, viewer primitive.ObjectID) (*models.VideoDetail, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	v, ok := r.m.videos[id]
	if !ok || (!v.IsPublished && v.Owner != viewer) {
		return nil, repository.ErrNotFound
	}
	s := r.m.summary(v.Owner)
	_, subscribed := r.m.subs[subKey{v.Owner, viewer}]
	_, liked := r.m.likes[likeKey{models.VideoTarget(id), viewer}]
	return &models.VideoDetail{
		ID:          v.ID,
		Title:       v.Title,
		Description: v.Description,
		VideoFile:   v.VideoFile,
		Thumbnail:   v.Thumbnail,
		Duration:    v.Duration,
		Views:       v.Views,
		IsPublished: v.IsPublished,
		Owner: models.VideoOwner{
			ID:               s.ID,
			UserName:         s.UserName,
			FullName:         s.FullName,
			Avatar:           s.Avatar,
			SubscribersCount: r.m.subscriberCount(v.Owner),
			IsSubscribed:     subscribed,
		},
		LikesCount: r.m.likeCount(models.VideoTarget(id)),
		IsLiked:    liked,
		CreatedAt:  v.CreatedAt,
	}, nil
}

func (r memVideos) sorted(keep func(v *models.Video) bool) []*models.Video {
	var out []*models.Video
	for _, v := range r.m.videos {
		if keep(v) {
			out = append(out, v)
		}
	}
	slices.SortFunc(out, func(a, b *models.Video) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out
}

func (r memVideos) Search(_ context.Context, q repository.VideoQuery, p pagination.Params) (pagination.Page[models.VideoCard], error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var cards []models.VideoCard
	for _, v := range r.sorted(func(v *models.Video) bool {
		if !v.IsPublished || (!q.Owner.IsZero() && v.Owner != q.Owner) {
			return false
		}
		return q.Text == "" || strings.Contains(v.Title+" "+v.Description, q.Text)
	}) {
		cards = append(cards, r.m.card(v, true))
	}
	return pageOf(cards, p), nil
}

func (r memVideos) ChannelVideos(_ context.Context, owner primitive.ObjectID, p pagination.Params) (pagination.Page[models.VideoCard], error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var cards []models.VideoCard
	for _, v := range r.sorted(func(v *models.Video) bool { return v.Owner == owner }) {
		cards = append(cards, r.m.card(v, false))
	}
	return pageOf(cards, p), nil
}

func (r memVideos) ChannelStats(_ context.Context, owner primitive.ObjectID) (*models.ChannelStats, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.users[owner]; !ok {
		return nil, repository.ErrNotFound
	}
	st := &models.ChannelStats{SubscribersCount: r.m.subscriberCount(owner)}
	for _, v := range r.m.videos {
		if v.Owner != owner {
			continue
		}
		st.VideosCount++
		st.LikesCount += r.m.likeCount(models.VideoTarget(v.ID))
		for _, u := range r.m.users {
			if slices.Contains(u.WatchHistory, v.ID) {
				st.ViewsCount++
			}
		}
	}
	return st, nil
}

type memComments struct{ m *memStore }

func (r memComments) Create(_ context.Context, c *models.Comment) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c.ID = primitive.NewObjectID()
	now := r.m.now()
	c.CreatedAt, c.UpdatedAt = now, now
	cp := *c
	r.m.comments[c.ID] = &cp
	return nil
}

func (r memComments) FindByID(_ context.Context, id primitive.ObjectID) (*models.Comment, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c, ok := r.m.comments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r memComments) UpdateContent(_ context.Context, id primitive.ObjectID, content string) (*models.Comment, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c, ok := r.m.comments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c.Content, c.UpdatedAt = content, r.m.now()
	cp := *c
	return &cp, nil
}

func (r memComments) Delete(_ context.Context, id primitive.ObjectID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	delete(r.m.comments, id)
	return nil
}

func (r memComments) IDsByVideo(_ context.Context, videoID primitive.ObjectID) ([]primitive.ObjectID, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var ids []primitive.ObjectID
	for _, c := range r.m.comments {
		if c.Video == videoID {
			ids = append(ids, c.ID)
		}
	}
	return ids, nil
}

func (r memComments) DeleteByVideo(_ context.Context, videoID primitive.ObjectID) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var n int64
	for id, c := range r.m.comments {
		if c.Video == videoID {
			delete(r.m.comments, id)
			n++
		}
	}
	return n, nil
}

func (r memComments) ListByVideo(_ context.Context, videoID, viewer primitive.ObjectID, p pagination.Params) (pagination.Page[models.CommentView], error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var views []models.CommentView
	for _, c := range r.m.comments {
		if c.Video != videoID {
			continue
		}
		_, liked := r.m.likes[likeKey{models.CommentTarget(c.ID), viewer}]
		views = append(views, models.CommentView{
			ID:         c.ID,
			Content:    c.Content,
			Video:      c.Video,
			Owner:      r.m.summary(c.Owner),
			LikesCount: r.m.likeCount(models.CommentTarget(c.ID)),
			IsLiked:    liked,
			CreatedAt:  c.CreatedAt,
		})
	}
	slices.SortFunc(views, func(a, b models.CommentView) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return pageOf(views, p), nil
}

type memTweets struct{ m *memStore }

func (r memTweets) Create(_ context.Context, t *models.Tweet) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	t.ID = primitive.NewObjectID()
	now := r.m.now()
	t.CreatedAt, t.UpdatedAt = now, now
	cp := *t
	r.m.tweets[t.ID] = &cp
	return nil
}

func (r memTweets) FindByID(_ context.Context, id primitive.ObjectID) (*models.Tweet, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	t, ok := r.m.tweets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (r memTweets) UpdateContent(_ context.Context, id primitive.ObjectID, content string) (*models.Tweet, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	t, ok := r.m.tweets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	t.Content, t.UpdatedAt = content, r.m.now()
	cp := *t
	return &cp, nil
}

func (r memTweets) Delete(_ context.Context, id primitive.ObjectID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	delete(r.m.tweets, id)
	return nil
}

func (r memTweets) ListByOwner(_ context.Context, owner, viewer primitive.ObjectID) ([]models.TweetView, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []models.TweetView
	for _, t := range r.m.tweets {
		if t.Owner != owner {
			continue
		}
		_, liked := r.m.likes[likeKey{models.TweetTarget(t.ID), viewer}]
		out = append(out, models.TweetView{
			ID:           t.ID,
			Content:      t.Content,
			OwnerDetails: r.m.summary(t.Owner),
			LikesCount:   r.m.likeCount(models.TweetTarget(t.ID)),
			IsLiked:      liked,
			CreatedAt:    t.CreatedAt,
		})
	}
	return out, nil
}

type memLikes struct{ m *memStore }

func (r memLikes) Toggle(_ context.Context, target models.LikeTarget, actor primitive.ObjectID) (bool, error) {
	if err := target.Validate(); err != nil {
		return false, err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	k := likeKey{target, actor}
	if _, ok := r.m.likes[k]; ok {
		delete(r.m.likes, k)
		return false, nil
	}
	r.m.likes[k] = r.m.now()
	return true, nil
}

func (r memLikes) Count(_ context.Context, target models.LikeTarget) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return r.m.likeCount(target), nil
}

func (r memLikes) DeleteByTargets(_ context.Context, kind models.LikeKind, ids []primitive.ObjectID) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var n int64
	for k := range r.m.likes {
		if k.target.Kind == kind && slices.Contains(ids, k.target.ID) {
			delete(r.m.likes, k)
			n++
		}
	}
	return n, nil
}

func (r memLikes) LikedVideos(_ context.Context, actor primitive.ObjectID) ([]models.VideoCard, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []models.VideoCard
	for k := range r.m.likes {
		if k.actor != actor || k.target.Kind != models.LikeVideo {
			continue
		}
		if v, ok := r.m.videos[k.target.ID]; ok && v.IsPublished {
			out = append(out, r.m.card(v, true))
		}
	}
	return out, nil
}

type memSubs struct{ m *memStore }

func (r memSubs) Toggle(_ context.Context, channel, subscriber primitive.ObjectID) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	k := subKey{channel, subscriber}
	if _, ok := r.m.subs[k]; ok {
		delete(r.m.subs, k)
		return false, nil
	}
	r.m.subs[k] = r.m.now()
	return true, nil
}

func (r memSubs) CountSubscribers(_ context.Context, channel primitive.ObjectID) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return r.m.subscriberCount(channel), nil
}

func (r memSubs) list(match func(k subKey) (primitive.ObjectID, bool)) []models.SubscriptionEntry {
	var out []models.SubscriptionEntry
	for k, at := range r.m.subs {
		if other, ok := match(k); ok {
			out = append(out, models.SubscriptionEntry{
				User:             r.m.summary(other),
				SubscribersCount: r.m.subscriberCount(other),
				SubscribedAt:     at,
			})
		}
	}
	return out
}

func (r memSubs) Subscribers(_ context.Context, channel primitive.ObjectID) ([]models.SubscriptionEntry, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return r.list(func(k subKey) (primitive.ObjectID, bool) { return k.subscriber, k.channel == channel }), nil
}

func (r memSubs) SubscribedChannels(_ context.Context, subscriber primitive.ObjectID) ([]models.SubscriptionEntry, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return r.list(func(k subKey) (primitive.ObjectID, bool) { return k.channel, k.subscriber == subscriber }), nil
}

type memPlaylists struct{ m *memStore }

func (r memPlaylists) Create(_ context.Context, p *models.Playlist) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p.ID = primitive.NewObjectID()
	now := r.m.now()
	p.CreatedAt, p.UpdatedAt = now, now
	if p.Videos == nil {
		p.Videos = []primitive.ObjectID{}
	}
	cp := *p
	r.m.playlists[p.ID] = &cp
	return nil
}

func (r memPlaylists) FindByID(_ context.Context, id primitive.ObjectID) (*models.Playlist, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.playlists[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	cp.Videos = slices.Clone(p.Videos)
	return &cp, nil
}

func (r memPlaylists) update(id primitive.ObjectID, fn func(p *models.Playlist)) (*models.Playlist, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.playlists[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	fn(p)
	p.UpdatedAt = r.m.now()
	cp := *p
	cp.Videos = slices.Clone(p.Videos)
	return &cp, nil
}

func (r memPlaylists) UpdateDetails(_ context.Context, id primitive.ObjectID, name, description *string) (*models.Playlist, error) {
	return r.update(id, func(p *models.Playlist) {
		if name != nil {
			p.Name = *name
		}
		if description != nil {
			p.Description = *description
		}
	})
}

func (r memPlaylists) Delete(_ context.Context, id primitive.ObjectID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	delete(r.m.playlists, id)
	return nil
}

func (r memPlaylists) AddVideo(_ context.Context, id, videoID primitive.ObjectID) (*models.Playlist, error) {
	return r.update(id, func(p *models.Playlist) {
		if !slices.Contains(p.Videos, videoID) {
			p.Videos = append(p.Videos, videoID)
		}
	})
}

func (r memPlaylists) RemoveVideo(_ context.Context, id, videoID primitive.ObjectID) (*models.Playlist, error) {
	return r.update(id, func(p *models.Playlist) {
		p.Videos = slices.DeleteFunc(p.Videos, func(v primitive.ObjectID) bool { return v == videoID })
	})
}

func (r memPlaylists) ListByOwner(_ context.Context, owner primitive.ObjectID) ([]models.PlaylistSummary, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []models.PlaylistSummary
	for _, p := range r.m.playlists {
		if p.Owner != owner {
			continue
		}
		s := models.PlaylistSummary{ID: p.ID, Name: p.Name, Description: p.Description, UpdatedAt: p.UpdatedAt}
		for _, id := range p.Videos {
			if v, ok := r.m.videos[id]; ok && v.IsPublished {
				s.VideosCount++
				s.TotalViews += v.Views
			}
		}
		out = append(out, s)
	}
	return out, nil
}

func (r memPlaylists) Detail(_ context.Context, id primitive.ObjectID) (*models.PlaylistDetail, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.playlists[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	d := &models.PlaylistDetail{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Owner:       r.m.summary(p.Owner),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	for _, vid := range p.Videos {
		if v, ok := r.m.videos[vid]; ok && v.IsPublished {
			d.Videos = append(d.Videos, r.m.card(v, true))
			d.VideosCount++
			d.TotalViews += v.Views
		}
	}
	return d, nil
}

// fakeMedia hands out sequential media ids and records deletions.
type fakeMedia struct {
	mu        sync.Mutex
	n         int
	uploaded  []string
	deleted   []string
	failNext  []error
	duration  float64
	deleteErr error
}

func (f *fakeMedia) next(folder string) (models.Asset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.failNext) > 0 {
		err := f.failNext[0]
		f.failNext = f.failNext[1:]
		if err != nil {
			return models.Asset{}, err
		}
	}
	f.n++
	id := folder + "/" + strings.Repeat("x", f.n)
	f.uploaded = append(f.uploaded, id)
	return models.Asset{URL: "https://cdn.test/" + id, MediaID: id}, nil
}

func (f *fakeMedia) UploadImage(_ context.Context, _ *multipart.FileHeader, folder string) (models.Asset, error) {
	return f.next(folder)
}

func (f *fakeMedia) UploadVideo(_ context.Context, _ *multipart.FileHeader, folder string) (models.Asset, float64, error) {
	a, err := f.next(folder)
	return a, f.duration, err
}

func (f *fakeMedia) Delete(_ context.Context, mediaID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, mediaID)
	return f.deleteErr
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// env wires every service to one memStore.
type env struct {
	store     *memStore
	media     *fakeMedia
	events    *recordingPublisher
	jwt       *auth.JWTManager
	users     UserService
	videos    VideoService
	comments  CommentService
	tweets    TweetService
	likes     LikeService
	subs      SubscriptionService
	playlists PlaylistService
	dashboard DashboardService
}

func newEnv() *env {
	m := newMemStore()
	media := &fakeMedia{}
	pub := &recordingPublisher{}
	log := zap.NewNop()
	jwtm := auth.NewJWTManager("access-secret", "refresh-secret", time.Hour, 24*time.Hour)

	users, videos, comments := memUsers{m}, memVideos{m}, memComments{m}
	tweets, likes, subs, playlists := memTweets{m}, memLikes{m}, memSubs{m}, memPlaylists{m}
	tx := memTx{m}

	userSvc := NewUserService(users, media, jwtm, pub, log)
	userSvc.(*userService).cost = bcrypt.MinCost

	return &env{
		store:     m,
		media:     media,
		events:    pub,
		jwt:       jwtm,
		users:     userSvc,
		videos:    NewVideoService(videos, comments, likes, users, tx, media, pub, log),
		comments:  NewCommentService(comments, videos, likes, tx),
		tweets:    NewTweetService(tweets, users, likes, tx),
		likes:     NewLikeService(likes, videos, comments, tweets),
		subs:      NewSubscriptionService(subs, users, pub, log),
		playlists: NewPlaylistService(playlists, videos, users),
		dashboard: NewDashboardService(videos),
	}
}

var upload = &multipart.FileHeader{Filename: "file.bin", Size: 1}

func (e *env) register(name string) *models.User {
	u, err := e.users.Register(context.Background(), RegisterInput{
		UserName: name,
		FullName: strings.ToUpper(name),
		Email:    name + "@example.com",
		Password: "password123",
		Avatar:   upload,
	})
	if err != nil {
		panic(err)
	}
	return u
}

func (e *env) publishVideo(owner *models.User, title string) *models.Video {
	v, err := e.videos.Publish(context.Background(), owner.ID.Hex(), PublishVideoInput{
		Title:       title,
		Description: "about " + title,
		Duration:    42,
		VideoFile:   upload,
		Thumbnail:   upload,
	})
	if err != nil {
		panic(err)
	}
	return v
}

// pageOf pages an in-memory result the way the $facet stage does.
func pageOf[T any](all []T, p pagination.Params) pagination.Page[T] {
	n := int64(len(all))
	lo := max(min(p.Skip(), n), 0)
	hi := max(min(p.Skip()+p.Limit, n), lo)
	return pagination.New(all[lo:hi], n, p)
}
