package services

import (
	"context"
	"testing"

	"github.com/fathima-sithara/video-service/internal/events"
	"github.com/fathima-sithara/video-service/internal/models"
	"github.com/fathima-sithara/video-service/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestPublishUsesProbedDurationWhenAvailable(t *testing.T) {
	e := newEnv()
	alice := e.register("alice")

	v := e.publishVideo(alice, "fallback")
	assert.Equal(t, 42.0, v.Duration)
	assert.True(t, v.IsPublished)
	assert.Equal(t, alice.ID, v.Owner)

	e.media.duration = 12.5
	v = e.publishVideo(alice, "probed")
	assert.Equal(t, 12.5, v.Duration)
	assert.Contains(t, e.events.types(), events.VideoPublished)
}

func TestPublishValidation(t *testing.T) {
	e := newEnv()
	alice := e.register("alice")
	ctx := context.Background()

	_, err := e.videos.Publish(ctx, alice.ID.Hex(), PublishVideoInput{Title: "t", Description: "d", Thumbnail: upload})
	assert.ErrorIs(t, err, utils.ErrBadRequest)
	_, err = e.videos.Publish(ctx, alice.ID.Hex(), PublishVideoInput{Title: " ", Description: "d", VideoFile: upload, Thumbnail: upload})
	assert.ErrorIs(t, err, utils.ErrBadRequest)
	_, err = e.videos.Publish(ctx, "", PublishVideoInput{Title: "t", Description: "d", VideoFile: upload, Thumbnail: upload})
	assert.ErrorIs(t, err, utils.ErrUnauthorized)
}

func TestGetCountsViewAndHidesUnpublished(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	alice, bob := e.register("alice"), e.register("bob")
	v := e.publishVideo(alice, "clip")

	d, err := e.videos.Get(ctx, v.ID.Hex(), bob.ID.Hex())
	require.NoError(t, err)
	assert.EqualValues(t, 1, d.Views)
	assert.Equal(t, "alice", d.Owner.UserName)
	assert.Contains(t, e.store.users[bob.ID].WatchHistory, v.ID)

	_, err = e.videos.TogglePublish(ctx, v.ID.Hex(), alice.ID.Hex())
	require.NoError(t, err)

	_, err = e.videos.Get(ctx, v.ID.Hex(), bob.ID.Hex())
	assert.ErrorIs(t, err, utils.ErrNotFound)
	d, err = e.videos.Get(ctx, v.ID.Hex(), alice.ID.Hex())
	require.NoError(t, err)
	assert.False(t, d.IsPublished)

	_, err = e.videos.Get(ctx, "not-an-id", bob.ID.Hex())
	assert.ErrorIs(t, err, utils.ErrBadRequest)
	_, err = e.videos.Get(ctx, primitive.NewObjectID().Hex(), bob.ID.Hex())
	assert.ErrorIs(t, err, utils.ErrNotFound)
}

func TestListValidation(t *testing.T) {
	e := newEnv()
	alice := e.register("alice")
	e.publishVideo(alice, "cats playing")
	e.publishVideo(alice, "dogs playing")
	ctx := context.Background()

	tests := []struct {
		name string
		in   ListVideosInput
		want error
	}{
		{"no filter", ListVideosInput{}, utils.ErrBadRequest},
		{"bad user", ListVideosInput{UserID: "x"}, utils.ErrBadRequest},
		{"bad sortBy", ListVideosInput{Query: "cats", SortBy: "password"}, utils.ErrBadRequest},
		{"bad sortType", ListVideosInput{Query: "cats", SortType: "up"}, utils.ErrBadRequest},
		{"bad page", ListVideosInput{Query: "cats", Page: "0"}, utils.ErrBadRequest},
		{"page past int64 offset", ListVideosInput{Query: "cats", Page: "92233720368547760", Limit: "100"}, utils.ErrBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.videos.List(ctx, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	page, err := e.videos.List(ctx, ListVideosInput{Query: "cats"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.TotalItems)

	page, err = e.videos.List(ctx, ListVideosInput{UserID: alice.ID.Hex(), Limit: "1", SortBy: "views", SortType: "asc"})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
	assert.EqualValues(t, 2, page.TotalPages)
	assert.True(t, page.HasNextPage)
}

func TestNonOwnerCannotMutateVideo(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	alice, bob := e.register("alice"), e.register("bob")
	v := e.publishVideo(alice, "mine")

	title := "stolen"
	_, err := e.videos.Update(ctx, v.ID.Hex(), bob.ID.Hex(), UpdateVideoInput{Title: &title})
	assert.ErrorIs(t, err, utils.ErrForbidden)
	assert.ErrorIs(t, e.videos.Delete(ctx, v.ID.Hex(), bob.ID.Hex()), utils.ErrForbidden)
	_, err = e.videos.TogglePublish(ctx, v.ID.Hex(), bob.ID.Hex())
	assert.ErrorIs(t, err, utils.ErrForbidden)

	stored := e.store.videos[v.ID]
	assert.Equal(t, "mine", stored.Title)
	assert.True(t, stored.IsPublished)
}

func TestUpdateReplacesThumbnail(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	alice := e.register("alice")
	v := e.publishVideo(alice, "clip")

	_, err := e.videos.Update(ctx, v.ID.Hex(), alice.ID.Hex(), UpdateVideoInput{})
	assert.ErrorIs(t, err, utils.ErrBadRequest)

	desc := "new description"
	updated, err := e.videos.Update(ctx, v.ID.Hex(), alice.ID.Hex(), UpdateVideoInput{Description: &desc, Thumbnail: upload})
	require.NoError(t, err)
	assert.Equal(t, desc, updated.Description)
	assert.Equal(t, "clip", updated.Title)
	assert.NotEqual(t, v.Thumbnail, updated.Thumbnail)
	assert.Contains(t, e.media.deleted, v.Thumbnail.MediaID)
}

func TestDeleteCascades(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	alice, bob := e.register("alice"), e.register("bob")
	v := e.publishVideo(alice, "doomed")
	other := e.publishVideo(alice, "kept")

	c, err := e.comments.Add(ctx, v.ID.Hex(), bob.ID.Hex(), "nice")
	require.NoError(t, err)
	kept, err := e.comments.Add(ctx, other.ID.Hex(), bob.ID.Hex(), "also nice")
	require.NoError(t, err)
	for _, l := range []struct {
		kind models.LikeKind
		id   primitive.ObjectID
	}{
		{models.LikeVideo, v.ID},
		{models.LikeComment, c.ID},
		{models.LikeVideo, other.ID},
		{models.LikeComment, kept.ID},
	} {
		_, err := e.likes.Toggle(ctx, l.kind, l.id.Hex(), bob.ID.Hex())
		require.NoError(t, err)
	}

	require.NoError(t, e.videos.Delete(ctx, v.ID.Hex(), alice.ID.Hex()))

	assert.NotContains(t, e.store.videos, v.ID)
	assert.NotContains(t, e.store.comments, c.ID)
	assert.Zero(t, e.store.likeCount(models.VideoTarget(v.ID)))
	assert.Zero(t, e.store.likeCount(models.CommentTarget(c.ID)))
	assert.EqualValues(t, 1, e.store.likeCount(models.VideoTarget(other.ID)))
	assert.EqualValues(t, 1, e.store.likeCount(models.CommentTarget(kept.ID)))
	assert.ElementsMatch(t, []string{v.VideoFile.MediaID, v.Thumbnail.MediaID}, e.media.deleted)
	assert.Contains(t, e.events.types(), events.VideoDeleted)

	liked, err := e.likes.LikedVideos(ctx, bob.ID.Hex())
	require.NoError(t, err)
	require.Len(t, liked, 1)
	assert.Equal(t, other.ID, liked[0].ID)

	page, err := e.comments.List(ctx, v.ID.Hex(), bob.ID.Hex(), "", "")
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Zero(t, page.TotalItems)
}

func TestDeleteRollsBackOnFailure(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	alice, bob := e.register("alice"), e.register("bob")
	v := e.publishVideo(alice, "sturdy")
	c, err := e.comments.Add(ctx, v.ID.Hex(), bob.ID.Hex(), "first")
	require.NoError(t, err)
	_, err = e.likes.Toggle(ctx, models.LikeVideo, v.ID.Hex(), bob.ID.Hex())
	require.NoError(t, err)

	e.store.failVideoDelete = true
	err = e.videos.Delete(ctx, v.ID.Hex(), alice.ID.Hex())
	assert.ErrorIs(t, err, utils.ErrInternal)

	assert.Contains(t, e.store.videos, v.ID)
	assert.Contains(t, e.store.comments, c.ID)
	assert.EqualValues(t, 1, e.store.likeCount(models.VideoTarget(v.ID)))
	assert.Empty(t, e.media.deleted)
}
