package repository

import (
	"testing"

	"github.com/fathima-sithara/video-service/internal/models"
	"github.com/fathima-sithara/video-service/internal/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func stageOp(stage bson.D) string {
	if len(stage) == 0 {
		return ""
	}
	return stage[0].Key
}

func ops(p mongo.Pipeline) []string {
	out := make([]string, len(p))
	for i, s := range p {
		out[i] = stageOp(s)
	}
	return out
}

func lookupArgs(t *testing.T, stage bson.D) bson.D {
	t.Helper()
	require.Equal(t, "$lookup", stageOp(stage))
	return stage[0].Value.(bson.D)
}

func argValue(args bson.D, key string) any {
	for _, e := range args {
		if e.Key == key {
			return e.Value
		}
	}
	return nil
}

func TestLikesLookupFiltersOnTargetKind(t *testing.T) {
	for _, kind := range []models.LikeKind{models.LikeVideo, models.LikeComment, models.LikeTweet} {
		args := lookupArgs(t, likesLookup(kind, "_id", "likes"))
		assert.Equal(t, LikesCollection, argValue(args, "from"))
		assert.Equal(t, "target", argValue(args, "foreignField"))

		sub := argValue(args, "pipeline").(bson.A)
		match := sub[0].(bson.D)
		assert.Equal(t, "$match", stageOp(match))
		assert.Equal(t, bson.M{"targetType": kind}, match[0].Value)
	}
}

func TestIsMemberWithoutViewerIsFalse(t *testing.T) {
	assert.Equal(t, false, isMember(primitive.NilObjectID, "$likes.likedBy"))

	viewer := primitive.NewObjectID()
	expr := isMember(viewer, "$likes.likedBy").(bson.M)
	in := expr["$in"].(bson.A)
	assert.Equal(t, viewer, in[0])
}

func TestVideoDetailPipelineVisibility(t *testing.T) {
	id := primitive.NewObjectID()

	anon := VideoDetailPipeline(id, primitive.NilObjectID)
	match := anon[0][0].Value.(bson.M)
	assert.Equal(t, id, match["_id"])
	assert.Equal(t, bson.A{bson.M{"isPublished": true}}, match["$or"])

	viewer := primitive.NewObjectID()
	p := VideoDetailPipeline(id, viewer)
	match = p[0][0].Value.(bson.M)
	assert.Len(t, match["$or"], 2)
	assert.Equal(t, []string{"$match", "$lookup", "$unwind", "$lookup", "$addFields", "$project"}, ops(p))

	likes := lookupArgs(t, p[3])
	assert.Equal(t, LikesCollection, argValue(likes, "from"))
}

func TestVideoSearchPipelineTextFirstAndPagesLast(t *testing.T) {
	owner := primitive.NewObjectID()
	p := VideoSearchPipeline(VideoQuery{Text: "golang", Owner: owner}, pagination.Params{Page: 2, Limit: 5})
	require.Equal(t, []string{"$match", "$sort", "$facet"}, ops(p))

	match := p[0][0].Value.(bson.D)
	assert.Equal(t, "$text", match[0].Key)
	assert.Equal(t, bson.E{Key: "isPublished", Value: true}, match[1])
	assert.Equal(t, bson.E{Key: "owner", Value: owner}, match[2])

	sort := p[1][0].Value.(bson.D)
	assert.Equal(t, "score", sort[0].Key)
}

func TestVideoSearchPipelineExplicitSort(t *testing.T) {
	p := VideoSearchPipeline(VideoQuery{Owner: primitive.NewObjectID(), SortBy: "views", SortDesc: false}, pagination.Params{Page: 1, Limit: 10})
	sort := p[1][0].Value.(bson.D)
	assert.Equal(t, bson.D{{Key: "views", Value: 1}, {Key: "_id", Value: 1}}, sort)

	match := p[0][0].Value.(bson.D)
	for _, e := range match {
		assert.NotEqual(t, "$text", e.Key)
	}
}

func TestChannelStatsPipelineStartsFromUser(t *testing.T) {
	owner := primitive.NewObjectID()
	p := ChannelStatsPipeline(owner)
	require.Equal(t, []string{"$match", "$lookup", "$lookup", "$project"}, ops(p))
	assert.Equal(t, bson.M{"_id": owner}, p[0][0].Value)

	subs := lookupArgs(t, p[1])
	assert.Equal(t, SubscriptionsCollection, argValue(subs, "from"))
	assert.Equal(t, "channel", argValue(subs, "foreignField"))

	videos := lookupArgs(t, p[2])
	assert.Equal(t, VideosCollection, argValue(videos, "from"))
	assert.Equal(t, "owner", argValue(videos, "foreignField"))

	inner := argValue(videos, "pipeline").(bson.A)
	viewers := lookupArgs(t, inner[1].(bson.D))
	assert.Equal(t, UsersCollection, argValue(viewers, "from"))
	assert.Equal(t, "watchHistory", argValue(viewers, "foreignField"))

	totals := p[3][0].Value.(bson.M)
	for _, k := range []string{"videosCount", "likesCount", "viewsCount", "subscribersCount"} {
		assert.Contains(t, totals, k)
	}
}

func TestLikedVideosPipelineOnlyVideoLikes(t *testing.T) {
	actor := primitive.NewObjectID()
	p := LikedVideosPipeline(actor)
	assert.Equal(t, bson.M{"likedBy": actor, "targetType": models.LikeVideo}, p[0][0].Value)
	assert.Equal(t, "$replaceRoot", stageOp(p[len(p)-1]))
}

func TestSubscriptionListPipelineSides(t *testing.T) {
	id := primitive.NewObjectID()
	p := SubscriptionListPipeline("channel", "subscriber", id)
	assert.Equal(t, bson.M{"channel": id}, p[0][0].Value)
	user := lookupArgs(t, p[2])
	assert.Equal(t, "subscriber", argValue(user, "localField"))
}

func TestOrderByIDs(t *testing.T) {
	a, b, c := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	docs := []models.VideoCard{{ID: c}, {ID: a}}
	got := orderByIDs([]primitive.ObjectID{a, b, c}, docs, func(v models.VideoCard) primitive.ObjectID { return v.ID })
	require.Len(t, got, 2)
	assert.Equal(t, a, got[0].ID)
	assert.Equal(t, c, got[1].ID)
}

func TestIndexesBackToggles(t *testing.T) {
	idx := Indexes()
	unique := func(coll string, first string) bool {
		for _, m := range idx[coll] {
			keys := m.Keys.(bson.D)
			if keys[0].Key == first && m.Options != nil && m.Options.Unique != nil && *m.Options.Unique {
				return true
			}
		}
		return false
	}
	assert.True(t, unique(LikesCollection, "likedBy"))
	assert.True(t, unique(SubscriptionsCollection, "channel"))
	assert.True(t, unique(UsersCollection, "userName"))
	assert.True(t, unique(UsersCollection, "email"))
}
