package repository

import (
	"github.com/fathima-sithara/video-service/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Shared stages of the relation resolver. The lookups use the
// localField/foreignField form with a sub-pipeline, which needs MongoDB 5.0+.

func matchStage(filter any) bson.D {
	return bson.D{{Key: "$match", Value: filter}}
}

func sortStage(sort bson.D) bson.D {
	return bson.D{{Key: "$sort", Value: sort}}
}

func projectStage(p any) bson.D {
	return bson.D{{Key: "$project", Value: p}}
}

func addFieldsStage(f bson.M) bson.D {
	return bson.D{{Key: "$addFields", Value: f}}
}

func unwindStage(path string) bson.D {
	return bson.D{{Key: "$unwind", Value: bson.M{
		"path":                       path,
		"preserveNullAndEmptyArrays": true,
	}}}
}

func lookupStage(from, localField, foreignField, as string, pipeline ...bson.D) bson.D {
	spec := bson.D{
		{Key: "from", Value: from},
		{Key: "localField", Value: localField},
		{Key: "foreignField", Value: foreignField},
	}
	if len(pipeline) > 0 {
		sub := bson.A{}
		for _, s := range pipeline {
			sub = append(sub, s)
		}
		spec = append(spec, bson.E{Key: "pipeline", Value: sub})
	}
	spec = append(spec, bson.E{Key: "as", Value: as})
	return bson.D{{Key: "$lookup", Value: spec}}
}

// likesLookup joins the likes whose tagged target is kind(localField) into
// as. The targetType filter is the discriminator: a comment like can never
// land in a video's count.
func likesLookup(kind models.LikeKind, localField, as string) bson.D {
	return lookupStage(LikesCollection, localField, "target", as,
		matchStage(bson.M{"targetType": kind}),
		projectStage(bson.M{"likedBy": 1}),
	)
}

// likeCountFields derives likesCount and isLiked from a likesLookup array
// and drops the array.
func likeCountFields(as string, viewer primitive.ObjectID) []bson.D {
	return []bson.D{
		addFieldsStage(bson.M{
			"likesCount": bson.M{"$size": "$" + as},
			"isLiked":    isMember(viewer, "$"+as+".likedBy"),
		}),
		projectStage(bson.M{as: 0}),
	}
}

// isMember is true when viewer is in the array expression. A zero viewer is
// never a member.
func isMember(viewer primitive.ObjectID, arrayExpr string) any {
	if viewer.IsZero() {
		return false
	}
	return bson.M{"$in": bson.A{viewer, bson.M{"$ifNull": bson.A{arrayExpr, bson.A{}}}}}
}

// ownerSummaryLookup replaces localField with the owner's public summary.
func ownerSummaryLookup(localField, as string) []bson.D {
	return []bson.D{
		lookupStage(UsersCollection, localField, "_id", as,
			projectStage(ownerSummaryProjection()),
		),
		unwindStage("$" + as),
	}
}

func ownerSummaryProjection() bson.M {
	return bson.M{
		"userName": 1,
		"fullName": 1,
		"avatar":   "$avatar.url",
	}
}

// subscriberCountLookup joins the subscription rows where localField is
// the channel.
func subscriberCountLookup(localField, as string) bson.D {
	return lookupStage(SubscriptionsCollection, localField, "channel", as,
		projectStage(bson.M{"subscriber": 1}),
	)
}

func videoCardProjection() bson.M {
	return bson.M{
		"title":       1,
		"description": 1,
		"videoFile":   1,
		"thumbnail":   1,
		"duration":    1,
		"views":       1,
		"isPublished": 1,
		"owner":       1,
		"likesCount":  1,
		"createdAt":   1,
	}
}

func concat(groups ...[]bson.D) mongo.Pipeline {
	var out mongo.Pipeline
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}
