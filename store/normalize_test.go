package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestNormalizeIDsRewritesNestedObjectIDs(t *testing.T) {
	courseID := primitive.NewObjectID()
	moduleID := primitive.NewObjectID()

	doc := bson.M{
		"_id":          courseID,
		"course_title": "Intro",
		"module_ids":   bson.A{moduleID, "already-a-string"},
		"metadata": bson.M{
			"category": bson.M{"name": "tech", "ref": moduleID},
		},
		"enrollers": int64(3),
	}

	got := NormalizeDoc(doc)

	assert.Equal(t, courseID.Hex(), got["_id"])
	assert.Equal(t, "Intro", got["course_title"])
	assert.Equal(t, int64(3), got["enrollers"])

	mods, ok := got["module_ids"].(bson.A)
	require.True(t, ok)
	assert.Equal(t, bson.A{moduleID.Hex(), "already-a-string"}, mods)

	md := got["metadata"].(bson.M)
	cat := md["category"].(bson.M)
	assert.Equal(t, moduleID.Hex(), cat["ref"])
}

func TestNormalizeIDsIdempotent(t *testing.T) {
	doc := bson.M{
		"_id":  primitive.NewObjectID(),
		"list": bson.A{primitive.NewObjectID(), bson.M{"inner": primitive.NewObjectID()}},
		"n":    42,
	}

	once := NormalizeDoc(doc)
	twice := NormalizeDoc(once)

	assert.Equal(t, once, twice)
}

func TestNormalizeIDsPassesScalarsThrough(t *testing.T) {
	assert.Equal(t, "plain", NormalizeIDs("plain"))
	assert.Equal(t, 7, NormalizeIDs(7))
	assert.Equal(t, nil, NormalizeIDs(nil))
	assert.Equal(t, true, NormalizeIDs(true))
}

func TestNormalizeIDsPreservesDocumentOrder(t *testing.T) {
	id := primitive.NewObjectID()
	d := bson.D{{Key: "b", Value: id}, {Key: "a", Value: 1}}

	got, ok := NormalizeIDs(d).(bson.D)
	require.True(t, ok)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].Key)
	assert.Equal(t, id.Hex(), got[0].Value)
	assert.Equal(t, "a", got[1].Key)
}
