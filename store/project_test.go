package store

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func sampleCourseDoc() bson.M {
	return bson.M{
		"_id":          "abc",
		"course_title": "Go from zero",
		"display_price": bson.M{
			"amount":   float64(100),
			"currency": "INR",
		},
		"metadata": bson.M{
			"category": bson.M{
				"name":         "tech",
				"sub_category": bson.M{"name": "backend"},
			},
			"tags":       bson.A{"go", "web"},
			"mode":       "online",
			"created_by": "admin",
			"segment":    "b2c",
		},
	}
}

func TestFlattenMetadataPromotesFields(t *testing.T) {
	got := FlattenMetadata(sampleCourseDoc())

	assert.Equal(t, "tech", got["category"])
	assert.Equal(t, "backend", got["sub_category"])
	assert.Equal(t, bson.A{"go", "web"}, got["tags"])
	assert.Equal(t, "online", got["mode"])
	assert.Equal(t, "admin", got["created_by"])
	// No top-level segment, so the metadata one is promoted.
	assert.Equal(t, "b2c", got["segment"])
	// metadata is left for dotted-path projection.
	assert.Contains(t, got, "metadata")
}

func TestFlattenMetadataKeepsTopLevelSegment(t *testing.T) {
	doc := sampleCourseDoc()
	doc["segment"] = "b2b"

	got := FlattenMetadata(doc)
	assert.Equal(t, "b2b", got["segment"])
}

func TestFlattenMetadataWithoutMetadata(t *testing.T) {
	doc := bson.M{"course_title": "bare"}
	got := FlattenMetadata(doc)
	assert.Equal(t, doc, got)
}

func TestProjectRestrictsToRequestedFields(t *testing.T) {
	doc := sampleCourseDoc()

	got := Project(doc, []string{"course_title", "metadata.category.sub_category", "missing", "metadata.nope.deep"})

	require.Len(t, got, 2)
	assert.Equal(t, "Go from zero", got["course_title"])

	md, ok := got["metadata"].(bson.M)
	require.True(t, ok)
	cat := md["category"].(bson.M)
	assert.Equal(t, bson.M{"name": "backend"}, cat["sub_category"])
}

func TestProjectResolvesAliases(t *testing.T) {
	got := Project(sampleCourseDoc(), []string{"amount"})
	assert.Equal(t, bson.M{"amount": float64(100)}, got)
}

func TestProjectEveryLeafExistsInSource(t *testing.T) {
	doc := sampleCourseDoc()
	fields := []string{"course_title", "display_price.amount", "metadata.category.name"}

	got := Project(doc, fields)

	for _, f := range fields {
		v, ok := getPath(doc, strings.Split(f, "."))
		require.True(t, ok, f)
		gotV, ok := getPath(got, strings.Split(f, "."))
		require.True(t, ok, f)
		assert.Equal(t, v, gotV, f)
	}
}

func TestShapeCourseStripsMetadataWithoutFieldList(t *testing.T) {
	got := ShapeCourse(sampleCourseDoc(), nil)

	assert.NotContains(t, got, "metadata")
	assert.Equal(t, "tech", got["category"])
	assert.Equal(t, "Go from zero", got["course_title"])
}

func TestShapeCourseProjectsWithFieldList(t *testing.T) {
	got := ShapeCourse(sampleCourseDoc(), []string{"category", "amount"})

	assert.Equal(t, bson.M{
		"category": "tech",
		"amount":   float64(100),
	}, got)
}
