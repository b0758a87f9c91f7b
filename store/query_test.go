package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func seedCourses(t *testing.T) *MemCollection {
	t.Helper()
	coll := NewMemCollection()
	ctx := context.Background()

	docs := []bson.M{
		{
			"course_title":      "Intro to Go",
			"course_type":       "self_paced",
			"segment":           "b2c",
			"display_price":     bson.M{"amount": float64(50), "currency": "INR"},
			"course_start_date": "2024-03-01T00:00:00Z",
			"created_at":        "2024-01-01T00:00:00Z",
			"metadata": bson.M{
				"category": bson.M{"name": "tech", "sub_category": bson.M{"name": "backend"}},
			},
		},
		{
			"course_title":      "Advanced Databases",
			"course_type":       "instructor_led",
			"display_price":     bson.M{"amount": float64(100), "currency": "INR"},
			"course_start_date": "2024-01-15T00:00:00Z",
			"created_at":        "2024-01-02T00:00:00Z",
			"metadata": bson.M{
				"category": bson.M{"name": "tech", "sub_category": bson.M{"name": "data"}},
				"segment":  "b2b",
			},
		},
		{
			"course_title":      "Finance Fundamentals",
			"course_type":       "self_paced",
			"segment":           "b2b",
			"display_price":     bson.M{"amount": float64(150), "currency": "INR"},
			"course_start_date": "2024-02-01T00:00:00Z",
			"created_at":        "2024-01-03T00:00:00Z",
			"metadata": bson.M{
				"category": bson.M{"name": "finance"},
			},
		},
	}
	for _, d := range docs {
		_, err := coll.InsertOne(ctx, d)
		require.NoError(t, err)
	}
	return coll
}

func titlesOf(docs []bson.M) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d["course_title"].(string))
	}
	return out
}

func TestListCoursesSortedByAmountDesc(t *testing.T) {
	coll := seedCourses(t)

	docs, total, err := ListCourses(context.Background(), coll, &CourseQuery{
		Page:  1,
		Limit: 2,
		Sort:  "amount",
		Order: "desc",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(3), total)
	assert.Equal(t, []string{"Finance Fundamentals", "Advanced Databases"}, titlesOf(docs))
}

func TestListCoursesTotalIndependentOfWindow(t *testing.T) {
	coll := seedCourses(t)
	ctx := context.Background()

	q := &CourseQuery{Page: 1, Limit: 1, Category: []string{"tech"}}
	_, total1, err := ListCourses(ctx, coll, q)
	require.NoError(t, err)

	q2 := &CourseQuery{Page: 3, Limit: 50, Category: []string{"tech"}}
	_, total2, err := ListCourses(ctx, coll, q2)
	require.NoError(t, err)

	assert.Equal(t, int64(2), total1)
	assert.Equal(t, total1, total2)
}

func TestListCoursesSearchMatchesTitleAndDescription(t *testing.T) {
	coll := seedCourses(t)

	docs, total, err := ListCourses(context.Background(), coll, &CourseQuery{
		Page: 1, Limit: 10, Search: "go",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), total)
	assert.Equal(t, []string{"Intro to Go"}, titlesOf(docs))
}

func TestListCoursesSegmentFilterChecksBothLocations(t *testing.T) {
	coll := seedCourses(t)

	// "Advanced Databases" only carries segment under metadata.
	docs, total, err := ListCourses(context.Background(), coll, &CourseQuery{
		Page: 1, Limit: 10, Segment: []string{"b2b"},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(2), total)
	assert.ElementsMatch(t, []string{"Advanced Databases", "Finance Fundamentals"}, titlesOf(docs))
}

func TestListCoursesPriceRange(t *testing.T) {
	coll := seedCourses(t)

	min, max := 60.0, 160.0
	docs, total, err := ListCourses(context.Background(), coll, &CourseQuery{
		Page: 1, Limit: 10, MinPrice: &min, MaxPrice: &max, Sort: "amount", Order: "asc",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(2), total)
	assert.Equal(t, []string{"Advanced Databases", "Finance Fundamentals"}, titlesOf(docs))
}

func TestListCoursesDateSortCoercesStoredText(t *testing.T) {
	coll := seedCourses(t)

	docs, _, err := ListCourses(context.Background(), coll, &CourseQuery{
		Page: 1, Limit: 10, Sort: "course_start_date", Order: "asc",
	})
	require.NoError(t, err)

	// Lexicographic order of the raw strings would put 2024-01-15 after
	// 2024-02-01 only under a broken comparison; the point here is that
	// the order follows the parsed dates, oldest first.
	assert.Equal(t, []string{"Advanced Databases", "Finance Fundamentals", "Intro to Go"}, titlesOf(docs))

	// The computed sort key must not leak into the output.
	for _, d := range docs {
		assert.NotContains(t, d, "__sort")
	}
}

func TestListCoursesVirtualSegmentSort(t *testing.T) {
	coll := seedCourses(t)

	docs, _, err := ListCourses(context.Background(), coll, &CourseQuery{
		Page: 1, Limit: 10, Sort: "segment", Order: "asc",
	})
	require.NoError(t, err)

	// b2b (metadata), b2b (top-level), b2c — the nested fallback counts.
	titles := titlesOf(docs)
	assert.Equal(t, "Intro to Go", titles[2])
}

func TestListCoursesUnknownSortFallsBackToNewestFirst(t *testing.T) {
	coll := seedCourses(t)

	docs, _, err := ListCourses(context.Background(), coll, &CourseQuery{
		Page: 1, Limit: 10, Sort: "naughty_field",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Finance Fundamentals", "Advanced Databases", "Intro to Go"}, titlesOf(docs))
}

func TestListCoursesProjectsRequestedFields(t *testing.T) {
	coll := seedCourses(t)

	docs, _, err := ListCourses(context.Background(), coll, &CourseQuery{
		Page: 1, Limit: 10, Sort: "amount", Order: "asc",
		Fields: []string{"course_title", "amount"},
	})
	require.NoError(t, err)

	require.NotEmpty(t, docs)
	assert.Equal(t, bson.M{
		"course_title": "Intro to Go",
		"amount":       float64(50),
	}, docs[0])
}

func TestCourseQueryClampsWindow(t *testing.T) {
	q := &CourseQuery{Page: 0, Limit: 100000}
	assert.Equal(t, int64(1), q.page())
	assert.Equal(t, int64(MaxPageSize), q.limit())
	assert.Equal(t, int64(0), q.skip())

	q = &CourseQuery{Page: 3, Limit: 10}
	assert.Equal(t, int64(20), q.skip())
}

func TestCourseQueryFilterConjunction(t *testing.T) {
	min := 10.0
	q := &CourseQuery{
		Search:     "intro",
		CourseType: []string{"self_paced"},
		MinPrice:   &min,
	}

	filter := q.Filter()
	conds, ok := filter["$and"].([]bson.M)
	require.True(t, ok)
	assert.Len(t, conds, 3)
}
