package store

import (
	"context"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
)

// MaxPageSize caps the limit query parameter. Page and limit have no
// upper bound in the workflow itself, so the cap lives here at the edge.
const MaxPageSize = 100

// CourseQuery is the parsed form of the course listing query string.
// Multi-value filters (segment=a,b) arrive already split.
type CourseQuery struct {
	Page  int64
	Limit int64

	Search string
	Sort   string
	Order  string // "asc" | "desc"

	Segment      []string
	Category     []string
	SubCategory  []string
	CourseType   []string
	Difficulty   []string
	DeliveryMode []string

	MinPrice *float64
	MaxPrice *float64

	Fields []string
}

// courseSortPaths is the allow-list of sort keys. An empty storage path
// marks a virtual key that needs an aggregation stage to materialize.
var courseSortPaths = map[string]string{
	"amount":            "display_price.amount",
	"course_title":      "course_title",
	"enrollers":         "enrollers",
	"created_at":        "created_at",
	"course_start_date": "course_start_date",
	"course_end_date":   "course_end_date",
	"segment":           "",
}

// dateSortKeys are stored as text but ordered by their date value.
var dateSortKeys = map[string]bool{
	"course_start_date": true,
	"course_end_date":   true,
}

func (q *CourseQuery) page() int64 {
	if q.Page < 1 {
		return 1
	}
	return q.Page
}

func (q *CourseQuery) limit() int64 {
	switch {
	case q.Limit < 1:
		return 10
	case q.Limit > MaxPageSize:
		return MaxPageSize
	default:
		return q.Limit
	}
}

func (q *CourseQuery) skip() int64 {
	return (q.page() - 1) * q.limit()
}

func (q *CourseQuery) order() int {
	if q.Order == "desc" {
		return -1
	}
	return 1
}

// Filter translates search and structured filters into one conjunctive
// mongo filter document.
func (q *CourseQuery) Filter() bson.M {
	var conds []bson.M

	if q.Search != "" {
		pattern := regexp.QuoteMeta(q.Search)
		conds = append(conds, bson.M{"$or": []bson.M{
			{"course_title": bson.M{"$regex": pattern, "$options": "i"}},
			{"course_description": bson.M{"$regex": pattern, "$options": "i"}},
		}})
	}

	// Segment lives top-level on newer documents and under metadata on
	// older ones, so the filter accepts either location.
	if len(q.Segment) > 0 {
		conds = append(conds, bson.M{"$or": []bson.M{
			{"segment": bson.M{"$in": q.Segment}},
			{"metadata.segment": bson.M{"$in": q.Segment}},
		}})
	}
	if len(q.Category) > 0 {
		conds = append(conds, bson.M{"metadata.category.name": bson.M{"$in": q.Category}})
	}
	if len(q.SubCategory) > 0 {
		conds = append(conds, bson.M{"metadata.category.sub_category.name": bson.M{"$in": q.SubCategory}})
	}
	if len(q.CourseType) > 0 {
		conds = append(conds, bson.M{"course_type": bson.M{"$in": q.CourseType}})
	}
	if len(q.Difficulty) > 0 {
		conds = append(conds, bson.M{"difficulty_level": bson.M{"$in": q.Difficulty}})
	}
	if len(q.DeliveryMode) > 0 {
		conds = append(conds, bson.M{"delivery_mode": bson.M{"$in": q.DeliveryMode}})
	}

	if q.MinPrice != nil || q.MaxPrice != nil {
		price := bson.M{}
		if q.MinPrice != nil {
			price["$gte"] = *q.MinPrice
		}
		if q.MaxPrice != nil {
			price["$lte"] = *q.MaxPrice
		}
		conds = append(conds, bson.M{"display_price.amount": price})
	}

	switch len(conds) {
	case 0:
		return bson.M{}
	case 1:
		return conds[0]
	default:
		return bson.M{"$and": conds}
	}
}

// sortKey resolves the requested sort against the allow-list. Unknown
// keys fall back to newest-first.
func (q *CourseQuery) sortKey() (key, path string, ok bool) {
	path, ok = courseSortPaths[q.Sort]
	if !ok {
		return "", "", false
	}
	return q.Sort, path, true
}

// needsPipeline reports whether the requested sort cannot be expressed as
// a plain find sort: date-coerced keys and the virtual segment key.
func (q *CourseQuery) needsPipeline() bool {
	key, _, ok := q.sortKey()
	if !ok {
		return false
	}
	return dateSortKeys[key] || key == "segment"
}

// Pipeline assembles the aggregation used for coerced sorts: the filter,
// a computed sort key, the ordering, and the page window.
func (q *CourseQuery) Pipeline() []bson.M {
	key, _, _ := q.sortKey()

	var sortExpr interface{}
	if dateSortKeys[key] {
		// Stored as ISO text; $convert with onError keeps malformed
		// values from aborting the whole pipeline.
		sortExpr = bson.M{"$convert": bson.M{
			"input":   "$" + key,
			"to":      "date",
			"onError": nil,
			"onNull":  nil,
		}}
	} else {
		// Virtual segment: prefer the top-level value, fall back to
		// the nested metadata one.
		sortExpr = bson.M{"$ifNull": []interface{}{"$segment", "$metadata.segment"}}
	}

	return []bson.M{
		{"$match": q.Filter()},
		{"$addFields": bson.M{"__sort": sortExpr}},
		{"$sort": bson.M{"__sort": q.order()}},
		{"$skip": q.skip()},
		{"$limit": q.limit()},
		{"$unset": "__sort"},
	}
}

// SortDoc builds the plain find sort for allow-listed scalar keys.
func (q *CourseQuery) SortDoc() bson.D {
	if _, path, ok := q.sortKey(); ok && path != "" {
		return bson.D{{Key: path, Value: q.order()}}
	}
	return bson.D{{Key: "created_at", Value: -1}}
}

// ListCourses runs the query against a collection and shapes the output:
// ordered page of documents plus the total match count. The count runs on
// the bare filter, so it is independent of the page window.
func ListCourses(ctx context.Context, courses Collection, q *CourseQuery) ([]bson.M, int64, error) {
	filter := q.Filter()

	total, err := courses.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	var docs []bson.M
	if q.needsPipeline() {
		docs, err = courses.Aggregate(ctx, q.Pipeline())
	} else {
		docs, err = courses.Find(ctx, filter, FindOptions{
			Skip:  q.skip(),
			Limit: q.limit(),
			Sort:  q.SortDoc(),
		})
	}
	if err != nil {
		return nil, 0, err
	}

	out := make([]bson.M, 0, len(docs))
	for _, doc := range docs {
		out = append(out, ShapeCourse(NormalizeDoc(doc), q.Fields))
	}
	return out, total, nil
}
