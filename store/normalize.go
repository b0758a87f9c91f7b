package store

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NormalizeIDs walks an arbitrary decoded value and replaces every
// primitive.ObjectID with its hex string form. Containers are rebuilt,
// everything else passes through untouched. Running it twice is a no-op:
// a hex string is not an ObjectID anymore.
func NormalizeIDs(v interface{}) interface{} {
	switch val := v.(type) {
	case primitive.ObjectID:
		return val.Hex()
	case bson.M:
		out := make(bson.M, len(val))
		for k, item := range val {
			out[k] = NormalizeIDs(item)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[k] = NormalizeIDs(item)
		}
		return out
	case bson.D:
		out := make(bson.D, 0, len(val))
		for _, e := range val {
			out = append(out, bson.E{Key: e.Key, Value: NormalizeIDs(e.Value)})
		}
		return out
	case bson.A:
		out := make(bson.A, 0, len(val))
		for _, item := range val {
			out = append(out, NormalizeIDs(item))
		}
		return out
	case []interface{}:
		out := make([]interface{}, 0, len(val))
		for _, item := range val {
			out = append(out, NormalizeIDs(item))
		}
		return out
	case []bson.M:
		out := make([]bson.M, 0, len(val))
		for _, item := range val {
			out = append(out, NormalizeIDs(item).(bson.M))
		}
		return out
	default:
		return v
	}
}

// NormalizeDoc is NormalizeIDs for a single document.
func NormalizeDoc(doc bson.M) bson.M {
	if doc == nil {
		return nil
	}
	return NormalizeIDs(doc).(bson.M)
}

// NormalizeDocs normalizes a result set, preserving order.
func NormalizeDocs(docs []bson.M) []bson.M {
	out := make([]bson.M, 0, len(docs))
	for _, d := range docs {
		out = append(out, NormalizeDoc(d))
	}
	return out
}
