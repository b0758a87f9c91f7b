package store

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// fieldAliases maps user-facing field names to their storage paths.
var fieldAliases = map[string]string{
	"amount": "display_price.amount",
}

// metadata keys promoted to top level by FlattenMetadata.
var promotedMetaKeys = []string{"tags", "mode", "created_by", "updated_by"}

// FlattenMetadata promotes the useful metadata sub-fields of a course
// document to top level: category name, sub_category name, tags, mode,
// audit fields, and segment (only when the top-level segment is unset).
// The metadata map itself is left in place; callers strip it when they
// do not need dotted metadata paths anymore.
func FlattenMetadata(doc bson.M) bson.M {
	md, ok := asM(doc["metadata"])
	if !ok {
		return doc
	}

	out := make(bson.M, len(doc)+4)
	for k, v := range doc {
		out[k] = v
	}

	if cat, ok := asM(md["category"]); ok {
		if name, ok := cat["name"]; ok {
			out["category"] = name
		}
		if sub, ok := asM(cat["sub_category"]); ok {
			if name, ok := sub["name"]; ok {
				out["sub_category"] = name
			}
		}
	}

	for _, k := range promotedMetaKeys {
		if v, ok := md[k]; ok {
			out[k] = v
		}
	}

	if seg, ok := md["segment"]; ok {
		if cur, exists := out["segment"]; !exists || cur == nil || cur == "" {
			out["segment"] = seg
		}
	}

	return out
}

// Project restricts a document to the requested field set. Fields may be
// plain names, dotted paths, or aliases; the nesting shape of a dotted
// path is rebuilt in the output. Paths that do not resolve are skipped.
func Project(doc bson.M, fields []string) bson.M {
	out := bson.M{}
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		path := f
		if alias, ok := fieldAliases[f]; ok {
			path = alias
		}
		parts := strings.Split(path, ".")
		if v, ok := getPath(doc, parts); ok {
			setPath(out, strings.Split(f, "."), v)
		}
	}
	return out
}

// ShapeCourse is the read-path output shaping: flatten, then either
// project to the requested fields or return the full flattened document
// with the now-redundant metadata stripped.
func ShapeCourse(doc bson.M, fields []string) bson.M {
	flat := FlattenMetadata(doc)
	if len(fields) > 0 {
		return Project(flat, fields)
	}
	delete(flat, "metadata")
	return flat
}

func getPath(doc bson.M, parts []string) (interface{}, bool) {
	var cur interface{} = doc
	for _, p := range parts {
		m, ok := asM(cur)
		if !ok {
			return nil, false
		}
		cur, ok = m[p]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func setPath(doc bson.M, parts []string, v interface{}) {
	for i, p := range parts {
		if i == len(parts)-1 {
			doc[p] = v
			return
		}
		next, ok := asM(doc[p])
		if !ok {
			next = bson.M{}
			doc[p] = next
		}
		doc = next
	}
}

func asM(v interface{}) (bson.M, bool) {
	switch m := v.(type) {
	case bson.M:
		return m, true
	case map[string]interface{}:
		return bson.M(m), true
	default:
		return nil, false
	}
}
