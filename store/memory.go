package store

import (
	"context"
	"errors"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemCollection is an in-memory Collection used by tests in place of the
// mongo-backed one. It evaluates the filter and update subset the
// workflows actually emit: equality, $in, $regex, $gte/$lte, $and/$or,
// $set, $inc, $addToSet, and the listing aggregation stages.
type MemCollection struct {
	mu   sync.Mutex
	docs []bson.M

	// FailUpdates makes every UpdateByID return an error, for exercising
	// best-effort update handling.
	FailUpdates bool
}

func NewMemCollection() *MemCollection {
	return &MemCollection{}
}

// Len reports the number of stored documents.
func (m *MemCollection) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.docs)
}

func (m *MemCollection) InsertOne(_ context.Context, doc interface{}) (primitive.ObjectID, error) {
	d, err := toDoc(doc)
	if err != nil {
		return primitive.NilObjectID, err
	}

	// A caller-supplied _id of any type is kept, as mongo keeps it; only
	// documents without one get a generated ObjectID back.
	id := primitive.NilObjectID
	raw, ok := d["_id"]
	if !ok || raw == nil {
		id = primitive.NewObjectID()
		d["_id"] = id
	} else if oid, isOID := raw.(primitive.ObjectID); isOID {
		id = oid
	}

	m.mu.Lock()
	m.docs = append(m.docs, d)
	m.mu.Unlock()
	return id, nil
}

func (m *MemCollection) FindByID(ctx context.Context, id string) (bson.M, error) {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		doc, err := m.FindOne(ctx, bson.M{"_id": oid})
		if err == nil {
			return doc, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	return m.FindOne(ctx, bson.M{"_id": id})
}

func (m *MemCollection) FindOne(_ context.Context, filter bson.M) (bson.M, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.docs {
		if matchFilter(d, filter) {
			return copyDoc(d), nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemCollection) Find(_ context.Context, filter bson.M, opts FindOptions) ([]bson.M, error) {
	m.mu.Lock()
	matched := make([]bson.M, 0)
	for _, d := range m.docs {
		if matchFilter(d, filter) {
			matched = append(matched, copyDoc(d))
		}
	}
	m.mu.Unlock()

	for _, e := range opts.Sort {
		sortDocs(matched, e.Key, toInt(e.Value))
	}
	return window(matched, opts.Skip, opts.Limit), nil
}

func (m *MemCollection) Count(_ context.Context, filter bson.M) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, d := range m.docs {
		if matchFilter(d, filter) {
			n++
		}
	}
	return n, nil
}

func (m *MemCollection) UpdateByID(_ context.Context, id interface{}, update bson.M) error {
	if m.FailUpdates {
		return errors.New("update rejected")
	}

	u, err := toDoc(bson.M(update))
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.docs {
		if !looseEqual(d["_id"], id) {
			continue
		}
		applyUpdate(d, u)
		return nil
	}
	return ErrNotFound
}

func (m *MemCollection) Aggregate(_ context.Context, pipeline []bson.M) ([]bson.M, error) {
	m.mu.Lock()
	docs := make([]bson.M, 0, len(m.docs))
	for _, d := range m.docs {
		docs = append(docs, copyDoc(d))
	}
	m.mu.Unlock()

	for _, stage := range pipeline {
		for op, arg := range stage {
			switch op {
			case "$match":
				filter, _ := arg.(bson.M)
				kept := docs[:0]
				for _, d := range docs {
					if matchFilter(d, filter) {
						kept = append(kept, d)
					}
				}
				docs = kept
			case "$addFields":
				fields, _ := arg.(bson.M)
				for _, d := range docs {
					for k, expr := range fields {
						d[k] = evalExpr(d, expr)
					}
				}
			case "$sort":
				spec, _ := arg.(bson.M)
				for k, dir := range spec {
					sortDocs(docs, k, toInt(dir))
				}
			case "$skip":
				docs = window(docs, int64(toInt(arg)), 0)
			case "$limit":
				docs = window(docs, 0, int64(toInt(arg)))
			case "$unset":
				if key, ok := arg.(string); ok {
					for _, d := range docs {
						delete(d, key)
					}
				}
			default:
				return nil, errors.New("unsupported pipeline stage " + op)
			}
		}
	}
	return docs, nil
}

// ---- helpers ----

// toDoc canonicalizes any insertable value into a bson.M the same way the
// driver would, so struct tags and nested types behave as in mongo.
func toDoc(v interface{}) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var d bson.M
	if err := bson.UnmarshalWithRegistry(docRegistry, raw, &d); err != nil {
		return nil, err
	}
	return d, nil
}

func copyDoc(d bson.M) bson.M {
	out, err := toDoc(d)
	if err != nil {
		return d
	}
	return out
}

func window(docs []bson.M, skip, limit int64) []bson.M {
	if skip > 0 {
		if skip >= int64(len(docs)) {
			return nil
		}
		docs = docs[skip:]
	}
	if limit > 0 && limit < int64(len(docs)) {
		docs = docs[:limit]
	}
	return docs
}

func matchFilter(doc bson.M, filter bson.M) bool {
	for k, cond := range filter {
		switch k {
		case "$and":
			for _, sub := range toFilterList(cond) {
				if !matchFilter(doc, sub) {
					return false
				}
			}
		case "$or":
			any := false
			for _, sub := range toFilterList(cond) {
				if matchFilter(doc, sub) {
					any = true
					break
				}
			}
			if !any {
				return false
			}
		default:
			if !matchField(doc, k, cond) {
				return false
			}
		}
	}
	return true
}

func toFilterList(v interface{}) []bson.M {
	switch list := v.(type) {
	case []bson.M:
		return list
	case bson.A:
		out := make([]bson.M, 0, len(list))
		for _, item := range list {
			if m, ok := item.(bson.M); ok {
				out = append(out, m)
			}
		}
		return out
	case []interface{}:
		out := make([]bson.M, 0, len(list))
		for _, item := range list {
			if m, ok := item.(bson.M); ok {
				out = append(out, m)
			}
		}
		return out
	default:
		return nil
	}
}

func matchField(doc bson.M, path string, cond interface{}) bool {
	val, exists := getPath(doc, strings.Split(path, "."))

	ops, isOps := asM(cond)
	if isOps && hasOperator(ops) {
		for op, arg := range ops {
			switch op {
			case "$in":
				if !inList(val, arg) {
					return false
				}
			case "$regex":
				s, ok := val.(string)
				if !ok {
					return false
				}
				pattern, _ := arg.(string)
				if opts, ok := ops["$options"].(string); ok && strings.Contains(opts, "i") {
					pattern = "(?i)" + pattern
				}
				re, err := regexp.Compile(pattern)
				if err != nil || !re.MatchString(s) {
					return false
				}
			case "$options":
				// handled with $regex
			case "$gte":
				if cmp, ok := compare(val, arg); !ok || cmp < 0 {
					return false
				}
			case "$lte":
				if cmp, ok := compare(val, arg); !ok || cmp > 0 {
					return false
				}
			case "$ne":
				if looseEqual(val, arg) {
					return false
				}
			case "$exists":
				want, _ := arg.(bool)
				if exists != want {
					return false
				}
			default:
				return false
			}
		}
		return true
	}

	return looseEqual(val, cond)
}

func hasOperator(m bson.M) bool {
	for k := range m {
		if strings.HasPrefix(k, "$") {
			return true
		}
	}
	return false
}

func inList(val, arg interface{}) bool {
	switch list := arg.(type) {
	case []string:
		for _, item := range list {
			if looseEqual(val, item) {
				return true
			}
		}
	case bson.A:
		for _, item := range list {
			if looseEqual(val, item) {
				return true
			}
		}
	case []interface{}:
		for _, item := range list {
			if looseEqual(val, item) {
				return true
			}
		}
	}
	return false
}

func looseEqual(a, b interface{}) bool {
	if cmp, ok := compare(a, b); ok {
		return cmp == 0
	}
	return reflect.DeepEqual(a, b)
}

// compare orders two scalars: numbers by value, strings and ObjectIDs
// lexically, times chronologically. nil sorts before everything.
func compare(a, b interface{}) (int, bool) {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0, true
		case a == nil:
			return -1, true
		default:
			return 1, true
		}
	}

	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			switch {
			case fa < fb:
				return -1, true
			case fa > fb:
				return 1, true
			default:
				return 0, true
			}
		}
		return 0, false
	}

	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(av, bv), true
		}
	case primitive.ObjectID:
		if bv, ok := b.(primitive.ObjectID); ok {
			return strings.Compare(av.Hex(), bv.Hex()), true
		}
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			switch {
			case av.Before(bv):
				return -1, true
			case av.After(bv):
				return 1, true
			default:
				return 0, true
			}
		}
	case primitive.DateTime:
		if bv, ok := b.(primitive.DateTime); ok {
			return compareInt64(int64(av), int64(bv)), true
		}
	case bool:
		if bv, ok := b.(bool); ok {
			switch {
			case av == bv:
				return 0, true
			case !av:
				return -1, true
			default:
				return 1, true
			}
		}
	}
	return 0, false
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func toInt(v interface{}) int {
	f, ok := toFloat(v)
	if !ok {
		return 0
	}
	return int(f)
}

func sortDocs(docs []bson.M, path string, dir int) {
	parts := strings.Split(path, ".")
	sort.SliceStable(docs, func(i, j int) bool {
		a, _ := getPath(docs[i], parts)
		b, _ := getPath(docs[j], parts)
		cmp, ok := compare(a, b)
		if !ok {
			return false
		}
		if dir < 0 {
			return cmp > 0
		}
		return cmp < 0
	})
}

func applyUpdate(doc bson.M, update bson.M) {
	for op, arg := range update {
		fields, ok := asM(arg)
		if !ok {
			continue
		}
		switch op {
		case "$set":
			for k, v := range fields {
				setPath(doc, strings.Split(k, "."), v)
			}
		case "$inc":
			for k, v := range fields {
				parts := strings.Split(k, ".")
				cur, _ := getPath(doc, parts)
				cf, _ := toFloat(cur)
				vf, _ := toFloat(v)
				total := cf + vf
				if total == float64(int64(total)) {
					setPath(doc, parts, int64(total))
				} else {
					setPath(doc, parts, total)
				}
			}
		case "$addToSet":
			for k, v := range fields {
				parts := strings.Split(k, ".")
				var entries []interface{}
				if each, ok := asM(v); ok {
					if list, ok := each["$each"]; ok {
						entries = toAnyList(list)
					}
				}
				if entries == nil {
					entries = []interface{}{v}
				}

				cur, _ := getPath(doc, parts)
				set := toAnyList(cur)
				for _, e := range entries {
					present := false
					for _, existing := range set {
						if reflect.DeepEqual(existing, e) {
							present = true
							break
						}
					}
					if !present {
						set = append(set, e)
					}
				}
				setPath(doc, parts, bson.A(set))
			}
		}
	}
}

// evalExpr evaluates the expression subset the listing pipeline uses:
// "$field" references, $convert-to-date, and $ifNull.
func evalExpr(doc bson.M, expr interface{}) interface{} {
	switch e := expr.(type) {
	case string:
		if strings.HasPrefix(e, "$") {
			v, _ := getPath(doc, strings.Split(e[1:], "."))
			return v
		}
		return e
	case bson.M:
		if conv, ok := asM(e["$convert"]); ok {
			in := evalExpr(doc, conv["input"])
			if to, _ := conv["to"].(string); to == "date" {
				if s, ok := in.(string); ok {
					if t, err := time.Parse(time.RFC3339, s); err == nil {
						return t
					}
					if t, err := time.Parse("2006-01-02", s); err == nil {
						return t
					}
				}
				return conv["onError"]
			}
			return in
		}
		if args, ok := e["$ifNull"]; ok {
			for _, arg := range toAnyList(args) {
				if v := evalExpr(doc, arg); v != nil {
					return v
				}
			}
			return nil
		}
		return nil
	default:
		return expr
	}
}

func toAnyList(v interface{}) []interface{} {
	switch list := v.(type) {
	case nil:
		return nil
	case bson.A:
		return append([]interface{}{}, list...)
	case []interface{}:
		return append([]interface{}{}, list...)
	default:
		return nil
	}
}
