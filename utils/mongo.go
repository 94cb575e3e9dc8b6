package utils

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ParsePagination reads ?skip and ?limit with sane bounds.
func ParsePagination(r *http.Request, defaultLimit, maxLimit int64) (skip, limit int64) {
	q := r.URL.Query()
	if v, err := strconv.ParseInt(q.Get("skip"), 10, 64); err == nil && v > 0 {
		skip = v
	}
	limit = defaultLimit
	if v, err := strconv.ParseInt(q.Get("limit"), 10, 64); err == nil && v > 0 {
		limit = v
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return skip, limit
}

// ParseSort turns "field" or "-field" into a sort document, falling back
// to def. allowed restricts sortable fields when non-nil.
func ParseSort(raw string, def bson.D, allowed map[string]bool) bson.D {
	if raw == "" {
		return def
	}
	dir := 1
	field := raw
	if strings.HasPrefix(raw, "-") {
		dir = -1
		field = raw[1:]
	}
	if field == "" || (allowed != nil && !allowed[field]) {
		return def
	}
	return bson.D{{Key: field, Value: dir}}
}

// FindAndDecode runs a Find and decodes every document into T.
func FindAndDecode[T any](ctx context.Context, col *mongo.Collection, filter bson.M, opts ...*options.FindOptions) ([]T, error) {
	cur, err := col.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
