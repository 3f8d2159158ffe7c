package http

import (
	"net/http"
	"strconv"

	"equiprent/pkg/config"
	apperrors "equiprent/pkg/errors"
)

func ExtractLimitOffset(r *http.Request) (int, int64, error) {
	query := r.URL.Query()

	limit := 0
	if s := query.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid limit parameter: " + s)
		}
		limit = v
	}

	var offset int64 = 0
	if s := query.Get("offset"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid offset parameter: " + s)
		}
		offset = v
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	return limit, offset, nil
}

// RequireQuery returns the named query values or an InvalidInput error listing the missing ones.
func RequireQuery(r *http.Request, names ...string) (map[string]string, error) {
	query := r.URL.Query()
	values := make(map[string]string, len(names))
	var missing []string
	for _, name := range names {
		v := query.Get(name)
		if v == "" {
			missing = append(missing, name)
			continue
		}
		values[name] = v
	}
	if len(missing) > 0 {
		return nil, apperrors.InvalidInput("missing required query parameters").
			WithDetails(map[string]any{"missing": missing})
	}
	return values, nil
}
