package validators

import (
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/greenloop-app/greenloop-backend/pkg/errors"
)

// ParseQueryInt reads an integer query parameter, returning defaultVal when
// the parameter is absent and a validation error when it is non-numeric or
// outside [min, max].
func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be numeric").
			WithDetails(map[string]any{"field": key})
	}
	if n < min || n > max {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter out of range").
			WithDetails(map[string]any{"field": key, "min": min, "max": max})
	}
	return n, nil
}
