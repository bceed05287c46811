package helpers

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// ErrInvalidID is returned when a value cannot be read as a positive identifier.
var ErrInvalidID = errors.New("invalid identifier")

// ExtractID normalizes the identifier shapes clients send (a JSON number, a
// numeric string, or an object carrying "id" or "_id") into an int64.
func ExtractID(v interface{}) (int64, error) {
	var id int64

	switch val := v.(type) {
	case int64:
		id = val
	case int:
		id = int64(val)
	case int32:
		id = int64(val)
	case float64:
		if val != math.Trunc(val) || val >= math.MaxInt64 {
			return 0, fmt.Errorf("%w: %v", ErrInvalidID, val)
		}
		id = int64(val)
	case json.Number:
		n, err := val.Int64()
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidID, val.String())
		}
		id = n
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidID, val)
		}
		id = n
	case map[string]interface{}:
		if inner, ok := val["id"]; ok {
			return ExtractID(inner)
		}
		if inner, ok := val["_id"]; ok {
			return ExtractID(inner)
		}
		return 0, fmt.Errorf("%w: object without id", ErrInvalidID)
	case json.RawMessage:
		var decoded interface{}
		if err := json.Unmarshal(val, &decoded); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalidID, err)
		}
		return ExtractID(decoded)
	default:
		return 0, fmt.Errorf("%w: unsupported type %T", ErrInvalidID, v)
	}

	if id <= 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidID, id)
	}
	return id, nil
}

// ParseIDParam reads a positive int64 path parameter.
func ParseIDParam(c *gin.Context, name string) (int64, error) {
	return ExtractID(c.Param(name))
}
