package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/deifrati/api/utils"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 200
)

// parsePagination reads limit (1..200, default 50) and offset (>= 0) from the query string.
func parsePagination(ctx *gin.Context) (limit, offset int) {
	limit, offset = defaultPageLimit, 0
	if n, err := strconv.Atoi(strings.TrimSpace(ctx.Query("limit"))); err == nil {
		limit = min(max(n, 1), maxPageLimit)
	}
	if n, err := strconv.Atoi(strings.TrimSpace(ctx.Query("offset"))); err == nil {
		offset = max(n, 0)
	}
	return limit, offset
}

// parseID reads the :id route parameter and answers 400 itself when it is not a positive integer.
func parseID(ctx *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil || id == 0 {
		utils.Error(ctx, http.StatusBadRequest, "Invalid id")
		return 0, false
	}
	return uint(id), true
}

// bindBody decodes a JSON object. A missing or malformed body yields an empty map so the
// field level checks produce the error message.
func bindBody(ctx *gin.Context) map[string]interface{} {
	body := map[string]interface{}{}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		return map[string]interface{}{}
	}
	return body
}

// str returns the string form of body[key] or "" when absent.
func str(body map[string]interface{}, key string) string {
	switch v := body[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// optionalString maps missing, null and blank values to nil.
func optionalString(v interface{}) *string {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		if strings.TrimSpace(t) == "" {
			return nil
		}
		return &t
	default:
		s := fmt.Sprint(t)
		return &s
	}
}

// optionalFloat maps missing, null and non-numeric values to nil.
func optionalFloat(v interface{}) *float64 {
	f, ok := utils.FloatFrom(v)
	if !ok {
		return nil
	}
	return &f
}

// truthy follows JSON and form conventions: true, non-zero numbers, "true" and "1".
func truthy(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		s := strings.ToLower(strings.TrimSpace(t))
		return s == "true" || s == "1"
	default:
		return false
	}
}

// columnUpdates picks the present keys of body that are allowed columns, applying convert
// when one is registered for the column.
func columnUpdates(body map[string]interface{}, allowed []string, convert map[string]func(interface{}) interface{}) map[string]interface{} {
	updates := map[string]interface{}{}
	for _, col := range allowed {
		v, ok := body[col]
		if !ok {
			continue
		}
		if fn, ok := convert[col]; ok {
			v = fn(v)
		}
		updates[col] = v
	}
	return updates
}
