package main

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ventiam/ventiam_backend/utils"
)

func idParam(c *gin.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// dateRangeQuery parses optional ?from= and ?to= query params. Dates may be
// plain YYYY-MM-DD or RFC3339.
func dateRangeQuery(c *gin.Context) (*time.Time, *time.Time, error) {
	var from, to *time.Time
	if raw := strings.TrimSpace(c.Query("from")); raw != "" {
		parsed, err := utils.ParseDateString(raw)
		if err != nil {
			return nil, nil, errors.New("invalid from date")
		}
		from = &parsed
	}
	if raw := strings.TrimSpace(c.Query("to")); raw != "" {
		parsed, err := utils.ParseDateString(raw)
		if err != nil {
			return nil, nil, errors.New("invalid to date")
		}
		to = &parsed
	}
	return from, to, nil
}

func boolQuery(c *gin.Context, key string) bool {
	val := strings.ToLower(strings.TrimSpace(c.Query(key)))
	return val == "true" || val == "1" || val == "yes"
}
