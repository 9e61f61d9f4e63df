package ginserver

import (
	"strconv"
	"strings"

	gin "github.com/gin-gonic/gin"

	"hotelbook/internal/domain/shared/daterange"
)

type pagination struct {
	Skip  int
	Limit int
}

func parsePagination(c *gin.Context) (pagination, bool) {
	skip, ok := queryInt(c, "skip")
	if !ok {
		return pagination{}, false
	}
	limit, ok := queryInt(c, "limit")
	if !ok {
		return pagination{}, false
	}
	return pagination{Skip: skip, Limit: limit}, true
}

func queryInt(c *gin.Context, name string) (int, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return v, true
}

// optionalRange reads check_in/check_out from the query string. Both empty
// means no range. Order is left to the query handlers to validate.
func optionalRange(c *gin.Context) (*daterange.DateRange, bool) {
	in := strings.TrimSpace(c.Query("check_in"))
	out := strings.TrimSpace(c.Query("check_out"))
	if in == "" && out == "" {
		return nil, true
	}
	rng, err := parseDates(in, out)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return &rng, true
}

func parseDates(checkIn, checkOut string) (daterange.DateRange, error) {
	in, err := daterange.Parse(checkIn)
	if err != nil {
		return daterange.DateRange{}, err
	}
	out, err := daterange.Parse(checkOut)
	if err != nil {
		return daterange.DateRange{}, err
	}
	return daterange.DateRange{CheckIn: in, CheckOut: out}, nil
}
