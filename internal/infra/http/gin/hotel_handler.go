package ginserver

import (
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"hotelbook/internal/app/dto"
	commentsapp "hotelbook/internal/app/handlers/comments"
	hotelsapp "hotelbook/internal/app/handlers/hotels"
	"hotelbook/internal/app/queries"
)

type HotelHandler struct {
	Queries queries.Bus
}

// Search handles GET /hotels?q=&check_in=&check_out=&skip=&limit=.
func (h HotelHandler) Search(c *gin.Context) {
	rng, ok := optionalRange(c)
	if !ok {
		return
	}
	page, ok := parsePagination(c)
	if !ok {
		return
	}
	result, err := queries.Ask[hotelsapp.SearchHotelsQuery, dto.HotelCollection](c.Request.Context(), h.Queries, hotelsapp.SearchHotelsQuery{
		Query: strings.TrimSpace(c.Query("q")),
		Range: rng,
		Skip:  page.Skip,
		Limit: page.Limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h HotelHandler) Get(c *gin.Context) {
	rng, ok := optionalRange(c)
	if !ok {
		return
	}
	result, err := queries.Ask[hotelsapp.GetHotelQuery, dto.HotelDetails](c.Request.Context(), h.Queries, hotelsapp.GetHotelQuery{
		ID:    c.Param("id"),
		Range: rng,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// RoomAvailability handles GET /rooms/:id/availability. Both dates are
// required; exclude names a reservation to ignore.
func (h HotelHandler) RoomAvailability(c *gin.Context) {
	rng, err := parseDates(c.Query("check_in"), c.Query("check_out"))
	if err != nil {
		respondError(c, err)
		return
	}
	result, err := queries.Ask[hotelsapp.RoomAvailabilityQuery, dto.RoomAvailability](c.Request.Context(), h.Queries, hotelsapp.RoomAvailabilityQuery{
		RoomID:    c.Param("id"),
		Range:     rng,
		ExcludeID: strings.TrimSpace(c.Query("exclude")),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h HotelHandler) RoomComments(c *gin.Context) {
	result, err := queries.Ask[commentsapp.ListRoomCommentsQuery, dto.CommentCollection](c.Request.Context(), h.Queries, commentsapp.ListRoomCommentsQuery{
		RoomID: c.Param("id"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ HotelHTTP = HotelHandler{}
