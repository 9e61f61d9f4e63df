package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"hotelbook/internal/app/commands"
	"hotelbook/internal/app/dto"
	commentsapp "hotelbook/internal/app/handlers/comments"
	reservationsapp "hotelbook/internal/app/handlers/reservations"
	"hotelbook/internal/app/queries"
)

type ReservationHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type reservationRequest struct {
	HotelID  string   `json:"hotel_id"`
	ClientID string   `json:"client_id"`
	RoomIDs  []string `json:"room_ids"`
	CheckIn  string   `json:"check_in"`
	CheckOut string   `json:"check_out"`
}

type commentRequest struct {
	Content string `json:"content"`
}

// Create books rooms for the authenticated client. Administrators may book
// on behalf of another client by passing client_id.
func (h ReservationHandler) Create(c *gin.Context) {
	user, ok := requireRole(c, "")
	if !ok {
		return
	}
	var req reservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	rng, err := parseDates(req.CheckIn, req.CheckOut)
	if err != nil {
		respondError(c, err)
		return
	}
	clientID := user.ID
	if user.IsAdmin() && req.ClientID != "" {
		clientID = req.ClientID
	}
	cmd := reservationsapp.CreateReservationCommand{
		HotelID:         req.HotelID,
		ClientID:        clientID,
		RoomIDs:         req.RoomIDs,
		CheckIn:         rng.CheckIn,
		CheckOut:        rng.CheckOut,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[reservationsapp.CreateReservationCommand, *dto.ReservationRef](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h ReservationHandler) Get(c *gin.Context) {
	user, ok := requireRole(c, "")
	if !ok {
		return
	}
	result, err := queries.Ask[reservationsapp.GetReservationQuery, dto.Reservation](c.Request.Context(), h.Queries, reservationsapp.GetReservationQuery{
		ID:          c.Param("id"),
		RequesterID: user.ID,
		AsAdmin:     user.IsAdmin(),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Cancel lets a client cancel one of their own reservations.
func (h ReservationHandler) Cancel(c *gin.Context) {
	user, ok := requireRole(c, "")
	if !ok {
		return
	}
	result, err := commands.Dispatch[reservationsapp.CancelReservationCommand, *dto.ReservationRef](c.Request.Context(), h.Commands, reservationsapp.CancelReservationCommand{
		ID:       c.Param("id"),
		ClientID: user.ID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ReservationHandler) Mine(c *gin.Context) {
	user, ok := requireRole(c, "")
	if !ok {
		return
	}
	result, err := queries.Ask[reservationsapp.ListClientReservationsQuery, dto.ReservationCollection](c.Request.Context(), h.Queries, reservationsapp.ListClientReservationsQuery{
		ClientID: user.ID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ReservationHandler) AddComment(c *gin.Context) {
	user, ok := requireRole(c, "")
	if !ok {
		return
	}
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	result, err := commands.Dispatch[commentsapp.AddCommentCommand, *dto.Comment](c.Request.Context(), h.Commands, commentsapp.AddCommentCommand{
		ReservationID: c.Param("id"),
		AuthorID:      user.ID,
		Content:       req.Content,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h ReservationHandler) Comments(c *gin.Context) {
	result, err := queries.Ask[commentsapp.ListReservationCommentsQuery, dto.CommentCollection](c.Request.Context(), h.Queries, commentsapp.ListReservationCommentsQuery{
		ReservationID: c.Param("id"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ ReservationHTTP = ReservationHandler{}
