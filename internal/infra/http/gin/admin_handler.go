package ginserver

import (
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"hotelbook/internal/app/commands"
	"hotelbook/internal/app/dto"
	clientsapp "hotelbook/internal/app/handlers/clients"
	hotelsapp "hotelbook/internal/app/handlers/hotels"
	reservationsapp "hotelbook/internal/app/handlers/reservations"
	"hotelbook/internal/app/queries"
)

// AdminHandler serves /admin. Every route checks the admin role here and
// again on the bus.
type AdminHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type hotelRequest struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	City     string `json:"city"`
	Phone    string `json:"phone"`
	Category int    `json:"category"`
}

func (r hotelRequest) fields() hotelsapp.HotelFields {
	return hotelsapp.HotelFields{Name: r.Name, Address: r.Address, City: r.City, Phone: r.Phone, Category: r.Category}
}

type roomRequest struct {
	Number   string  `json:"number"`
	Capacity int     `json:"capacity"`
	Price    float64 `json:"price"`
	Type     string  `json:"type"`
}

func (r roomRequest) fields() hotelsapp.RoomFields {
	return hotelsapp.RoomFields{Number: r.Number, Capacity: r.Capacity, Price: r.Price, Type: r.Type}
}

func (h AdminHandler) ListReservations(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	page, ok := parsePagination(c)
	if !ok {
		return
	}
	result, err := queries.Ask[reservationsapp.ListReservationsQuery, dto.ReservationCollection](c.Request.Context(), h.Queries, reservationsapp.ListReservationsQuery{
		Code:    strings.TrimSpace(c.Query("code")),
		HotelID: strings.TrimSpace(c.Query("hotel_id")),
		Skip:    page.Skip,
		Limit:   page.Limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AdminHandler) UpdateReservation(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
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
	result, err := commands.Dispatch[reservationsapp.UpdateReservationCommand, *dto.ReservationRef](c.Request.Context(), h.Commands, reservationsapp.UpdateReservationCommand{
		ID:       c.Param("id"),
		HotelID:  req.HotelID,
		ClientID: req.ClientID,
		RoomIDs:  req.RoomIDs,
		CheckIn:  rng.CheckIn,
		CheckOut: rng.CheckOut,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AdminHandler) DeleteReservation(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	result, err := commands.Dispatch[reservationsapp.AdminDeleteReservationCommand, *dto.ReservationRef](c.Request.Context(), h.Commands, reservationsapp.AdminDeleteReservationCommand{
		ID: c.Param("id"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AdminHandler) ExportReservations(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	result, err := commands.Dispatch[reservationsapp.ExportReservationsCommand, *dto.ExportResult](c.Request.Context(), h.Commands, reservationsapp.ExportReservationsCommand{})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h AdminHandler) CreateHotel(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	var req hotelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	result, err := commands.Dispatch[hotelsapp.CreateHotelCommand, *dto.Hotel](c.Request.Context(), h.Commands, hotelsapp.CreateHotelCommand{
		HotelFields: req.fields(),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h AdminHandler) UpdateHotel(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	var req hotelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	result, err := commands.Dispatch[hotelsapp.UpdateHotelCommand, *dto.Hotel](c.Request.Context(), h.Commands, hotelsapp.UpdateHotelCommand{
		ID:          c.Param("id"),
		HotelFields: req.fields(),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AdminHandler) DeleteHotel(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	result, err := commands.Dispatch[hotelsapp.DeleteHotelCommand, *dto.Hotel](c.Request.Context(), h.Commands, hotelsapp.DeleteHotelCommand{
		ID: c.Param("id"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AdminHandler) ListRooms(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	page, ok := parsePagination(c)
	if !ok {
		return
	}
	result, err := queries.Ask[hotelsapp.ListRoomsQuery, dto.RoomCollection](c.Request.Context(), h.Queries, hotelsapp.ListRoomsQuery{
		HotelID: strings.TrimSpace(c.Query("hotel_id")),
		Query:   strings.TrimSpace(c.Query("q")),
		Skip:    page.Skip,
		Limit:   page.Limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AdminHandler) CreateRoom(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	var req roomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	result, err := commands.Dispatch[hotelsapp.CreateRoomCommand, *dto.Room](c.Request.Context(), h.Commands, hotelsapp.CreateRoomCommand{
		HotelID:    c.Param("id"),
		RoomFields: req.fields(),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h AdminHandler) UpdateRoom(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	var req roomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	result, err := commands.Dispatch[hotelsapp.UpdateRoomCommand, *dto.Room](c.Request.Context(), h.Commands, hotelsapp.UpdateRoomCommand{
		ID:         c.Param("id"),
		RoomFields: req.fields(),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AdminHandler) DeleteRoom(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	result, err := commands.Dispatch[hotelsapp.DeleteRoomCommand, *dto.Room](c.Request.Context(), h.Commands, hotelsapp.DeleteRoomCommand{
		ID: c.Param("id"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AdminHandler) ListClients(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	page, ok := parsePagination(c)
	if !ok {
		return
	}
	result, err := queries.Ask[clientsapp.ListClientsQuery, dto.ClientCollection](c.Request.Context(), h.Queries, clientsapp.ListClientsQuery{
		Skip:  page.Skip,
		Limit: page.Limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// DeleteClient removes a client together with every reservation it holds.
func (h AdminHandler) DeleteClient(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	result, err := commands.Dispatch[clientsapp.DeleteClientCommand, *dto.ClientDeleted](c.Request.Context(), h.Commands, clientsapp.DeleteClientCommand{
		ID: c.Param("id"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ AdminHTTP = AdminHandler{}
