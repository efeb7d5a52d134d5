package api

import (
	"net/http"

	"github.com/Domenick1991/railbooking/internal/service/reservation"
	"github.com/gin-gonic/gin"
)

type SeatHandler struct {
	service reservation.ReservationUseCase
}

func NewSeatHandler(service reservation.ReservationUseCase) *SeatHandler {
	return &SeatHandler{service: service}
}

func (h *SeatHandler) Register(router *gin.RouterGroup) {
	router.GET("/available", h.available)
	router.GET("/next-waiting", h.nextWaiting)
}

func (h *SeatHandler) available(c *gin.Context) {
	available, err := h.service.AvailableSeats(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"available_seats": available})
}

func (h *SeatHandler) nextWaiting(c *gin.Context) {
	passenger, err := h.service.NextWaiting(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	if passenger == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "waitlist is empty"})
		return
	}
	c.JSON(http.StatusOK, toTicketResponse(passenger))
}
