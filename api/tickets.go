package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/Domenick1991/railbooking/internal/domain"
	"github.com/Domenick1991/railbooking/internal/service/reservation"
	"github.com/gin-gonic/gin"
)

type TicketHandler struct {
	service reservation.ReservationUseCase
}

type bookTicketRequest struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

type ticketResponse struct {
	PNR         string `json:"pnr"`
	Name        string `json:"name"`
	Age         int    `json:"age"`
	Status      string `json:"status"`
	BookingTime string `json:"booking_time"`
}

type cancelTicketResponse struct {
	Message     string `json:"message"`
	PromotedPNR string `json:"promoted_pnr,omitempty"`
}

func NewTicketHandler(service reservation.ReservationUseCase) *TicketHandler {
	return &TicketHandler{service: service}
}

func (h *TicketHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.book)
	router.DELETE("/:pnr", h.cancel)
	router.GET("/:pnr", h.search)
	router.GET("/", h.list)
}

func (h *TicketHandler) book(c *gin.Context) {
	var req bookTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	passenger, err := h.service.BookTicket(c.Request.Context(), reservation.BookTicketInput{
		Name: req.Name,
		Age:  req.Age,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toTicketResponse(passenger))
}

func (h *TicketHandler) cancel(c *gin.Context) {
	pnr := c.Param("pnr")
	promoted, err := h.service.CancelTicket(c.Request.Context(), pnr)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := cancelTicketResponse{Message: "ticket canceled successfully"}
	if promoted != nil {
		resp.PromotedPNR = promoted.PNR
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TicketHandler) search(c *gin.Context) {
	pnr := c.Param("pnr")
	passenger, err := h.service.SearchTicket(c.Request.Context(), pnr)
	if err != nil {
		writeError(c, err)
		return
	}
	if passenger == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "ticket not found"})
		return
	}

	c.JSON(http.StatusOK, toTicketResponse(passenger))
}

func (h *TicketHandler) list(c *gin.Context) {
	passengers, err := h.service.ListPassengers(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	responses := make([]ticketResponse, 0, len(passengers))
	for i := range passengers {
		responses = append(responses, toTicketResponse(&passengers[i]))
	}
	c.JSON(http.StatusOK, responses)
}

func toTicketResponse(p *domain.Passenger) ticketResponse {
	return ticketResponse{
		PNR:         p.PNR,
		Name:        p.Name,
		Age:         p.Age,
		Status:      string(p.Status),
		BookingTime: p.BookingTime.Format(time.RFC3339),
	}
}

// writeError maps domain errors to HTTP statuses. Storage failures are
// reported without driver details.
func writeError(c *gin.Context, err error) {
	var validationErr domain.ValidationError
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
	case errors.Is(err, domain.ErrTicketNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrTicketNotConfirmed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
