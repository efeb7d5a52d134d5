package domain

import "time"

type TicketStatus string

const (
	TicketStatusConfirmed TicketStatus = "confirmed"
	TicketStatusWaiting   TicketStatus = "waiting"
)

type Passenger struct {
	ID          int64
	PNR         string
	Name        string
	Age         int
	Status      TicketStatus
	BookingTime time.Time
}
