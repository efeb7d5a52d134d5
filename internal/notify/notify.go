package notify

import (
	"context"
	"fmt"

	"github.com/Domenick1991/railbooking/internal/kafka"
)

type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

func (s *Sender) Send(ctx context.Context, event kafka.TicketEvent) error {
	fmt.Printf("notify passenger %s (PNR %s) about %s, status %s\n", event.Name, event.PNR, event.Type, event.Status)
	return nil
}
