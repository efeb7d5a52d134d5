package reservation

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/Domenick1991/railbooking/internal/domain"
	"github.com/Domenick1991/railbooking/internal/kafka"
	"github.com/Domenick1991/railbooking/internal/repository"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// pnrMaxAttempts bounds regeneration retries on a PNR collision.
const pnrMaxAttempts = 3

type ReservationUseCase interface {
	BookTicket(ctx context.Context, input BookTicketInput) (*domain.Passenger, error)
	CancelTicket(ctx context.Context, pnr string) (*domain.Passenger, error)
	SearchTicket(ctx context.Context, pnr string) (*domain.Passenger, error)
	ListPassengers(ctx context.Context) ([]domain.Passenger, error)
	NextWaiting(ctx context.Context) (*domain.Passenger, error)
	AvailableSeats(ctx context.Context) (int, error)
	ReconcileSeats(ctx context.Context) (int, error)
}

type Cache interface {
	GetPassengers(ctx context.Context) ([]domain.Passenger, error)
	SetPassengers(ctx context.Context, passengers []domain.Passenger) error
	InvalidatePassengers(ctx context.Context) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type ReservationService struct {
	passengers         repository.PassengerRepository
	cache              Cache
	producer           Producer
	validate           *validator.Validate
	ticketTopic        string
	notificationsTopic string
}

type BookTicketInput struct {
	Name string `json:"name" validate:"required"`
	Age  int    `json:"age" validate:"gt=0"`
}

type ReservationServiceOption func(*ReservationService)

func WithNotificationsTopic(topic string) ReservationServiceOption {
	return func(s *ReservationService) {
		s.notificationsTopic = topic
	}
}

func NewReservationService(
	passengers repository.PassengerRepository,
	cache Cache,
	producer Producer,
	ticketTopic string,
	opts ...ReservationServiceOption,
) *ReservationService {
	service := &ReservationService{
		passengers:  passengers,
		cache:       cache,
		producer:    producer,
		validate:    validator.New(),
		ticketTopic: ticketTopic,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// BookTicket validates the input, assigns a PNR and persists the
// passenger. The confirmed-or-waiting decision happens inside the
// repository transaction, so concurrent bookings cannot oversell seats.
// On a PNR collision the token is regenerated a bounded number of times.
func (s *ReservationService) BookTicket(ctx context.Context, input BookTicketInput) (*domain.Passenger, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	var passenger *domain.Passenger
	for attempt := 0; attempt < pnrMaxAttempts; attempt++ {
		p := &domain.Passenger{
			PNR:  newPNR(),
			Name: input.Name,
			Age:  input.Age,
		}
		err := s.passengers.Create(ctx, p)
		if errors.Is(err, domain.ErrDuplicatePNR) {
			continue
		}
		if err != nil {
			return nil, &domain.StorageError{Op: "book ticket", Err: err}
		}
		passenger = p
		break
	}
	if passenger == nil {
		return nil, domain.ErrDuplicatePNR
	}

	if s.cache != nil {
		_ = s.cache.InvalidatePassengers(ctx)
	}
	if err := s.publish(ctx, "ticket_booked", passenger); err != nil {
		log.Printf("WARNING: failed to publish ticket_booked event for %s: %v", passenger.PNR, err)
	}
	return passenger, nil
}

// CancelTicket removes a confirmed ticket and returns the promoted
// waiting passenger, or nil when the waitlist was empty. Deletion and
// promotion are one transaction in the repository.
func (s *ReservationService) CancelTicket(ctx context.Context, pnr string) (*domain.Passenger, error) {
	promoted, err := s.passengers.CancelConfirmed(ctx, pnr)
	if err != nil {
		if errors.Is(err, domain.ErrTicketNotFound) || errors.Is(err, domain.ErrTicketNotConfirmed) {
			return nil, err
		}
		return nil, &domain.StorageError{Op: "cancel ticket", Err: err}
	}

	if s.cache != nil {
		_ = s.cache.InvalidatePassengers(ctx)
	}
	if err := s.publish(ctx, "ticket_cancelled", &domain.Passenger{PNR: pnr}); err != nil {
		log.Printf("WARNING: failed to publish ticket_cancelled event for %s: %v", pnr, err)
	}
	if promoted != nil {
		if err := s.publish(ctx, "ticket_promoted", promoted); err != nil {
			log.Printf("WARNING: failed to publish ticket_promoted event for %s: %v", promoted.PNR, err)
		}
	}
	return promoted, nil
}

// SearchTicket returns (nil, nil) for an unknown PNR. Absence is a
// normal result; only storage failures surface as errors.
func (s *ReservationService) SearchTicket(ctx context.Context, pnr string) (*domain.Passenger, error) {
	passenger, err := s.passengers.GetByPNR(ctx, pnr)
	if err != nil {
		return nil, &domain.StorageError{Op: "search ticket", Err: err}
	}
	return passenger, nil
}

func (s *ReservationService) ListPassengers(ctx context.Context) ([]domain.Passenger, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetPassengers(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	passengers, err := s.passengers.List(ctx)
	if err != nil {
		return nil, &domain.StorageError{Op: "list passengers", Err: err}
	}
	if s.cache != nil {
		_ = s.cache.SetPassengers(ctx, passengers)
	}
	return passengers, nil
}

// NextWaiting returns the passenger first in line for promotion, or
// (nil, nil) when the waitlist is empty.
func (s *ReservationService) NextWaiting(ctx context.Context) (*domain.Passenger, error) {
	passenger, err := s.passengers.EarliestWaiting(ctx)
	if err != nil {
		return nil, &domain.StorageError{Op: "next waiting", Err: err}
	}
	return passenger, nil
}

// AvailableSeats is advisory: the value may change before a subsequent
// booking, which re-checks capacity atomically.
func (s *ReservationService) AvailableSeats(ctx context.Context) (int, error) {
	available, err := s.passengers.AvailableSeats(ctx)
	if err != nil {
		return 0, &domain.StorageError{Op: "available seats", Err: err}
	}
	return available, nil
}

func (s *ReservationService) ReconcileSeats(ctx context.Context) (int, error) {
	available, err := s.passengers.ReconcileSeats(ctx)
	if err != nil {
		return 0, &domain.StorageError{Op: "reconcile seats", Err: err}
	}
	return available, nil
}

func (s *ReservationService) validateInput(input BookTicketInput) error {
	if err := s.validate.Struct(input); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
			fe := validationErrs[0]
			switch fe.Field() {
			case "Name":
				return domain.ValidationError{Field: "name", Message: "name must be a non-empty string"}
			case "Age":
				return domain.ValidationError{Field: "age", Message: "age must be a positive integer"}
			}
			return domain.ValidationError{Field: fe.Field(), Message: "invalid value"}
		}
		return err
	}
	return nil
}

func (s *ReservationService) publish(ctx context.Context, eventType string, passenger *domain.Passenger) error {
	if s.producer == nil || s.ticketTopic == "" {
		return nil
	}
	event := kafka.TicketEvent{
		Type:        eventType,
		PNR:         passenger.PNR,
		Name:        passenger.Name,
		Age:         passenger.Age,
		Status:      string(passenger.Status),
		BookingTime: passenger.BookingTime,
	}
	if err := s.producer.Publish(ctx, s.ticketTopic, passenger.PNR, event); err != nil {
		return err
	}
	if s.notificationsTopic != "" {
		return s.producer.Publish(ctx, s.notificationsTopic, passenger.PNR, event)
	}
	return nil
}

// newPNR takes the first eight hex characters of a UUID, uppercased.
func newPNR() string {
	return strings.ToUpper(uuid.NewString()[:8])
}

var _ ReservationUseCase = (*ReservationService)(nil)
