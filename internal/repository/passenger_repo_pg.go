package repository

import (
	"context"
	"errors"

	"github.com/Domenick1991/railbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PassengerRepository interface {
	Create(ctx context.Context, passenger *domain.Passenger) error
	CancelConfirmed(ctx context.Context, pnr string) (*domain.Passenger, error)
	GetByPNR(ctx context.Context, pnr string) (*domain.Passenger, error)
	List(ctx context.Context) ([]domain.Passenger, error)
	CountByStatus(ctx context.Context, status domain.TicketStatus) (int, error)
	EarliestWaiting(ctx context.Context) (*domain.Passenger, error)
	AvailableSeats(ctx context.Context) (int, error)
	ReconcileSeats(ctx context.Context) (int, error)
}

type PGPassengerRepository struct {
	db *pgxpool.Pool
}

func NewPassengerRepository(db *pgxpool.Pool) PassengerRepository {
	return &PGPassengerRepository{db: db}
}

// Create inserts a new passenger and decides its status inside one
// transaction. The seat counter row is locked unconditionally, so every
// booking serializes on it: two bookings can never both claim the last
// seat, and a waiting insert cannot slip past a concurrent cancellation
// that is about to give a seat back. If no seat is left the passenger
// is stored as waiting.
func (r *PGPassengerRepository) Create(ctx context.Context, passenger *domain.Passenger) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var available int
	if err := tx.QueryRow(ctx, `SELECT available FROM seats WHERE id = 1 FOR UPDATE`).Scan(&available); err != nil {
		return err
	}
	if available > 0 {
		if _, err := tx.Exec(ctx, `UPDATE seats SET available = available - 1 WHERE id = 1`); err != nil {
			return err
		}
		passenger.Status = domain.TicketStatusConfirmed
	} else {
		passenger.Status = domain.TicketStatusWaiting
	}

	if err := tx.QueryRow(ctx, `INSERT INTO passengers (pnr, name, age, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, booking_time`, passenger.PNR, passenger.Name, passenger.Age, passenger.Status).
		Scan(&passenger.ID, &passenger.BookingTime); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrDuplicatePNR
		}
		return err
	}

	return tx.Commit(ctx)
}

// CancelConfirmed deletes a confirmed ticket and promotes the earliest
// waiting passenger in the same transaction. It returns the promoted
// passenger, or nil when the waitlist was empty and the seat went back
// to the pool. A reader never observes the freed seat without the
// promotion alongside it.
func (r *PGPassengerRepository) CancelConfirmed(ctx context.Context, pnr string) (*domain.Passenger, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var current domain.Passenger
	err = tx.QueryRow(ctx, `SELECT id, pnr, name, age, status, booking_time FROM passengers WHERE pnr=$1 FOR UPDATE`, pnr).
		Scan(&current.ID, &current.PNR, &current.Name, &current.Age, &current.Status, &current.BookingTime)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTicketNotFound
	}
	if err != nil {
		return nil, err
	}
	if current.Status != domain.TicketStatusConfirmed {
		return nil, domain.ErrTicketNotConfirmed
	}

	if _, err := tx.Exec(ctx, `DELETE FROM passengers WHERE pnr=$1`, pnr); err != nil {
		return nil, err
	}

	promoted, err := promoteEarliestWaiting(ctx, tx)
	if err != nil {
		return nil, err
	}
	if promoted == nil {
		// The waitlist looked empty, but a booking holding the counter
		// row lock may commit a waiting passenger before we give the
		// seat back. Lock the counter first, then look again; only when
		// the waitlist is still empty does the seat return to the pool.
		if _, err := tx.Exec(ctx, `SELECT available FROM seats WHERE id = 1 FOR UPDATE`); err != nil {
			return nil, err
		}
		promoted, err = promoteEarliestWaiting(ctx, tx)
		if err != nil {
			return nil, err
		}
		if promoted == nil {
			if _, err := tx.Exec(ctx, `UPDATE seats SET available = available + 1 WHERE id = 1`); err != nil {
				return nil, err
			}
			return nil, tx.Commit(ctx)
		}
	}

	return promoted, tx.Commit(ctx)
}

// promoteEarliestWaiting flips the oldest waiting passenger to confirmed
// and returns them, or (nil, nil) when no waiting passenger exists.
func promoteEarliestWaiting(ctx context.Context, tx pgx.Tx) (*domain.Passenger, error) {
	var promoted domain.Passenger
	err := tx.QueryRow(ctx, `UPDATE passengers SET status=$1
		WHERE pnr = (
			SELECT pnr FROM passengers
			WHERE status=$2
			ORDER BY booking_time ASC, id ASC
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, pnr, name, age, status, booking_time`, domain.TicketStatusConfirmed, domain.TicketStatusWaiting).
		Scan(&promoted.ID, &promoted.PNR, &promoted.Name, &promoted.Age, &promoted.Status, &promoted.BookingTime)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &promoted, nil
}

// GetByPNR returns (nil, nil) when no ticket exists; absence is a normal
// lookup result, not an error.
func (r *PGPassengerRepository) GetByPNR(ctx context.Context, pnr string) (*domain.Passenger, error) {
	row := r.db.QueryRow(ctx, `SELECT id, pnr, name, age, status, booking_time FROM passengers WHERE pnr=$1`, pnr)
	var p domain.Passenger
	if err := row.Scan(&p.ID, &p.PNR, &p.Name, &p.Age, &p.Status, &p.BookingTime); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *PGPassengerRepository) List(ctx context.Context) ([]domain.Passenger, error) {
	rows, err := r.db.Query(ctx, `SELECT id, pnr, name, age, status, booking_time FROM passengers ORDER BY booking_time, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	passengers := make([]domain.Passenger, 0)
	for rows.Next() {
		var p domain.Passenger
		if err := rows.Scan(&p.ID, &p.PNR, &p.Name, &p.Age, &p.Status, &p.BookingTime); err != nil {
			return nil, err
		}
		passengers = append(passengers, p)
	}
	return passengers, rows.Err()
}

func (r *PGPassengerRepository) CountByStatus(ctx context.Context, status domain.TicketStatus) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM passengers WHERE status=$1`, status).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PGPassengerRepository) EarliestWaiting(ctx context.Context) (*domain.Passenger, error) {
	row := r.db.QueryRow(ctx, `SELECT id, pnr, name, age, status, booking_time FROM passengers WHERE status=$1 ORDER BY booking_time ASC, id ASC LIMIT 1`, domain.TicketStatusWaiting)
	var p domain.Passenger
	if err := row.Scan(&p.ID, &p.PNR, &p.Name, &p.Age, &p.Status, &p.BookingTime); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *PGPassengerRepository) AvailableSeats(ctx context.Context) (int, error) {
	var available int
	if err := r.db.QueryRow(ctx, `SELECT available FROM seats WHERE id = 1`).Scan(&available); err != nil {
		return 0, err
	}
	return available, nil
}

// ReconcileSeats recomputes the seat counter from the confirmed row count.
// The counter is authoritative for bookings; this repairs drift left by
// crashes between counter updates, and returns the corrected value.
// The counter row is locked before counting so the count runs on a
// snapshot taken after any in-flight booking has committed; a single
// UPDATE-with-subquery would re-evaluate against a stale snapshot when
// it blocks on a concurrent booking.
func (r *PGPassengerRepository) ReconcileSeats(ctx context.Context) (int, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	var total int
	if err := tx.QueryRow(ctx, `SELECT total FROM seats WHERE id = 1 FOR UPDATE`).Scan(&total); err != nil {
		return 0, err
	}

	var confirmed int
	if err := tx.QueryRow(ctx, `SELECT count(*) FROM passengers WHERE status=$1`, domain.TicketStatusConfirmed).Scan(&confirmed); err != nil {
		return 0, err
	}

	var available int
	if err := tx.QueryRow(ctx, `UPDATE seats SET available = $1 WHERE id = 1 RETURNING available`, total-confirmed).Scan(&available); err != nil {
		return 0, err
	}

	return available, tx.Commit(ctx)
}

var _ PassengerRepository = (*PGPassengerRepository)(nil)
