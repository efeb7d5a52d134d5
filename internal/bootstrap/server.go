package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Domenick1991/railbooking/api"
	"github.com/Domenick1991/railbooking/config"
	"github.com/Domenick1991/railbooking/internal/service/reservation"
	"github.com/gin-gonic/gin"
)

// Run starts the HTTP server and blocks until the context is canceled
// or the server fails.
func Run(ctx context.Context, cfg *config.Config, reservationSvc reservation.ReservationUseCase) error {
	httpServer := newServer(cfg, reservationSvc)

	errCh := make(chan error, 1)

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func newServer(cfg *config.Config, reservationSvc reservation.ReservationUseCase) *http.Server {
	router := gin.Default()

	ticketHandler := api.NewTicketHandler(reservationSvc)
	seatHandler := api.NewSeatHandler(reservationSvc)

	ticketHandler.Register(router.Group("/tickets"))
	seatHandler.Register(router.Group("/seats"))

	return &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}
}
