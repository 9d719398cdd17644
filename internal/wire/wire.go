package wire

import (
	"net/http"

	"gym-booking/internal/adaptor"
	"gym-booking/internal/data/repository"
	"gym-booking/internal/notify"
	"gym-booking/internal/usecase"
	"gym-booking/pkg/cache"
	"gym-booking/pkg/middleware"
	"gym-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type App struct {
	Router *chi.Mux
}

// Wiring assembles services, handlers and routes from the shared
// dependencies.
func Wiring(
	repo *repository.Repository,
	listCache *cache.Cache,
	notifier notify.Notifier,
	config *utils.Config,
	logger *zap.Logger,
) *App {
	service := usecase.NewService(repo, listCache, notifier, logger)
	handler := adaptor.NewHandler(service, logger)

	router := setupRouter(handler, config, logger)

	return &App{
		Router: router,
	}
}

func setupRouter(handler *adaptor.Handler, config *utils.Config, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))

	wireCatalog(r, handler.Catalog, config, logger)
	wireBooking(r, handler.Booking, config, logger)
	wireRoster(r, handler.Roster, config, logger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}
