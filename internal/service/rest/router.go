// Package rest — HTTP API магазина костюмов: ресурсы shops, costumes, offers
// с гиперссылками "_links" и вложенными маршрутами чтения.
package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/costumeshop/internal/domain"
	"github.com/vladislavdragonenkov/costumeshop/internal/service/catalog"
)

const apiPrefix = "/api"

// WelcomeMessage — ответ корневого маршрута.
const WelcomeMessage = "Welcome to Costume Shop API!"

// Config — настройки HTTP-слоя.
type Config struct {
	// PublicURL — внешний адрес сервиса, от которого строятся ссылки.
	PublicURL    string
	CORSOrigins  []string
	RateLimitRPM int
	Logger       *log.Entry
	Metrics      HTTPMetrics
}

// NewRouter собирает chi-роутер с ресурсами под /api.
// Возвращённый роутер можно дополнять маршрутами (например /graphql).
func NewRouter(cat *catalog.Catalog, cfg Config) (*chi.Mux, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.WithField("component", "http")
	}
	links := newLinkBuilder(cfg.PublicURL)

	shops, err := newResource[*domain.Shop](cat.Shops, links, logger)
	if err != nil {
		return nil, err
	}
	costumes, err := newResource[*domain.Costume](cat.Costumes, links, logger)
	if err != nil {
		return nil, err
	}
	offers, err := newResource[*domain.Offer](cat.Offers, links, logger)
	if err != nil {
		return nil, err
	}
	nested := &nestedRoutes{offers: offers, costumes: costumes, links: links}

	m := NewMiddleware(logger, cfg.Metrics)
	r := chi.NewRouter()
	r.Use(m.RequestID)
	r.Use(m.RequestLogger)
	r.Use(m.Recoverer)
	if len(cfg.CORSOrigins) > 0 {
		r.Use(m.CORS(cfg.CORSOrigins))
	}
	if cfg.RateLimitRPM > 0 {
		r.Use(m.RateLimit(cfg.RateLimitRPM))
	}

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		writePlain(w, http.StatusOK, WelcomeMessage)
	})
	r.Route(apiPrefix, func(r chi.Router) {
		shops.mount(r)
		costumes.mount(r)
		offers.mount(r)
		nested.mount(r)
	})
	return r, nil
}
