package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/catalog-backend/api/controllers"
	"github.com/angelmondragon/catalog-backend/api/middleware"
	"github.com/angelmondragon/catalog-backend/internal/auth"
	"github.com/angelmondragon/catalog-backend/internal/items"
	"github.com/angelmondragon/catalog-backend/internal/stores"
	"github.com/angelmondragon/catalog-backend/internal/tags"
	"github.com/angelmondragon/catalog-backend/internal/users"
	"github.com/angelmondragon/catalog-backend/pkg/config"
	"github.com/angelmondragon/catalog-backend/pkg/logger"
	"github.com/angelmondragon/catalog-backend/pkg/redis"
)

// Deps carries everything the HTTP surface needs.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          controllers.Pinger
	Redis       controllers.Pinger
	Idempotency redis.IdempotencyStore
	Auth        auth.Service
	Users       users.Service
	Stores      stores.Service
	Tags        tags.Service
	Items       items.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"db":    deps.DB,
			"redis": deps.Redis,
		}))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(deps.Auth, logg))
		r.Use(middleware.Idempotency(deps.Idempotency, cfg.Queue.IdempotencyTTL, logg))

		r.Post("/register", controllers.AuthRegister(deps.Auth, logg))
		r.Post("/login", controllers.AuthLogin(deps.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(deps.Auth, logg))

		r.Get("/user/{userId}", controllers.UserGet(deps.Users, logg))
		r.Delete("/user/{userId}", controllers.UserDelete(deps.Users, logg))

		r.Get("/store", controllers.StoreList(deps.Stores, logg))
		r.Post("/store", controllers.StoreCreate(deps.Stores, logg))
		r.Get("/store/{storeId}", controllers.StoreGet(deps.Stores, logg))
		r.Delete("/store/{storeId}", controllers.StoreDelete(deps.Stores, logg))
		r.Get("/store/{storeId}/tag", controllers.StoreTagList(deps.Tags, logg))
		r.Post("/store/{storeId}/tag", controllers.StoreTagCreate(deps.Tags, logg))

		r.Get("/tag/{tagId}", controllers.TagGet(deps.Tags, logg))
		r.Delete("/tag/{tagId}", controllers.TagDelete(deps.Tags, logg))

		r.Get("/item", controllers.ItemList(deps.Items, logg))
		r.Post("/item", controllers.ItemCreate(deps.Items, logg))
		r.Get("/item/{itemId}", controllers.ItemGet(deps.Items, logg))
		r.Put("/item/{itemId}", controllers.ItemUpsert(deps.Items, logg))
		r.Delete("/item/{itemId}", controllers.ItemDelete(deps.Items, logg))
		r.Post("/item/{itemId}/tag/{tagId}", controllers.ItemTagLink(deps.Tags, logg))
		r.Delete("/item/{itemId}/tag/{tagId}", controllers.ItemTagUnlink(deps.Tags, logg))
	})

	return r
}
