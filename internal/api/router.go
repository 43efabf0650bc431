package api

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/byteplug/task-tracker/internal/api/endpoint"
	"github.com/byteplug/task-tracker/internal/api/handler"
	"github.com/byteplug/task-tracker/internal/core/ports"
)

// Deps carries everything the router needs. Mongo and Redis are only used
// by the readiness probe and may be nil in tests.
type Deps struct {
	Users  ports.UserService
	Tasks  ports.TaskService
	Status ports.StatusService
	Tokens endpoint.Verifier
	Logger zerolog.Logger
	Mongo  *mongo.Database
	Redis  *redis.Client
}

// NewRouter builds the Echo instance with every endpoint registered from the
// declarative table. All business operations are POST; probes and the spec
// exposition are GET.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())

	dispatcher := endpoint.NewDispatcher(deps.Tokens, deps.Users, deps.Logger)
	table := Endpoints(deps.Users, deps.Tasks, deps.Status)
	for _, ep := range table {
		e.POST(ep.Path(), dispatcher.Handler(ep))
	}

	e.GET("/specs", NewSpecsHandler(table).Specs)

	healthHandler := handler.NewHealthHandler(deps.Mongo, deps.Redis)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)

	return e
}
