package di

import (
	"go.uber.org/zap"

	"trustie-admin/application/commands/bus"
	"trustie-admin/application/ports"
	querybus "trustie-admin/application/queries/bus"
	"trustie-admin/application/services"
	"trustie-admin/infrastructure/config"
	"trustie-admin/interfaces/http/rest"
	"trustie-admin/pkg/auth"
	"trustie-admin/pkg/observability"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	Collector   *observability.Collector
	CommandBus  *bus.CommandBus
	QueryBus    *querybus.QueryBus
	Router      *rest.Router
	Fanout      *services.FeedFanoutService
	DeadLetters ports.DeadLetterStore
	Dispatcher  ports.FanoutDispatcher
	Sessions    *auth.SessionValidator
	// Tracer is nil when tracing is disabled
	Tracer *observability.TracerProvider
}
