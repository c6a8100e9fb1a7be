package di

import (
	"go.uber.org/zap"

	"raven/application/ports"
	"raven/application/services"
	"raven/domain/core/schema"
	"raven/infrastructure/config"
	"raven/interfaces/http/rest"
	"raven/pkg/observability"
)

// Container holds all application dependencies
type Container struct {
	Config        *config.Config
	Logger        *zap.Logger
	Schemas       *schema.Registry
	SchemaWatcher *config.SchemaWatcher
	NodeRepo      ports.NodeRepository
	Publisher     ports.EventPublisher
	Metrics       *observability.Metrics
	Tracing       *observability.TracerProvider
	NodeService   *services.NodeService
	Router        *rest.Router
}
