package monitoring

import (
	"github.com/akeren/launchwait/config"
	"github.com/akeren/launchwait/config/router"
	"github.com/akeren/launchwait/pkg/factory"
)

type MonitoringControllerFactory interface {
	CreateController() *router.RESTController
}

type DefaultMonitoringControllerFactory struct {
	appConfig *config.ApplicationConfig
}

func NewMonitoringControllerFactory(appConfig *config.ApplicationConfig) MonitoringControllerFactory {
	return &DefaultMonitoringControllerFactory{appConfig: appConfig}
}

func (f *DefaultMonitoringControllerFactory) CreateController() *router.RESTController {
	ac := f.appConfig

	var limiters factory.RateLimiterFactory
	if ac.Factories != nil {
		limiters = ac.Factories.RateLimiterFactory
	}

	return NewMonitoringController(ac.DB, ac.Logger, ac.Cache, limiters, ac.Mail != nil && ac.Mail.IsConfigured())
}
