package waitlist

import (
	"github.com/akeren/launchwait/config"
	"github.com/akeren/launchwait/config/router"
	"github.com/akeren/launchwait/internal/log"
	"github.com/akeren/launchwait/pkg/factory"
	"gorm.io/gorm"
)

type WaitlistServiceFactory interface {
	CreateService() WaitlistService
	CreateController() *router.RESTController
}

type DefaultWaitlistServiceFactory struct {
	db       *gorm.DB
	logger   *log.Logger
	cache    KeyValueCache
	mail     *config.MailConfig
	limiters factory.RateLimiterFactory
	settings *config.AppConfig
	drains   func(func())
}

func NewWaitlistServiceFactory(appConfig *config.ApplicationConfig) WaitlistServiceFactory {
	f := &DefaultWaitlistServiceFactory{
		db:       appConfig.DB,
		logger:   appConfig.Logger,
		cache:    appConfig.Cache,
		mail:     appConfig.Mail,
		settings: appConfig.Config,
		drains:   appConfig.OnCleanup,
	}

	if appConfig.Factories != nil {
		f.limiters = appConfig.Factories.RateLimiterFactory
	}
	if f.settings == nil {
		f.settings = config.NewAppConfig()
	}

	return f
}

// CreateService builds the service and hooks its pending acknowledgment
// emails into application cleanup.
func (f *DefaultWaitlistServiceFactory) CreateService() WaitlistService {
	service := NewWaitlistService(
		f.logger,
		NewWaitlistRepository(f.db),
		NewNotifier(f.mail),
		NewCountCache(f.cache, f.settings.WaitlistCountCacheTTL, f.logger),
	)
	if f.drains != nil {
		f.drains(service.Wait)
	}
	return service
}

func (f *DefaultWaitlistServiceFactory) CreateController() *router.RESTController {
	return NewWaitlistController(f.CreateService(), f.limiters, f.settings.WaitlistRateLimitRequests)
}
