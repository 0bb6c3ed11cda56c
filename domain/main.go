package domain

import (
	"github.com/akeren/launchwait/config"
	"github.com/akeren/launchwait/domain/monitoring"
	"github.com/akeren/launchwait/domain/waitlist"
)

func SetupCoreDomain(appConfig *config.ApplicationConfig) {
	appConfig.RouterService.MountController(monitoring.NewMonitoringControllerFactory(appConfig).CreateController())
	appConfig.RouterService.MountController(waitlist.NewWaitlistServiceFactory(appConfig).CreateController())
}
