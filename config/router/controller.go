package router

import (
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/akeren/launchwait/pkg/ratelimit"
)

func NewRESTController(name, mountPoint string, prepare func(*RouterService, *RESTController)) *RESTController {
	return &RESTController{
		name:       name,
		mountPoint: joinRoute(mountPoint, ""),
		prepare:    prepare,
	}
}

// joinRoute cleans mountPoint+relative into an absolute route without a
// trailing slash ("/" stays "/").
func joinRoute(mountPoint, relative string) string {
	return path.Clean("/" + strings.Trim(mountPoint, "/") + "/" + strings.Trim(relative, "/"))
}

func (routerService *RouterService) AddPostHandler(
	controller *RESTController,
	limiter ratelimit.RateLimiter,
	relativePath string,
	handler HandlerFunction,
	middlewares ...MiddlewareFunc,
) {
	routerService.addHandler(controller, http.MethodPost, limiter, relativePath, handler, middlewares)
}

func (routerService *RouterService) AddGetHandler(
	controller *RESTController,
	limiter ratelimit.RateLimiter,
	relativePath string,
	handler HandlerFunction,
	middlewares ...MiddlewareFunc,
) {
	routerService.addHandler(controller, http.MethodGet, limiter, relativePath, handler, middlewares)
}

// addHandler panics on a duplicate method+route so wiring mistakes fail at boot.
func (routerService *RouterService) addHandler(
	controller *RESTController,
	method string,
	limiter ratelimit.RateLimiter,
	relativePath string,
	handler HandlerFunction,
	middlewares []MiddlewareFunc,
) {
	route := joinRoute(controller.mountPoint, relativePath)
	key := routeKey{method: method, path: route}

	if previous, found := routerService.routes[key]; found {
		panic(fmt.Sprintf("%s %s is already registered by controller %q", method, route, previous.controller.name))
	}
	routerService.routes[key] = routeBinding{controller: controller, limiter: limiter}

	controller.handlerCount++
	routerService.engine.Handle(method, route, append(middlewares, writeResult(handler))...)
	routerService.logger.Debug("Handler registered", "method", method, "path", route, "controller", controller.name)
}

func writeResult(handler HandlerFunction) MiddlewareFunc {
	return func(c *RequestContext) {
		result := handler(c)
		if result == nil {
			GetLogger(c).Error("Handler returned no result", "route", c.FullPath())
			result = InternalServerErrorResult("Internal server error")
		}

		c.JSON(result.StatusCode, result.ToJSON())
	}
}

// limiterFor picks the handler's own limiter and falls back to the router
// default for handlers without one and for unmatched routes.
func (routerService *RouterService) limiterFor(c *RequestContext) ratelimit.RateLimiter {
	binding, found := routerService.routes[routeKey{method: c.Request.Method, path: c.FullPath()}]
	if found && binding.limiter != nil {
		return binding.limiter
	}
	return routerService.rateLimiter
}
