package monitoring

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/akeren/launchwait/internal/log"
	"github.com/stretchr/testify/assert"
)

func quietLogger() *log.Logger {
	return log.NewLoggerWithWriter(io.Discard)
}

func TestHealth_ReportsEachDependency(t *testing.T) {
	ctrl := &MonitoringController{
		database:       func(context.Context) error { return nil },
		cache:          func(context.Context) error { return errors.New("connection refused") },
		mailConfigured: true,
		startTime:      time.Now().Add(-90 * time.Second),
	}

	status := ctrl.health(context.Background(), quietLogger())

	assert.Equal(t, 1, status.Database)
	assert.Equal(t, 0, status.Cache)
	assert.Equal(t, 1, status.Mail)
	assert.GreaterOrEqual(t, status.Uptime, 90)
}

func TestHealth_UnconfiguredDependenciesAreZero(t *testing.T) {
	ctrl := &MonitoringController{database: databaseProbe(nil), startTime: time.Now()}

	assert.Equal(t, HealthStatus{}, ctrl.health(context.Background(), quietLogger()))
}

func TestHealth_ProbesShareDeadline(t *testing.T) {
	slow := func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}
	ctrl := &MonitoringController{database: slow, cache: slow, startTime: time.Now()}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	status := ctrl.health(ctx, quietLogger())

	assert.Less(t, time.Since(start), healthCheckTimeout)
	assert.Zero(t, status.Database)
	assert.Zero(t, status.Cache)
}
