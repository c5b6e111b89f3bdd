// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/minutehub/internal/app/system/notify"
	"github.com/dalemusser/minutehub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// notifyHub carries change signals from writers to SSE subscribers. It
// is created in Startup and consumed by BuildHandler; the watcher that
// feeds it from change streams runs until Shutdown cancels it.
var (
	notifyHub     *notify.Hub
	watcherCancel context.CancelFunc
)

// Startup runs one-time application initialization after DB connections
// and schema setup are complete, but before the HTTP handler is built.
// MinuteHub uses it to honor timeout overrides from the environment and
// to start the change-notification hub and its change-stream watcher.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.ConfigureFromEnv()

	notifyHub = notify.NewHub(logger)

	// The watcher outlives the startup context; Shutdown cancels it.
	watchCtx, cancel := context.WithCancel(context.Background())
	watcherCancel = cancel

	watcher := notify.NewWatcher(deps.MongoDatabase, notifyHub, logger)
	go func() {
		if err := watcher.Run(watchCtx); err != nil && watchCtx.Err() == nil {
			logger.Warn("change-stream watcher stopped", zap.Error(err))
		}
	}()

	return nil
}
