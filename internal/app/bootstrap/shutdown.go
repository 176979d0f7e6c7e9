// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown stops every roster page, then disconnects MongoDB. Pages go
// first so no subscription outlives the client.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if rt := deps.Runtime; rt != nil {
		if rt.Registry != nil {
			rt.Registry.Close()
		}
		if rt.cancel != nil {
			rt.cancel()
		}
		if rt.Logins != nil {
			rt.Logins.Stop()
		}
	}

	if deps.MongoClient != nil {
		logger.Info("disconnecting MongoDB client")
		if err := deps.MongoClient.Disconnect(ctx); err != nil {
			logger.Error("MongoDB disconnect failed", zap.Error(err))
			return err
		}
	}
	return nil
}
