// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"time"

	"github.com/dalemusser/waffle/config"
	invitestore "github.com/melodica-app/melodica/internal/app/store/invites"
	"github.com/melodica-app/melodica/internal/app/system/workers"
	"go.uber.org/zap"
)

// expirySweep runs for the life of the process; Shutdown stops it.
var expirySweep *workers.ExpirySweep

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	expirySweep = workers.NewExpirySweep(invitestore.New(deps.MongoDatabase), logger, time.Hour)
	expirySweep.Start()

	logger.Info("melodica starting",
		zap.String("env", coreCfg.Env),
		zap.String("database", appCfg.MongoDatabase))
	return nil
}
