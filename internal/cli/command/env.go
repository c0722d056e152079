package command

import (
	"io"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/snapshot-merger/internal/cli/config"
	"github.com/yndnr/snapshot-merger/internal/cli/output"
	"github.com/yndnr/snapshot-merger/internal/telemetry/logger"
	"github.com/yndnr/snapshot-merger/internal/telemetry/metric"
)

// cmdEnv holds what every action needs once flags are resolved.
type cmdEnv struct {
	cfg     *config.MergerConfig
	log     logger.Logger
	metrics *metric.Registry
	stdout  io.Writer
	stderr  io.Writer
}

// setup loads the configuration (file, environment, flags) and builds
// the logger and metrics registry.
func setup(c *cli.Context) (*cmdEnv, error) {
	cfg, err := config.Load(c.String("config"), overrides(c))
	if err != nil {
		return nil, err
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: c.App.ErrWriter,
	})
	if err != nil {
		return nil, err
	}
	logger.SetDefault(log)

	return &cmdEnv{
		cfg:     cfg,
		log:     log,
		metrics: metric.NewRegistry(),
		stdout:  c.App.Writer,
		stderr:  c.App.ErrWriter,
	}, nil
}

// print renders a result in the configured output format.
func (e *cmdEnv) print(data any) error {
	return output.NewFormatter(output.Format(e.cfg.Output.Format), false).Format(e.stdout, data)
}

// flushMetrics writes the metrics textfile, if configured. A failure is
// logged and does not change the command's outcome.
func (e *cmdEnv) flushMetrics() {
	path := e.cfg.Metrics.Textfile
	if err := e.metrics.WriteTextfile(path); err != nil {
		e.log.Warn("metrics textfile not written", "path", path, "error", err)
	}
}
