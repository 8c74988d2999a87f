package logger

import "go.uber.org/zap"

// New builds the service logger: JSON to stdout in production, console
// output with debug level in development.
func New(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	config := zap.NewProductionConfig()
	config.OutputPaths = []string{"stdout"}
	return config.Build()
}
