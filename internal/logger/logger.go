package logger

import "go.uber.org/zap"

// New はGO_ENVに応じたzapロガーを返す。
func New(env string) (*zap.Logger, error) {
	if env == "prod" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
