package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New は環境名に合わせたzerologロガーを作る。
func New(environment string) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
		NoColor:    environment == "prod",
	}

	log := zerolog.New(output).With().
		Timestamp().
		Str("env", environment).
		Logger()

	if environment != "prod" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	return log
}
