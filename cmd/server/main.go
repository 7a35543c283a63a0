package main

import (
	"os"

	"omegavideos/internal/logging"
	"omegavideos/internal/transport/http"
)

func main() {
	if err := http.Run(); err != nil {
		logging.Error().Err(err).Msg("Server failed")
		os.Exit(1)
	}
}
