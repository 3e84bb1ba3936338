package main

import (
	"log"

	"github.com/m3rciful/gamebot/core/cmd"
	"github.com/m3rciful/gamebot/internal/app"
)

func main() {
	if err := cmd.Run(cmd.Options{
		ConfigEnvVar:      "GAMEBOT_CONFIG",
		DefaultConfigPath: "config.yaml",
		Bootstrap:         app.Bootstrap,
	}); err != nil {
		log.Fatal(err)
	}
}
