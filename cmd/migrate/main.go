package main

import (
	"os"
	"strconv"

	"lodge/config"
	"lodge/helper"
	"lodge/shared/logger"

	"github.com/rs/zerolog/log"
)

const usage = "usage: migrate up|down|step-up|drop|version|force <version>"

func main() {
	logger.InitLogger()

	if len(os.Args) < 2 {
		log.Fatal().Msg(usage)
	}

	cfg := config.Get()
	action := os.Args[1]

	var version int

	if action == "force" {
		if len(os.Args) < 3 {
			log.Fatal().Msg(usage)
		}

		parsed, err := strconv.Atoi(os.Args[2])
		if err != nil {
			log.Fatal().Err(err).Msg("force needs a numeric version")
		}

		version = parsed
	}

	if err := helper.Runner(cfg, action, version); err != nil {
		log.Fatal().Err(err).Msg(usage)
	}
}
