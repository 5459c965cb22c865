package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	floodbarrier "github.com/gonikkk/smart-FloodBarrier-monitoring"
)

func main() {
	flow, err := floodbarrier.Conf(os.Getenv("FLOODBARRIER_CONFIG"))
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := flow.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("ingestion exited")
	}
}
