package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	floodbarrier "github.com/gonikkk/smart-FloodBarrier-monitoring"
)

// Fans readings out to a worker that raises an alert on the danger level.
func main() {
	flow, err := floodbarrier.Conf(os.Getenv("FLOODBARRIER_CONFIG"))
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, readings, closeReadings := floodbarrier.NewChannelStore("alerts", 32)
	defer closeReadings()

	go alertWorker(readings)

	if err := flow.Run(ctx, floodbarrier.StreamOutStore(st)); err != nil {
		log.Fatal().Err(err).Msg("runtime error")
	}
}

func alertWorker(readings <-chan floodbarrier.Reading) {
	for r := range readings {
		if r.Level == "위험" {
			log.Warn().Int("rain_mm", r.RainMM).Bool("servo", r.ServoOn).Msg("danger level reported")
		}
	}
}
