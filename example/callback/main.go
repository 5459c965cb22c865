package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gonikkk/smart-FloodBarrier-monitoring/pkg/floodbarrier"
)

// Prints every reading instead of storing it, handy when bringing up a new
// controller on the bench.
func main() {
	flow, err := floodbarrier.Conf(os.Getenv("FLOODBARRIER_CONFIG"))
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	callback := func(r floodbarrier.Reading) error {
		fmt.Printf("%s rain=%dmm level=%s servo=%v\n",
			time.Now().Format(time.RFC3339), r.RainMM, r.Level, r.ServoOn)
		return nil
	}

	if err := flow.Run(ctx, floodbarrier.StreamOutCallback("stdout", callback)); err != nil {
		log.Fatal().Err(err).Msg("runtime error")
	}
}
