/************************************************************************************
 *
 * gatecore, a Discord gateway shard core for Go
 *
 * SPDX-License-Identifier: BSD-3-Clause
 *
 ************************************************************************************/

// Command shard runs a single Discord Gateway shard using a TOML
// config file, logging every dispatched event's name and sequence.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gatecore/gatecore"
	"github.com/gatecore/gatecore/example"
)

func main() {
	configPath := flag.String("config", "shard.toml", "path to the TOML config file")
	flag.Parse()

	cfg, err := example.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("gatecore: %v", err)
	}

	logger := gatecore.NewDefaultLogger(os.Stdout, gatecore.LogLevelInfoLevel)

	presence := gatecore.DefaultPresence()
	if cfg.Presence.Status != "" {
		presence.Status = gatecore.OnlineStatus(cfg.Presence.Status)
	}
	if cfg.Presence.ActivityName != "" {
		presence.Activity = &gatecore.Activity{Name: cfg.Presence.ActivityName}
	}

	shard := gatecore.NewShard(
		cfg.GatewayURL,
		cfg.Token,
		gatecore.ShardIdentity{Index: cfg.ShardIndex, Total: cfg.ShardTotal},
		cfg.IntentBits(),
		presence,
		cfg.CompressionMode(),
		logger,
		nil,
	)

	pool := example.NewDefaultWorkerPool(logger)
	defer pool.Shutdown()

	limiter := example.NewDefaultIdentifyRateLimiter(1, 5*time.Second)

	runner := example.NewRunner(shard, logger, pool, limiter, func(event gatecore.DispatchEvent) {
		logger.WithField("seq", event.Seq).Info("dispatch: " + event.Name)
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := runner.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("gatecore: shard exited: %v", err)
	}
}
