// Command randobot runs one autonomous SWCCG bot worker against a GEMP
// server until interrupted.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/SWCCGArena/rando-python/brain"
	"github.com/SWCCGArena/rando-python/card"
	"github.com/SWCCGArena/rando-python/config"
	"github.com/SWCCGArena/rando-python/decode"
	"github.com/SWCCGArena/rando-python/transport"
	"github.com/SWCCGArena/rando-python/worker"
)

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()

	cfg := config.Load()

	registry, err := card.Load(cfg.CardJSONDir)
	if err != nil {
		log.Fatal().Err(err).Msg("randobot: failed to load card registry")
	}
	log.Info().Int("cards", registry.Len()).Msg("randobot: card registry loaded")

	client, err := transport.New(cfg.ServerURL)
	if err != nil {
		log.Fatal().Err(err).Msg("randobot: failed to build transport client")
	}

	b := selectBrain(cfg, registry)
	d := decode.New(registry, cfg.Username)
	w := worker.New(cfg, client, b, d)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		log.Info().Msg("randobot: shutdown requested")
		w.Stop()
	}()

	if err := w.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("randobot: worker exited with error")
	}
	log.Info().Msg("randobot: worker stopped cleanly")
}

func selectBrain(cfg config.Config, registry *card.Registry) brain.Brain {
	switch cfg.BrainName {
	case "static":
		return brain.NewStaticBrain(registry, cfg)
	default:
		log.Warn().Str("brain", cfg.BrainName).Msg("randobot: unknown brain name, falling back to static")
		return brain.NewStaticBrain(registry, cfg)
	}
}
