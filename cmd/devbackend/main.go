// Command devbackend runs the in-memory school-management API with demo data so
// the gateway can be exercised locally.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-school-gateway/devbackend"
	"github.com/jrsteele09/go-school-gateway/internal/logging"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

func main() {
	v := viper.New()
	v.SetEnvPrefix("DEVBACKEND")
	v.AutomaticEnv()
	v.SetDefault("PORT", "4000")
	v.SetDefault("SECRET", "dev-only-secret")
	v.SetDefault("ACCESS_TOKEN_TTL", 15*time.Minute)
	v.SetDefault("REFRESH_TOKEN_TTL", 30*24*time.Hour)

	logging.New("DEV", false)
	figure.NewFigure("dev backend", "cybermedium", true).Print()
	fmt.Println()

	backend := devbackend.New(v.GetString("SECRET"),
		devbackend.WithTTLs(v.GetDuration("ACCESS_TOKEN_TTL"), v.GetDuration("REFRESH_TOKEN_TTL")))
	if err := devbackend.Seed(backend); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed demo data")
	}
	log.Info().Str("password", devbackend.DemoPassword).Msg("Demo accounts: admin@example.com, head@, teacher@, student@greenwood.example.com")

	srv := &http.Server{
		Addr:              ":" + v.GetString("PORT"),
		Handler:           backend,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Dev backend listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Dev backend stopped")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Err(err).Msg("Dev backend shutdown")
	}
}
