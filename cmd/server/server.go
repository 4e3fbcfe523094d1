package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/grocerysushi/stumbleupon-clone/cmd"
	"github.com/grocerysushi/stumbleupon-clone/internal/api"
	"github.com/grocerysushi/stumbleupon-clone/internal/logging"
	"github.com/grocerysushi/stumbleupon-clone/internal/metadata"
	"github.com/grocerysushi/stumbleupon-clone/internal/monitor"
	"github.com/grocerysushi/stumbleupon-clone/internal/repository"
	"github.com/grocerysushi/stumbleupon-clone/internal/services"
)

// RunServerCmd représente la commande 'run-server' de Cobra.
// C'est le point d'entrée pour lancer le serveur de l'application.
var RunServerCmd = &cobra.Command{
	Use:   "run-server",
	Short: "Lance le serveur API de découverte et les processus de fond.",
	Long: `Cette commande ouvre le stockage configuré, configure les APIs,
démarre le moniteur de liens puis lance le serveur HTTP.`,
	Run: func(_ *cobra.Command, _ []string) {
		cfg := cmd.Cfg
		log := cmd.Log

		store, err := repository.Open(cfg, log)
		if err != nil {
			log.Fatalf("Échec de l'ouverture du stockage : %v", err)
		}
		defer store.Close()
		log.Info("Repositories initialisés.")

		fetcher := metadata.NewFetcher(metadata.Options{
			Timeout:   time.Duration(cfg.Metadata.TimeoutSeconds) * time.Second,
			UserAgent: cfg.Metadata.UserAgent,
		}, log)
		selector := services.NewSelector(cfg.Discovery.Epsilon, cfg.Discovery.ExploreWindow, nil)
		svc := api.Services{
			Discovery: services.NewDiscoveryService(store.Links, store.Events, selector, log,
				services.WithCandidateLimit(cfg.Discovery.CandidateLimit)),
			Feedback: services.NewFeedbackService(store.Events, log),
			Links:    services.NewLinkService(store.Links, store.Events, store.Topics, fetcher, log),
			Topics:   services.NewTopicService(store.Topics, log),
		}
		log.Info("Services métiers initialisés.")

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		if cfg.Monitor.Enabled {
			interval := time.Duration(cfg.Monitor.IntervalMinutes) * time.Minute
			linkMonitor := monitor.NewLinkMonitor(store.Links, interval, log)
			go linkMonitor.Start(ctx)
		}

		var limiter *api.RateLimiter
		if cfg.Server.RateLimitRPS > 0 {
			limiter = api.NewRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst)
			go func() {
				ticker := time.NewTicker(10 * time.Minute)
				defer ticker.Stop()
				for {
					select {
					case <-ctx.Done():
						return
					case <-ticker.C:
						limiter.Cleanup(time.Hour)
					}
				}
			}()
		}

		gin.SetMode(gin.ReleaseMode)
		router := gin.New()
		router.Use(gin.Recovery(), logging.GinLogger(log))
		api.SetupRoutes(router, svc, limiter, log)
		log.Info("Routes API configurées.")

		serverAddr := fmt.Sprintf(":%d", cfg.Server.Port)
		srv := &http.Server{
			Addr:              serverAddr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Démarrer le serveur dans une goroutine pour ne pas bloquer.
		go func() {
			log.WithField("addr", serverAddr).Info("Démarrage du serveur")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatalf("Échec du démarrage du serveur : %v", err)
			}
		}()

		// Attendre Ctrl+C ou un signal d'arrêt.
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info("Signal d'arrêt reçu. Arrêt du serveur...")

		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("Arrêt forcé du serveur")
		}

		log.Info("Serveur arrêté proprement.")
	},
}

func init() {
	cmd.RootCmd.AddCommand(RunServerCmd)
}
