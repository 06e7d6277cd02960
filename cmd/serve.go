package cmd

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	httpapi "worktracker.com/worktracker/internal/http"
	"worktracker.com/worktracker/internal/http/validators"
	"worktracker.com/worktracker/internal/services"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  "Starts the HTTP API and the background reconciler",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		reconciler := services.NewReconcilerService(
			a.stats,
			a.attendance,
			time.Duration(a.cfg.ReconcileIntervalSeconds)*time.Second,
		)

		e := echo.New()
		e.HideBanner = true

		handler := httpapi.NewHandler(httpapi.Services{
			Tasks:      a.tasks,
			Entries:    a.entries,
			Timer:      a.timer,
			Attendance: a.attendance,
			Stats:      a.stats,
		}, validators.NewUserAllowlist(a.cfg.AllowedUsers), a.clock)
		httpapi.Register(e, handler, a.cfg.RateLimit, a.clock)

		go func() {
			log.Printf("HTTP server listening on %s", a.cfg.AppURL)
			if err := e.Start(a.cfg.AppURL); err != nil {
				log.Printf("server stopped: %v", err)
			}
		}()

		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			time.Duration(a.cfg.ShutdownTimeoutSeconds)*time.Second,
		)
		defer cancel()

		_ = e.Shutdown(shutdownCtx)
		reconciler.Shutdown(shutdownCtx)

		log.Println("HTTP server and reconciler shut down gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
