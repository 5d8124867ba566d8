package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/studyquest/studyquest/internal/logger"
	"github.com/studyquest/studyquest/internal/server"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the quiz over an HTTP JSON API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default :8080)")
	serveCmd.Flags().StringP("load", "l", "", "Questions file to serve on startup")
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.Get()
	path, _ := cmd.Flags().GetString("load")
	sess, err := loadSession(path)
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	var gen server.Generator
	if g, err := newGenerator(cmd.Context(), st); err != nil {
		log.Warn("question generation unavailable, /api/generate will return 503", zap.Error(err))
	} else {
		gen = g
	}

	srv := server.New(server.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, sess, gen, log)

	eg, ctx := errgroup.WithContext(cmd.Context())
	eg.Go(func() error {
		return srv.Listen(cfg.Server.Addr)
	})
	eg.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return eg.Wait()
}
