package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/shiftr/internal/client"
	"github.com/sadopc/shiftr/internal/config"
	"github.com/sadopc/shiftr/internal/server"
)

func serveCmd(a *app) *cobra.Command {
	var addr, dbPath, token string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a remote record store that shiftr can sync to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.ServeAddr
			}
			if token == "" {
				token = a.cfg.Token
			}
			if token == "" {
				return fmt.Errorf("a token is required (--token or $%s)", config.EnvToken)
			}
			if dbPath == "" {
				dbPath = filepath.Join(filepath.Dir(a.cfg.DBPath), "remote.db")
			}

			db, err := server.Open(dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			srv := &http.Server{
				Addr:              addr,
				Handler:           server.New(db, token, a.logger).Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errc := make(chan error, 1)
			go func() {
				a.logger.Info("serving", "addr", addr, "db", dbPath)
				errc <- srv.ListenAndServe()
			}()
			fmt.Fprintf(cmd.OutOrStdout(), "Listening on http://%s%s\n", addr, client.EndpointSuffix)

			select {
			case err := <-errc:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			a.logger.Info("shutting down")
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default $"+config.EnvServeAddr+" or "+config.DefaultServeAddr+")")
	cmd.Flags().StringVar(&dbPath, "db", "", "database file (default remote.db next to the local database)")
	cmd.Flags().StringVar(&token, "token", "", "shared token clients must send")
	return cmd
}
