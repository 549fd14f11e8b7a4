package command

import (
	"errors"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/stolasapp/scribe/internal/app"
	"github.com/stolasapp/scribe/internal/blog"
	"github.com/stolasapp/scribe/internal/server"
)

func serveCommand() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the blogging API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (runErr error) {
			cfg, logger, store, creds, err := loadStore(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				if err := store.Close(); err != nil {
					runErr = errors.Join(runErr, err)
				}
			}()
			if addr != "" {
				cfg.Address = addr
			}

			svc, err := blog.New(store, creds, logger)
			if err != nil {
				return err
			}
			api := app.New(cfg, logger, svc, creds)

			grp, ctx := errgroup.WithContext(cmd.Context())
			if _, err = server.Start(ctx, grp, logger, cfg.Address, api); err != nil {
				return err
			}
			return grp.Wait()
		},
	}
	cmd.Flags().StringVarP(&addr, "address", "a", "", "listen address, overriding the configured one")
	return cmd
}
