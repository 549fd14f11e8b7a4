package command

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/stolasapp/scribe/internal/client"
	"github.com/stolasapp/scribe/internal/seed"
)

func seedCommand() *cobra.Command {
	var (
		serverURL string
		users     int
		posts     int
		seedValue uint64
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Populate a running server with fake users and posts",
		Long: "Signs up fake users and creates fake posts through the HTTP API. The same\n" +
			"--seed always produces the same data; without it a random seed is used\n" +
			"(or SCRIBE_SEED, if set).",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := configFrom(cmd.Context())
			if err != nil {
				return err
			}
			if serverURL == "" {
				serverURL = "http://" + cfg.Address
			}
			if !cmd.Flags().Changed("seed") {
				seedValue = seed.Seed()
			}

			api, err := client.New(serverURL)
			if err != nil {
				return err
			}
			logger := slog.Default()
			res, err := seed.Populate(cmd.Context(), logger, api, seed.Generate(seedValue, users, posts))
			if err != nil {
				return err
			}
			logger.InfoContext(cmd.Context(), "seeded server",
				slog.String("server", serverURL),
				slog.Uint64("seed", seedValue),
				slog.Int("users", res.Users),
				slog.Int("posts", len(res.PostIDs)),
			)
			return nil
		},
	}
	cmd.Flags().StringVarP(&serverURL, "server", "s", "", "base URL of the server (default: the configured address)")
	cmd.Flags().IntVarP(&users, "users", "u", 3, "number of users to create")   //nolint:mnd // default
	cmd.Flags().IntVarP(&posts, "posts", "p", 10, "number of posts to create") //nolint:mnd // default
	cmd.Flags().Uint64Var(&seedValue, "seed", 0, "seed for the fake data generator")
	return cmd
}
