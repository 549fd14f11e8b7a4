package command

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/stolasapp/scribe/internal/storage"
)

const userPageSize = 100

func userCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "User commands",
	}
	cmd.AddCommand(
		userCreateCommand(),
		userListCommand(),
	)
	return cmd
}

func userCreateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create NAME",
		Short: "Create user",
		Long: "Creates user entry for the provided username and password. Passwords may be\n" +
			"provided via stdin or through the interactive prompt.",

		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (runErr error) {
			_, logger, store, creds, err := loadStore(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				if err := store.Close(); err != nil {
					runErr = errors.Join(runErr, err)
				}
			}()

			name := args[0]
			passwd, err := prompt("password: ", true)
			if err != nil {
				return err
			} else if len(passwd) == 0 {
				return errors.New("password must not be empty")
			}
			user, err := creds.Register(cmd.Context(), name, string(passwd))
			if errors.Is(err, storage.ErrAlreadyExists) {
				return fmt.Errorf("user %q already exists", name)
			} else if err != nil {
				return err
			}

			logger.InfoContext(cmd.Context(), "created user",
				slog.String("name", user.Name),
				slog.Int64("id", user.ID),
			)
			return nil
		},
	}
}

func userListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List usernames",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (runErr error) {
			_, _, store, _, err := loadStore(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				if err := store.Close(); err != nil {
					runErr = errors.Join(runErr, err)
				}
			}()

			after := ""
			for {
				users, err := store.ListUsers(cmd.Context(), after, userPageSize)
				if err != nil {
					return err
				}
				for _, user := range users {
					if _, err = fmt.Fprintln(cmd.OutOrStdout(), user.Name); err != nil {
						return err
					}
				}
				if len(users) < userPageSize {
					return nil
				}
				after = users[len(users)-1].Name
			}
		},
	}
}
