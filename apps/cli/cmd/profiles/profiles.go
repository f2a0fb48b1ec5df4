package profilescmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/code-merge/accompany/platform/go/credentials"
	platformlogging "github.com/code-merge/accompany/platform/go/logging"
)

// Command groups helpers for the connection profiles the provisioner stores.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "Inspect stored connection profiles",
	}

	cmd.AddCommand(listCommand())
	cmd.AddCommand(showCommand())
	return cmd
}

func listCommand() *cobra.Command {
	var home string

	c := &cobra.Command{
		Use:   "list",
		Short: "List stored connection profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(home)
			if err != nil {
				return err
			}

			profiles, err := store.ListProfiles()
			if err != nil {
				return fmt.Errorf("list profiles: %w", err)
			}

			if len(profiles) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no stored profiles")
				return nil
			}
			for _, profile := range profiles {
				fmt.Fprintln(cmd.OutOrStdout(), profile)
			}
			return nil
		},
	}

	c.Flags().StringVar(&home, "home", "", "credentials directory (default ~/.accompany)")
	return c
}

func showCommand() *cobra.Command {
	var home string

	c := &cobra.Command{
		Use:   "show <profile>",
		Short: "Show a stored profile's connection details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(home)
			if err != nil {
				return err
			}

			rec, err := store.Read(args[0])
			if err != nil {
				return fmt.Errorf("read profile: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Profile:  %s\n", args[0])
			fmt.Fprintf(out, "Database: %s\n", rec.DBName)
			fmt.Fprintf(out, "Host:     %s:%d\n", rec.Host, rec.Port)
			fmt.Fprintf(out, "User:     %s\n", rec.User)
			fmt.Fprintf(out, "SSL:      %t\n", rec.SSL)
			if rec.SSLCert != "" {
				fmt.Fprintf(out, "CA cert:  %s\n", rec.SSLCert)
			}
			return nil
		},
	}

	c.Flags().StringVar(&home, "home", "", "credentials directory (default ~/.accompany)")
	return c
}

func openStore(home string) (*credentials.Store, error) {
	if home == "" {
		dir, err := credentials.DefaultDir()
		if err != nil {
			return nil, fmt.Errorf("resolve credentials dir: %w", err)
		}
		home = dir
	}

	logger, err := platformlogging.NewLogger(platformlogging.Config{
		Component: "cli",
		Level:     "error",
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	return credentials.NewStore(home, logger), nil
}
