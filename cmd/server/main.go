package main

import (
	"fmt"
	"os"

	"github.com/UkralStul/social-feed/internal/build"
	"github.com/spf13/cobra"
)

func main() {
	serveCmd := newServeCmd()

	rootCmd := &cobra.Command{
		Use:   "socialfeed",
		Short: "GraphQL social feed with realtime subscriptions",
		// Без подкоманды запускаем сервер
		RunE: serveCmd.RunE,
	}
	rootCmd.Flags().AddFlagSet(serveCmd.Flags())

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "socialfeed %s (%s, %s)\n", build.Version, build.Commit, build.Branch)
		},
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
