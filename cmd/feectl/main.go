package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"feeportal/internal/config"
)

var Version = "dev"

func main() {
	cfg := config.Load()

	rootCmd := &cobra.Command{
		Use:          "feectl",
		Short:        "feectl - operate and test the fee portal payment flow",
		Version:      Version,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("server", "http://localhost:"+cfg.Server.Port, "Fee portal base URL")

	rootCmd.AddCommand(signCmd(cfg))
	rootCmd.AddCommand(checkoutCmd(cfg))
	rootCmd.AddCommand(pollCmd())
	rootCmd.AddCommand(notifyCmd(cfg))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
