package cmd

import (
	"github.com/joho/godotenv"
	"github.com/lehigh-university-libraries/pustak/internal/config"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "pustak",
		Short: "Terminal client for the digital library and poetry catalog",
		Long: `Pustak browses the book and poetry catalog, manages your reviews and
profile, and gives administrators a way to curate the collection.

Configuration is read from a YAML file and the environment:

` + config.Description(),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
			return a.init(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to config file (default "+config.DefaultPath()+")")
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVarP(&a.assumeYes, "yes", "y", false, "Answer yes to confirmation prompts")
	cmd.PersistentFlags().BoolVar(&a.plain, "plain", false, "Disable styled output")

	cmd.AddCommand(
		newLoginCmd(a),
		newRegisterCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newForgotPasswordCmd(a),
		newBooksCmd(a),
		newPoemsCmd(a),
		newProfileCmd(a),
		newAdminCmd(a),
		newExportCmd(a),
	)

	return cmd
}
