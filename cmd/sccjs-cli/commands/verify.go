package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"sccjs-backend/lib/scrapers/cjs"
	"sccjs-backend/lib/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(verifyCmd)
}

var verifyCmd = &cobra.Command{
	Use:   "verify <username> <password>",
	Short: "Checks that the given portal credentials can log in.",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		engine, err := cjs.NewEngine(cjs.Options{
			Username:                 args[0],
			Password:                 args[1],
			AllowLegacyRenegotiation: true,
			BypassBotProtection:      true,
		})
		if err != nil {
			serviceutil.Fatal("failed to initialize engine", err)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Second*30)
		defer cancel()

		err = engine.Verify(ctx)
		if errors.Is(err, cjs.ErrLoginFailed) {
			serviceutil.Fatal("login failed", err)
		}
		if err != nil {
			serviceutil.Fatal("failed to reach the portal", err)
		}

		slog.Info("credentials verified")
	},
}
