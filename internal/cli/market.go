package cli

import (
	"github.com/spf13/cobra"

	"tradedesk/internal/market"
	"tradedesk/internal/models"
)

// addMarketCommands adds market session commands.
func addMarketCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newStatusCmd(app))
}

func newStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current market session",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			session := market.Now()

			if output.IsJSON() {
				payload := map[string]interface{}{
					"status": session.Status,
					"reason": session.Reason,
				}
				if !session.NextOpen.IsZero() {
					payload["next_open"] = session.NextOpen
				}
				return output.JSON(payload)
			}

			switch session.Status {
			case models.MarketOpen:
				output.Success("Market: %s", session.Reason)
			case models.MarketPreMarket, models.MarketPostMarket:
				output.Warning("Market: %s", session.Reason)
			default:
				output.Error("Market: %s", session.Reason)
			}
			if !session.NextOpen.IsZero() {
				output.Printf("Next open: %s\n", session.NextOpen.Format("Mon 02-Jan-2006 15:04 MST"))
			}
			return nil
		},
	}
}
