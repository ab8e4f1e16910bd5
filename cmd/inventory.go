package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/avstrong/staybook/internal/app"
	"github.com/avstrong/staybook/internal/calendar"
	"github.com/avstrong/staybook/internal/inventory"
)

func inventoryCmd() *cobra.Command {
	var (
		req        inventory.Request
		kind       string
		start, end string
	)

	cmd := &cobra.Command{
		Use:   "inventory",
		Short: "Record a walk-in, an external booking or a block",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := loadDeps(cmd)
			if err != nil {
				return err
			}

			req.Kind = inventory.Kind(kind)

			if req.StartDate, err = calendar.Parse(start); err != nil {
				return fmt.Errorf("--start: %w", err)
			}

			if req.EndDate, err = calendar.Parse(end); err != nil {
				return fmt.Errorf("--end: %w", err)
			}

			c, err := app.Build(cmd.Context(), rt.conf, rt.l)
			if err != nil {
				return err
			}
			defer c.Close()

			rec, err := c.Inventory.Submit(cmd.Context(), inventory.FromRequest(req))
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s %s\n", rec.Kind, rec.ID)

			return nil
		},
	}

	cmd.Flags().StringVar(&req.PropertyID, "property", "", "property id")
	cmd.Flags().StringVar(&req.RoomTypeID, "room", "", "room type id")
	cmd.Flags().StringVar(&kind, "kind", string(inventory.KindWalkIn), "walk_in, external_booking or block")
	cmd.Flags().StringVar(&start, "start", "", "first blocked night (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "day after the last blocked night (YYYY-MM-DD)")
	cmd.Flags().IntVar(&req.Units, "units", 1, "units to block")
	cmd.Flags().StringVar(&req.Platform, "platform", "", "booking platform for external bookings")
	cmd.Flags().StringVar(&req.ReferenceNo, "reference", "", "platform reference number")
	cmd.Flags().StringVar(&req.Notes, "notes", "", "notes for a block")

	return cmd
}
