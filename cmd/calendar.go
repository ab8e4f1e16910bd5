package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/avstrong/staybook/internal/app"
	"github.com/avstrong/staybook/internal/booking"
)

func calendarCmd() *cobra.Command {
	var in booking.CalendarInput

	now := time.Now().UTC()

	var month int

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Show the remaining units of a room per day of a month",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := loadDeps(cmd)
			if err != nil {
				return err
			}

			in.Month = time.Month(month)

			c, err := app.Build(cmd.Context(), rt.conf, rt.l)
			if err != nil {
				return err
			}
			defer c.Close()

			cal, err := c.Booking.Calendar(cmd.Context(), &in)
			if err != nil {
				return err
			}

			renderCalendar(cmd.OutOrStdout(), cal)

			return nil
		},
	}

	cmd.Flags().StringVar(&in.PropertyID, "property", "", "property id")
	cmd.Flags().StringVar(&in.RoomTypeID, "room", "", "room type id")
	cmd.Flags().IntVar(&in.Year, "year", now.Year(), "year")
	cmd.Flags().IntVar(&month, "month", int(now.Month()), "month (1-12)")

	_ = cmd.MarkFlagRequired("property")
	_ = cmd.MarkFlagRequired("room")

	return cmd
}
