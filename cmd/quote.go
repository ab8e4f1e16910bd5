package cmd

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/avstrong/staybook/internal/app"
	"github.com/avstrong/staybook/internal/booking"
	"github.com/avstrong/staybook/internal/calendar"
	"github.com/avstrong/staybook/internal/marketplace"
)

type quoteFlags struct {
	propertyID string
	roomTypeID string
	checkIn    string
	checkOut   string
	units      int
	adults     int
	children   int
	offer      string
	book       bool
	guestName  string
	guestEmail string
	guestPhone string
	key        string
}

func quoteCmd() *cobra.Command {
	var f quoteFlags

	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Price a stay and optionally book it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runQuote(cmd, &f)
		},
	}

	cmd.Flags().StringVar(&f.propertyID, "property", "", "property id")
	cmd.Flags().StringVar(&f.roomTypeID, "room", "", "room type id")
	cmd.Flags().StringVar(&f.checkIn, "check-in", "", "check-in date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.checkOut, "check-out", "", "check-out date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&f.units, "units", 1, "rooms or beds to book")
	cmd.Flags().IntVar(&f.adults, "adults", 2, "number of adults") //nolint:gomnd
	cmd.Flags().IntVar(&f.children, "children", 0, "number of children")
	cmd.Flags().StringVar(&f.offer, "offer", "", "offer code")
	cmd.Flags().BoolVar(&f.book, "book", false, "create the booking when the stay is bookable")
	cmd.Flags().StringVar(&f.guestName, "guest-name", "", "guest name, required with --book")
	cmd.Flags().StringVar(&f.guestEmail, "guest-email", "", "guest email, required with --book")
	cmd.Flags().StringVar(&f.guestPhone, "guest-phone", "", "guest phone")
	cmd.Flags().StringVar(&f.key, "idempotency-key", "", "idempotency key for --book, generated when empty")

	_ = cmd.MarkFlagRequired("property")
	_ = cmd.MarkFlagRequired("room")

	return cmd
}

func (f *quoteFlags) input() (booking.QuoteInput, error) {
	in := booking.QuoteInput{
		PropertyID: f.propertyID,
		RoomTypeID: f.roomTypeID,
		Units:      f.units,
		Adults:     f.adults,
		Children:   f.children,
		OfferCode:  f.offer,
	}

	var err error

	if in.CheckIn, err = calendar.Parse(f.checkIn); err != nil {
		return in, fmt.Errorf("--check-in: %w", err)
	}

	if in.CheckOut, err = calendar.Parse(f.checkOut); err != nil {
		return in, fmt.Errorf("--check-out: %w", err)
	}

	return in, nil
}

func runQuote(cmd *cobra.Command, f *quoteFlags) error {
	rt, err := loadDeps(cmd)
	if err != nil {
		return err
	}

	in, err := f.input()
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	c, err := app.Build(ctx, rt.conf, rt.l)
	if err != nil {
		return err
	}
	defer c.Close()

	q, err := c.Booking.Quote(ctx, &in)
	if err != nil {
		return err
	}

	s := c.NewSession()
	s.SelectRoom(in.PropertyID, q.Room)
	s.SetTaxRate(q.TaxRate)
	s.SetGuests(in.Guests())
	s.SetDates(in.Dates())
	s.ApplyOffer(q.Offer)
	s.RefreshAvailability(ctx)

	notes := q.Warnings
	if n := s.Notice(); n != "" {
		notes = append(notes, n)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("%s (%s)", q.Room.Name, q.Room.Category)))
	renderBreakdown(out, s.Breakdown(), s.Availability(), notes)

	if !f.book {
		return nil
	}

	if !s.CanBook() {
		return fmt.Errorf("cannot book: %s", s.Availability().State)
	}

	key := f.key
	if key == "" {
		key = uuid.NewString()
	}

	ctx = booking.NewContextWithIdempotencyKey(ctx, key)

	created, err := c.Booking.CreateBooking(ctx, &booking.BookInput{
		QuoteInput: s.QuoteInput(),
		Guest:      marketplace.Guest{Name: f.guestName, Email: f.guestEmail, Phone: f.guestPhone},
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Booking %s is %s, total %d (idempotency key %s)\n", created.ID, created.Status, created.GrandTotal, key)

	return nil
}
