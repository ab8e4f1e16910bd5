package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/avstrong/staybook/internal/availability"
	"github.com/avstrong/staybook/internal/booking"
	"github.com/avstrong/staybook/internal/stay"
)

var (
	soldOutStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Strikethrough(true)
	lowStockStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	availableStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	noticeStyle    = lipgloss.NewStyle().Faint(true)
	titleStyle     = lipgloss.NewStyle().Bold(true)
)

func statusStyle(s availability.Status) lipgloss.Style {
	switch s {
	case availability.StatusSoldOut:
		return soldOutStyle
	case availability.StatusLowStock:
		return lowStockStyle
	default:
		return availableStyle
	}
}

func money(v int64) string {
	return strconv.FormatInt(v, 10)
}

func renderBreakdown(w io.Writer, bd *stay.PriceBreakdown, check availability.CheckResult, notes []string) {
	if bd == nil {
		fmt.Fprintln(w, "No price available for this selection.")
	} else {
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.AppendHeader(table.Row{"Item", "Detail", "Amount"})
		t.SetColumnConfigs([]table.ColumnConfig{
			{Number: 3, Align: text.AlignRight}, //nolint:gomnd
		})

		t.AppendRow(table.Row{
			"Stay",
			fmt.Sprintf("%d night(s): %d weekday, %d weekend x %d %s(s)", bd.Nights, bd.WeekdayNights, bd.WeekendNights, bd.Units, bd.UnitLabel),
			money(bd.TotalBasePrice),
		})

		if bd.ExtraAdults > 0 {
			t.AppendRow(table.Row{"Extra adults", strconv.Itoa(bd.ExtraAdults), money(bd.TotalExtraAdultCharge)})
		}

		if bd.ExtraChildren > 0 {
			t.AppendRow(table.Row{"Extra children", strconv.Itoa(bd.ExtraChildren), money(bd.TotalExtraChildCharge)})
		}

		t.AppendSeparator()
		t.AppendRow(table.Row{"Gross", "", money(bd.GrossAmount)})

		if bd.OfferCode != "" {
			detail := bd.OfferCode
			if !bd.OfferEligible {
				detail += " (not eligible)"
			}

			t.AppendRow(table.Row{"Discount", detail, "-" + money(bd.DiscountAmount)})
		}

		if bd.TaxAmount > 0 {
			t.AppendRow(table.Row{"Tax", fmt.Sprintf("%g%%", bd.TaxRatePercent), money(bd.TaxAmount)})
		}

		t.AppendFooter(table.Row{"Total", "", money(bd.GrandTotal)})
		t.Render()
	}

	status := string(check.State)
	if check.Message != "" {
		status += ": " + check.Message
	}

	fmt.Fprintln(w, titleStyle.Render("Availability")+" "+status)

	for _, n := range notes {
		fmt.Fprintln(w, noticeStyle.Render(n))
	}
}

func renderCalendar(w io.Writer, cal *booking.Calendar) {
	a := cal.Availability

	title := fmt.Sprintf("%s %s %d (%d units)", cal.Room.Name, a.Month, a.Year, a.TotalInventory)
	fmt.Fprintln(w, titleStyle.Render(title))

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"})
	t.Style().Options.SeparateRows = true

	for _, week := range a.Weeks() {
		row := make(table.Row, len(week))

		for i, d := range week {
			if d == 0 {
				row[i] = ""

				continue
			}

			cell := fmt.Sprintf("%2d\n%d left", d, a.Day(d))
			row[i] = statusStyle(a.Status(d)).Render(cell)
		}

		t.AppendRow(row)
	}

	t.Render()

	fmt.Fprintln(w, noticeStyle.Render(fmt.Sprintf(
		"%s: 0 left, %s: up to %d left",
		availability.StatusSoldOut, availability.StatusLowStock, availability.LowStockThreshold,
	)))
}
