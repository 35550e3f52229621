package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/pflag"

	"github.com/jwalitptl/medibook/internal/booking"
	"github.com/jwalitptl/medibook/internal/model"
)

const usage = `Usage: booking <command> [flags]

Commands:
  doctors                 list the doctor roster
  list                    list appointments (--tab, --date, --search)
  day                     show the day timeline (--date, --start-hour, --end-hour, --px-per-hour)
  book                    book an appointment (see booking book --help)
  status <id> <status>    set an appointment status (Scheduled, Confirmed, Cancelled, Completed)
`

var errNotBooked = errors.New("appointment not booked")

type app struct {
	ctrl *booking.Controller
	in   *bufio.Reader
	out  io.Writer
}

func newApp(ctrl *booking.Controller, in io.Reader, out io.Writer) *app {
	return &app{ctrl: ctrl, in: bufio.NewReader(in), out: out}
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.out, usage)
		return errors.New("missing command")
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "doctors":
		return a.doctors(ctx)
	case "list":
		return a.list(ctx, rest)
	case "day":
		return a.day(ctx, rest)
	case "book":
		return a.book(ctx, rest)
	case "status":
		return a.status(ctx, rest)
	case "help", "-h", "--help":
		fmt.Fprint(a.out, usage)
		return nil
	default:
		fmt.Fprint(a.out, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (a *app) flagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(a.out)
	return fs
}

func (a *app) doctors(ctx context.Context) error {
	if err := a.ctrl.Load(ctx); err != nil {
		fmt.Fprintln(a.out, "warning:", err)
	}

	table := tablewriter.NewWriter(a.out)
	table.SetHeader([]string{"Doctor"})
	for _, d := range a.ctrl.State().Doctors {
		table.Append([]string{d})
	}
	table.Render()
	return nil
}

func (a *app) list(ctx context.Context, args []string) error {
	fs := a.flagSet("list")
	tab := fs.String("tab", string(booking.TabAll), "All, Today, Upcoming or Past")
	date := fs.String("date", "", "date shown by the All tab (YYYY-MM-DD, default today)")
	search := fs.String("search", "", "filter by patient or doctor name")
	if err := fs.Parse(args); err != nil {
		return err
	}

	t, err := parseTab(*tab)
	if err != nil {
		return err
	}
	if err := a.ctrl.Load(ctx); err != nil {
		return err
	}
	if err := a.selectDate(*date); err != nil {
		return err
	}
	a.ctrl.SelectTab(t)
	s := a.ctrl.Search(*search)

	fmt.Fprintf(a.out, "Today: %s  Tab: %s  Date: %s\n", s.Today, s.Tab, s.SelectedDate)
	a.renderAppointments(s.Visible())
	return nil
}

func (a *app) day(ctx context.Context, args []string) error {
	defaults := booking.DefaultGridOptions()
	fs := a.flagSet("day")
	date := fs.String("date", "", "day to show (YYYY-MM-DD, default today)")
	search := fs.String("search", "", "filter by patient or doctor name")
	startHour := fs.Int("start-hour", defaults.StartHour, "first hour on the timeline")
	endHour := fs.Int("end-hour", defaults.EndHour, "hour the timeline ends (later entries still show)")
	pxPerHour := fs.Float64("px-per-hour", defaults.PxPerHour, "timeline scale")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := a.ctrl.Load(ctx); err != nil {
		return err
	}
	if err := a.selectDate(*date); err != nil {
		return err
	}
	s := a.ctrl.Search(*search)

	opts := booking.GridOptions{StartHour: *startHour, EndHour: *endHour, PxPerHour: *pxPerHour}
	entries := s.DayGrid(opts)
	fmt.Fprintf(a.out, "Day: %s  Timeline: %spx\n", s.SelectedDate, strconv.FormatFloat(booking.TimelineHeight(entries, opts), 'f', 0, 64))
	if len(entries) == 0 {
		fmt.Fprintln(a.out, "No appointments.")
		return nil
	}

	table := tablewriter.NewWriter(a.out)
	table.SetHeader([]string{"Time", "Offset", "Height", "Patient", "Doctor", "Status"})
	for _, e := range entries {
		table.Append([]string{
			e.Appointment.Time,
			strconv.FormatFloat(e.Offset, 'f', 0, 64),
			strconv.FormatFloat(e.Height, 'f', 0, 64),
			e.Appointment.DisplayName(),
			e.Appointment.DoctorName,
			string(e.Appointment.Status),
		})
	}
	table.Render()
	return nil
}

func (a *app) book(ctx context.Context, args []string) error {
	fs := a.flagSet("book")
	name := fs.String("name", "", "patient name")
	title := fs.String("title", "", "appointment title, used when there is no patient name")
	date := fs.String("date", "", "YYYY-MM-DD (default today)")
	tm := fs.String("time", booking.DefaultDraftTime, "start time, HH:MM")
	duration := fs.String("duration", string(model.DefaultDuration), "15, 30, 45 or 60 min")
	doctor := fs.String("doctor", "", "doctor name (default first on the roster)")
	mode := fs.String("mode", string(model.AppointmentModeInPerson), "In-Person or Video Call")
	phone := fs.String("phone", "", "contact phone")
	email := fs.String("email", "", "contact e-mail")
	reason := fs.String("reason", "", "reason for the visit")
	yes := fs.BoolP("yes", "y", false, "accept a suggested time and re-submit without asking")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := a.ctrl.Load(ctx); err != nil {
		fmt.Fprintln(a.out, "warning:", err)
	}
	a.ctrl.OpenPanel()
	a.ctrl.EditDraft(func(d *booking.Draft) {
		d.Name = *name
		d.Title = *title
		if *date != "" {
			d.Date = *date
		}
		d.Time = *tm
		d.Duration = parseDuration(*duration)
		if *doctor != "" {
			d.DoctorName = *doctor
		}
		d.Mode = model.AppointmentMode(*mode)
		d.Phone = *phone
		d.Email = *email
		d.Reason = *reason
	})

	for {
		draft := a.ctrl.State().Draft
		outcome, err := a.ctrl.Submit(ctx)
		switch outcome {
		case booking.OutcomeCreated:
			fmt.Fprintf(a.out, "Booked %s with %s on %s at %s.\n",
				displayName(draft), draft.DoctorName, draft.Date, draft.Time)
			return nil
		case booking.OutcomeConflict:
			s := a.ctrl.State()
			fmt.Fprintf(a.out, "%s Next free time: %s\n", s.Notice, s.SuggestedTime)
			if !*yes && !a.confirm("Use the suggested time?") {
				a.ctrl.DeclineSuggestion()
				return errNotBooked
			}
			s = a.ctrl.AcceptSuggestion()
			if s.Phase != booking.PhaseDrafting || s.Notice != "" {
				return fmt.Errorf("%w: %s", errNotBooked, s.Notice)
			}
			if !*yes && !a.confirm(fmt.Sprintf("Book at %s?", s.Draft.Time)) {
				return errNotBooked
			}
		default:
			return err
		}
	}
}

func (a *app) status(ctx context.Context, args []string) error {
	fs := a.flagSet("status")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return errors.New("usage: booking status <id> <status>")
	}

	id := fs.Arg(0)
	status, ok := model.ParseStatus(fs.Arg(1))
	if !ok {
		return fmt.Errorf("unknown status %q", fs.Arg(1))
	}
	if err := a.ctrl.ChangeStatus(ctx, id, status); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Appointment %s is now %s.\n", id, status)
	return nil
}

func (a *app) selectDate(date string) error {
	if date == "" {
		return nil
	}
	if s := a.ctrl.SelectDate(date); s.SelectedDate != date {
		return fmt.Errorf("invalid date %q: want YYYY-MM-DD", date)
	}
	return nil
}

func (a *app) confirm(question string) bool {
	fmt.Fprintf(a.out, "%s [y/N] ", question)
	line, _ := a.in.ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func (a *app) renderAppointments(items []model.Appointment) {
	if len(items) == 0 {
		fmt.Fprintln(a.out, "No appointments.")
		return
	}

	table := tablewriter.NewWriter(a.out)
	table.SetHeader([]string{"ID", "Date", "Time", "Duration", "Patient", "Doctor", "Mode", "Status"})
	for _, apt := range items {
		table.Append([]string{
			apt.ID,
			apt.Date,
			apt.Time,
			string(apt.Duration),
			apt.DisplayName(),
			apt.DoctorName,
			string(apt.Mode),
			string(apt.Status),
		})
	}
	table.Render()
}

func parseTab(s string) (booking.Tab, error) {
	for _, t := range booking.Tabs {
		if strings.EqualFold(string(t), s) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown tab %q", s)
}

// parseDuration accepts "30" as well as "30 min".
func parseDuration(s string) model.AppointmentDuration {
	s = strings.TrimSpace(s)
	if _, err := strconv.Atoi(s); err == nil {
		return model.AppointmentDuration(s + " min")
	}
	return model.AppointmentDuration(s)
}

func displayName(d booking.Draft) string {
	if d.Name != "" {
		return d.Name
	}
	return d.Title
}
