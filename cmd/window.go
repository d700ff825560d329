package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/ewsfreebusy/internal/availability"
	"github.com/teemow/ewsfreebusy/internal/calendar"
	"github.com/teemow/ewsfreebusy/internal/config"
	"github.com/teemow/ewsfreebusy/internal/tools/common"
)

// Output formats for decoded availability.
const (
	formatText = "text"
	formatJSON = "json"
	formatICS  = "ics"
)

// windowFlags are the lookup parameters shared by request, decode and query.
type windowFlags struct {
	mailbox  string
	timeZone string
	start    string
	end      string
	interval int
}

func (w *windowFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&w.mailbox, "mailbox", "", "Mailbox address (default: EWSFREEBUSY_MAILBOX)")
	cmd.Flags().StringVar(&w.timeZone, "timezone", "", "IANA timezone of the window (default: EWSFREEBUSY_TIMEZONE)")
	cmd.Flags().StringVar(&w.start, "start", "", "Window start as local wall-clock time, e.g. 2025-01-06T09:00:00 (default: start of today)")
	cmd.Flags().StringVar(&w.end, "end", "", "Window end as local wall-clock time; a date covers the whole day")
	cmd.Flags().IntVar(&w.interval, "interval", 0, "Merged free/busy interval in minutes (default: EWSFREEBUSY_MERGE_INTERVAL_MINUTES)")
}

// params resolves the flags against the configured defaults.
func (w *windowFlags) params(cfg config.Runtime, now time.Time) (availability.Params, error) {
	args := map[string]interface{}{
		common.ArgMailbox:  w.mailbox,
		common.ArgTimeZone: w.timeZone,
		common.ArgStart:    w.start,
		common.ArgEnd:      w.end,
	}
	if w.interval != 0 {
		args[common.ArgMergeInterval] = w.interval
	}
	return common.ParamsFromArgs(args, cfg, now)
}

func checkFormat(format string) error {
	switch format {
	case formatText, formatJSON, formatICS:
		return nil
	default:
		return fmt.Errorf("unsupported format %q (supported: text, json, ics)", format)
	}
}

type rangeJSON struct {
	Start  string `json:"start"`
	End    string `json:"end"`
	Status string `json:"status"`
}

type eventJSON struct {
	Kind      string `json:"kind"`
	ID        string `json:"id,omitempty"`
	Subject   string `json:"subject,omitempty"`
	Location  string `json:"location,omitempty"`
	Organizer string `json:"organizer,omitempty"`
	Start     string `json:"start"`
	End       string `json:"end"`
	Status    string `json:"status"`
	Private   bool   `json:"private,omitempty"`
}

type resultJSON struct {
	Mailbox              string      `json:"mailbox"`
	TimeZone             string      `json:"timezone"`
	Start                string      `json:"start"`
	End                  string      `json:"end"`
	MergeIntervalMinutes int         `json:"merge_interval_minutes"`
	MergedFreeBusy       string      `json:"merged_free_busy"`
	Ranges               []rangeJSON `json:"ranges"`
	Events               []eventJSON `json:"events"`
}

const jsonLayout = "2006-01-02T15:04:05"

// writeResult renders a decoded lookup in the requested format.
func writeResult(w io.Writer, format string, params availability.Params, statuses []availability.Status, items []availability.Item, now time.Time) error {
	interval := time.Duration(params.MergeIntervalMinutes) * time.Minute
	info := calendar.FromResult(params.Mailbox, params.Start, interval, statuses, items)

	switch format {
	case formatJSON:
		out := resultJSON{
			Mailbox:              params.Mailbox,
			TimeZone:             params.TimeZone,
			Start:                params.Start.Format(jsonLayout),
			End:                  params.End.Format(jsonLayout),
			MergeIntervalMinutes: params.MergeIntervalMinutes,
			MergedFreeBusy:       availability.EncodeMergedFreeBusy(statuses),
			Ranges:               []rangeJSON{},
			Events:               []eventJSON{},
		}
		for _, r := range info.Ranges {
			out.Ranges = append(out.Ranges, rangeJSON{
				Start:  r.Start.Format(jsonLayout),
				End:    r.End.Format(jsonLayout),
				Status: r.Status.String(),
			})
		}
		for _, ev := range info.Events {
			out.Events = append(out.Events, eventJSON{
				Kind:      ev.Kind,
				ID:        ev.ID,
				Subject:   ev.Subject,
				Location:  ev.Location,
				Organizer: ev.Organizer,
				Start:     ev.Start.Format(time.RFC3339),
				End:       ev.End.Format(time.RFC3339),
				Status:    ev.Status.String(),
				Private:   ev.Private,
			})
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)

	case formatICS:
		loc, err := time.LoadLocation(params.TimeZone)
		if err != nil {
			return fmt.Errorf("failed to load timezone %q: %w", params.TimeZone, err)
		}
		doc, err := calendar.ExportICS(params.Mailbox, items, loc, now)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, doc)
		return err

	default:
		var b strings.Builder
		fmt.Fprintf(&b, "Window: %s to %s (%s)\n", params.Start.Format("2006-01-02 15:04"), params.End.Format("2006-01-02 15:04"), params.TimeZone)
		fmt.Fprintf(&b, "Merged free/busy: %s\n\n", availability.EncodeMergedFreeBusy(statuses))
		b.WriteString(calendar.FormatFreeBusy(info))
		_, err := io.WriteString(w, b.String())
		return err
	}
}
