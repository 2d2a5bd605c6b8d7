package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/pkordes/eld-logbook/internal/domain"
	"github.com/pkordes/eld-logbook/internal/service"
)

func render(w io.Writer, format string, log domain.TripLog) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(log)
	case "csv":
		return service.WriteGridCSV(w, service.GridRows(log))
	default:
		return renderText(w, log)
	}
}

// renderText prints each day as a paper log would read: the segments in
// order, then the day's totals and the certification line.
func renderText(w io.Writer, log domain.TripLog) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Trip %s\tstart cycle %.2f h\t%.2f mi\t%d day(s)\n",
		log.TripID, log.StartCycleHours, log.TotalMiles, len(log.Days))

	for _, d := range log.Days {
		fmt.Fprintf(tw, "\n%s\n", d.Date.Format("Mon 2006-01-02 MST"))
		for _, s := range d.Segments {
			fmt.Fprintf(tw, "  %s-%s\t%s\t%s\t%s\n",
				s.Start.Format("15:04"), clock(s.End), s.Status.Label(), s.Location, s.Notes)
		}
		fmt.Fprintf(tw, "  driving %.2f\ton duty %.2f\toff duty %.2f\tsleeper %.2f\n",
			d.DrivingHours, d.OnDutyHours, d.OffDutyHours, d.SleeperHours)
		fmt.Fprintf(tw, "  miles %.2f\tcycle left %.2f h\t\t\n", d.DrivingMiles, d.CycleHoursRemaining)
		fmt.Fprintf(tw, "  certified %s\t%s\t\t\n", d.Certification.CertifiedAt.Format("15:04"), d.Certification.Statement)
	}

	if len(log.Stops) > 0 {
		fmt.Fprintln(tw, "\nStops")
		for _, st := range log.Stops {
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%d min\n",
				st.ArriveAt.Format("2006-01-02 15:04"), st.Kind, st.Location, st.Minutes)
		}
	}
	return tw.Flush()
}

// clock prints a midnight end as 24:00.
func clock(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 {
		return "24:00"
	}
	return t.Format("15:04")
}
