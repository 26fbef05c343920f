package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tanny2709/dental-clinic-dashboard-entnt/internal/clinic"
)

func init() {
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Show appointments grouped by calendar day",
		Run:   runCalendar,
	}
	cmd.Flags().StringP("month", "m", "", "Month to show, YYYY-MM (default: current month)")
	RootCmd.AddCommand(cmd)
}

func runCalendar(cmd *cobra.Command, args []string) {
	monthStr, _ := cmd.Flags().GetString("month")

	month := time.Now()
	if monthStr != "" {
		m, err := time.ParseInLocation("2006-01", monthStr, time.Local)
		if err != nil {
			exitErr("calendar", fmt.Errorf("unrecognized month %q (want YYYY-MM)", monthStr))
		}
		month = m
	}
	start := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.Local)
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)

	adapter, err := openAdapter()
	if err != nil {
		exitErr("open store", err)
	}
	defer adapter.Close()
	sess := requireSession(cmd.Context(), adapter)

	s, err := openStore(cmd.Context(), adapter)
	if err != nil {
		exitErr("open store", err)
	}

	incidents := s.Incidents()
	if !sess.IsAdmin() {
		incidents = s.IncidentsForPatient(sess.PatientID)
	}

	buckets := clinic.CalendarBuckets(incidents, start, end)
	b, _ := json.MarshalIndent(buckets, "", "  ")
	fmt.Println(string(b))
}
