package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tanny2709/dental-clinic-dashboard-entnt/internal/clinic"
	"github.com/Tanny2709/dental-clinic-dashboard-entnt/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show the practice dashboard",
		Long:  "Admins see practice-wide KPIs, the next appointments, and the top patients by spend. Patients see their own summary.",
		Run:   runDashboard,
	}
	RootCmd.AddCommand(cmd)
}

type upcomingEntry struct {
	model.Incident
	PatientName string `json:"patientName"`
}

type adminDashboard struct {
	TotalPatients int                   `json:"totalPatients"`
	Summary       clinic.Summary        `json:"summary"`
	Upcoming      []upcomingEntry       `json:"upcoming"`
	TopPatients   []clinic.PatientSpend `json:"topPatients"`
}

type patientDashboard struct {
	UpcomingCount  int              `json:"upcomingCount"`
	CompletedCount int              `json:"completedCount"`
	TotalSpent     float64          `json:"totalSpent"`
	Upcoming       []model.Incident `json:"upcoming"`
	Recent         []model.Incident `json:"recent"`
}

func runDashboard(cmd *cobra.Command, args []string) {
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

	now := time.Now()

	if sess.IsAdmin() {
		patients := s.Patients()
		incidents := s.Incidents()

		upcoming := clinic.Upcoming(incidents, now, 10)
		entries := make([]upcomingEntry, 0, len(upcoming))
		for _, in := range upcoming {
			name := "unknown patient"
			if p, ok := s.PatientByID(in.PatientID); ok {
				name = p.Name
			}
			entries = append(entries, upcomingEntry{Incident: in, PatientName: name})
		}

		out := adminDashboard{
			TotalPatients: len(patients),
			Summary:       clinic.KPISummary(incidents),
			Upcoming:      entries,
			TopPatients:   clinic.RankPatientsBySpend(patients, incidents, 5),
		}
		b, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(b))
		return
	}

	mine := s.IncidentsForPatient(sess.PatientID)
	upcoming := clinic.Upcoming(mine, now, 0)

	var completed []model.Incident
	var spent float64
	for _, in := range mine {
		if in.Status != model.StatusCompleted {
			continue
		}
		completed = append(completed, in)
		if in.Cost != nil {
			spent += *in.Cost
		}
	}
	recent := completed
	if len(recent) > 5 {
		recent = recent[len(recent)-5:]
	}

	out := patientDashboard{
		UpcomingCount:  len(upcoming),
		CompletedCount: len(completed),
		TotalSpent:     spent,
		Upcoming:       upcoming,
		Recent:         recent,
	}
	b, _ := json.MarshalIndent(out, "", "  ")
	fmt.Println(string(b))
}
