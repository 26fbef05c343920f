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
	apptCmd := &cobra.Command{
		Use:     "appointment",
		Aliases: []string{"appt"},
		Short:   "Appointment management",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List appointments",
		Long:  "List appointments. Patient accounts only see their own; admins can filter with --patient.",
		Run:   runApptList,
	}
	listCmd.Flags().StringP("patient", "P", "", "Filter by patient id (admin)")
	listCmd.Flags().Bool("upcoming", false, "Only appointments from now on, soonest first")
	listCmd.Flags().Bool("past", false, "Only past appointments, most recent first")
	listCmd.Flags().IntP("limit", "l", 0, "Max results (0 = all)")

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add an appointment",
		Run:   runApptAdd,
	}
	addCmd.Flags().StringP("patient", "P", "", "Patient id (required)")
	addCmd.Flags().String("title", "", "Title (required)")
	addCmd.Flags().String("desc", "", "Description")
	addCmd.Flags().String("comments", "", "Comments")
	addCmd.Flags().String("date", "", "Appointment date, e.g. 2025-07-08T10:00:00 (required)")
	addCmd.Flags().String("cost", "", "Treatment cost")
	addCmd.Flags().String("treatment", "", "Treatment performed")
	addCmd.Flags().String("status", string(model.StatusScheduled), "Status: Scheduled, In Progress, Completed, Cancelled")
	addCmd.Flags().String("next", "", "Next appointment date")
	addCmd.MarkFlagRequired("patient")
	addCmd.MarkFlagRequired("title")
	addCmd.MarkFlagRequired("date")

	updateCmd := &cobra.Command{
		Use:   "update",
		Short: "Update an appointment (only the given flags change)",
		Run:   runApptUpdate,
	}
	updateCmd.Flags().StringP("id", "i", "", "Appointment id (required)")
	updateCmd.Flags().String("title", "", "Title")
	updateCmd.Flags().String("desc", "", "Description")
	updateCmd.Flags().String("comments", "", "Comments")
	updateCmd.Flags().String("date", "", "Appointment date")
	updateCmd.Flags().String("cost", "", "Treatment cost")
	updateCmd.Flags().String("treatment", "", "Treatment performed")
	updateCmd.Flags().String("status", "", "Status")
	updateCmd.Flags().String("next", "", "Next appointment date")
	updateCmd.MarkFlagRequired("id")

	rmCmd := &cobra.Command{
		Use:   "rm",
		Short: "Delete an appointment",
		Run:   runApptRm,
	}
	rmCmd.Flags().StringP("id", "i", "", "Appointment id (required)")
	rmCmd.MarkFlagRequired("id")

	apptCmd.AddCommand(listCmd, addCmd, updateCmd, rmCmd)
	RootCmd.AddCommand(apptCmd)
}

// parseDate accepts the handful of formats people actually type.
func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04",
		time.DateOnly,
	} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func runApptList(cmd *cobra.Command, args []string) {
	patientID, _ := cmd.Flags().GetString("patient")
	upcoming, _ := cmd.Flags().GetBool("upcoming")
	past, _ := cmd.Flags().GetBool("past")
	limit, _ := cmd.Flags().GetInt("limit")

	adapter, err := openAdapter()
	if err != nil {
		exitErr("open store", err)
	}
	defer adapter.Close()
	sess := requireSession(cmd.Context(), adapter)
	if !sess.IsAdmin() {
		// Patients are scoped to their own record regardless of flags.
		patientID = sess.PatientID
	}

	s, err := openStore(cmd.Context(), adapter)
	if err != nil {
		exitErr("open store", err)
	}

	var incidents []model.Incident
	if patientID != "" {
		incidents = s.IncidentsForPatient(patientID)
	} else {
		incidents = s.Incidents()
	}

	now := time.Now()
	switch {
	case upcoming:
		incidents = clinic.Upcoming(incidents, now, limit)
	case past:
		incidents = clinic.Past(incidents, now)
		if limit > 0 && len(incidents) > limit {
			incidents = incidents[:limit]
		}
	default:
		if limit > 0 && len(incidents) > limit {
			incidents = incidents[:limit]
		}
	}

	b, _ := json.MarshalIndent(incidents, "", "  ")
	fmt.Println(string(b))
}

func runApptAdd(cmd *cobra.Command, args []string) {
	patientID, _ := cmd.Flags().GetString("patient")
	title, _ := cmd.Flags().GetString("title")
	desc, _ := cmd.Flags().GetString("desc")
	comments, _ := cmd.Flags().GetString("comments")
	dateStr, _ := cmd.Flags().GetString("date")
	costStr, _ := cmd.Flags().GetString("cost")
	treatment, _ := cmd.Flags().GetString("treatment")
	status, _ := cmd.Flags().GetString("status")
	nextStr, _ := cmd.Flags().GetString("next")

	adapter, err := openAdapter()
	if err != nil {
		exitErr("open store", err)
	}
	defer adapter.Close()
	requireAdmin(cmd.Context(), adapter)

	s, err := openStore(cmd.Context(), adapter)
	if err != nil {
		exitErr("open store", err)
	}

	// The store does not resolve patient references; check here so a typo'd
	// id is caught instead of stored.
	if _, ok := s.PatientByID(patientID); !ok {
		exitErr("add appointment", fmt.Errorf("no patient with id %q", patientID))
	}

	date, err := parseDate(dateStr)
	if err != nil {
		exitErr("add appointment", err)
	}
	cost, err := model.ParseCost(costStr)
	if err != nil {
		exitErr("add appointment", err)
	}
	var next *time.Time
	if nextStr != "" {
		t, err := parseDate(nextStr)
		if err != nil {
			exitErr("add appointment", err)
		}
		next = &t
	}

	in, err := s.CreateIncident(cmd.Context(), clinic.IncidentParams{
		PatientID:       patientID,
		Title:           title,
		Description:     desc,
		Comments:        comments,
		AppointmentDate: date,
		Cost:            cost,
		Treatment:       treatment,
		Status:          model.Status(status),
		NextDate:        next,
	})
	if err != nil {
		exitErr("add appointment", err)
	}

	b, _ := json.MarshalIndent(in, "", "  ")
	fmt.Println(string(b))
}

func runApptUpdate(cmd *cobra.Command, args []string) {
	id, _ := cmd.Flags().GetString("id")

	var u clinic.IncidentUpdate
	strFlag := func(name string, dest **string) {
		if cmd.Flags().Changed(name) {
			v, _ := cmd.Flags().GetString(name)
			*dest = &v
		}
	}
	strFlag("title", &u.Title)
	strFlag("desc", &u.Description)
	strFlag("comments", &u.Comments)
	strFlag("treatment", &u.Treatment)

	if cmd.Flags().Changed("status") {
		v, _ := cmd.Flags().GetString("status")
		st := model.Status(v)
		u.Status = &st
	}
	if cmd.Flags().Changed("date") {
		v, _ := cmd.Flags().GetString("date")
		t, err := parseDate(v)
		if err != nil {
			exitErr("update appointment", err)
		}
		u.AppointmentDate = &t
	}
	if cmd.Flags().Changed("next") {
		v, _ := cmd.Flags().GetString("next")
		t, err := parseDate(v)
		if err != nil {
			exitErr("update appointment", err)
		}
		u.NextDate = &t
	}
	if cmd.Flags().Changed("cost") {
		v, _ := cmd.Flags().GetString("cost")
		cost, err := model.ParseCost(v)
		if err != nil {
			exitErr("update appointment", err)
		}
		u.Cost = cost
	}

	adapter, err := openAdapter()
	if err != nil {
		exitErr("open store", err)
	}
	defer adapter.Close()
	requireAdmin(cmd.Context(), adapter)

	s, err := openStore(cmd.Context(), adapter)
	if err != nil {
		exitErr("open store", err)
	}

	if err := s.UpdateIncident(cmd.Context(), id, u); err != nil {
		exitErr("update appointment", err)
	}
	fmt.Printf(`{"ok":true,"id":%q}`+"\n", id)
}

func runApptRm(cmd *cobra.Command, args []string) {
	id, _ := cmd.Flags().GetString("id")

	adapter, err := openAdapter()
	if err != nil {
		exitErr("open store", err)
	}
	defer adapter.Close()
	requireAdmin(cmd.Context(), adapter)

	s, err := openStore(cmd.Context(), adapter)
	if err != nil {
		exitErr("open store", err)
	}

	if err := s.DeleteIncident(cmd.Context(), id); err != nil {
		exitErr("delete appointment", err)
	}
	fmt.Printf(`{"ok":true,"id":%q}`+"\n", id)
}
