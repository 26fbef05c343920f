package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tanny2709/dental-clinic-dashboard-entnt/internal/clinic"
	"github.com/Tanny2709/dental-clinic-dashboard-entnt/internal/model"
)

func init() {
	patientCmd := &cobra.Command{
		Use:   "patient",
		Short: "Patient record management (admin)",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List all patients",
		Run:   runPatientList,
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show a patient and its appointments",
		Run:   runPatientShow,
	}
	showCmd.Flags().StringP("id", "i", "", "Patient id (required)")
	showCmd.MarkFlagRequired("id")

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a patient",
		Run:   runPatientAdd,
	}
	addCmd.Flags().String("name", "", "Full name (required)")
	addCmd.Flags().String("dob", "", "Date of birth, YYYY-MM-DD (required)")
	addCmd.Flags().String("contact", "", "Contact phone (required)")
	addCmd.Flags().String("email", "", "Email address")
	addCmd.Flags().String("address", "", "Postal address")
	addCmd.Flags().String("health", "", "Health information (required)")
	addCmd.MarkFlagRequired("name")
	addCmd.MarkFlagRequired("dob")
	addCmd.MarkFlagRequired("contact")
	addCmd.MarkFlagRequired("health")

	updateCmd := &cobra.Command{
		Use:   "update",
		Short: "Update a patient (only the given flags change)",
		Run:   runPatientUpdate,
	}
	updateCmd.Flags().StringP("id", "i", "", "Patient id (required)")
	updateCmd.Flags().String("name", "", "Full name")
	updateCmd.Flags().String("dob", "", "Date of birth, YYYY-MM-DD")
	updateCmd.Flags().String("contact", "", "Contact phone")
	updateCmd.Flags().String("email", "", "Email address")
	updateCmd.Flags().String("address", "", "Postal address")
	updateCmd.Flags().String("health", "", "Health information")
	updateCmd.MarkFlagRequired("id")

	rmCmd := &cobra.Command{
		Use:   "rm",
		Short: "Delete a patient and all of its appointments",
		Run:   runPatientRm,
	}
	rmCmd.Flags().StringP("id", "i", "", "Patient id (required)")
	rmCmd.MarkFlagRequired("id")

	patientCmd.AddCommand(listCmd, showCmd, addCmd, updateCmd, rmCmd)
	RootCmd.AddCommand(patientCmd)
}

func runPatientList(cmd *cobra.Command, args []string) {
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

	b, _ := json.MarshalIndent(s.Patients(), "", "  ")
	fmt.Println(string(b))
}

func runPatientShow(cmd *cobra.Command, args []string) {
	id, _ := cmd.Flags().GetString("id")

	adapter, err := openAdapter()
	if err != nil {
		exitErr("open store", err)
	}
	defer adapter.Close()
	sess := requireSession(cmd.Context(), adapter)
	if !sess.IsAdmin() && sess.PatientID != id {
		exitErr("show", fmt.Errorf("patients can only view their own record"))
	}

	s, err := openStore(cmd.Context(), adapter)
	if err != nil {
		exitErr("open store", err)
	}

	p, ok := s.PatientByID(id)
	if !ok {
		exitErr("show", fmt.Errorf("no patient with id %q", id))
	}

	out := struct {
		Patient   model.Patient    `json:"patient"`
		Incidents []model.Incident `json:"incidents"`
	}{p, s.IncidentsForPatient(id)}

	b, _ := json.MarshalIndent(out, "", "  ")
	fmt.Println(string(b))
}

func runPatientAdd(cmd *cobra.Command, args []string) {
	name, _ := cmd.Flags().GetString("name")
	dob, _ := cmd.Flags().GetString("dob")
	contact, _ := cmd.Flags().GetString("contact")
	email, _ := cmd.Flags().GetString("email")
	address, _ := cmd.Flags().GetString("address")
	health, _ := cmd.Flags().GetString("health")

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

	p, err := s.CreatePatient(cmd.Context(), clinic.PatientParams{
		Name:       name,
		DOB:        dob,
		Contact:    contact,
		Email:      email,
		Address:    address,
		HealthInfo: health,
	})
	if err != nil {
		exitErr("add patient", err)
	}

	b, _ := json.MarshalIndent(p, "", "  ")
	fmt.Println(string(b))
}

func runPatientUpdate(cmd *cobra.Command, args []string) {
	id, _ := cmd.Flags().GetString("id")

	var u clinic.PatientUpdate
	strFlag := func(name string, dest **string) {
		if cmd.Flags().Changed(name) {
			v, _ := cmd.Flags().GetString(name)
			*dest = &v
		}
	}
	strFlag("name", &u.Name)
	strFlag("dob", &u.DOB)
	strFlag("contact", &u.Contact)
	strFlag("email", &u.Email)
	strFlag("address", &u.Address)
	strFlag("health", &u.HealthInfo)

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

	if err := s.UpdatePatient(cmd.Context(), id, u); err != nil {
		exitErr("update patient", err)
	}
	fmt.Printf(`{"ok":true,"id":%q}`+"\n", id)
}

func runPatientRm(cmd *cobra.Command, args []string) {
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

	if err := s.DeletePatient(cmd.Context(), id); err != nil {
		exitErr("delete patient", err)
	}
	fmt.Printf(`{"ok":true,"id":%q}`+"\n", id)
}
