package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tanny2709/dental-clinic-dashboard-entnt/internal/model"
)

// dump is the export/import wire shape: both canonical collections, whole.
type dump struct {
	Patients  []model.Patient  `json:"patients"`
	Incidents []model.Incident `json:"incidents"`
}

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export patients and appointments as JSON",
		Run:   runExport,
	}
	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
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

	out := dump{Patients: s.Patients(), Incidents: s.Incidents()}
	b, _ := json.MarshalIndent(out, "", "  ")
	fmt.Println(string(b))
}
