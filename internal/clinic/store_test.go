package clinic

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/Tanny2709/dental-clinic-dashboard-entnt/internal/model"
	"github.com/Tanny2709/dental-clinic-dashboard-entnt/internal/storage"
)

// fakeAdapter keeps collections in a map. failSaves makes every Save fail,
// to check that memory never runs ahead of durable state.
type fakeAdapter struct {
	data      map[string][]byte
	failSaves bool
	saves     int
}

func newFakeAdapter() *fakeAdapter {
	return &fakeAdapter{data: make(map[string][]byte)}
}

func (f *fakeAdapter) Load(ctx context.Context, name string, dest any) error {
	b, ok := f.data[name]
	if !ok {
		return storage.ErrNotFound
	}
	return json.Unmarshal(b, dest)
}

func (f *fakeAdapter) Save(ctx context.Context, name string, v any) error {
	if f.failSaves {
		return errors.New("disk full")
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	f.data[name] = b
	f.saves++
	return nil
}

func (f *fakeAdapter) Delete(ctx context.Context, name string) error {
	delete(f.data, name)
	return nil
}

func (f *fakeAdapter) Close() error { return nil }

func newTestStore(t *testing.T) (*Store, *fakeAdapter) {
	t.Helper()
	fa := newFakeAdapter()
	s, err := Open(context.Background(), fa)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return s, fa
}

func fptr(v float64) *float64 { return &v }

func TestCreatePatient(t *testing.T) {
	ctx := context.Background()
	s, fa := newTestStore(t)

	p, err := s.CreatePatient(ctx, PatientParams{
		Name: "Ada", DOB: "1990-01-01", Contact: "555", HealthInfo: "fine",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.ID == "" {
		t.Error("expected non-empty id")
	}
	if p.CreatedAt.IsZero() {
		t.Error("expected createdAt to be set")
	}
	if fa.saves != 1 {
		t.Errorf("expected 1 write-through, got %d", fa.saves)
	}
	if got := s.Patients(); len(got) != 1 || got[0].Name != "Ada" {
		t.Errorf("unexpected collection state: %+v", got)
	}
}

func TestIdentityUniqueness(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		p, err := s.CreatePatient(ctx, PatientParams{Name: "N", DOB: "d", Contact: "c", HealthInfo: "h"})
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		if seen[p.ID] {
			t.Fatalf("duplicate id %q at iteration %d", p.ID, i)
		}
		seen[p.ID] = true
	}
}

func TestUpdatePatientPartialMerge(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	p, _ := s.CreatePatient(ctx, PatientParams{Name: "Ada", DOB: "1990-01-01", Contact: "555", HealthInfo: "fine"})

	name := "Ada Lovelace"
	if err := s.UpdatePatient(ctx, p.ID, PatientUpdate{Name: &name}); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, ok := s.PatientByID(p.ID)
	if !ok {
		t.Fatal("patient disappeared")
	}
	if got.Name != "Ada Lovelace" {
		t.Errorf("name not merged: %q", got.Name)
	}
	if got.Contact != "555" || got.DOB != "1990-01-01" {
		t.Errorf("untouched fields changed: %+v", got)
	}
	if got.ID != p.ID || !got.CreatedAt.Equal(p.CreatedAt) {
		t.Errorf("immutable fields changed: %+v", got)
	}
}

func TestUpdateUnknownIDIsNoop(t *testing.T) {
	ctx := context.Background()
	s, fa := newTestStore(t)

	s.CreatePatient(ctx, PatientParams{Name: "Ada", DOB: "d", Contact: "c", HealthInfo: "h"})
	before := fa.saves

	name := "ghost"
	if err := s.UpdatePatient(ctx, "missing", PatientUpdate{Name: &name}); err != nil {
		t.Fatalf("expected silent no-op, got %v", err)
	}
	if fa.saves != before {
		t.Error("no-op update should not write through")
	}
	if err := s.UpdateIncident(ctx, "missing", IncidentUpdate{Title: &name}); err != nil {
		t.Fatalf("expected silent no-op, got %v", err)
	}
}

func TestCascadingDelete(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	p1, _ := s.CreatePatient(ctx, PatientParams{Name: "A", DOB: "d", Contact: "c", HealthInfo: "h"})
	p2, _ := s.CreatePatient(ctx, PatientParams{Name: "B", DOB: "d", Contact: "c", HealthInfo: "h"})
	s.CreateIncident(ctx, IncidentParams{PatientID: p1.ID, Title: "one", AppointmentDate: time.Now()})
	s.CreateIncident(ctx, IncidentParams{PatientID: p1.ID, Title: "two", AppointmentDate: time.Now()})
	keep, _ := s.CreateIncident(ctx, IncidentParams{PatientID: p2.ID, Title: "keep", AppointmentDate: time.Now()})

	if err := s.DeletePatient(ctx, p1.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if got := s.IncidentsForPatient(p1.ID); len(got) != 0 {
		t.Errorf("expected no incidents for deleted patient, got %d", len(got))
	}
	for _, in := range s.Incidents() {
		if in.PatientID == p1.ID {
			t.Errorf("dangling incident %q", in.ID)
		}
	}
	if got := s.Incidents(); len(got) != 1 || got[0].ID != keep.ID {
		t.Errorf("unrelated incidents disturbed: %+v", got)
	}
	if _, ok := s.PatientByID(p1.ID); ok {
		t.Error("patient still present")
	}
}

func TestUpdateIncidentTargetsOnlyGivenID(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	p, _ := s.CreatePatient(ctx, PatientParams{Name: "A", DOB: "d", Contact: "c", HealthInfo: "h"})
	a, _ := s.CreateIncident(ctx, IncidentParams{PatientID: p.ID, Title: "a", AppointmentDate: time.Now()})
	b, _ := s.CreateIncident(ctx, IncidentParams{PatientID: p.ID, Title: "b", AppointmentDate: time.Now()})

	st := model.StatusCompleted
	if err := s.UpdateIncident(ctx, a.ID, IncidentUpdate{Status: &st, Cost: fptr(80)}); err != nil {
		t.Fatalf("update: %v", err)
	}

	for _, in := range s.Incidents() {
		switch in.ID {
		case a.ID:
			if in.Status != model.StatusCompleted || in.Cost == nil || *in.Cost != 80 {
				t.Errorf("target not updated: %+v", in)
			}
		case b.ID:
			if in.Status != model.StatusScheduled || in.Cost != nil {
				t.Errorf("non-target record changed: %+v", in)
			}
		}
	}
}

func TestCostValidation(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	p, _ := s.CreatePatient(ctx, PatientParams{Name: "A", DOB: "d", Contact: "c", HealthInfo: "h"})

	_, err := s.CreateIncident(ctx, IncidentParams{
		PatientID: p.ID, Title: "bad", AppointmentDate: time.Now(), Cost: fptr(-5),
	})
	if !errors.Is(err, model.ErrInvalidCost) {
		t.Errorf("expected ErrInvalidCost, got %v", err)
	}
	if len(s.Incidents()) != 0 {
		t.Error("rejected incident was stored")
	}

	in, _ := s.CreateIncident(ctx, IncidentParams{PatientID: p.ID, Title: "ok", AppointmentDate: time.Now()})
	if err := s.UpdateIncident(ctx, in.ID, IncidentUpdate{Cost: fptr(-1)}); !errors.Is(err, model.ErrInvalidCost) {
		t.Errorf("expected ErrInvalidCost on update, got %v", err)
	}
	got := s.Incidents()[0]
	if got.Cost != nil {
		t.Error("rejected cost was stored")
	}
}

func TestStatusValidation(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	p, _ := s.CreatePatient(ctx, PatientParams{Name: "A", DOB: "d", Contact: "c", HealthInfo: "h"})

	if _, err := s.CreateIncident(ctx, IncidentParams{
		PatientID: p.ID, Title: "bad", AppointmentDate: time.Now(), Status: "Done",
	}); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("expected ErrInvalidStatus, got %v", err)
	}

	// Empty status defaults to Scheduled.
	in, err := s.CreateIncident(ctx, IncidentParams{PatientID: p.ID, Title: "ok", AppointmentDate: time.Now()})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if in.Status != model.StatusScheduled {
		t.Errorf("expected default Scheduled, got %q", in.Status)
	}

	// Any transition between valid statuses is permitted, including
	// Completed back to Scheduled.
	st := model.StatusCompleted
	if err := s.UpdateIncident(ctx, in.ID, IncidentUpdate{Status: &st}); err != nil {
		t.Fatalf("update: %v", err)
	}
	st = model.StatusScheduled
	if err := s.UpdateIncident(ctx, in.ID, IncidentUpdate{Status: &st}); err != nil {
		t.Fatalf("reverse transition: %v", err)
	}
}

func TestDeleteIncident(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	p, _ := s.CreatePatient(ctx, PatientParams{Name: "A", DOB: "d", Contact: "c", HealthInfo: "h"})
	a, _ := s.CreateIncident(ctx, IncidentParams{PatientID: p.ID, Title: "a", AppointmentDate: time.Now()})
	b, _ := s.CreateIncident(ctx, IncidentParams{PatientID: p.ID, Title: "b", AppointmentDate: time.Now()})

	if err := s.DeleteIncident(ctx, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got := s.Incidents()
	if len(got) != 1 || got[0].ID != b.ID {
		t.Errorf("expected only %q left, got %+v", b.ID, got)
	}
}

func TestIncidentsForPatientOrder(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	p, _ := s.CreatePatient(ctx, PatientParams{Name: "A", DOB: "d", Contact: "c", HealthInfo: "h"})
	other, _ := s.CreatePatient(ctx, PatientParams{Name: "B", DOB: "d", Contact: "c", HealthInfo: "h"})
	for _, title := range []string{"first", "second", "third"} {
		s.CreateIncident(ctx, IncidentParams{PatientID: p.ID, Title: title, AppointmentDate: time.Now()})
	}
	s.CreateIncident(ctx, IncidentParams{PatientID: other.ID, Title: "noise", AppointmentDate: time.Now()})

	got := s.IncidentsForPatient(p.ID)
	if len(got) != 3 {
		t.Fatalf("expected 3, got %d", len(got))
	}
	for i, want := range []string{"first", "second", "third"} {
		if got[i].Title != want {
			t.Errorf("position %d: expected %q, got %q", i, want, got[i].Title)
		}
	}
}

func TestSaveFailureLeavesMemoryUnchanged(t *testing.T) {
	ctx := context.Background()
	s, fa := newTestStore(t)

	p, _ := s.CreatePatient(ctx, PatientParams{Name: "A", DOB: "d", Contact: "c", HealthInfo: "h"})
	s.CreateIncident(ctx, IncidentParams{PatientID: p.ID, Title: "a", AppointmentDate: time.Now()})

	fa.failSaves = true

	if _, err := s.CreatePatient(ctx, PatientParams{Name: "B", DOB: "d", Contact: "c", HealthInfo: "h"}); err == nil {
		t.Fatal("expected save failure")
	}
	if len(s.Patients()) != 1 {
		t.Error("failed create mutated memory")
	}

	if err := s.DeletePatient(ctx, p.ID); err == nil {
		t.Fatal("expected save failure")
	}
	if len(s.Patients()) != 1 || len(s.Incidents()) != 1 {
		t.Error("failed delete mutated memory")
	}

	name := "changed"
	if err := s.UpdatePatient(ctx, p.ID, PatientUpdate{Name: &name}); err == nil {
		t.Fatal("expected save failure")
	}
	if got, _ := s.PatientByID(p.ID); got.Name != "A" {
		t.Error("failed update mutated memory")
	}
}

func TestReloadDiscardsAndPicksUpOutOfBandWrites(t *testing.T) {
	ctx := context.Background()
	s, fa := newTestStore(t)

	s.CreatePatient(ctx, PatientParams{Name: "A", DOB: "d", Contact: "c", HealthInfo: "h"})

	// Out-of-band writer replaces the collection wholesale.
	outOfBand := []model.Patient{{ID: "zz", Name: "Replaced", HealthInfo: "h", CreatedAt: time.Now().UTC()}}
	if err := fa.Save(ctx, storage.CollectionPatients, outOfBand); err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := s.Reload(ctx); err != nil {
		t.Fatalf("reload: %v", err)
	}
	got := s.Patients()
	if len(got) != 1 || got[0].ID != "zz" {
		t.Errorf("reload did not pick up out-of-band state: %+v", got)
	}
}

func TestRoundTripThroughSQLite(t *testing.T) {
	ctx := context.Background()
	adapter, err := storage.NewSQLite(filepath.Join(t.TempDir(), "clinic.db"))
	if err != nil {
		t.Fatalf("open adapter: %v", err)
	}
	defer adapter.Close()

	s, err := Open(ctx, adapter)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}

	p, err := s.CreatePatient(ctx, PatientParams{Name: "Roundtrip", DOB: "2000-01-01", Contact: "555", HealthInfo: "h"})
	if err != nil {
		t.Fatalf("create patient: %v", err)
	}
	if _, err := s.CreateIncident(ctx, IncidentParams{
		PatientID:       p.ID,
		Title:           "Checkup",
		AppointmentDate: time.Date(2025, 7, 20, 9, 30, 0, 0, time.Local),
		Cost:            fptr(42.5),
		Status:          model.StatusCompleted,
	}); err != nil {
		t.Fatalf("create incident: %v", err)
	}
	s.DeleteIncident(ctx, "i2")

	wantPatients := s.Patients()
	wantIncidents := s.Incidents()

	// A second store over the same adapter must reproduce the collections.
	s2, err := Open(ctx, adapter)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	gotPatients := s2.Patients()
	gotIncidents := s2.Incidents()

	wb, _ := json.Marshal(wantPatients)
	gb, _ := json.Marshal(gotPatients)
	if string(wb) != string(gb) {
		t.Errorf("patients differ after rehydration:\nwant %s\ngot  %s", wb, gb)
	}
	wb, _ = json.Marshal(wantIncidents)
	gb, _ = json.Marshal(gotIncidents)
	if string(wb) != string(gb) {
		t.Errorf("incidents differ after rehydration:\nwant %s\ngot  %s", wb, gb)
	}
}
