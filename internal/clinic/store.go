// Package clinic owns the canonical patient and incident collections and
// the derived views computed over them. Every mutation writes through to
// the persistence adapter before it is visible in memory.
package clinic

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/Tanny2709/dental-clinic-dashboard-entnt/internal/model"
	"github.com/Tanny2709/dental-clinic-dashboard-entnt/internal/storage"
)

// ErrInvalidStatus reports an incident status outside the allowed set.
var ErrInvalidStatus = errors.New("invalid incident status")

// Store holds the in-memory collections, hydrated once from the adapter.
// A shared handle observes a total order of operations.
type Store struct {
	mu        sync.Mutex
	adapter   storage.Adapter
	patients  []model.Patient
	incidents []model.Incident
	entropy   *ulid.MonotonicEntropy
	nowFn     func() time.Time
}

// Open hydrates a store from the adapter. A collection that has never been
// written starts empty.
func Open(ctx context.Context, adapter storage.Adapter) (*Store, error) {
	s := &Store{
		adapter: adapter,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
		nowFn:   func() time.Time { return time.Now().UTC() },
	}
	if err := s.hydrate(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) hydrate(ctx context.Context) error {
	var patients []model.Patient
	if err := s.adapter.Load(ctx, storage.CollectionPatients, &patients); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("hydrate patients: %w", err)
	}
	var incidents []model.Incident
	if err := s.adapter.Load(ctx, storage.CollectionIncidents, &incidents); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("hydrate incidents: %w", err)
	}
	s.patients = patients
	s.incidents = incidents
	return nil
}

// Reload rehydrates both collections from the adapter, discarding any
// in-memory state not yet written. There is no conflict detection: this is
// the only reconciliation with out-of-band writers, and the last save wins.
func (s *Store) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hydrate(ctx)
}

// newID returns a ULID. Monotonic entropy keeps ids distinct even for
// records created within the same millisecond.
func (s *Store) newID() string {
	return ulid.MustNew(ulid.Timestamp(s.nowFn()), s.entropy).String()
}

// PatientParams holds the caller-supplied fields for a new patient.
type PatientParams struct {
	Name       string
	DOB        string
	Contact    string
	Email      string
	Address    string
	HealthInfo string
}

// PatientUpdate holds a partial patient mutation. Nil fields are untouched.
type PatientUpdate struct {
	Name       *string
	DOB        *string
	Contact    *string
	Email      *string
	Address    *string
	HealthInfo *string
}

// IncidentParams holds the caller-supplied fields for a new incident. The
// store does not validate that PatientID resolves to an existing patient;
// that is the caller's responsibility.
type IncidentParams struct {
	PatientID       string
	Title           string
	Description     string
	Comments        string
	AppointmentDate time.Time
	Cost            *float64
	Treatment       string
	Status          model.Status
	NextDate        *time.Time
	Files           []model.FileAttachment
}

// IncidentUpdate holds a partial incident mutation. Nil fields are untouched.
type IncidentUpdate struct {
	PatientID       *string
	Title           *string
	Description     *string
	Comments        *string
	AppointmentDate *time.Time
	Cost            *float64
	Treatment       *string
	Status          *model.Status
	NextDate        *time.Time
	Files           []model.FileAttachment
}

// CreatePatient assigns a fresh id and creation timestamp, appends the
// record, persists the collection, and returns the stored value.
func (s *Store) CreatePatient(ctx context.Context, p PatientParams) (model.Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	patient := model.Patient{
		ID:         s.newID(),
		Name:       p.Name,
		DOB:        p.DOB,
		Contact:    p.Contact,
		Email:      p.Email,
		Address:    p.Address,
		HealthInfo: p.HealthInfo,
		CreatedAt:  s.nowFn(),
	}

	next := append(clonePatients(s.patients), patient)
	if err := s.adapter.Save(ctx, storage.CollectionPatients, next); err != nil {
		return model.Patient{}, err
	}
	s.patients = next
	return patient, nil
}

// UpdatePatient merges the given fields onto the matching record. An
// unknown id is a silent no-op so the operation stays idempotent under
// retry.
func (s *Store) UpdatePatient(ctx context.Context, id string, u PatientUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, p := range s.patients {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}

	next := clonePatients(s.patients)
	p := &next[idx]
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.DOB != nil {
		p.DOB = *u.DOB
	}
	if u.Contact != nil {
		p.Contact = *u.Contact
	}
	if u.Email != nil {
		p.Email = *u.Email
	}
	if u.Address != nil {
		p.Address = *u.Address
	}
	if u.HealthInfo != nil {
		p.HealthInfo = *u.HealthInfo
	}

	if err := s.adapter.Save(ctx, storage.CollectionPatients, next); err != nil {
		return err
	}
	s.patients = next
	return nil
}

// DeletePatient removes the patient and every incident referencing it.
// Incidents are persisted before patients, so a partial failure can never
// leave a dangling incident; memory commits only after both saves succeed.
func (s *Store) DeletePatient(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	nextPatients := make([]model.Patient, 0, len(s.patients))
	for _, p := range s.patients {
		if p.ID != id {
			nextPatients = append(nextPatients, p)
		}
	}
	nextIncidents := make([]model.Incident, 0, len(s.incidents))
	for _, in := range s.incidents {
		if in.PatientID != id {
			nextIncidents = append(nextIncidents, cloneIncident(in))
		}
	}

	if err := s.adapter.Save(ctx, storage.CollectionIncidents, nextIncidents); err != nil {
		return err
	}
	if err := s.adapter.Save(ctx, storage.CollectionPatients, nextPatients); err != nil {
		return err
	}
	s.patients = nextPatients
	s.incidents = nextIncidents
	return nil
}

// CreateIncident assigns a fresh id and creation timestamp, validates the
// status and cost, appends the record, persists, and returns the stored
// value. An empty status defaults to Scheduled.
func (s *Store) CreateIncident(ctx context.Context, p IncidentParams) (model.Incident, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := p.Status
	if status == "" {
		status = model.StatusScheduled
	}
	if !model.ValidStatuses[status] {
		return model.Incident{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	if err := model.ValidateCost(p.Cost); err != nil {
		return model.Incident{}, err
	}

	files := p.Files
	if files == nil {
		files = []model.FileAttachment{}
	}
	incident := model.Incident{
		ID:              s.newID(),
		PatientID:       p.PatientID,
		Title:           p.Title,
		Description:     p.Description,
		Comments:        p.Comments,
		AppointmentDate: p.AppointmentDate,
		Cost:            p.Cost,
		Treatment:       p.Treatment,
		Status:          status,
		NextDate:        p.NextDate,
		Files:           files,
		CreatedAt:       s.nowFn(),
	}

	next := append(cloneIncidents(s.incidents), cloneIncident(incident))
	if err := s.adapter.Save(ctx, storage.CollectionIncidents, next); err != nil {
		return model.Incident{}, err
	}
	s.incidents = next
	return incident, nil
}

// UpdateIncident merges the given fields onto the record whose id matches
// the given id. Only that record changes; an unknown id is a silent no-op.
func (s *Store) UpdateIncident(ctx context.Context, id string, u IncidentUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, in := range s.incidents {
		if in.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}

	if u.Status != nil && !model.ValidStatuses[*u.Status] {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, *u.Status)
	}
	if err := model.ValidateCost(u.Cost); err != nil {
		return err
	}

	next := cloneIncidents(s.incidents)
	in := &next[idx]
	if u.PatientID != nil {
		in.PatientID = *u.PatientID
	}
	if u.Title != nil {
		in.Title = *u.Title
	}
	if u.Description != nil {
		in.Description = *u.Description
	}
	if u.Comments != nil {
		in.Comments = *u.Comments
	}
	if u.AppointmentDate != nil {
		in.AppointmentDate = *u.AppointmentDate
	}
	if u.Cost != nil {
		in.Cost = u.Cost
	}
	if u.Treatment != nil {
		in.Treatment = *u.Treatment
	}
	if u.Status != nil {
		in.Status = *u.Status
	}
	if u.NextDate != nil {
		in.NextDate = u.NextDate
	}
	if u.Files != nil {
		in.Files = append([]model.FileAttachment(nil), u.Files...)
	}

	if err := s.adapter.Save(ctx, storage.CollectionIncidents, next); err != nil {
		return err
	}
	s.incidents = next
	return nil
}

// DeleteIncident removes the matching incident and persists the collection.
func (s *Store) DeleteIncident(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]model.Incident, 0, len(s.incidents))
	for _, in := range s.incidents {
		if in.ID != id {
			next = append(next, cloneIncident(in))
		}
	}

	if err := s.adapter.Save(ctx, storage.CollectionIncidents, next); err != nil {
		return err
	}
	s.incidents = next
	return nil
}

// Patients returns a copy of the patient collection in insertion order.
func (s *Store) Patients() []model.Patient {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clonePatients(s.patients)
}

// Incidents returns a copy of the incident collection in insertion order.
func (s *Store) Incidents() []model.Incident {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneIncidents(s.incidents)
}

// PatientByID retrieves a patient by id.
func (s *Store) PatientByID(id string) (model.Patient, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.patients {
		if p.ID == id {
			return p, true
		}
	}
	return model.Patient{}, false
}

// IncidentsForPatient returns all incidents referencing the given patient,
// in insertion order.
func (s *Store) IncidentsForPatient(patientID string) []model.Incident {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Incident
	for _, in := range s.incidents {
		if in.PatientID == patientID {
			out = append(out, cloneIncident(in))
		}
	}
	return out
}

func clonePatients(ps []model.Patient) []model.Patient {
	return append([]model.Patient(nil), ps...)
}

func cloneIncidents(ins []model.Incident) []model.Incident {
	out := make([]model.Incident, len(ins))
	for i, in := range ins {
		out[i] = cloneIncident(in)
	}
	return out
}

func cloneIncident(in model.Incident) model.Incident {
	cp := in
	if in.Files != nil {
		cp.Files = append([]model.FileAttachment(nil), in.Files...)
	}
	return cp
}
