package storage

import (
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Tanny2709/dental-clinic-dashboard-entnt/internal/model"
)

func fptr(v float64) *float64 { return &v }

func tptr(t time.Time) *time.Time { return &t }

func seedPatients(now time.Time) []model.Patient {
	return []model.Patient{
		{
			ID:         "p1",
			Name:       "John Doe",
			DOB:        "1990-05-10",
			Contact:    "1234567890",
			Email:      "john@entnt.in",
			Address:    "123 Main St, City, State",
			HealthInfo: "No allergies, diabetic",
			CreatedAt:  now,
		},
		{
			ID:         "p2",
			Name:       "Jane Smith",
			DOB:        "1985-08-15",
			Contact:    "0987654321",
			Email:      "jane@entnt.in",
			Address:    "456 Oak Ave, City, State",
			HealthInfo: "Allergic to penicillin",
			CreatedAt:  now,
		},
	}
}

func seedIncidents(now time.Time) []model.Incident {
	return []model.Incident{
		{
			ID:              "i1",
			PatientID:       "p1",
			Title:           "Toothache",
			Description:     "Upper molar pain",
			Comments:        "Sensitive to cold drinks",
			AppointmentDate: time.Date(2025, 7, 8, 10, 0, 0, 0, time.Local),
			Cost:            fptr(80),
			Treatment:       "Root canal therapy",
			Status:          model.StatusCompleted,
			NextDate:        tptr(time.Date(2025, 7, 15, 10, 0, 0, 0, time.Local)),
			Files:           []model.FileAttachment{},
			CreatedAt:       now,
		},
		{
			ID:              "i2",
			PatientID:       "p1",
			Title:           "Routine Cleaning",
			Description:     "Regular dental cleaning and checkup",
			Comments:        "Good oral hygiene",
			AppointmentDate: time.Date(2025, 7, 10, 14, 0, 0, 0, time.Local),
			Status:          model.StatusScheduled,
			Files:           []model.FileAttachment{},
			CreatedAt:       now,
		},
		{
			ID:              "i3",
			PatientID:       "p2",
			Title:           "Cavity Filling",
			Description:     "Small cavity in lower premolar",
			Comments:        "Minimal decay",
			AppointmentDate: time.Date(2025, 7, 9, 11, 0, 0, 0, time.Local),
			Cost:            fptr(120),
			Treatment:       "Composite filling",
			Status:          model.StatusCompleted,
			Files:           []model.FileAttachment{},
			CreatedAt:       now,
		},
	}
}

// seedUsers builds the mock login accounts. Passwords are hashed so the
// stored collection never carries plaintext credentials.
func seedUsers() ([]model.User, error) {
	creds := []struct {
		id, email, password, patientID string
		role                           model.Role
	}{
		{"1", "admin@entnt.in", "admin123", "", model.RoleAdmin},
		{"2", "john@entnt.in", "patient123", "p1", model.RolePatient},
		{"3", "jane@entnt.in", "patient123", "p2", model.RolePatient},
	}

	users := make([]model.User, 0, len(creds))
	for _, c := range creds {
		hash, err := bcrypt.GenerateFromPassword([]byte(c.password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password for %s: %w", c.email, err)
		}
		users = append(users, model.User{
			ID:           c.id,
			Role:         c.role,
			Email:        c.email,
			PatientID:    c.patientID,
			PasswordHash: string(hash),
		})
	}
	return users, nil
}
