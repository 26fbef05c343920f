// Package model defines the core clinic data types.
package model

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
)

// Status is the lifecycle state of an incident. It is a plain attribute:
// any transition is permitted through an update.
type Status string

// Incident statuses. The wire values match the persisted data.
const (
	StatusScheduled  Status = "Scheduled"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
	StatusCancelled  Status = "Cancelled"
)

// ValidStatuses are the allowed incident statuses.
var ValidStatuses = map[Status]bool{
	StatusScheduled:  true,
	StatusInProgress: true,
	StatusCompleted:  true,
	StatusCancelled:  true,
}

// Patient is a clinic patient record.
type Patient struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	DOB        string    `json:"dob"`
	Contact    string    `json:"contact"`
	Email      string    `json:"email,omitempty"`
	Address    string    `json:"address,omitempty"`
	HealthInfo string    `json:"healthInfo"`
	CreatedAt  time.Time `json:"createdAt"`
}

// FileAttachment describes a file attached to an incident.
type FileAttachment struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Type string `json:"type"`
	Size int64  `json:"size"`
}

// Incident is a single appointment/treatment episode tied to one patient.
type Incident struct {
	ID              string           `json:"id"`
	PatientID       string           `json:"patientId"`
	Title           string           `json:"title"`
	Description     string           `json:"description"`
	Comments        string           `json:"comments,omitempty"`
	AppointmentDate time.Time        `json:"appointmentDate"`
	Cost            *float64         `json:"cost,omitempty"`
	Treatment       string           `json:"treatment,omitempty"`
	Status          Status           `json:"status"`
	NextDate        *time.Time       `json:"nextDate,omitempty"`
	Files           []FileAttachment `json:"files"`
	CreatedAt       time.Time        `json:"createdAt"`
}

// Role distinguishes the two account types.
type Role string

// Account roles.
const (
	RoleAdmin   Role = "Admin"
	RolePatient Role = "Patient"
)

// User is a login account. Patient accounts carry the id of the patient
// record they belong to.
type User struct {
	ID           string `json:"id"`
	Role         Role   `json:"role"`
	Email        string `json:"email"`
	PatientID    string `json:"patientId,omitempty"`
	PasswordHash string `json:"passwordHash"`
}

// ErrInvalidCost reports a cost that is not a finite non-negative number.
var ErrInvalidCost = errors.New("cost must be a finite non-negative number")

// ValidateCost checks that a cost value is storable. A nil cost is valid
// (cost is optional).
func ValidateCost(cost *float64) error {
	if cost == nil {
		return nil
	}
	if math.IsNaN(*cost) || math.IsInf(*cost, 0) || *cost < 0 {
		return ErrInvalidCost
	}
	return nil
}

// ParseCost parses a user-supplied cost string. An empty string means no
// cost; anything that is not a finite non-negative number is rejected.
func ParseCost(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, ErrInvalidCost
	}
	if err := ValidateCost(&v); err != nil {
		return nil, err
	}
	return &v, nil
}
