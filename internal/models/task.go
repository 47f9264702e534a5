package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	StatusPending    TaskStatus = "P"
	StatusInProgress TaskStatus = "EA"
	StatusCompleted  TaskStatus = "C"
)

type TaskPriority string

const (
	PriorityLow    TaskPriority = "B"
	PriorityMedium TaskPriority = "M"
	PriorityHigh   TaskPriority = "A"
)

type Task struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	Title       string
	Description string
	Priority    TaskPriority
	DueDate     *time.Time
	Status      TaskStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
}

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

func (s TaskStatus) Display() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusInProgress:
		return "In Progress"
	case StatusCompleted:
		return "Completed"
	}
	return string(s)
}

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

func (p TaskPriority) Display() string {
	switch p {
	case PriorityLow:
		return "Low"
	case PriorityMedium:
		return "Medium"
	case PriorityHigh:
		return "High"
	}
	return string(p)
}

// convert various user inputs to the stored status code
func ParseStatus(s string) (TaskStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "p", "pending":
		return StatusPending, true
	case "ea", "in-progress", "in_progress", "inprogress", "in progress":
		return StatusInProgress, true
	case "c", "completed":
		return StatusCompleted, true
	default:
		return "", false
	}
}

// convert various user inputs to the stored priority code
func ParsePriority(s string) (TaskPriority, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "b", "low":
		return PriorityLow, true
	case "m", "medium":
		return PriorityMedium, true
	case "a", "high":
		return PriorityHigh, true
	default:
		return "", false
	}
}
