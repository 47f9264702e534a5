package models

import (
	"testing"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		input    string
		expected TaskStatus
		ok       bool
	}{
		{"P", StatusPending, true},
		{"p", StatusPending, true},
		{"pending", StatusPending, true},
		{"EA", StatusInProgress, true},
		{"in progress", StatusInProgress, true},
		{"in-progress", StatusInProgress, true},
		{"in_progress", StatusInProgress, true},
		{"C", StatusCompleted, true},
		{"Completed", StatusCompleted, true},
		{"", "", false},
		{"done?", "", false},
		{"X", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			status, ok := ParseStatus(tt.input)
			if ok != tt.ok {
				t.Fatalf("ParseStatus(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if status != tt.expected {
				t.Errorf("ParseStatus(%q) = %q, want %q", tt.input, status, tt.expected)
			}
		})
	}
}

func TestParsePriority(t *testing.T) {
	tests := []struct {
		input    string
		expected TaskPriority
		ok       bool
	}{
		{"B", PriorityLow, true},
		{"low", PriorityLow, true},
		{"M", PriorityMedium, true},
		{"medium", PriorityMedium, true},
		{"A", PriorityHigh, true},
		{"High", PriorityHigh, true},
		{"", "", false},
		{"urgent", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			priority, ok := ParsePriority(tt.input)
			if ok != tt.ok {
				t.Fatalf("ParsePriority(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if priority != tt.expected {
				t.Errorf("ParsePriority(%q) = %q, want %q", tt.input, priority, tt.expected)
			}
		})
	}
}

func TestDisplayNames(t *testing.T) {
	if got := StatusPending.Display(); got != "Pending" {
		t.Errorf("want Pending, got %q", got)
	}
	if got := StatusInProgress.Display(); got != "In Progress" {
		t.Errorf("want In Progress, got %q", got)
	}
	if got := StatusCompleted.Display(); got != "Completed" {
		t.Errorf("want Completed, got %q", got)
	}
	if got := PriorityLow.Display(); got != "Low" {
		t.Errorf("want Low, got %q", got)
	}
	if got := PriorityMedium.Display(); got != "Medium" {
		t.Errorf("want Medium, got %q", got)
	}
	if got := PriorityHigh.Display(); got != "High" {
		t.Errorf("want High, got %q", got)
	}
}
