package main

import (
	"errors"
	"strings"
	"testing"

	"azb/internal/azure"
)

func TestInfoLinesNoWorkItemID(t *testing.T) {
	lines := infoLines("main", 80, func(id uint64) (*azure.WorkItem, error) {
		t.Fatal("fetch must not be called for a branch without an id")
		return nil, nil
	})

	if len(lines) != 1 || !strings.Contains(lines[0], "main") || !strings.Contains(lines[0], "no work item id") {
		t.Errorf("lines = %q", lines)
	}
}

func TestInfoLinesFetchError(t *testing.T) {
	lines := infoLines("42-broken", 80, func(id uint64) (*azure.WorkItem, error) {
		if id != 42 {
			t.Errorf("fetch id = %d, want 42", id)
		}
		return nil, errors.New("network down")
	})

	if len(lines) != 1 || !strings.Contains(lines[0], "Work item 42") || !strings.Contains(lines[0], "network down") {
		t.Errorf("lines = %q", lines)
	}
}

func TestInfoLinesReady(t *testing.T) {
	lines := infoLines("123-login", 80, func(id uint64) (*azure.WorkItem, error) {
		return &azure.WorkItem{ID: 123, Title: "Login page", Type: azure.TypeBug, State: azure.StateActive}, nil
	})

	if len(lines) < 2 {
		t.Fatalf("lines = %q", lines)
	}
	if !strings.Contains(lines[0], "#123") || !strings.Contains(lines[0], "Login page") {
		t.Errorf("lines[0] = %q", lines[0])
	}
}
