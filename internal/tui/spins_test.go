package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/casedesk/internal/spinview"
)

func TestSpinsEnterOpensSpin(t *testing.T) {
	tests := []struct {
		name  string
		bonus bool
		want  string
	}{
		{"root collection", false, spinview.SpinsPath},
		{"bonus collection", true, spinview.BonusSpinsPath},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := newSpinsModel()
			if tc.bonus {
				m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
				m, _ = m.Update(keyRunes("b"))
				m, _ = m.Update(keyRunes("/"))
			}
			for _, r := range "1042" {
				m, _ = m.Update(keyRunes(string(r)))
			}
			_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
			if cmd == nil {
				t.Fatal("expected openSpinMsg command")
			}
			got, ok := cmd().(openSpinMsg)
			if !ok || got.id != 1042 || got.basePath != tc.want {
				t.Errorf("cmd() = %#v, want spin 1042 from %s", cmd(), tc.want)
			}
		})
	}
}

func TestSpinsRejectsEmptyAndZero(t *testing.T) {
	for _, input := range []string{"", "0"} {
		m := newSpinsModel()
		m.input = input
		m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		if cmd != nil {
			t.Errorf("input %q: expected no command", input)
		}
		if m.err == "" {
			t.Errorf("input %q: expected an error", input)
		}
	}
}

func TestSpinsIgnoresNonDigits(t *testing.T) {
	m := newSpinsModel()
	for _, r := range "12ab-3" {
		m, _ = m.Update(keyRunes(string(r)))
	}
	if m.input != "123" {
		t.Errorf("input = %q, want 123", m.input)
	}
}

func TestSpinsRecentLookups(t *testing.T) {
	m := newSpinsModel()
	open := func(id string) {
		m.input = id
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	}
	open("5")
	open("6")
	open("5")
	if len(m.recent) != 2 || m.recent[0].id != 5 || m.recent[1].id != 6 {
		t.Fatalf("recent = %+v, want [5 6]", m.recent)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	_, cmd := m.Update(keyRunes("2"))
	if cmd == nil {
		t.Fatal("expected reopen command")
	}
	if got := cmd().(openSpinMsg); got.id != 6 {
		t.Errorf("reopened %d, want 6", got.id)
	}
}
