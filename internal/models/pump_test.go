package models

import "testing"

func TestNormalizeStatus(t *testing.T) {
	cases := []struct {
		raw  string
		want Status
	}{
		{"In use", StatusInUse},
		{"  in USE ", StatusInUse},
		{"In stock", StatusInStock},
		{"In maintenance", StatusInStock},
		{"Not used yet", StatusInStock},
		{"Disuse", StatusOutOfUse},
		{"out of order", StatusOutOfUse},
		{"Out of use", StatusOutOfUse},
		{"", StatusInStock},
		{"???", StatusInStock},
	}
	for _, tc := range cases {
		if got := NormalizeStatus(tc.raw); got != tc.want {
			t.Errorf("NormalizeStatus(%q): expected %q, got %q", tc.raw, tc.want, got)
		}
	}
}

func TestIsCronoSC(t *testing.T) {
	cases := []struct {
		model string
		want  bool
	}{
		{"CRONO SC 30", true},
		{"crono sc 50", true},
		{"Crono Sc", true},
		{"CRONO PAR", false},
		{"", false},
	}
	for _, tc := range cases {
		rec := PumpRecord{Model: tc.model}
		if got := rec.IsCronoSC(); got != tc.want {
			t.Errorf("IsCronoSC(%q): expected %v, got %v", tc.model, tc.want, got)
		}
	}
}

func TestActorCanSee(t *testing.T) {
	admin := Actor{Role: RoleAdmin}
	client := Actor{Role: RoleUser, Client: "Acme"}
	rec := PumpRecord{Client: "Acme"}
	other := PumpRecord{Client: "Beta"}

	if !admin.CanSee(&rec) || !admin.CanSee(&other) {
		t.Error("Admin should see every record")
	}
	if !client.CanSee(&rec) {
		t.Error("Client should see its own record")
	}
	if client.CanSee(&other) {
		t.Error("Client must not see another client's record")
	}
}
