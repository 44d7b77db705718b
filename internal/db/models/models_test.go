package models

import (
	"encoding/json"
	"testing"
)

func TestAccessLevel_IsModerator(t *testing.T) {
	if LevelDeveloper.IsModerator() {
		t.Error("Developer should not be moderator")
	}
	if LevelPremium.IsModerator() {
		t.Error("Premium should not be moderator")
	}
	if !LevelModerator.IsModerator() {
		t.Error("Moderator should be moderator")
	}
}

func TestAccessLevel_IsPremium(t *testing.T) {
	if LevelDeveloper.IsPremium() {
		t.Error("Developer should not be premium")
	}
	if !LevelPremium.IsPremium() {
		t.Error("Premium should be premium")
	}
	if !LevelModerator.IsPremium() {
		t.Error("Moderator should have premium privileges")
	}
}

func TestStringList_RoundTrip(t *testing.T) {
	list := StringList{"Connecticut", "Habano"}
	v, err := list.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}

	var got StringList
	if err := got.Scan(v); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(got) != 2 || got[0] != "Connecticut" || got[1] != "Habano" {
		t.Errorf("round trip = %v, want %v", got, list)
	}
}

func TestStringList_ScanNil(t *testing.T) {
	var got StringList
	if err := got.Scan(nil); err != nil {
		t.Fatalf("Scan(nil): %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("Scan(nil) = %v, want empty list", got)
	}
}

func TestNilStringList_ValuesAsEmptyArray(t *testing.T) {
	var list StringList
	v, err := list.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if string(v.([]byte)) != "[]" {
		t.Errorf("nil list Value = %s, want []", v)
	}
}

func TestPayload_Reason(t *testing.T) {
	p := Payload{"reason": "duplicate entry"}
	if p.Reason() != "duplicate entry" {
		t.Errorf("Reason() = %q", p.Reason())
	}
	if (Payload{}).Reason() != "" {
		t.Error("empty payload should have empty reason")
	}
	var nilPayload Payload
	if nilPayload.Reason() != "" {
		t.Error("nil payload should have empty reason")
	}
}

func TestPendingRequest_IsResolved(t *testing.T) {
	r := &PendingRequest{Status: RequestPending}
	if r.IsResolved() {
		t.Error("pending request should not be resolved")
	}
	r.Status = RequestApproved
	if !r.IsResolved() {
		t.Error("approved request should be resolved")
	}
	r.Status = RequestDenied
	if !r.IsResolved() {
		t.Error("denied request should be resolved")
	}
}

func TestUser_PasswordHashNotSerialized(t *testing.T) {
	u := User{Username: "aaron.murray", PasswordHash: "secret-hash"}
	raw, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(raw) == "" || json.Valid(raw) == false {
		t.Fatal("invalid JSON")
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if _, ok := decoded["password_hash"]; ok {
		t.Error("password_hash must not appear in JSON output")
	}
}
