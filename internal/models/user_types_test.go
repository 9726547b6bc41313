package models

import "testing"

func TestPasswordSetAndMatches(t *testing.T) {
	var p Password
	if err := p.Set("correct horse"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if p.Hash == "" || p.Hash == "correct horse" {
		t.Fatal("expected a bcrypt hash")
	}

	ok, err := p.Matches("correct horse")
	if err != nil || !ok {
		t.Fatalf("expected match, got %v %v", ok, err)
	}
	ok, err = p.Matches("wrong")
	if err != nil || ok {
		t.Fatalf("expected mismatch without error, got %v %v", ok, err)
	}
}

func TestStatusEnums(t *testing.T) {
	for _, s := range ListingStatuses {
		if !ValidListingStatus(s) {
			t.Errorf("%q should be valid", s)
		}
	}
	if ValidListingStatus("rejected") {
		t.Error("rejected is not a listing status")
	}
	if OwnerMayEditPrice(ListingPublished) {
		t.Error("published listings keep their price")
	}
	if !OwnerMayEditPrice(ListingDraft) {
		t.Error("drafts can be repriced")
	}
	if !ValidRole(RoleEditor) || ValidRole("manager") {
		t.Error("unexpected role validation")
	}
}
