package cmd

import "testing"

type fakeFlagChecker struct{ changed bool }

func (f fakeFlagChecker) Changed(name string) bool { return f.changed }

func TestMaybeListGroup_NotChangedIsNoop(t *testing.T) {
	handled, err := maybeListGroup(fakeFlagChecker{changed: false})
	if handled {
		t.Fatal("expected handled=false when -l was not given")
	}
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMaybeListGroup_UnknownGroupErrors(t *testing.T) {
	fuzzListGroup = "not-a-real-group"
	defer func() { fuzzListGroup = "" }()

	handled, err := maybeListGroup(fakeFlagChecker{changed: true})
	if !handled {
		t.Fatal("expected handled=true")
	}
	if err == nil {
		t.Fatal("expected an error for an unknown group")
	}
}

func TestMaybeListGroup_EmptyArgListsEveryGroup(t *testing.T) {
	fuzzListGroup = ""
	handled, err := maybeListGroup(fakeFlagChecker{changed: true})
	if !handled || err != nil {
		t.Fatalf("handled=%v err=%v", handled, err)
	}
}
