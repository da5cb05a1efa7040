package scdesc

import "testing"

func TestLookup_FindsRegisteredDescriptor(t *testing.T) {
	if _, ok := Lookup("mmap"); !ok {
		t.Fatal("expected mmap to be registered")
	}
	if _, ok := Lookup("does-not-exist"); ok {
		t.Fatal("expected unknown syscall to be absent")
	}
}

func TestBuild_EmptyFiltersReturnsAll(t *testing.T) {
	all := All()
	got, err := Build(nil, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(got) != len(all) {
		t.Fatalf("Build(nil, nil) returned %d descriptors, want %d", len(got), len(all))
	}
}

// Concrete scenario 4: filtering by -g vm leaves only VM-group descriptors.
func TestBuild_GroupFilter(t *testing.T) {
	got, err := Build(nil, []string{"vm"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(got) == 0 {
		t.Fatal("expected at least one VM descriptor")
	}
	for _, d := range got {
		if d.Groups&GroupVM == 0 {
			t.Fatalf("descriptor %s is not in the VM group", d.Name)
		}
	}
}

func TestBuild_NameFilter(t *testing.T) {
	got, err := Build([]string{"mmap", "munmap"}, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d descriptors, want 2", len(got))
	}
}

func TestBuild_UnknownNameFails(t *testing.T) {
	if _, err := Build([]string{"not-a-syscall"}, nil); err == nil {
		t.Fatal("expected an error for an unknown syscall name")
	}
}

func TestBuild_UnknownGroupFails(t *testing.T) {
	if _, err := Build(nil, []string{"not-a-group"}); err == nil {
		t.Fatal("expected an error for an unknown group name")
	}
}

func TestBuild_EmptyFilterListsBehaveLikeNoFilters(t *testing.T) {
	// Non-nil but empty -c/-g lists select every descriptor, exactly as
	// Build(nil, nil) does.
	got, err := Build([]string{}, []string{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(got) != len(All()) {
		t.Fatal("expected empty filters to behave like no filters")
	}
}

func TestGroupLookup(t *testing.T) {
	g, ok := GroupLookup("fork")
	if !ok || g != GroupFork {
		t.Fatalf("GroupLookup(fork) = %v, %v", g, ok)
	}
	if _, ok := GroupLookup("bogus"); ok {
		t.Fatal("expected bogus group to be absent")
	}
}
