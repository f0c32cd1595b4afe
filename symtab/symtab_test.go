package symtab

import (
	"errors"
	"testing"
)

func mustInsert(t *testing.T, tab *Table, name string, typ Type, addr int, extern bool) {
	t.Helper()
	if err := tab.Insert(name, typ, addr, extern); err != nil {
		t.Fatalf("Insert(%s): %v", name, err)
	}
}

func TestFinalizeShiftsData(t *testing.T) {
	tab := New()
	mustInsert(t, tab, "MAIN", Code, 100, false)
	mustInsert(t, tab, "STR", Data, 0, false)
	mustInsert(t, tab, "NUMS", Data, 4, false)
	mustInsert(t, tab, "X", Code, 0, true)

	if err := tab.Finalize(110); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name   string
		addr   int
		extern bool
	}{
		{"MAIN", 100, false},
		{"STR", 110, false},
		{"NUMS", 114, false},
		{"X", 0, true},
	}
	for _, tt := range tests {
		addr, extern, err := tab.Lookup(tt.name)
		if err != nil || addr != tt.addr || extern != tt.extern {
			t.Errorf("Lookup(%s) = %d, %v, %v; want %d, %v", tt.name, addr, extern, err, tt.addr, tt.extern)
		}
	}
	if _, _, err := tab.Lookup("NOPE"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown label: %v", err)
	}
}

func TestDuplicate(t *testing.T) {
	tab := New()
	mustInsert(t, tab, "A", Code, 100, false)
	if err := tab.Insert("A", Data, 0, false); !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("got %v", err)
	}
	mustInsert(t, tab, "X", Code, 0, true)
	if err := tab.Insert("X", Code, 0, true); !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("extern twice: got %v", err)
	}
}

func TestEntryBeforeDefinition(t *testing.T) {
	tab := New()
	if err := tab.MarkForExport("LATER"); err != nil {
		t.Fatal(err)
	}
	mustInsert(t, tab, "FIRST", Code, 100, false)
	mustInsert(t, tab, "LATER", Data, 2, false)
	if err := tab.Insert("LATER", Data, 3, false); !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("completed placeholder must not be redefined: %v", err)
	}
	if err := tab.MarkForExport("FIRST"); err != nil {
		t.Fatal(err)
	}
	if err := tab.Finalize(105); err != nil {
		t.Fatal(err)
	}

	exports, err := tab.Exports()
	if err != nil {
		t.Fatal(err)
	}
	if len(exports) != 2 || exports[0].Name != "LATER" || exports[0].Address != 107 ||
		exports[1].Name != "FIRST" || exports[1].Address != 100 {
		t.Errorf("exports: %+v", exports)
	}

	var names []string
	err = tab.ForEachExport(func(s Symbol) error {
		names = append(names, s.Name)
		return nil
	})
	if err != nil || len(names) != 2 {
		t.Errorf("ForEachExport: %v %v", names, err)
	}
	stop := errors.New("stop")
	if err := tab.ForEachExport(func(Symbol) error { return stop }); err != stop {
		t.Errorf("callback error not returned: %v", err)
	}
}

func TestExternEntryConflict(t *testing.T) {
	tab := New()
	mustInsert(t, tab, "X", Code, 0, true)
	if err := tab.MarkForExport("X"); !errors.Is(err, ErrExportAndExtern) {
		t.Errorf("extern then entry: %v", err)
	}

	tab = New()
	if err := tab.MarkForExport("Y"); err != nil {
		t.Fatal(err)
	}
	if err := tab.Insert("Y", Code, 0, true); !errors.Is(err, ErrExportAndExtern) {
		t.Errorf("entry then extern: %v", err)
	}

	for _, s := range tab.All() {
		if s.Extern && s.Export {
			t.Errorf("%s has both flags", s.Name)
		}
	}
}

func TestUndefinedEntry(t *testing.T) {
	tab := New()
	mustInsert(t, tab, "A", Code, 100, false)
	if err := tab.MarkForExport("GHOST"); err != nil {
		t.Fatal(err)
	}
	err := tab.Finalize(101)
	var nf *NotFoundError
	if !errors.As(err, &nf) || nf.Name != "GHOST" || !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v", err)
	}
	if _, _, err := tab.Lookup("GHOST"); !errors.Is(err, ErrNotFound) {
		t.Errorf("placeholder lookup: %v", err)
	}
}

func TestUndefinedEntriesAllReturned(t *testing.T) {
	tab := New()
	for _, name := range []string{"A", "B"} {
		if err := tab.MarkForExport(name); err != nil {
			t.Fatal(err)
		}
	}
	mustInsert(t, tab, "C", Code, 100, false)

	err := tab.Finalize(101)
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		t.Fatalf("got %v", err)
	}
	var names []string
	for _, e := range joined.Unwrap() {
		var nf *NotFoundError
		if !errors.As(e, &nf) {
			t.Fatalf("unexpected %v", e)
		}
		names = append(names, nf.Name)
	}
	if len(names) != 2 || names[0] != "A" || names[1] != "B" {
		t.Errorf("got %v", names)
	}
}

func TestStateMachine(t *testing.T) {
	tab := New()
	if _, _, err := tab.Lookup("A"); !errors.Is(err, ErrNotFinalized) {
		t.Errorf("lookup before finalize: %v", err)
	}
	if _, err := tab.Exports(); !errors.Is(err, ErrNotFinalized) {
		t.Errorf("exports before finalize: %v", err)
	}
	if err := tab.Finalize(0); err != nil {
		t.Fatal(err)
	}
	if !tab.Finalized() {
		t.Error("Finalized() = false")
	}
	if err := tab.Insert("A", Code, 1, false); !errors.Is(err, ErrFinalized) {
		t.Errorf("insert after finalize: %v", err)
	}
	if err := tab.MarkForExport("A"); !errors.Is(err, ErrFinalized) {
		t.Errorf("export after finalize: %v", err)
	}
	if err := tab.Finalize(0); !errors.Is(err, ErrFinalized) {
		t.Errorf("second finalize: %v", err)
	}
}

func TestInsertionOrderDoesNotMatter(t *testing.T) {
	a, b := New(), New()
	mustInsert(t, a, "L1", Code, 100, false)
	mustInsert(t, a, "D1", Data, 0, false)
	mustInsert(t, b, "D1", Data, 0, false)
	mustInsert(t, b, "L1", Code, 100, false)
	for _, tab := range []*Table{a, b} {
		if err := tab.Finalize(120); err != nil {
			t.Fatal(err)
		}
	}
	for _, name := range []string{"L1", "D1"} {
		x, _, _ := a.Lookup(name)
		y, _, _ := b.Lookup(name)
		if x != y {
			t.Errorf("%s: %d vs %d", name, x, y)
		}
	}
	if a.Len() != 2 || a.All()[0].Name != "L1" || b.All()[0].Name != "D1" {
		t.Error("All() must keep insertion order")
	}
}
