package keepass

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

// fakeVault answers runner calls from a canned table keyed by the argv
// shape, approximating a scripted vault tool.
type fakeVault struct {
	password string
	lsOut    map[string]string // group path -> ls output ("" key is the root)
	showOut  map[string]string // entry path -> show output
	calls    [][]string
}

func (f *fakeVault) Run(_ context.Context, password string, args []string) (Result, error) {
	f.calls = append(f.calls, args)
	if password != f.password {
		return Result{ExitCode: 1, Output: "invalid credentials\n"}, nil
	}

	sub := args[0]
	path := ""
	if last := args[len(args)-1]; !strings.HasSuffix(last, ".kdbx") {
		path = last
	}

	switch sub {
	case "ls":
		out, ok := f.lsOut[path]
		if !ok {
			return Result{ExitCode: 1, Output: fmt.Sprintf("Cannot find group %s.\n", path)}, nil
		}
		return Result{ExitCode: 0, Output: out}, nil
	case "show":
		out, ok := f.showOut[path]
		if !ok {
			return Result{ExitCode: 1, Output: fmt.Sprintf("Could not find entry with path %s.\n", path)}, nil
		}
		return Result{ExitCode: 0, Output: out}, nil
	}
	return Result{ExitCode: 1, Output: "unknown command\n"}, nil
}

func newTestBrowser(vault *fakeVault) *Browser {
	s := NewSession("/tmp/test.kdbx", vault.password, vault)
	return NewBrowser(s)
}

func TestBrowserListAndNavigate(t *testing.T) {
	vault := &fakeVault{
		password: "pw",
		lsOut: map[string]string{
			"":     "Web/\nRecycle Bin/\n",
			"Web/": "login.example.com\n",
		},
	}
	b := newTestBrowser(vault)

	entries, err := b.ListCurrentGroup(context.Background())
	if err != nil {
		t.Fatalf("ListCurrentGroup() error = %v", err)
	}
	want := []Entry{"Web/", "Recycle Bin/"}
	if fmt.Sprint(entries) != fmt.Sprint(want) {
		t.Fatalf("ListCurrentGroup() = %v, want %v", entries, want)
	}

	b.EnterGroup("Web/")
	if b.Path() != "Web/" {
		t.Fatalf("Path() = %q, want %q", b.Path(), "Web/")
	}

	entries, err = b.ListCurrentGroup(context.Background())
	if err != nil {
		t.Fatalf("ListCurrentGroup() error = %v", err)
	}
	if len(entries) != 1 || entries[0] != "login.example.com" {
		t.Errorf("ListCurrentGroup() = %v, want [login.example.com]", entries)
	}

	// The listing call carried the group path, not a re-rooted one.
	last := vault.calls[len(vault.calls)-1]
	if last[len(last)-1] != "Web/" {
		t.Errorf("last call args = %v, want trailing %q", last, "Web/")
	}

	b.GoBack()
	if b.Path() != "" {
		t.Errorf("Path() after GoBack = %q, want root", b.Path())
	}
	b.GoBack() // no-op at root
	if b.Path() != "" {
		t.Errorf("Path() after GoBack at root = %q, want root", b.Path())
	}
}

func TestBrowserRecursiveListing(t *testing.T) {
	vault := &fakeVault{
		password: "pw",
		lsOut:    map[string]string{"": "Web/\nWeb/login.example.com\n"},
	}
	b := newTestBrowser(vault)
	b.Recursive = true

	entries, err := b.ListCurrentGroup(context.Background())
	if err != nil {
		t.Fatalf("ListCurrentGroup() error = %v", err)
	}
	want := []Entry{"Web/", "Web/login.example.com"}
	if fmt.Sprint(entries) != fmt.Sprint(want) {
		t.Errorf("ListCurrentGroup() = %v, want %v", entries, want)
	}

	args := vault.calls[0]
	if fmt.Sprint(args[:3]) != fmt.Sprint([]string{"ls", "-R", "-f"}) {
		t.Errorf("recursive listing args = %v, want ls -R -f prefix", args)
	}
}

func TestBrowserGetField(t *testing.T) {
	vault := &fakeVault{
		password: "pw",
		showOut: map[string]string{
			"Web/login.example.com": "Title: login.example.com\nUserName: bob\nPassword: s3cr3t\nURL: https://example.com:8443\n",
		},
	}
	b := newTestBrowser(vault)
	b.EnterGroup("Web/")

	tests := []struct {
		field string
		want  string
	}{
		{"UserName", "bob"},
		{"Password", "s3cr3t"},
		{"URL", "https://example.com:8443"},
		{"Missing", ""},
	}
	for _, tt := range tests {
		got, err := b.GetField(context.Background(), "login.example.com", tt.field)
		if err != nil {
			t.Fatalf("GetField(%s) error = %v", tt.field, err)
		}
		if got != tt.want {
			t.Errorf("GetField(%s) = %q, want %q", tt.field, got, tt.want)
		}
	}

	// Protected fields are requested with -s, others without.
	foundProtected := false
	for _, args := range vault.calls {
		if args[0] == "show" && len(args) == 4 && args[1] == "-s" {
			foundProtected = true
		}
	}
	if !foundProtected {
		t.Error("no show -s call recorded for the Password field")
	}
}

func TestBrowserGetEntryDetailsMasksPassword(t *testing.T) {
	vault := &fakeVault{
		password: "pw",
		showOut: map[string]string{
			"login.example.com": "Password: s3cr3t\nUserName: bob\n",
		},
	}
	b := newTestBrowser(vault)

	details, err := b.GetEntryDetails(context.Background(), "login.example.com")
	if err != nil {
		t.Fatalf("GetEntryDetails() error = %v", err)
	}

	if !strings.Contains(details, "Password: *************") {
		t.Errorf("details = %q, password line not masked to fixed width", details)
	}
	if strings.Contains(details, "s3cr3t") {
		t.Errorf("details = %q, cleartext password leaked", details)
	}
	if !strings.Contains(details, "UserName: bob") {
		t.Errorf("details = %q, username line altered", details)
	}
}

func TestBrowserAccessObserver(t *testing.T) {
	vault := &fakeVault{
		password: "pw",
		lsOut:    map[string]string{"": "Web/\n"},
		showOut:  map[string]string{"Web/login.example.com": "UserName: bob\n"},
	}
	b := newTestBrowser(vault)

	var ops []string
	b.OnAccess = func(op, path string) { ops = append(ops, op+" "+path) }

	if _, err := b.ListCurrentGroup(context.Background()); err != nil {
		t.Fatal(err)
	}
	b.EnterGroup("Web/")
	if _, err := b.GetEntryDetails(context.Background(), "login.example.com"); err != nil {
		t.Fatal(err)
	}

	want := []string{"group.list ", "group.enter Web/", "entry.show Web/login.example.com"}
	if fmt.Sprint(ops) != fmt.Sprint(want) {
		t.Errorf("observed ops = %v, want %v", ops, want)
	}
}
