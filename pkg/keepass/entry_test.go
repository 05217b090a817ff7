package keepass

import "testing"

func TestIsGroup(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"Folder/", true},
		{"Web/Logins/", true},
		{"login.example.com", false},
		{"Web/login.example.com", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsGroup(tt.path); got != tt.want {
			t.Errorf("IsGroup(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestEntryName(t *testing.T) {
	tests := []struct {
		entry Entry
		want  string
	}{
		{"Web/login.example.com", "login.example.com"},
		{"Web/Logins/", "Logins/"},
		{"Web/", "Web/"},
		{"top-level", "top-level"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := tt.entry.Name(); got != tt.want {
			t.Errorf("Entry(%q).Name() = %q, want %q", tt.entry, got, tt.want)
		}
	}
}

func TestIsVaultFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"passwords.kdbx", true},
		{"legacy.kdb", true},
		{"/home/bob/Vaults/Work.KDBX", true},
		{"notes.txt", false},
		{"kdbx", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsVaultFile(tt.path); got != tt.want {
			t.Errorf("IsVaultFile(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
