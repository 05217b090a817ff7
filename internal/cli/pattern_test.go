package cli

import (
	"reflect"
	"testing"
)

func TestFilterEntries(t *testing.T) {
	listing := []string{"Web/", "Web/login.example.com", "Banking/", "notes"}

	tests := []struct {
		name    string
		pattern string
		want    []string
		wantErr bool
	}{
		{
			name:    "empty pattern returns all",
			pattern: "",
			want:    listing,
		},
		{
			name:    "substring match",
			pattern: "example",
			want:    []string{"Web/login.example.com"},
		},
		{
			name:    "substring preserves order",
			pattern: "n",
			want:    []string{"Web/login.example.com", "Banking/", "notes"},
		},
		{
			name:    "glob on group name",
			pattern: "Web*",
			want:    []string{"Web/"},
		},
		{
			name:    "glob no match",
			pattern: "zzz*",
			want:    nil,
		},
		{
			name:    "invalid glob",
			pattern: "[unterminated",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FilterEntries(tt.pattern, listing)
			if tt.wantErr {
				if err == nil {
					t.Fatal("FilterEntries() error = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("FilterEntries() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FilterEntries(%q) = %v, want %v", tt.pattern, got, tt.want)
			}
		})
	}
}
