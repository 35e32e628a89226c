package main

import "testing"

func TestEnvOptions(t *testing.T) {
	tests := []struct {
		name        string
		verbose     bool
		args        []string
		wantPicker  bool
		wantVerbose bool
	}{
		{"picker quiet", false, nil, true, false},
		{"picker drops console logging", true, nil, true, false},
		{"subcommand verbose", true, []string{"dirs", "list"}, false, true},
		{"subcommand quiet", false, []string{"check"}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := envOptions("/etc/tmuxdir", tt.verbose, tt.args)
			if opts.Picker != tt.wantPicker {
				t.Errorf("Picker = %v, want %v", opts.Picker, tt.wantPicker)
			}
			if opts.Verbose != tt.wantVerbose {
				t.Errorf("Verbose = %v, want %v", opts.Verbose, tt.wantVerbose)
			}
			if opts.ConfigDir != "/etc/tmuxdir" {
				t.Errorf("ConfigDir = %q", opts.ConfigDir)
			}
		})
	}
}
