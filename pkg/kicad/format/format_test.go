package format

import "testing"

func TestForVersion(t *testing.T) {
	tests := []struct {
		target  string
		want    string
		wantErr bool
	}{
		{target: "", want: "8.0"},
		{target: "8", want: "8.0"},
		{target: "8.0.5", want: "8.0"},
		{target: "v9.0", want: "9.0"},
		{target: "9.1", want: "9.0"},
		{target: "7.0.11", want: "7.0"},
		{target: "6.0", wantErr: true},
		{target: "10.0", wantErr: true},
		{target: "latest", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			p, err := ForVersion(tt.target)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ForVersion(%q) expected error, got %+v", tt.target, p)
				}
				return
			}
			if err != nil {
				t.Fatalf("ForVersion(%q) unexpected error: %v", tt.target, err)
			}
			if p.Target != tt.want {
				t.Errorf("ForVersion(%q).Target = %q, want %q", tt.target, p.Target, tt.want)
			}
		})
	}
}

func TestProfileHide(t *testing.T) {
	if got := kicad8.Hide(); got != "hide" {
		t.Errorf("kicad8.Hide() = %q", got)
	}
	if got := kicad9.Hide(); got != "(hide yes)" {
		t.Errorf("kicad9.Hide() = %q", got)
	}
	if Default().SymbolVersion != "20231120" {
		t.Errorf("default symbol version = %q", Default().SymbolVersion)
	}
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "STM32F103C8T6", want: "STM32F103C8T6"},
		{in: "SOT-23-3_L2.9", want: "SOT-23-3_L2.9"},
		{in: "a b/c", want: "a_b_c"},
		{in: "0603", want: "_0603"},
		{in: "Ω-res", want: "Ω-res"},
		{in: "", want: FallbackSymbolName},
	}

	for _, tt := range tests {
		if got := SanitizeName(tt.in, FallbackSymbolName); got != tt.want {
			t.Errorf("SanitizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
