package entities

import "testing"

func TestModeFromPath(t *testing.T) {
	tests := []struct {
		name    string
		baseDir string
		want    RunMode
	}{
		{"bootstrap segment", "/data/defs/bootstrap", ModeBootstrap},
		{"atomic segment", "/data/defs/atomic", ModeAtomic},
		{"anything else is combined", "/data/defs/f27", ModeCombined},
		{"trailing slash", "/data/defs/atomic/", ModeAtomic},
		{"relative path", "bootstrap", ModeBootstrap},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ModeFromPath(tt.baseDir); got != tt.want {
				t.Errorf("ModeFromPath(%q) = %q, want %q", tt.baseDir, got, tt.want)
			}
		})
	}
}

func TestExclusionsClaimIsSnapshot(t *testing.T) {
	base := NewExclusions()

	hostClaims := base.Claim([]string{"kernel", "systemd"}, false)
	shimClaims := hostClaims.Claim([]string{"shim"}, true)

	// The original snapshots are untouched.
	if base.ClaimedByHostShim("kernel") {
		t.Error("base snapshot mutated by Claim")
	}
	if hostClaims.ClaimedByHostShim("shim") {
		t.Error("host snapshot mutated by later Claim")
	}

	if !hostClaims.ClaimedByHostShim("kernel") || !hostClaims.ClaimedByHostShim("systemd") {
		t.Error("host claims missing from extended snapshot")
	}
	if hostClaims.ClaimedByShim("kernel") {
		t.Error("host-only claim must not appear in the shim set")
	}

	if !shimClaims.ClaimedByHostShim("shim") || !shimClaims.ClaimedByShim("shim") {
		t.Error("shim claim must appear in both sets")
	}
	if !shimClaims.ClaimedByHostShim("kernel") {
		t.Error("earlier claims must carry forward")
	}
}
