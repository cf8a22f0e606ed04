package test_test

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// buildCLI builds the moddefs binary once per test binary run.
func buildCLI(t *testing.T) string {
	t.Helper()

	buildDir := filepath.Join("..", "test-dist", "cli-bin")
	if err := os.MkdirAll(buildDir, 0750); err != nil {
		t.Fatalf("Failed to create build dir: %v", err)
	}

	cliPath := filepath.Join(buildDir, "moddefs")
	if _, err := os.Stat(cliPath); err == nil {
		return cliPath
	}

	t.Log("Building moddefs CLI...")
	cmd := exec.Command("go", "build", "-o", cliPath, "../cmd/moddefs") // #nosec G204 -- test code with controlled input
	cmd.Dir = filepath.Join("..", "test")

	if output, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("Failed to build CLI: %v\nOutput: %s", err, output)
	}
	return cliPath
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	t.Fatalf("command did not run: %v", err)
	return -1
}

// TestCLI_Help verifies the usage text is printed for -h.
func TestCLI_Help(t *testing.T) {
	cliPath := buildCLI(t)

	cmd := exec.Command(cliPath, "-h") // #nosec G204 -- test code with controlled input
	output, err := cmd.CombinedOutput()

	// flag.ExitOnError exits 0 for an explicit -h.
	if code := exitCode(t, err); code != 0 {
		t.Errorf("-h exited with code %d", code)
	}

	outputStr := string(output)
	for _, want := range []string{"Usage:", "-verbose", "-buildsys-url", "-cache-file"} {
		if !strings.Contains(outputStr, want) {
			t.Errorf("help output missing %q:\n%s", want, outputStr)
		}
	}
}

// TestCLI_UsageErrors verifies argument validation exits with code 2.
func TestCLI_UsageErrors(t *testing.T) {
	cliPath := buildCLI(t)

	tests := []struct {
		name string
		args []string
	}{
		{name: "no base directory", args: nil},
		{name: "too many arguments", args: []string{"a", "b"}},
		{name: "base directory does not exist", args: []string{filepath.Join(t.TempDir(), "missing")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := exec.Command(cliPath, tt.args...) // #nosec G204 -- test code with controlled input
			output, err := cmd.CombinedOutput()

			if code := exitCode(t, err); code != 2 {
				t.Errorf("exit code = %d, want 2\nOutput: %s", code, output)
			}
		})
	}
}

// TestCLI_BootstrapRun runs the binary end to end against a seeded base
// directory. The build system URL points at a closed port, so every
// reference falls back to the default.
func TestCLI_BootstrapRun(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping CLI integration test in short mode")
	}

	cliPath := buildCLI(t)

	baseDir := filepath.Join(t.TempDir(), "bootstrap")
	archDir := filepath.Join(baseDir, "x86_64")
	if err := os.MkdirAll(archDir, 0750); err != nil {
		t.Fatalf("mkdir arch dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(archDir, "self-hosting.txt"), []byte("gcc-7.2.1-1.fc27.x86_64.rpm\n"), 0600); err != nil {
		t.Fatalf("write self-hosting list: %v", err)
	}
	if err := os.WriteFile(filepath.Join(archDir, "runtime.txt"), []byte("bash-4.4-1.fc27.x86_64.rpm\n"), 0600); err != nil {
		t.Fatalf("write runtime list: %v", err)
	}
	templates := filepath.Join(baseDir, "templates")
	if err := os.MkdirAll(templates, 0750); err != nil {
		t.Fatalf("mkdir templates: %v", err)
	}
	if err := os.WriteFile(filepath.Join(templates, "bootstrap.yaml"), []byte("document: modulemd\ndata: {}\n"), 0600); err != nil {
		t.Fatalf("write template: %v", err)
	}

	cachePath := filepath.Join(t.TempDir(), "references.cache")
	cmd := exec.Command(cliPath, // #nosec G204 -- test code with controlled input
		"-buildsys-url", "http://127.0.0.1:1",
		"-cache-file", cachePath,
		baseDir,
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("run failed: %v\nOutput: %s", err, output)
	}

	rendered, err := os.ReadFile(filepath.Join(baseDir, "bootstrap.yaml")) // #nosec G304 -- path under test temp dir
	if err != nil {
		t.Fatalf("descriptor not written: %v", err)
	}
	for _, want := range []string{"gcc", "nvr: gcc-7.2.1-1.fc27", "ref: master"} {
		if !strings.Contains(string(rendered), want) {
			t.Errorf("descriptor missing %q:\n%s", want, rendered)
		}
	}
}
