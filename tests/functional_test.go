package tests

import (
	"bytes"
	"github.com/vela-lang/vela/internal/config"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// TestFunctional runs .vl files through the compiled velac binary and
// compares its combined output with the matching .want file. This
// exercises the actual binary - what users see - rather than calling
// into internal/analyzer directly.
func TestFunctional(t *testing.T) {
	projectRoot, err := filepath.Abs("..")
	if err != nil {
		t.Fatalf("failed to get project root: %v", err)
	}

	binaryPath := filepath.Join(projectRoot, "velac-test-binary")
	defer os.Remove(binaryPath)

	t.Log("building fresh binary...")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/velac")
	cmd.Dir = projectRoot
	if output, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("failed to build binary: %v\n%s", err, output)
	}

	var testFiles []string
	err = filepath.Walk(".", func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		for _, ext := range config.SourceFileExtensions {
			if strings.HasSuffix(path, ext) {
				wantFile := strings.TrimSuffix(path, ext) + ".want"
				if _, err := os.Stat(wantFile); err == nil {
					testFiles = append(testFiles, path)
				}
				break
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("failed to walk directory: %v", err)
	}

	if len(testFiles) == 0 {
		t.Skip("no test files with .want found")
	}

	for _, testFile := range testFiles {
		testFile := testFile
		testName := strings.TrimSuffix(filepath.Base(testFile), filepath.Ext(testFile))

		t.Run(testName, func(t *testing.T) {
			testDir, err := filepath.Abs(filepath.Dir(testFile))
			if err != nil {
				t.Fatalf("failed to get absolute path: %v", err)
			}
			base := filepath.Base(testFile)

			ext := filepath.Ext(testFile)
			wantFile := strings.TrimSuffix(testFile, ext) + ".want"
			wantBytes, err := os.ReadFile(wantFile)
			if err != nil {
				t.Fatalf("failed to read .want file: %v", err)
			}
			want := strings.TrimSpace(string(wantBytes))

			// Run with the test's own directory as cwd and pass the bare
			// filename, so diagnostics carry a stable "name:line" prefix
			// instead of a machine-specific absolute path.
			cmd := exec.Command(binaryPath, base)
			cmd.Dir = testDir
			var stdout, stderr bytes.Buffer
			cmd.Stdout = &stdout
			cmd.Stderr = &stderr
			_ = cmd.Run()

			stdoutStr := strings.TrimSpace(stdout.String())
			stderrStr := strings.TrimSpace(stderr.String())

			var got string
			switch {
			case stdoutStr != "" && stderrStr != "":
				got = stdoutStr + "\n" + stderrStr
			case stdoutStr != "":
				got = stdoutStr
			default:
				got = stderrStr
			}

			got = strings.TrimSpace(strings.ReplaceAll(got, "\r\n", "\n"))
			want = strings.TrimSpace(strings.ReplaceAll(want, "\r\n", "\n"))

			if got != want {
				t.Errorf("output mismatch:\n--- want ---\n%s\n--- got ---\n%s", want, got)
			}
		})
	}
}
