package version

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
)

// Info captures a tool version installed on the system.
type Info struct {
	Name    string
	Version string
}

var dvcRegex = regexp.MustCompile(`(?m)^\s*v?(\d+\.\d+(?:\.\d+)?)`)

// DetectDVC runs argv (the dvc invocation followed by --version) and parses
// the reported version.
func DetectDVC(ctx context.Context, argv []string) (Info, error) {
	if len(argv) == 0 {
		return Info{}, errors.New("empty dvc invocation")
	}
	out, err := runCommand(ctx, argv[0], argv[1:]...)
	if err != nil {
		return Info{}, err
	}
	return parseDVC(out)
}

func parseDVC(out string) (Info, error) {
	match := dvcRegex.FindStringSubmatch(out)
	if len(match) < 2 {
		return Info{}, fmt.Errorf("unable to parse dvc version from %q", out)
	}
	return Info{Name: "dvc", Version: match[1]}, nil
}

func runCommand(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = nil
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	if err := cmd.Run(); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

// CompareMajorMinor compares major.minor portions of two semver-like versions.
func CompareMajorMinor(desired, actual string) bool {
	d := semverPrefix(desired)
	a := semverPrefix(actual)
	if d == "" || a == "" {
		return false
	}
	return strings.EqualFold(d, a)
}

func semverPrefix(version string) string {
	parts := strings.Split(version, ".")
	if len(parts) < 2 {
		return ""
	}
	return fmt.Sprintf("%s.%s", parts[0], parts[1])
}

// Missing reports whether executing the command returns a not-found error.
func Missing(cmdErr error) bool {
	return errors.Is(cmdErr, exec.ErrNotFound)
}
