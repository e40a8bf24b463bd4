package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/bgricker/stagelens/internal/config"
	"github.com/bgricker/stagelens/internal/ctxlog"
	"github.com/bgricker/stagelens/internal/report"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// dvc subcommands the runner issues.
const (
	CommandRepro  = "repro"
	CommandStatus = "status"
)

// ErrNoResolvedCommand indicates dvc printed no command for a dry run.
var ErrNoResolvedCommand = errors.New("dvc reported no command")

// Options configure how the runner invokes dvc.
type Options struct {
	Root      string
	DVC       config.DVC
	Stdout    io.Writer
	Stderr    io.Writer
	Verbose   bool
	DryRun    bool
	TailLines int
	Env       []string
	Now       func() time.Time
	LogDir    string
	NewID     func() string
}

// Runner launches dvc for stage addresses.
type Runner struct {
	opts Options
}

// Target is one stage address and the directory dvc must run in.
type Target struct {
	Pipeline string
	Dir      string
	Address  string
}

// New creates a runner with the supplied options.
func New(opts Options) *Runner {
	if opts.Stdout == nil {
		opts.Stdout = io.Discard
	}
	if opts.Stderr == nil {
		opts.Stderr = io.Discard
	}
	if opts.TailLines <= 0 {
		opts.TailLines = 20
	}
	if opts.Env == nil {
		opts.Env = os.Environ()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = func() string { return uuid.NewString() }
	}
	return &Runner{opts: opts}
}

// Invocation returns the argv that runs dvc with args. An explicit CLI path
// wins over a python interpreter, which wins over dvc on PATH.
func Invocation(cli config.DVC, args ...string) []string {
	var argv []string
	switch {
	case strings.TrimSpace(cli.CLIPath) != "":
		argv = []string{cli.CLIPath}
	case strings.TrimSpace(cli.PythonBinPath) != "":
		argv = []string{cli.PythonBinPath, "-m", "dvc"}
	default:
		argv = []string{"dvc"}
	}
	return append(argv, args...)
}

// Run invokes `dvc <command> <address>` for every target in order. dvc holds
// a repository lock, so targets never run concurrently.
func (r *Runner) Run(ctx context.Context, command string, targets []Target) ([]report.StageResult, report.Summary, error) {
	summary := report.Summary{RunID: r.opts.NewID(), TotalAddresses: len(targets)}
	results := make([]report.StageResult, 0, len(targets))

	pipelines := make(map[string]struct{})
	for _, target := range targets {
		pipelines[target.Pipeline] = struct{}{}
	}
	summary.TotalPipelines = len(pipelines)

	for _, target := range targets {
		if err := ctx.Err(); err != nil {
			return results, summary, err
		}

		result := r.runTarget(ctx, command, target, r.opts.Verbose)
		switch result.Status {
		case report.StatusPassed:
			summary.Passed++
		case report.StatusFailed:
			summary.Failed++
			summary.ExitCode = 1
		default:
			summary.Skipped++
		}
		summary.Duration += result.Duration
		results = append(results, result)
	}

	summary.DurationMS = summary.Duration.Milliseconds()
	return results, summary, nil
}

// Repro runs `dvc repro` for one address, streaming its output.
func (r *Runner) Repro(ctx context.Context, cwd, address string) error {
	return r.runStreaming(ctx, CommandRepro, cwd, address)
}

// Status runs `dvc status` for one address, streaming its output.
func (r *Runner) Status(ctx context.Context, cwd, address string) error {
	return r.runStreaming(ctx, CommandStatus, cwd, address)
}

func (r *Runner) runStreaming(ctx context.Context, command, cwd, address string) error {
	result := r.runTarget(ctx, command, Target{Pipeline: cwd, Dir: cwd, Address: address}, true)
	if result.Status == report.StatusFailed {
		return fmt.Errorf("dvc %s %s exited with status %d: %s", command, address, result.ExitCode, strings.TrimSpace(result.Stderr))
	}
	return nil
}

var resolvedCommandRegex = regexp.MustCompile(`(?m)^>\s*(.+)$`)

// ResolvedCommand asks dvc for the command it would run for address, with
// every template variable substituted. --single-item keeps upstream stages,
// which --force would otherwise plan first, out of the output.
func (r *Runner) ResolvedCommand(ctx context.Context, cwd, address string) (string, error) {
	argv := Invocation(r.opts.DVC, append([]string{CommandRepro}, resolveArgs(address)...)...)
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = r.workingDir(cwd)
	cmd.Env = r.env()

	var stdoutBuf, stderrBuf strings.Builder
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("dvc repro --dry %s: %s: %w", address, simplifyError(stderrBuf.String(), err), err)
	}

	match := resolvedCommandRegex.FindStringSubmatch(stdoutBuf.String())
	if len(match) < 2 {
		return "", fmt.Errorf("dvc repro --dry %s: %w", address, ErrNoResolvedCommand)
	}
	return strings.TrimSpace(match[1]), nil
}

func resolveArgs(address string) []string {
	return []string{"--dry", "--force", "--single-item", address}
}

func (r *Runner) runTarget(ctx context.Context, command string, target Target, stream bool) report.StageResult {
	argv := Invocation(r.opts.DVC, command, target.Address)
	result := report.StageResult{
		Pipeline: target.Pipeline,
		Address:  target.Address,
		Command:  command,
		Argv:     argv,
		DryRun:   r.opts.DryRun,
	}

	logger := ctxlog.FromContext(ctx)
	if r.opts.DryRun {
		logger.Debug("dry run", "argv", strings.Join(argv, " "))
		result.Status = report.StatusSkipped
		return result
	}

	logger.Debug("launching dvc", "argv", strings.Join(argv, " "), "dir", target.Dir)
	start := r.opts.Now()
	err := r.exec(ctx, argv, target.Dir, stream, &result)
	result.Duration = r.opts.Now().Sub(start)
	result.DurationMS = result.Duration.Milliseconds()

	if r.opts.LogDir != "" {
		if logErr := r.writeLog(&result); logErr != nil {
			logger.Warn("write stage log", "address", target.Address, "error", logErr)
		}
	}

	if err != nil {
		result.Status = report.StatusFailed
		result.Stderr = tailLines(result.Stderr, r.opts.TailLines)
		result.Stdout = tailLines(result.Stdout, r.opts.TailLines)
		logger.Debug("dvc failed", "address", target.Address, "exit_code", result.ExitCode)
		return result
	}
	result.Status = report.StatusPassed
	return result
}

func (r *Runner) exec(ctx context.Context, argv []string, dir string, stream bool, result *report.StageResult) error {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = r.workingDir(dir)
	cmd.Env = r.env()

	var stdoutBuf, stderrBuf strings.Builder
	if stream {
		cmd.Stdout = io.MultiWriter(r.opts.Stdout, &stdoutBuf)
		cmd.Stderr = io.MultiWriter(r.opts.Stderr, &stderrBuf)
	} else {
		cmd.Stdout = &stdoutBuf
		cmd.Stderr = &stderrBuf
	}

	err := cmd.Run()
	result.Stdout = stdoutBuf.String()
	result.Stderr = simplifyError(stderrBuf.String(), err)
	result.ExitCode = exitCode(err)
	return err
}

func (r *Runner) workingDir(dir string) string {
	if dir == "" {
		return r.opts.Root
	}
	if !filepath.IsAbs(dir) && r.opts.Root != "" {
		return filepath.Join(r.opts.Root, dir)
	}
	return dir
}

func (r *Runner) env() []string {
	overlay := map[string]string{}
	if r.opts.DVC.PythonPath != "" {
		overlay["PYTHONPATH"] = r.opts.DVC.PythonPath
	}
	return mergeEnv(r.opts.Env, overlay)
}

// LogFileName is the per-address log file written under Options.LogDir.
func LogFileName(address string) string {
	return slug.Make(address) + ".log"
}

func (r *Runner) writeLog(result *report.StageResult) error {
	if err := os.MkdirAll(r.opts.LogDir, 0o755); err != nil {
		return fmt.Errorf("create log dir %q: %w", r.opts.LogDir, err)
	}
	path := filepath.Join(r.opts.LogDir, LogFileName(result.Address))
	body := fmt.Sprintf("$ %s\n%s%s", strings.Join(result.Argv, " "), result.Stdout, result.Stderr)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return fmt.Errorf("write log %q: %w", path, err)
	}
	result.LogFile = path
	return nil
}

func mergeEnv(base []string, overlays ...map[string]string) []string {
	envMap := make(map[string]string, len(base)+len(overlays)*4)
	for _, kv := range base {
		if idx := strings.Index(kv, "="); idx != -1 {
			envMap[kv[:idx]] = kv[idx+1:]
		}
	}
	for _, overlay := range overlays {
		for k, v := range overlay {
			envMap[k] = v
		}
	}
	keys := make([]string, 0, len(envMap))
	for k := range envMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, fmt.Sprintf("%s=%s", k, envMap[k]))
	}
	return out
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	if errors.Is(err, exec.ErrNotFound) {
		return 127
	}
	return 1
}

func tailLines(input string, maxLines int) string {
	if input == "" {
		return ""
	}
	lines := strings.Split(strings.TrimRight(input, "\n"), "\n")
	if len(lines) <= maxLines {
		return strings.Join(lines, "\n")
	}
	return strings.Join(lines[len(lines)-maxLines:], "\n")
}

// simplifyError turns common dvc failures into actionable messages.
func simplifyError(stderr string, err error) string {
	if errors.Is(err, exec.ErrNotFound) {
		return "dvc executable not found; install dvc or set dvc.cli_path / --dvc-cli"
	}
	lower := strings.ToLower(stderr)
	switch {
	case strings.Contains(lower, "no module named dvc"):
		return "python interpreter has no dvc module; run `pip install dvc` in that environment or set dvc.python_bin_path"
	case strings.Contains(lower, "not inside of a dvc repository"):
		return "not a DVC project; run `dvc init` or point --pipeline at a dvc.yaml inside one"
	}
	if stderr == "" && err != nil {
		return err.Error()
	}
	return stderr
}
