package deploy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-git/go-billy/v5/osfs"

	"instaforce.app/engine/common/logger"
	"instaforce.app/engine/internal/model"
)

const defaultWait = 60

var ErrPrecondition = errors.New("deploy precondition failed")

// Config locates the sf CLI and the staging area.
type Config struct {
	Executable  string // path or name on $PATH
	TargetAlias string // org alias passed to -o
	WorkDir     string // parent of the per-run staging directories
	Wait        int    // minutes passed to -w; 0 = 60
}

// Deployer stages generated files and pushes them with the sf CLI.
type Deployer struct {
	cfg      Config
	runner   Runner
	lookPath func(string) (string, error)
}

func New(cfg Config, runner Runner) *Deployer {
	if runner == nil {
		runner = ExecRunner{}
	}
	if cfg.Wait <= 0 {
		cfg.Wait = defaultWait
	}
	return &Deployer{cfg: cfg, runner: runner, lookPath: exec.LookPath}
}

func (d *Deployer) Name() string { return "deploy" }

// CheckPreconditions verifies the executable and target alias. It does no
// file I/O beyond locating the executable.
func (d *Deployer) CheckPreconditions() error {
	if strings.TrimSpace(d.cfg.Executable) == "" {
		return fmt.Errorf("%w: no deploy executable configured", ErrPrecondition)
	}
	if _, err := d.lookPath(d.cfg.Executable); err != nil {
		return fmt.Errorf("%w: deploy executable %q not found: %v", ErrPrecondition, d.cfg.Executable, err)
	}
	if strings.TrimSpace(d.cfg.TargetAlias) == "" {
		return fmt.Errorf("%w: target org alias is not set", ErrPrecondition)
	}
	return nil
}

// RunDir returns the absolute staging directory for runID.
func (d *Deployer) RunDir(runID string) (string, error) {
	if runID == "" || runID == "." || runID == ".." || strings.ContainsAny(runID, `/\`) {
		return "", fmt.Errorf("invalid run id %q", runID)
	}
	workDir := d.cfg.WorkDir
	if workDir == "" {
		workDir = "deploy"
	}
	abs, err := filepath.Abs(filepath.Join(workDir, runID))
	if err != nil {
		return "", fmt.Errorf("resolving staging directory: %w", err)
	}
	return abs, nil
}

// Clean removes runDir and recreates it empty.
func (d *Deployer) Clean(ctx context.Context, runDir string) error {
	if _, err := os.Stat(runDir); err == nil {
		slog.InfoContext(ctx, "removing existing staging directory", "dir", runDir)
		if err := os.RemoveAll(runDir); err != nil {
			return fmt.Errorf("removing staging directory: %w", err)
		}
	}
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return fmt.Errorf("creating staging directory: %w", err)
	}
	return nil
}

// Command returns the argv used to deploy runDir.
func (d *Deployer) Command(runDir string) []string {
	return []string{
		d.cfg.Executable, "project", "deploy", "start",
		"-o", d.cfg.TargetAlias,
		"-d", runDir,
		"-w", strconv.Itoa(d.cfg.Wait),
		"--json",
	}
}

// Deploy validates, stages and deploys files for one run. Precondition and
// validation failures are returned as errors before anything is written. A
// CLI that exits non-zero yields a status with Success false and no error.
func (d *Deployer) Deploy(ctx context.Context, runID string, files []model.GeneratedFile) (model.DeployStatus, error) {
	start := time.Now()

	if err := d.CheckPreconditions(); err != nil {
		return model.DeployStatus{}, err
	}

	warnings, err := ValidateBatch(files)
	if err != nil {
		return model.DeployStatus{}, err
	}
	for _, w := range warnings {
		slog.WarnContext(ctx, "staging file warning", "warning", w)
	}

	runDir, err := d.RunDir(runID)
	if err != nil {
		return model.DeployStatus{}, err
	}
	if err := d.Clean(ctx, runDir); err != nil {
		return model.DeployStatus{}, err
	}

	written, err := Stage(osfs.New(runDir), files)
	if err != nil {
		return model.DeployStatus{}, fmt.Errorf("staging files: %w", err)
	}
	slog.InfoContext(ctx, "files staged", "dir", runDir, "count", len(written))

	argv := d.Command(runDir)
	result, err := d.runner.Run(ctx, argv[0], argv[1:]...)
	if err != nil {
		return model.DeployStatus{}, err
	}

	status := model.DeployStatus{
		Success:        result.ExitCode == 0,
		ReturnCode:     result.ExitCode,
		Stdout:         result.Stdout,
		Stderr:         result.Stderr,
		ParsedResponse: parseResponse(result.Stdout),
		WrittenFiles:   written,
		DeployCommand:  strings.Join(argv, " "),
		Message:        model.DeployMessageFailure,
	}
	if status.Success {
		status.Message = model.DeployMessageSuccess
	}

	slog.InfoContext(ctx, "deploy command finished",
		"duration_ms", time.Since(start).Milliseconds(),
		"exit_code", result.ExitCode,
		"success", status.Success,
		"stderr", logger.Truncate(result.Stderr, 500))

	return status, nil
}

func (d *Deployer) Process(ctx context.Context, state *model.State) (model.Update, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "instaforce.deploy",
	})
	if !state.Has(model.KeyFiles) {
		return model.Update{}, fmt.Errorf("%w: %s", model.ErrMissingInput, model.KeyFiles)
	}

	status, err := d.Deploy(ctx, state.RunID, state.Files)
	if err != nil {
		return model.Update{}, err
	}
	return model.DeployStatusUpdate(status), nil
}

func parseResponse(stdout string) any {
	var v any
	if err := json.Unmarshal([]byte(stdout), &v); err != nil {
		return nil
	}
	return v
}
