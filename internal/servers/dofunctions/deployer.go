package dofunctions

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// FunctionPath is the package/action every deployment is published as
const FunctionPath = "sample/hello"

// ErrFileNotFound is returned when the source file does not exist
var ErrFileNotFound = errors.New("file not found")

// DeployRequest describes one deployment
type DeployRequest struct {
	Path         string
	Namespace    string
	Region       string
	Dependencies []string
}

// Deployment is a successfully published function
type Deployment struct {
	URL         string `json:"url"`
	Namespace   string `json:"namespace"`
	NamespaceID string `json:"namespace_id"`
	Function    string `json:"function"`
	Output      string `json:"output"`
}

// Deployer publishes a single Python file as a DigitalOcean Function via doctl
type Deployer struct {
	runner    Runner
	timeout   time.Duration
	logger    zerolog.Logger
	tempRoot  string
	projectID func() string
}

// NewDeployer creates a deployer. Each Deploy call is bounded by timeout.
func NewDeployer(runner Runner, timeout time.Duration, logger zerolog.Logger) *Deployer {
	return &Deployer{
		runner:    runner,
		timeout:   timeout,
		logger:    logger,
		projectID: newProjectID,
	}
}

func newProjectID() string {
	return "mcp-func-" + strings.ReplaceAll(uuid.New().String(), "-", "")[:6]
}

// Deploy runs the full doctl sequence. The temporary project directory is
// removed whether or not the deployment succeeds.
func (d *Deployer) Deploy(ctx context.Context, req DeployRequest) (Deployment, error) {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	logger := d.logger.With().
		Str("path", req.Path).
		Str("namespace", req.Namespace).
		Str("region", req.Region).
		Logger()

	info, err := os.Stat(req.Path)
	if err != nil || info.IsDir() {
		return Deployment{}, fmt.Errorf("%w: %s", ErrFileNotFound, req.Path)
	}

	if _, err := d.runner.Run(ctx, "", "account", "get"); err != nil {
		return Deployment{}, fmt.Errorf("doctl not installed or not authenticated, run 'doctl auth init': %w", err)
	}

	if _, err := d.runner.Run(ctx, "", "serverless", "install"); err != nil {
		return Deployment{}, fmt.Errorf("failed to install serverless support: %w", err)
	}

	namespaceID, err := d.resolveNamespace(ctx, req.Namespace, req.Region)
	if err != nil {
		return Deployment{}, fmt.Errorf("namespace %s: %w", req.Namespace, err)
	}
	logger.Debug().Str("namespace_id", namespaceID).Msg("Namespace resolved")

	tmpDir, err := os.MkdirTemp(d.tempRoot, "doctl-serverless-")
	if err != nil {
		return Deployment{}, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	projectID := d.projectID()
	if _, err := d.runner.Run(ctx, tmpDir, "serverless", "init", "--language", "python", projectID); err != nil {
		return Deployment{}, fmt.Errorf("failed to create project: %w", err)
	}
	projectPath := filepath.Join(tmpDir, projectID)

	targetDir := filepath.Join(projectPath, "packages", "sample", "hello")
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return Deployment{}, fmt.Errorf("failed to create function dir: %w", err)
	}
	if err := copyFile(req.Path, filepath.Join(targetDir, "__main__.py")); err != nil {
		return Deployment{}, fmt.Errorf("failed to copy %s: %w", req.Path, err)
	}
	if len(req.Dependencies) > 0 {
		requirements := strings.Join(req.Dependencies, "\n") + "\n"
		if err := os.WriteFile(filepath.Join(targetDir, "requirements.txt"), []byte(requirements), 0o644); err != nil {
			return Deployment{}, fmt.Errorf("failed to write requirements.txt: %w", err)
		}
	}

	if _, err := d.runner.Run(ctx, "", "serverless", "connect", namespaceID); err != nil {
		return Deployment{}, fmt.Errorf("failed to connect to namespace: %w", err)
	}

	deployed, err := d.runner.Run(ctx, projectPath, "serverless", "deploy", ".")
	if err != nil {
		return Deployment{}, fmt.Errorf("deployment failed: %w", err)
	}

	url, err := d.runner.Run(ctx, "", "serverless", "fn", "get", FunctionPath, "--url")
	if err != nil || url.Stdout == "" {
		if err == nil {
			err = errors.New("empty URL")
		}
		return Deployment{}, fmt.Errorf("function deployed but URL lookup failed (try 'doctl serverless fn get %s --url'): %w", FunctionPath, err)
	}

	logger.Info().Str("url", url.Stdout).Msg("Function deployed")

	return Deployment{
		URL:         url.Stdout,
		Namespace:   req.Namespace,
		NamespaceID: namespaceID,
		Function:    FunctionPath,
		Output:      deployed.Stdout,
	}, nil
}

// resolveNamespace returns the ID of the namespace labelled (or identified by)
// name, creating it in region when none exists
func (d *Deployer) resolveNamespace(ctx context.Context, name, region string) (string, error) {
	listed, err := d.runner.Run(ctx, "", "serverless", "namespaces", "list", "--format", "ID,Label")
	if err != nil {
		return "", fmt.Errorf("failed to list namespaces: %w", err)
	}

	for _, line := range strings.Split(listed.Stdout, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 || fields[0] == "ID" {
			continue
		}
		if fields[0] == name || strings.Join(fields[1:], " ") == name {
			return fields[0], nil
		}
	}

	if _, err := d.runner.Run(ctx, "", "serverless", "namespaces", "create", "--label", name, "--region", region); err != nil {
		return "", fmt.Errorf("failed to create namespace: %w", err)
	}
	return name, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
