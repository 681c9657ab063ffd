package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"guidregen/internal/testsupport"
)

const (
	matGUID     = "d0000000000000000000000000000001"
	prefabGUID  = "d0000000000000000000000000000002"
	folderGUID  = "d0000000000000000000000000000003"
	builtinGUID = "0000000000000000f000000000000000"
)

type cliTestEnv struct {
	fixture    *testsupport.Fixture
	root       string
	stateDir   string
	configPath string
}

func setupCLITestEnv(t *testing.T, extraConfig string) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	t.Setenv("GUIDREGEN_PROJECT", "")
	root := filepath.Join(base, "Game")
	stateDir := filepath.Join(base, "state")

	fx := testsupport.NewProjectOn(t, afero.NewOsFs(), root)
	fx.Folder("Props", folderGUID)
	fx.Asset("Props/Wood.mat", matGUID, "Material:\n  m_Shader: "+testsupport.Ref(46, builtinGUID, 0)+"\n")
	fx.Asset("Props/Crate.prefab", prefabGUID, "MeshRenderer:\n  m_Materials:\n  - "+testsupport.Ref(2100000, matGUID, 2)+"\n")

	configPath := filepath.Join(base, "guidregen.toml")
	content := fmt.Sprintf("[project]\nroot = %q\n\n[paths]\nstate_dir = %q\n\n[logging]\nlevel = \"error\"\n%s", root, stateDir, extraConfig)
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	return &cliTestEnv{fixture: fx, root: root, stateDir: stateDir, configPath: configPath}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	return runCLIWithInput(t, args, configPath, strings.NewReader(""))
}

func runCLIWithInput(t *testing.T, args []string, configPath string, stdin io.Reader) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(stdin)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
