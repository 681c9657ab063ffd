package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"guidregen/internal/config"
	"guidregen/internal/journal"
	"guidregen/internal/logging"
	"guidregen/internal/project"
)

type commandContext struct {
	configFlag  *string
	projectFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, projectFlag *string) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		projectFlag: projectFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.projectFlag != nil && strings.TrimSpace(*c.projectFlag) != "" {
			root, err := config.ExpandPath(strings.TrimSpace(*c.projectFlag))
			if err != nil {
				c.configErr = fmt.Errorf("resolve --project: %w", err)
				return
			}
			cfg.Project.Root = root
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

// openProject returns the configured project on the OS filesystem after
// checking that its asset folder exists.
func (c *commandContext) openProject() (*project.Project, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	p := project.New(afero.NewOsFs(), cfg.Project.Root, cfg.Project.AssetsDir)
	if err := p.CheckLayout(); err != nil {
		return nil, err
	}
	return p, nil
}

// openJournal returns nil when the journal is disabled.
func (c *commandContext) openJournal() (*journal.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.Journal.Enabled {
		return nil, nil
	}
	return journal.Open(cfg)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

// isTerminal reports whether stream is attached to a terminal. Streams that
// are not files (buffers in tests) are not terminals.
func isTerminal(stream any) bool {
	file, ok := stream.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// canPrompt reports whether answers can be read from in. Only files that
// are not terminals (pipes, /dev/null) rule out prompting.
func canPrompt(in io.Reader) bool {
	if _, ok := in.(*os.File); !ok {
		return true
	}
	return isTerminal(in)
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
