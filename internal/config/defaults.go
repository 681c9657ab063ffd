package config

const (
	defaultConfigPath  = "~/.config/guidregen/config.toml"
	defaultProjectRoot = "."
	defaultAssetsDir   = "Assets"
	defaultStateDir    = "~/.local/share/guidregen"
	defaultLogFormat   = "console"
	defaultLogLevel    = "info"

	// RewriteInPlace writes each file as soon as its substitutions are done.
	RewriteInPlace = "inplace"
	// RewriteAtomic stages every rewritten file before renaming any into place.
	RewriteAtomic = "atomic"
)

// DefaultExtensions lists the text-serialized Unity formats that can carry
// asset identifiers.
var DefaultExtensions = []string{
	".meta",
	".mat",
	".anim",
	".prefab",
	".unity",
	".asset",
	".guiskin",
	".fontsettings",
	".controller",
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	extensions := make([]string, len(DefaultExtensions))
	copy(extensions, DefaultExtensions)
	return Config{
		Project: Project{
			Root:       defaultProjectRoot,
			AssetsDir:  defaultAssetsDir,
			Extensions: extensions,
		},
		Rewrite: Rewrite{
			Mode:    RewriteInPlace,
			Confirm: true,
		},
		Paths: Paths{
			StateDir: defaultStateDir,
		},
		Journal: Journal{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
