package generation

import "time"

// Config holds settings for the generation pipeline.
type Config struct {
	// WorkDir is where per-job scratch directories are created. Empty uses the OS temp dir.
	WorkDir string `mapstructure:"work_dir" default:""`
	// TargetRoot is the default install destination when a job names none.
	TargetRoot string `mapstructure:"target_root" default:""`
	// LogPath is the extraction log file. Relative paths resolve against the target root.
	LogPath string `mapstructure:"log_path" default:"extraction_log.json"`
	// PackageName is the file name the rebuild tool writes into the build directory.
	PackageName string `mapstructure:"package_name" default:"pak_mod_dir.vpk"`
	// Publish uploads each built package to object storage when storage is configured.
	Publish bool `mapstructure:"publish" default:"false"`
	// ContentDepth bounds the search for index.txt inside a downloaded archive.
	ContentDepth int `mapstructure:"content_depth" default:"3"`
}

// ToolsConfig locates the external archive tool.
type ToolsConfig struct {
	// Path is the archive tool executable. It must accept "unpack <archive> <dest>" and "pack <src> <out>".
	Path string `mapstructure:"path" default:"vpktool"`
	// TimeoutSeconds bounds one tool invocation.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"600"`
}

// Timeout returns the per-invocation limit.
func (c ToolsConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 10 * time.Minute
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c Config) contentDepth() int {
	if c.ContentDepth <= 0 {
		return 3
	}
	return c.ContentDepth
}

func (c Config) packageName() string {
	if c.PackageName == "" {
		return "pak_mod_dir.vpk"
	}
	return c.PackageName
}
