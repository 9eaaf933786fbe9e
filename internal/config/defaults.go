package config

const (
	defaultStagingDir      = "~/.cache/imagemill/staging"
	defaultOutputDir       = "~/Pictures/imagemill"
	defaultLogDir          = "~/.local/share/imagemill/logs"
	defaultFormat          = "jpeg"
	defaultQuality         = 0.9
	defaultResizeMode      = "scale"
	defaultScale           = 1.0
	defaultPreviewSize     = 256
	defaultPollInterval    = 2
	defaultZipName         = "converted_images.zip"
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
	defaultNotifyTimeout   = 10
	defaultBatchMinItems   = 2
	defaultBatchMinSeconds = 30
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			OutputDir:  defaultOutputDir,
			LogDir:     defaultLogDir,
		},
		Convert: Convert{
			Format:     defaultFormat,
			Quality:    defaultQuality,
			ResizeMode: defaultResizeMode,
			Scale:      defaultScale,
			KeepAspect: true,
		},
		Intake: Intake{
			Previews:    true,
			PreviewSize: defaultPreviewSize,
		},
		Workflow: Workflow{
			MaxConcurrent: 0,
			PollInterval:  defaultPollInterval,
		},
		Export: Export{
			DownloadDelayMS: 0,
			ZipName:         defaultZipName,
		},
		Notifications: Notifications{
			RequestTimeout:  defaultNotifyTimeout,
			Batch:           true,
			Errors:          true,
			BatchMinItems:   defaultBatchMinItems,
			BatchMinSeconds: defaultBatchMinSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
