package config

const (
	defaultLogLevel               = "info"
	defaultLogFormat              = "console"
	defaultMaxReplacementDistance = 10
	defaultSmartThreshold         = 40
	defaultStackMode              = "auto"
	defaultSideMode               = "disabled"
	defaultReportPath             = "~/.local/share/fieldstack/report.db"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
		Correction: Correction{
			MaxReplacementDistance: defaultMaxReplacementDistance,
		},
		Stacking: Stacking{
			Mode:           defaultStackMode,
			SmartThreshold: defaultSmartThreshold,
			AudioMode:      defaultSideMode,
			EFMMode:        defaultSideMode,
		},
		Report: Report{
			Path: defaultReportPath,
		},
	}
}
