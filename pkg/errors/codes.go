package errors

// -----------------------------------------------------------------------------
// Configuration Error Codes
// -----------------------------------------------------------------------------

const (
	// ErrConfigNotFound indicates the configuration file does not exist.
	ErrConfigNotFound = "CONFIG_NOT_FOUND"

	// ErrConfigParseFailed indicates the configuration file could not be parsed.
	ErrConfigParseFailed = "CONFIG_PARSE_FAILED"

	// ErrConfigInvalid indicates configuration values are invalid.
	ErrConfigInvalid = "CONFIG_INVALID"

	// ErrConfigReadFailed indicates the config file exists but is not readable.
	ErrConfigReadFailed = "CONFIG_READ_FAILED"

	// ErrConfigWriteFailed indicates the config file could not be written.
	ErrConfigWriteFailed = "CONFIG_WRITE_FAILED"
)

// -----------------------------------------------------------------------------
// Chart Error Codes
// -----------------------------------------------------------------------------

const (
	// ErrChartInvalidConfig indicates the chart constants violate an invariant
	// (e.g. max <= min, or a non-positive derived page height).
	ErrChartInvalidConfig = "CHART_INVALID_CONFIG"

	// ErrChartUnknownPreset indicates the requested preset does not exist.
	ErrChartUnknownPreset = "CHART_UNKNOWN_PRESET"

	// ErrChartNoSamples indicates a sample count below one was requested.
	ErrChartNoSamples = "CHART_NO_SAMPLES"
)

// -----------------------------------------------------------------------------
// Render Error Codes
// -----------------------------------------------------------------------------

const (
	// ErrRenderUnknownFormat indicates the output format is not supported.
	ErrRenderUnknownFormat = "RENDER_UNKNOWN_FORMAT"

	// ErrRenderEncodeFailed indicates the page could not be serialized.
	ErrRenderEncodeFailed = "RENDER_ENCODE_FAILED"
)

// -----------------------------------------------------------------------------
// Output Error Codes
// -----------------------------------------------------------------------------

const (
	// ErrOutputDirCreateFailed indicates the output directory could not be created.
	ErrOutputDirCreateFailed = "OUTPUT_DIR_CREATE_FAILED"

	// ErrOutputWriteFailed indicates the output file could not be written.
	ErrOutputWriteFailed = "OUTPUT_WRITE_FAILED"

	// ErrOutputRootUnknown indicates no downloads directory could be resolved.
	ErrOutputRootUnknown = "OUTPUT_ROOT_UNKNOWN"
)

// -----------------------------------------------------------------------------
// Storage Error Codes
// -----------------------------------------------------------------------------

const (
	// ErrStorageConnectFailed indicates the object storage client could not be created.
	ErrStorageConnectFailed = "STORAGE_CONNECT_FAILED"

	// ErrStorageBucketFailed indicates the bucket could not be found or created.
	ErrStorageBucketFailed = "STORAGE_BUCKET_FAILED"

	// ErrStorageUploadFailed indicates the upload of an artifact failed.
	ErrStorageUploadFailed = "STORAGE_UPLOAD_FAILED"
)

// -----------------------------------------------------------------------------
// Command Error Codes
// -----------------------------------------------------------------------------

const (
	// ErrCommandNotFound indicates the shell command does not exist.
	ErrCommandNotFound = "COMMAND_NOT_FOUND"

	// ErrCommandMissingArgs indicates required arguments are missing.
	ErrCommandMissingArgs = "COMMAND_MISSING_ARGS"

	// ErrCommandInvalidArg indicates an argument value is invalid.
	ErrCommandInvalidArg = "COMMAND_INVALID_ARG"
)

// -----------------------------------------------------------------------------
// Network and Internal Error Codes
// -----------------------------------------------------------------------------

const (
	// ErrServerStartFailed indicates the HTTP server could not bind.
	ErrServerStartFailed = "SERVER_START_FAILED"

	// ErrScheduleFailed indicates the periodic job could not be scheduled.
	ErrScheduleFailed = "SCHEDULE_FAILED"

	// ErrInternalCanceled indicates a generation was canceled before completion.
	ErrInternalCanceled = "INTERNAL_CANCELED"

	// ErrInternalPanic indicates a panic was recovered.
	ErrInternalPanic = "INTERNAL_PANIC"
)
