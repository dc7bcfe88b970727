package tptload

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success (including runs where individual tables failed)
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess      = 0  // Run completed, see summary for per-table outcomes
	ExitGeneralError = 1  // Unknown or unclassified error, or interrupted run
	ExitUsageError   = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic        = 3  // Internal panic (unexpected crash)
	ExitConfigError  = 10 // Missing or invalid configuration, template or data directory
)

const (
	// ConfigFileName is the project configuration file looked up in the project directory.
	ConfigFileName = "tptload.yaml"

	// DefaultExecutable is the external bulk-load utility.
	DefaultExecutable = "tbuild"

	// DefaultScriptFlag precedes the stage script path on the tbuild command line.
	DefaultScriptFlag = "-f"

	// DefaultVarsFlag precedes the job variables path on the tbuild command line.
	DefaultVarsFlag = "-v"

	// DefaultDataDir is the directory scanned for data files.
	DefaultDataDir = "data"

	// DefaultDataPattern selects the data files inside the data directory.
	DefaultDataPattern = "*.csv"

	// DefaultScriptsDir receives generated control documents. It is excluded
	// from version control by a generated .gitignore.
	DefaultScriptsDir = "render_tmp"

	// DefaultLogsDir receives per-stage log artifacts and the run log.
	DefaultLogsDir = "logs"

	// DefaultLogFile is the run log written inside the logs directory.
	DefaultLogFile = "tptload.log"

	// DefaultLogLevel is the minimum level written to the run log.
	DefaultLogLevel = "info"

	// DefaultHistoryFile is the run history database inside the logs directory.
	DefaultHistoryFile = "history.db"

	// VarsExtension is the file extension of generated job variable documents.
	VarsExtension = ".vars"

	// ScriptExtension is the file extension of generated stage scripts.
	ScriptExtension = ".script"
)

// DefaultStages is the stage sequence used when loader.stages is not configured.
func DefaultStages() []Stage {
	return []Stage{StageDrop, StageCreate, StageLoad}
}
