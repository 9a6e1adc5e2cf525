package shared

// Process exit codes. Anything not mapped explicitly exits 1.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitConfigError = 2
	ExitPathMissing = 3
	ExitAuthFailed  = 4
	ExitDeployError = 5
)
