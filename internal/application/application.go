package application

const (
	// AppName is the application name used for directories and identification
	AppName = "ghsync"

	// AppExeName is the executable name (without extension)
	AppExeName = "ghsync"
)
