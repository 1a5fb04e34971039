package domain

const (
	PathEmpty           = ""
	PathCurrent         = "."
	PathRoot            = "/"
	PathTraversalPrefix = ".."
	HiddenFilePrefix    = "."
	TempFilePattern     = ".upload-*.tmp"
	ExtensionZip        = ".zip"
	MIMEOctetStream     = "application/octet-stream"
	MIMEZip             = "application/zip"
	MIMEJSON            = "application/json"
	MIMEText            = "text/plain; charset=utf-8"
)
