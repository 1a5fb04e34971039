package server

const (
	OperationList           = "list"
	OperationUpload         = "upload"
	OperationCreateFolder   = "create_folder"
	OperationDeleteFile     = "delete_file"
	OperationDeleteFolder   = "delete_folder"
	OperationRename         = "rename"
	OperationMove           = "move"
	OperationDownload       = "download"
	OperationDownloadFolder = "download_folder"
	OperationChangeConfig   = "change_config"

	LogFileUploaded    = "File uploaded"
	LogFolderCreated   = "Folder created"
	LogFileDeleted     = "File deleted"
	LogFolderDeleted   = "Folder deleted"
	LogEntryRenamed    = "File or folder renamed"
	LogEntryMoved      = "File or folder moved"
	LogConfigChanged   = "Config changed"
	LogRequestStarted  = "Request started"
	LogRequestFinished = "Request finished"

	QueryParamPath      = "path"
	QueryParamAdminHash = "admin_hash"
	FormParamFile       = "file"
	FormParamName       = "name"
	FormParamPath       = "path"
	FormParamDest       = "destination"

	// метка метрик для запросов мимо всех маршрутов.
	PatternUnmatched = "unmatched"

	HealthResponse = "ok"
	AllowedMethods = "GET, POST, OPTIONS"
	AllowedHeaders = "Content-Type"
)
