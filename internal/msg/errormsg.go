package msg

// uploading
const (
	// FailedToUpload indicates the upload failure
	FailedToUpload = "failed to upload build archive"
	// UploadingTimeout is the message to warn the user that the upload reached the timeout.
	UploadingTimeout = `Failed to upload the build archive because it took too long. You can raise the limit with upload.timeout or --upload-timeout.`
)

// cmd setting
const (
	// EmptyUser asks user to type a user name
	EmptyUser = "you need to type a user name"
	// InvalidKeyFile indicates the private key could not be read
	InvalidKeyFile = "unable to read private key file %s"
	// EmptyCredentials indicates no credentials
	EmptyCredentials = "no credentials available"
	// MissingAuthMethod indicates that neither a key, a password nor an ssh-agent is available
	MissingAuthMethod = "no SSH authentication method available. Set DEPLOYCTL_SSH_KEY or DEPLOYCTL_SSH_PASSWORD, run 'deployctl configure', or start an ssh-agent"
)

// config settings
const (
	// MissingConfigFile indicates no config file
	MissingConfigFile = "no config file was provided"
	// InvalidDeployConfig indicates it's not a valid deploy config
	InvalidDeployConfig = "invalid deploy config, which is either malformed or corrupt"
	// MissingServerAddress indicates no server address was set anywhere
	MissingServerAddress = "no server address set. Use --server, the DEPLOYCTL_SERVER environment variable or server.address in your config"
	// MissingBuildDir indicates an empty buildDir
	MissingBuildDir = "no build directory specified"
	// UnknownUploadProvider indicates an unsupported upload provider
	UnknownUploadProvider = "unknown upload provider '%s', must be one of [%s]"
	// UnknownScriptTemplate indicates an unsupported script template
	UnknownScriptTemplate = "unknown script template '%s', must be one of [%s]"
	// UnknownArchiveFormat indicates an unsupported archive format
	UnknownArchiveFormat = "unknown archive format '%s', must be one of [tgz, zip]"
	// InvalidPort indicates an out of range SSH port
	InvalidPort = "invalid SSH port %d"
	// InvalidTimeout indicates a negative upload timeout
	InvalidTimeout = "upload timeout must not be negative"
	// InvalidRetries indicates a negative number of retries
	InvalidRetries = "upload retries must not be negative"
)
