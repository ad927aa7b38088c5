package config

const (
	defaultDataDir             = "~/.local/share/vidqueue"
	defaultLogDir              = "~/.local/share/vidqueue/logs"
	defaultSettingsFileName    = "settings.json"
	defaultAPIKeysFileName     = "api_keys.txt"
	defaultLinksFileName       = "links.txt"
	defaultLockFileName        = "vidqueue.lock"
	defaultSaveDirName         = "Downloads"
	defaultBind                = "127.0.0.1:5000"
	defaultCredentialBackend   = CredentialBackendFile
	defaultCredentialFileName  = "users.txt"
	defaultCredentialTimeout   = 10
	defaultLLMBaseURL          = "https://generativelanguage.googleapis.com/v1beta/openai/chat/completions"
	defaultLLMTimeoutSeconds   = 30
	defaultLLMRetryAttempts    = 1
	defaultLLMProbeTokens      = 5
	defaultLLMRenameTokens     = 40
	defaultDownloaderBinary    = "yt-dlp"
	defaultAudioCodec          = "mp3"
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultAdminName           = "vidqueue"
	defaultAdminBio            = "Paste links, pick a quality, press start."
	defaultNoCheckCertificate  = true
	defaultRestrictFilenames   = true
	defaultNotificationTimeout = 10
)

// DefaultLLMModels is the model priority list probed in order.
var DefaultLLMModels = []string{"gemma-3-27b-it", "gemini-1.5-flash"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Server: Server{
			Bind: defaultBind,
		},
		Credentials: Credentials{
			Backend:        defaultCredentialBackend,
			TimeoutSeconds: defaultCredentialTimeout,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Models:         append([]string(nil), DefaultLLMModels...),
			TimeoutSeconds: defaultLLMTimeoutSeconds,
			RetryAttempts:  defaultLLMRetryAttempts,
			ProbeTokens:    defaultLLMProbeTokens,
			RenameTokens:   defaultLLMRenameTokens,
		},
		Downloader: Downloader{
			Binary:             defaultDownloaderBinary,
			NoCheckCertificate: defaultNoCheckCertificate,
			RestrictFilenames:  defaultRestrictFilenames,
			AudioCodec:         defaultAudioCodec,
		},
		Admin: Admin{
			Name: defaultAdminName,
			Bio:  defaultAdminBio,
		},
		Notifications: Notifications{
			RequestTimeoutSeconds: defaultNotificationTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
