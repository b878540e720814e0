package res

const (
	AppName       = "librarypicker"
	DisplayName   = "Library Picker"
	AppVersion    = "0.1.0"
	AppVersionTag = "v" + AppVersion
	ConfigFile    = "config.toml"
	GithubURL     = "https://github.com/dweymouth/librarypicker"
)
