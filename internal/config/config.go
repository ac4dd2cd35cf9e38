package config

type Config interface {
	EnvConfig
	StorageConfig
}

type mainConfig struct {
	EnvVars
	Storage
}

func New() Config {
	return mainConfig{}
}
