package conf

import "fmt"

type SystemEnvironment string

const (
	DevelopmentEnvironmentEnum SystemEnvironment = "development"
	StagingEnvironmentEnum     SystemEnvironment = "staging"
	ProductionEnvironmentEnum  SystemEnvironment = "production"
)

// SystemEnvironmentEnum is set from the -env flag before InitConfig runs.
var SystemEnvironmentEnum = StagingEnvironmentEnum

// ConfigDir holds the yaml files; tests point it elsewhere.
var ConfigDir = "./conf"

// ParseEnvironment maps a flag value to an environment. Unknown values fall back to staging.
func ParseEnvironment(env string) SystemEnvironment {
	switch env {
	case "development", "dev", "loc":
		return DevelopmentEnvironmentEnum
	case "production", "prod", "mainnet":
		return ProductionEnvironmentEnum
	default:
		return StagingEnvironmentEnum
	}
}

// GetYaml returns the config file path for the current environment
func GetYaml() string {
	return fmt.Sprintf("%s/%s.yaml", ConfigDir, SystemEnvironmentEnum)
}

// IsDevelopment reports whether the service runs with development settings
func IsDevelopment() bool {
	return SystemEnvironmentEnum == DevelopmentEnvironmentEnum
}
