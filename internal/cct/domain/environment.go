package domain

import "strings"

// Environment gates the development-only bypass paths of the guard and the
// issuance policy. It is passed in explicitly so no bypass depends on a global flag.
type Environment string

const (
	EnvironmentProduction  Environment = "production"
	EnvironmentStaging     Environment = "staging"
	EnvironmentDevelopment Environment = "development"
	EnvironmentTest        Environment = "test"
)

// ParseEnvironment maps a configuration value onto an Environment. Unknown or empty
// values resolve to production.
func ParseEnvironment(value string) Environment {
	switch env := Environment(strings.ToLower(strings.TrimSpace(value))); env {
	case EnvironmentStaging, EnvironmentDevelopment, EnvironmentTest:
		return env
	case "dev", "local":
		return EnvironmentDevelopment
	default:
		return EnvironmentProduction
	}
}

// IsProduction reports whether e is production.
func (e Environment) IsProduction() bool {
	return e == EnvironmentProduction
}

// AllowsMissingToken reports whether guard checks that opt in may pass without a token.
func (e Environment) AllowsMissingToken() bool {
	return e == EnvironmentDevelopment
}

// AllowsCapabilityOverride reports whether caller-supplied capability lists may
// replace the tenant's capabilities at issuance.
func (e Environment) AllowsCapabilityOverride() bool {
	return !e.IsProduction()
}
