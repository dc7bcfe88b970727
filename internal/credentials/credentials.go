// Package credentials resolves the connection secrets substituted into the
// control documents.
package credentials

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/mortie23/tptload/internal/config"
	"github.com/mortie23/tptload/pkg/tptload"
)

// Environment variable names.
const (
	EnvDDLUsername     = "DDL_USERNAME"
	EnvDDLPassword     = "DDL_PASSWORD"
	EnvTargetUsername  = "TARGET_USERNAME"
	EnvTargetPassword  = "TARGET_PASSWORD"
	EnvDDLHost         = "DDL_HOST"
	EnvTargetHost      = "TARGET_HOST"
	EnvDDLLogonMech    = "DDL_LOGON_MECH"
	EnvTargetLogonMech = "TARGET_LOGON_MECH"
	EnvWorkingDatabase = "WORKING_DATABASE"
)

// Defaults returns the built-in fallback values.
func Defaults() tptload.Credentials {
	return tptload.Credentials{
		DDLHost:         "tdvm",
		TargetHost:      "tdvm",
		DDLLogonMech:    "LDAP",
		TargetLogonMech: "LDAP",
		WorkingDatabase: "python_db",
	}
}

// LoadEnvFiles loads .env files into the process environment without
// overriding variables that are already set. Missing files are skipped
// unless required.
func LoadEnvFiles(files []string, required bool) error {
	for _, f := range files {
		if _, err := os.Stat(f); os.IsNotExist(err) {
			if required {
				return fmt.Errorf("%w: env file %s not found", tptload.ErrInvalidConfig, f)
			}
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("%w: failed to load env file %s: %v", tptload.ErrInvalidConfig, f, err)
		}
	}
	return nil
}

// EnvProvider reads credentials from the environment, falling back to the
// connection section of the config and then to Defaults.
type EnvProvider struct {
	connection config.ConnectionConfig
	lookup     func(string) (string, bool)
}

var _ tptload.CredentialProvider = (*EnvProvider)(nil)

// NewEnvProvider creates a provider over the process environment.
func NewEnvProvider(connection config.ConnectionConfig) *EnvProvider {
	return &EnvProvider{connection: connection, lookup: os.LookupEnv}
}

// Credentials never fails for the environment provider; empty usernames and
// passwords are passed through for the load utility to reject.
func (p *EnvProvider) Credentials() (tptload.Credentials, error) {
	d := Defaults()
	return tptload.Credentials{
		DDLUsername:     p.get(EnvDDLUsername, p.connection.DDLUsername, d.DDLUsername),
		DDLPassword:     p.get(EnvDDLPassword, "", d.DDLPassword),
		TargetUsername:  p.get(EnvTargetUsername, p.connection.TargetUsername, d.TargetUsername),
		TargetPassword:  p.get(EnvTargetPassword, "", d.TargetPassword),
		DDLHost:         p.get(EnvDDLHost, p.connection.DDLHost, d.DDLHost),
		TargetHost:      p.get(EnvTargetHost, p.connection.TargetHost, d.TargetHost),
		DDLLogonMech:    p.get(EnvDDLLogonMech, p.connection.DDLLogonMech, d.DDLLogonMech),
		TargetLogonMech: p.get(EnvTargetLogonMech, p.connection.TargetLogonMech, d.TargetLogonMech),
		WorkingDatabase: p.get(EnvWorkingDatabase, p.connection.WorkingDatabase, d.WorkingDatabase),
	}, nil
}

func (p *EnvProvider) get(key, configured, fallback string) string {
	if v, ok := p.lookup(key); ok {
		return v
	}
	if configured != "" {
		return configured
	}
	return fallback
}
