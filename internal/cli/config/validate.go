package config

import "fmt"

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Profile == "" {
		return fmt.Errorf("profile is required")
	}
	if c.ImportSuffix == "" {
		return fmt.Errorf("import_suffix must not be empty")
	}
	for _, grant := range c.Dashboard.Permissions {
		if grant.Principal == "" {
			return fmt.Errorf("dashboard permission grant without principal")
		}
		if len(grant.Actions) == 0 {
			return fmt.Errorf("dashboard permission grant for %s lists no actions", grant.Principal)
		}
	}
	return nil
}
