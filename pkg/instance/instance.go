package instance

import "github.com/monicajeon28/cruiseguide-sub010/pkg/env"

var idEnvVars = []string{"CRUISEGUIDE_INSTANCE_ID", "DYNO", "HOSTNAME"}

// GetID returns the process instance identifier used in startup logs.
func GetID() string {
	return env.First("local", idEnvVars...)
}
