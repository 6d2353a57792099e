package domain

import "strings"

// EndpointKey is the logical name of a webhook.
type EndpointKey string

const (
	EndpointCreateCampaign  EndpointKey = "createCampaign"
	EndpointGetApplications EndpointKey = "getApplications"
	EndpointGetCampaigns    EndpointKey = "getCampaigns"
	EndpointGetStats        EndpointKey = "getStats"
	EndpointUploadResume    EndpointKey = "uploadResume"
	EndpointFindJobs        EndpointKey = "findJobs"
)

// EndpointKeys lists every recognized key in a stable order.
var EndpointKeys = []EndpointKey{
	EndpointCreateCampaign,
	EndpointGetApplications,
	EndpointGetCampaigns,
	EndpointGetStats,
	EndpointUploadResume,
	EndpointFindJobs,
}

// Valid reports whether k is one of the recognized keys.
func (k EndpointKey) Valid() bool {
	for _, known := range EndpointKeys {
		if k == known {
			return true
		}
	}
	return false
}

// Kebab returns the key in kebab-case, e.g. "get-stats".
func (k EndpointKey) Kebab() string {
	return splitCamel(string(k), "-", strings.ToLower)
}

// EnvName returns the environment variable that overrides this key's URL,
// e.g. "WEBHOOK_GET_STATS".
func (k EndpointKey) EnvName() string {
	return "WEBHOOK_" + splitCamel(string(k), "_", strings.ToUpper)
}

func splitCamel(s, sep string, caseFn func(string) string) string {
	var b strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteString(sep)
		}
		b.WriteRune(r)
	}
	return caseFn(b.String())
}
