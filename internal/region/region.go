// Package region maps the node-wide legacy region alias to a concrete S3
// region name.
package region

import "strings"

// Default is the empty region: the storage client picks its own default
// (us-east-1 for AWS).
const Default = ""

// aliases is the closed table of historical spellings. us-east maps to
// Default because buckets there never needed an explicit region.
var aliases = map[string]string{
	"us-east":        Default,
	"us-east-1":      Default,
	"us-west":        "us-west-1",
	"us-west-1":      "us-west-1",
	"us-west-2":      "us-west-2",
	"ap-southeast":   "ap-southeast-1",
	"ap-southeast-1": "ap-southeast-1",
	"ap-southeast-2": "ap-southeast-2",
	"ap-northeast":   "ap-northeast-1",
	"ap-northeast-1": "ap-northeast-1",
	"eu-west":        "eu-west-1",
	"eu-west-1":      "eu-west-1",
	"eu-central":     "eu-central-1",
	"eu-central-1":   "eu-central-1",
	"sa-east":        "sa-east-1",
	"sa-east-1":      "sa-east-1",
	"cn-north":       "cn-north-1",
	"cn-north-1":     "cn-north-1",
}

// Resolve returns explicit when it is set. Otherwise it looks up the global
// alias (case-insensitive). Unknown aliases resolve to Default, not an error.
func Resolve(explicit, globalAlias string) string {
	if explicit != "" {
		return explicit
	}
	if globalAlias == "" {
		return Default
	}
	return aliases[strings.ToLower(globalAlias)]
}
