// Package appid holds the application identity used for help text, config
// discovery and environment variable prefixes.
package appid

import "strings"

// Identity describes how the binary names itself on disk and in the
// environment.
type Identity struct {
	BinaryName  string
	ConfigName  string
	EnvPrefix   string
	Description string
}

var identity = Identity{
	BinaryName:  "handlecheck",
	ConfigName:  "handlecheck",
	EnvPrefix:   "HANDLECHECK",
	Description: "Check handle availability across domains and social platforms",
}

// Get returns the application identity.
func Get() Identity {
	return identity
}

// EnvVar returns the prefixed environment variable for a config key such as
// "probe.timeout".
func (i Identity) EnvVar(key string) string {
	name := strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(key))
	return i.EnvPrefix + "_" + name
}
