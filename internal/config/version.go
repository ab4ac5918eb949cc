package config

// Version is the auditkeeper binary version.
// Set at build time via: -ldflags "-X github.com/learnhub/auditkeeper/internal/config.Version=<tag>"
// Defaults to "dev" when built without ldflags.
var Version = "dev"
