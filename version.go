package annocat

// Version reports the module version. Overridable at build time via
// -ldflags "-X github.com/goliatone/go-annocat.Version=...".
var Version = "0.1.0"
