package weft

// Version is the release of the weft module, overridden at link time by release builds.
var Version = "0.4.0-dev"
