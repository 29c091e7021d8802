package cryptex

// Version is the current release of the library, reported as the
// instrumentation version on engine telemetry.
const Version = "0.1.0"
