package ir

// IRVersion is bumped whenever the normalized tree shape changes. It is part
// of every fingerprint domain and of each JSON envelope the CLI writes.
const IRVersion = "1"

// EngineVersion is the querygate release reported by --version.
const EngineVersion = "0.3.0"
