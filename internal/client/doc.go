// Package client is the composition root of the sync client: it builds the
// storage layer, the HTTP adapter, the network monitor, the engine and the
// autosync scheduler from configuration, and owns their lifecycle.
package client
