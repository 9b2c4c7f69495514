// Package devserver is a small in-memory implementation of the finwallet
// sync API, used for local development and end-to-end tests of the sync
// engine. State lives in memory and vanishes on restart.
package devserver
