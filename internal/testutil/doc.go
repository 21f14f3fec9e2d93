// Package testutil holds helpers shared by the integration tests: a temp
// project writer and a harness that runs the app the way the binary does.
package testutil
