// Package verify checks scaffolded workspace proxies.
//
// For every <name>-proxy directory it reports missing or placeholder
// variables in .env, whether a proxy answers on the configured port's
// /health route, and whether start.sh, claude-config.json and README.md
// exist. A workspace is ready when its .env is complete and every file is
// present; a stopped proxy is reported but does not make it unready.
package verify
