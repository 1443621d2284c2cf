// Package cluster provides the DC/OS cluster client used by pre-flight checks.
//
// Configuration lives in a Store. The FileStore is compatible with the DC/OS
// CLI's dcos.toml so a session token negotiated by shakedown is visible to
// the dcos CLI and the other way round. The Client reads the cluster URL, TLS
// verification flag and session token from the store on every request.
package cluster
