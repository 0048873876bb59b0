// Package preflight verifies the environment before the pipeline starts:
// directory permissions, the reservation store, and the notification
// endpoint. The CLI surfaces these results so misconfiguration shows up
// before the first manifest arrives, not after.
package preflight
