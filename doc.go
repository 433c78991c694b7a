// Package sqlcore is an embeddable SQL client-driver core: connections,
// prepared statements with typed parameter binding, streaming cursors and
// transactions with savepoints, running over any byte-oriented transport.
//
// Open starts a connection over a transport.Transport. Connector adapts the
// same core to database/sql.
package sqlcore
