// Package core contains the payment session state machine: configuration,
// request validation, redirect URL construction, callback parsing, and
// exactly-once outcome delivery. Adapters (transport, browser presenters,
// persistence) depend on this package; core must not depend on them.
package core
