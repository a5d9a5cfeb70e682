// Package exchange implements the payment token exchange against the
// wallet API. The client posts the payment request to
// /api/external/payment/token and turns the JSON reply into either an opaque
// payment token or a typed payment error.
package exchange
