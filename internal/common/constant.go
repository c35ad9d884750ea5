package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access (or provisioning) token on outbound requests.
const AccessTokenHeaderName = "access_token"

// APIKeyHeaderName is the gRPC metadata key carrying the service public key.
// Every request must present it.
const APIKeyHeaderName = "apikey"

// MinPasswordLength is shared by client-side form validation and the server.
const MinPasswordLength = 6
