package relay

// Tags of the messages carried over the relay.
const (
	TagCertificateMinted  = 1101
	TagCertificateRevoked = 1102

	TagSessionPropose = 1201
	TagSessionSettle  = 1202
	TagSessionReject  = 1203
	TagSessionRequest = 1204
	TagSessionResult  = 1205
	TagSessionDelete  = 1206
)
