package enums

// OutboxDLQErrorReason records why the publisher gave up on an outbox row.
type OutboxDLQErrorReason string

const (
	// OutboxDLQReasonMaxAttempts: transient publish failures used up every attempt.
	OutboxDLQReasonMaxAttempts OutboxDLQErrorReason = "max_attempts"
	// OutboxDLQReasonUndecodable: the row has no route or its envelope or payload is invalid.
	OutboxDLQReasonUndecodable OutboxDLQErrorReason = "undecodable"
	// OutboxDLQReasonRejected: Pub/Sub refused the message outright.
	OutboxDLQReasonRejected OutboxDLQErrorReason = "rejected"
)

func (r OutboxDLQErrorReason) IsValid() bool {
	switch r {
	case OutboxDLQReasonMaxAttempts, OutboxDLQReasonUndecodable, OutboxDLQReasonRejected:
		return true
	}
	return false
}
