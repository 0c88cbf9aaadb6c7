package entity

// Statuses of the notifications service email_history table that a bounce can move a send into.
const (
	EmailStatusTemporaryFailure int16 = 40
	EmailStatusPermanentFailure int16 = 50
)

// EmailStatusFor maps a bounced record onto the email_history status of the original send.
func EmailStatusFor(rec DeliveryRecord) int16 {
	if rec.Temporary() {
		return EmailStatusTemporaryFailure
	}
	return EmailStatusPermanentFailure
}
