package mailer

// Service sends transactional email. The only message the API sends today
// is the password-reset token, but Send keeps the transport generic.
type Service interface {
	Send(toEmail, subject, text string) error
}
