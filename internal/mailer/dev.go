package mailer

import "log"

// DevMailer logs mail to stdout instead of sending it. Used when no mail
// transport is configured.
type DevMailer struct{}

func (DevMailer) Send(toEmail, subject, text string) error {
	log.Printf("[mail] to=%s subject=%q\n%s", toEmail, subject, text)
	return nil
}
