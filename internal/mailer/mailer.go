// Package mailer is the outbound email collaborator. Sends are
// fire-and-forget from the auth flows' point of view: a failed delivery is
// logged, never surfaced to the requester.
package mailer

import "log"

// Sender delivers the two transactional emails the auth core produces.
type Sender interface {
	SendVerificationEmail(to, verificationLink string) error
	SendPasswordResetEmail(to, resetLink string) error
}

// ConsoleSender logs emails instead of sending them. Development only.
type ConsoleSender struct{}

func (c *ConsoleSender) SendVerificationEmail(to, verificationLink string) error {
	log.Printf("\n=== EMAIL: Verification ===")
	log.Printf("To: %s", to)
	log.Printf("Link: %s", verificationLink)
	log.Printf("===========================\n")
	return nil
}

func (c *ConsoleSender) SendPasswordResetEmail(to, resetLink string) error {
	log.Printf("\n=== EMAIL: Password Reset ===")
	log.Printf("To: %s", to)
	log.Printf("Link: %s", resetLink)
	log.Printf("==============================\n")
	return nil
}
