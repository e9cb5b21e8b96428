package connectors

import "pantrybill/internal"

// MailConnector fetches raw messages from a provider mailbox. Implementations
// live in the gmail and imap subpackages.
type MailConnector interface {
	FetchInbox(label string, max int) ([]internal.FetchedMailMessage, error)
}
