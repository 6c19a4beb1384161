package connectors

import "github.com/MikeMontana1968/LazyShopRiteAisleMapper/internal"

// MailConnector pulls raw list messages from a shared mailbox.
type MailConnector interface {
	FetchInbox(label string, max int) ([]internal.FetchedListMessage, error)
}
