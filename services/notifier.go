package services

import (
	"log"

	pubnub "github.com/pubnub/go/v7"
)

// Publisher pushes realtime notifications to per-user channels so the
// storefront UI can react without polling.
type Publisher interface {
	Publish(channel string, message map[string]any)
}

// Notification types the UI switches on. The unrecorded variants are
// deliberately distinct: they tell the user the payment went through and must
// not be retried.
const (
	NoticePurchaseSuccess    = "purchase_success"
	NoticePurchaseUnrecorded = "purchase_unrecorded"
	NoticeTransferSuccess    = "transfer_success"
	NoticeTransferUnrecorded = "transfer_unrecorded"
)

type PubNubNotifier struct {
	pn *pubnub.PubNub
}

type NotifierConfig struct {
	PublishKey   string
	SubscribeKey string
	SecretKey    string
	UUID         string
}

func NewPubNubNotifier(cfg *NotifierConfig) *PubNubNotifier {
	pnConfig := pubnub.NewConfigWithUserId(pubnub.UserId(cfg.UUID))
	pnConfig.PublishKey = cfg.PublishKey
	pnConfig.SubscribeKey = cfg.SubscribeKey
	pnConfig.SecretKey = cfg.SecretKey

	return &PubNubNotifier{pn: pubnub.NewPubNub(pnConfig)}
}

// Publish is fire-and-forget: a missed notification only delays the UI until
// its next re-fetch, so failures are logged, never propagated into a flow.
func (n *PubNubNotifier) Publish(channel string, message map[string]any) {
	_, _, err := n.pn.Publish().
		Channel(channel).
		Message(message).
		Execute()
	if err != nil {
		log.Printf("notifier: publish %s: %v", channel, err)
	}
}

// userChannel is the per-wallet notification channel.
func userChannel(address string) string {
	return "user-" + address
}
