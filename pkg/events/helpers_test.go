package events

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

func newTestMessage(payload []byte) *message.Message {
	return message.NewMessage(watermill.NewUUID(), payload)
}
