package messenger

import "github.com/tailored-agentic-units/courier/observability"

const (
	EventSend     observability.EventType = "messenger.send"
	EventRequest  observability.EventType = "messenger.request"
	EventReply    observability.EventType = "messenger.reply"
	EventDispatch observability.EventType = "messenger.dispatch"
	EventTimeout  observability.EventType = "messenger.timeout"
	EventShoot    observability.EventType = "messenger.shoot"
	EventDrop     observability.EventType = "messenger.drop"
)
