package events

import (
	"github.com/ethereum/go-ethereum/event"
	"github.com/strideway/strided/types/track"
)

// NewEntryFeed is emitted for every sample accepted by the fusion loop,
// exactly once per accepted sample. Subscribers include the websocket
// broadcaster and the tick logger.
var NewEntryFeed = event.FeedOf[*track.Entry]{}

// NewRouteFeed is emitted for every session successfully persisted as a
// route. The payload is the route exactly as stored.
var NewRouteFeed = event.FeedOf[*track.Route]{}

// StateChangeFeed is emitted when the tracker transitions between idle and
// active. The payload is true on start, false on stop.
var StateChangeFeed = event.FeedOf[bool]{}
