package stripe

import "gallery-api/internal/domain/catalog"

// Webhook event types the gallery reacts to.
const (
	EventCheckoutCompleted = "checkout.session.completed"
	EventCheckoutExpired   = "checkout.session.expired"
)

// NextArtworkStatus maps a checkout event to the artwork transition it
// causes: the status to move to and the statuses it may move from. ok is
// false for events that leave the artwork alone.
func NextArtworkStatus(eventType string) (to catalog.ArtworkStatus, from []catalog.ArtworkStatus, ok bool) {
	switch eventType {
	case EventCheckoutCompleted:
		return catalog.StatusSold, []catalog.ArtworkStatus{catalog.StatusReserved, catalog.StatusAvailable}, true
	case EventCheckoutExpired:
		return catalog.StatusAvailable, []catalog.ArtworkStatus{catalog.StatusReserved}, true
	default:
		return "", nil, false
	}
}
