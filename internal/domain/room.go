package domain

import "time"

// ChatRoom is a persistent conversation between a buyer and a seller,
// optionally owned by a single responsible moderator.
type ChatRoom struct {
	ID          string     `json:"id"`
	BuyerID     string     `json:"buyer_id"`
	SellerID    string     `json:"seller_id"`
	ModeratorID *string    `json:"moderator_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// IsMember reports whether the user may post in the room: the buyer, the
// seller, or the currently assigned moderator.
func (r *ChatRoom) IsMember(userID string) bool {
	if userID == r.BuyerID || userID == r.SellerID {
		return true
	}
	return r.ModeratorID != nil && *r.ModeratorID == userID
}

// ParticipantIDs returns the fan-out targets for the room: buyer, seller
// and the assigned moderator, if any.
func (r *ChatRoom) ParticipantIDs() []string {
	ids := []string{r.BuyerID, r.SellerID}
	if r.ModeratorID != nil {
		ids = append(ids, *r.ModeratorID)
	}
	return ids
}

// CreateRoomRequest opens a buyer/seller conversation.
type CreateRoomRequest struct {
	SellerID string `json:"seller_id" binding:"required"`
}
