package request

// CreateRoomRequest is the request body for creating a room. Both fields
// are optional: an omitted room_id gets a generated one, an omitted label
// defaults to the id
type CreateRoomRequest struct {
	RoomID string `json:"room_id,omitempty" validate:"omitempty,max=32"`
	Label  string `json:"label,omitempty" validate:"omitempty,max=50"`
}

// UpdateProfileRequest is the request body for updating the caller's
// profile. Empty fields leave the stored value untouched
type UpdateProfileRequest struct {
	DisplayName string `json:"display_name,omitempty" validate:"omitempty,max=20"`
	Country     string `json:"country,omitempty" validate:"omitempty,len=2,alpha"`
}
