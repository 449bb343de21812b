package presence

import "errors"

var (
	ErrNameEmpty    = errors.New("name must not be empty")
	ErrNameTaken    = errors.New("name is already taken")
	ErrRoomNotFound = errors.New("room does not exist")
	ErrInvalidState = errors.New("event not allowed in current session state")
)

// failureMessage maps a coordinator error to the text sent back to the client.
func failureMessage(err error) string {
	switch {
	case errors.Is(err, ErrNameEmpty):
		return "Name must not be empty"
	case errors.Is(err, ErrNameTaken):
		return "Username is already in use"
	case errors.Is(err, ErrRoomNotFound):
		return "Room does not exist"
	case errors.Is(err, ErrInvalidState):
		return "Request not allowed in the current session state"
	default:
		return "Request failed"
	}
}
