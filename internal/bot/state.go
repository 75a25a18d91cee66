package bot

// State is the step of the multi-turn dialogue a user is currently in.
// States are transient: they live in the engine's memory for the duration of
// a flow and a restart drops every user back to StateIdle.
type State int

const (
	StateIdle State = iota
	StateAwaitingPlayerID
	StateAwaitingAdminCode
	StateAdminMenu
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingPlayerID:
		return "awaiting_player_id"
	case StateAwaitingAdminCode:
		return "awaiting_admin_code"
	case StateAdminMenu:
		return "admin_menu"
	default:
		return "unknown"
	}
}
