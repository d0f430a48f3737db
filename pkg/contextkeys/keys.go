package contextkeys

type contextKey string

const (
	MechanicIDKey contextKey = "MechanicID"
	ActorKey      contextKey = "Actor"
)
