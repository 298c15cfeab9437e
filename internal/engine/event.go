package engine

// Kind identifies the celebration a calendar feed announces.
type Kind int

const (
	Anniversary Kind = iota
	Birthday
)

func (k Kind) String() string {
	switch k {
	case Anniversary:
		return "anniversary"
	case Birthday:
		return "birthday"
	default:
		return "unknown"
	}
}

// CelebrationEvent is one calendar entry selected for the target date.
type CelebrationEvent struct {
	Kind Kind

	// Name is the person's full name as written in the feed summary. Never empty.
	Name string

	// Duration is the service length ("5 years"). Only set for anniversaries.
	Duration string

	// Email is attached by Reconcile when the directory knows Name; empty otherwise.
	Email string
}

// HasEmail reports whether the directory join resolved an address.
func (e CelebrationEvent) HasEmail() bool {
	return e.Email != ""
}

// UserRecord is one directory user as exposed by a DirectorySource.
type UserRecord struct {
	FullName     string
	PrimaryEmail string
}

// MemberRecord is one chat workspace member as exposed by a RosterSource.
type MemberRecord struct {
	Email      string
	Handle     string
	IsBot      bool
	IsDisabled bool
}

// Notice is a rendered celebration message ready for delivery.
type Notice struct {
	Text           string
	MentionsHandle bool
}
