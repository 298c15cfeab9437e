package engine

import (
	"log/slog"

	"github.com/tartampluch/go-celebrations/internal/config"
)

// Directory maps a full name to the primary email address of a directory user.
// It is read-only once built.
type Directory struct {
	byName map[string]string
}

// BuildDirectory indexes users by FullName. A later record for the same name
// replaces an earlier one; directories are assumed name-unique in practice.
func BuildDirectory(users []UserRecord) Directory {
	byName := make(map[string]string, len(users))
	for _, u := range users {
		byName[u.FullName] = u.PrimaryEmail
	}

	slog.Debug(config.MsgDirectoryBuilt,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyCount, len(byName),
	)
	return Directory{byName: byName}
}

// Lookup returns the email for name. A missing name, or a user listed
// without an address, is a miss and not an error.
func (d Directory) Lookup(name string) (string, bool) {
	email, ok := d.byName[name]
	return email, ok && email != ""
}

// Len returns the number of indexed names.
func (d Directory) Len() int {
	return len(d.byName)
}

// Roster maps an email address to a chat handle. Keys are compared exactly,
// the same way CelebrationEvent.Email is produced.
type Roster struct {
	byEmail map[string]string
}

// BuildRoster indexes the members that can be mentioned: both email and
// handle present, not a bot, not disabled. Later duplicates win.
func BuildRoster(members []MemberRecord) Roster {
	byEmail := make(map[string]string, len(members))
	for _, m := range members {
		if m.Email == "" || m.Handle == "" || m.IsBot || m.IsDisabled {
			continue
		}
		byEmail[m.Email] = m.Handle
	}

	slog.Debug(config.MsgRosterBuilt,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyCount, len(byEmail),
	)
	return Roster{byEmail: byEmail}
}

// Lookup returns the handle registered for email.
func (r Roster) Lookup(email string) (string, bool) {
	if email == "" {
		return "", false
	}
	handle, ok := r.byEmail[email]
	return handle, ok
}

// Len returns the number of mentionable members.
func (r Roster) Len() int {
	return len(r.byEmail)
}
