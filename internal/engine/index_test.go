package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tartampluch/go-celebrations/internal/engine"
)

func TestBuildDirectory_Lookup(t *testing.T) {
	dir := engine.BuildDirectory([]engine.UserRecord{
		{FullName: "Jane Doe", PrimaryEmail: "jane@x.com"},
	})

	email, ok := dir.Lookup("Jane Doe")
	assert.True(t, ok)
	assert.Equal(t, "jane@x.com", email)

	email, ok = dir.Lookup("John Smith")
	assert.False(t, ok, "An absent name is a miss, not an error")
	assert.Empty(t, email)
}

func TestBuildDirectory_LastWriteWins(t *testing.T) {
	dir := engine.BuildDirectory([]engine.UserRecord{
		{FullName: "Jane Doe", PrimaryEmail: "jane@old.com"},
		{FullName: "Jane Doe", PrimaryEmail: "jane@new.com"},
	})

	email, _ := dir.Lookup("Jane Doe")
	assert.Equal(t, "jane@new.com", email)
	assert.Equal(t, 1, dir.Len())
}

func TestBuildDirectory_EmptyInputAndBlankEmail(t *testing.T) {
	empty := engine.BuildDirectory(nil)
	_, ok := empty.Lookup("Jane Doe")
	assert.False(t, ok)
	assert.Equal(t, 0, empty.Len())

	dir := engine.BuildDirectory([]engine.UserRecord{{FullName: "No Mail"}})
	_, ok = dir.Lookup("No Mail")
	assert.False(t, ok, "A user listed without an address cannot be resolved")
}

func TestBuildRoster_Filters(t *testing.T) {
	tests := []struct {
		name   string
		member engine.MemberRecord
		want   bool
	}{
		{"Valid", engine.MemberRecord{Email: "a@x.com", Handle: "alice"}, true},
		{"Bot", engine.MemberRecord{Email: "b@x.com", Handle: "buildbot", IsBot: true}, false},
		{"Disabled", engine.MemberRecord{Email: "c@x.com", Handle: "carl", IsDisabled: true}, false},
		{"NoEmail", engine.MemberRecord{Handle: "dora"}, false},
		{"NoHandle", engine.MemberRecord{Email: "e@x.com"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			roster := engine.BuildRoster([]engine.MemberRecord{tt.member})
			handle, ok := roster.Lookup(tt.member.Email)
			assert.Equal(t, tt.want, ok)
			if tt.want {
				assert.Equal(t, tt.member.Handle, handle)
			}
		})
	}
}

func TestBuildRoster_ExactKeysAndLastWriteWins(t *testing.T) {
	roster := engine.BuildRoster([]engine.MemberRecord{
		{Email: "jane@x.com", Handle: "jane.old"},
		{Email: "jane@x.com", Handle: "janed"},
	})

	handle, ok := roster.Lookup("jane@x.com")
	assert.True(t, ok)
	assert.Equal(t, "janed", handle)

	_, ok = roster.Lookup("Jane@X.com")
	assert.False(t, ok, "Email keys are compared exactly")

	_, ok = roster.Lookup("")
	assert.False(t, ok, "An unresolved email never matches")
	assert.Equal(t, 1, roster.Len())
}

func TestReconcile(t *testing.T) {
	dir := engine.BuildDirectory([]engine.UserRecord{{FullName: "Jane Doe", PrimaryEmail: "jane@x.com"}})
	input := []engine.CelebrationEvent{
		{Kind: engine.Anniversary, Name: "Jane Doe", Duration: "3 years"},
		{Kind: engine.Birthday, Name: "Unknown Person"},
	}

	out := engine.Reconcile(input, dir)

	assert.Equal(t, []engine.CelebrationEvent{
		{Kind: engine.Anniversary, Name: "Jane Doe", Duration: "3 years", Email: "jane@x.com"},
		{Kind: engine.Birthday, Name: "Unknown Person"},
	}, out, "Unmatched events are kept, order is preserved")

	assert.Empty(t, input[0].Email, "The input slice is left untouched")
	assert.Equal(t, out, engine.Reconcile(input, dir), "Reconciliation is idempotent")
}
