package engine_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-celebrations/internal/engine"
)

var targetDay = time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC)

// calendar wraps VEVENT bodies into a CRLF iCalendar document.
func calendar(events ...string) string {
	var b strings.Builder
	b.WriteString("BEGIN:VCALENDAR\nVERSION:2.0\nPRODID:-//HR//Feed//EN\n")
	for i, e := range events {
		b.WriteString("BEGIN:VEVENT\n")
		b.WriteString("UID:evt-" + string(rune('a'+i)) + "\n")
		b.WriteString("DTSTAMP:20250101T000000Z\n")
		b.WriteString(e)
		b.WriteString("END:VEVENT\n")
	}
	b.WriteString("END:VCALENDAR\n")
	return strings.ReplaceAll(b.String(), "\n", "\r\n")
}

func vevent(date, summary string) string {
	return "DTSTART;VALUE=DATE:" + date + "\nSUMMARY:" + summary + "\n"
}

func collect(t *testing.T, doc string, kind engine.Kind, target time.Time) ([]engine.CelebrationEvent, []error) {
	t.Helper()
	var events []engine.CelebrationEvent
	var errs []error
	for e, err := range engine.ParseFeed(strings.NewReader(doc), kind, target) {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		events = append(events, e)
	}
	return events, errs
}

func TestParseFeed_SelectsTargetDateOnly(t *testing.T) {
	doc := calendar(
		vevent("20251014", "Day Before (1 yr)"),
		vevent("20251015", "Jane Doe (5 yrs)"),
		vevent("20251016", "Day After (2 yrs)"),
		vevent("20251015", "Bob Stone (10 yrs)"),
	)

	events, errs := collect(t, doc, engine.Anniversary, targetDay)

	require.Empty(t, errs)
	require.Len(t, events, 2, "Only events starting exactly on the target date are selected")
	assert.Equal(t, engine.CelebrationEvent{Kind: engine.Anniversary, Name: "Jane Doe", Duration: "5 years"}, events[0])
	assert.Equal(t, "Bob Stone", events[1].Name, "Feed order must be preserved")
	assert.Equal(t, "10 years", events[1].Duration)
}

func TestParseFeed_Birthday(t *testing.T) {
	doc := calendar(vevent("20251015", "John Smith - Birthday"))

	events, errs := collect(t, doc, engine.Birthday, targetDay)

	require.Empty(t, errs)
	require.Len(t, events, 1)
	assert.Equal(t, "John Smith", events[0].Name)
	assert.Empty(t, events[0].Duration, "Birthdays never carry a duration")
	assert.Empty(t, events[0].Email, "Email stays empty until reconciliation")
}

func TestParseFeed_YearlyRecurrence(t *testing.T) {
	doc := calendar("DTSTART;VALUE=DATE:19901015\nRRULE:FREQ=YEARLY\nSUMMARY:Rita Long - Birthday\n")

	events, errs := collect(t, doc, engine.Birthday, targetDay)
	require.Empty(t, errs)
	require.Len(t, events, 1, "A yearly entry occurring on the target date is selected")
	assert.Equal(t, "Rita Long", events[0].Name)

	events, _ = collect(t, doc, engine.Birthday, targetDay.AddDate(0, 0, 1))
	assert.Empty(t, events, "No occurrence the day after")
}

func TestParseFeed_MalformedSummaryDoesNotStopIteration(t *testing.T) {
	doc := calendar(
		vevent("20251015", "No Delimiter Here"),
		vevent("20251015", "Anna Bell - Birthday"),
	)

	events, errs := collect(t, doc, engine.Birthday, targetDay)

	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], engine.ErrMalformedSummary)

	var malformed *engine.MalformedSummaryError
	require.True(t, errors.As(errs[0], &malformed))
	assert.Equal(t, "No Delimiter Here", malformed.Summary)
	assert.Equal(t, "-", malformed.Delimiter)

	require.Len(t, events, 1)
	assert.Equal(t, "Anna Bell", events[0].Name)
}

func TestParseFeed_MalformedOnOtherDayIsIgnored(t *testing.T) {
	doc := calendar(vevent("20251001", "No Delimiter Here"))

	events, errs := collect(t, doc, engine.Birthday, targetDay)
	assert.Empty(t, errs, "Summaries are only parsed for selected events")
	assert.Empty(t, events)
}

func TestParseFeed_EmptyAndUndecodable(t *testing.T) {
	events, errs := collect(t, "", engine.Birthday, targetDay)
	assert.Empty(t, events)
	assert.Empty(t, errs, "An empty document simply has no events")

	_, errs = collect(t, "this is not a calendar\r\n", engine.Birthday, targetDay)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], engine.ErrFeedUnavailable)
}

func TestParseFeed_NotRestartable(t *testing.T) {
	doc := calendar(vevent("20251015", "Anna Bell - Birthday"))
	seq := engine.ParseFeed(strings.NewReader(doc), engine.Birthday, targetDay)

	first := 0
	for range seq {
		first++
	}
	second := 0
	for range seq {
		second++
	}

	assert.Equal(t, 1, first)
	assert.Equal(t, 0, second, "The feed body is consumed by the first iteration")
}

func TestParseSummary_TableDriven(t *testing.T) {
	tests := []struct {
		name         string
		kind         engine.Kind
		summary      string
		wantName     string
		wantDuration string
		wantErr      bool
	}{
		{"Anniversary", engine.Anniversary, "Jane Doe (5 yrs)", "Jane Doe", "5 years", false},
		{"AnniversarySingular", engine.Anniversary, "Jane Doe (1 yr)", "Jane Doe", "1 year", false},
		{"AnniversaryOnlyFirstYr", engine.Anniversary, "Jane Doe (1 yr, 2 yr bonus)", "Jane Doe", "1 year, 2 yr bonus", false},
		{"AnniversaryNestedParens", engine.Anniversary, "Jane Doe (5 yrs (est))", "Jane Doe", "5 years (est)", false},
		{"AnniversaryNoYrToken", engine.Anniversary, "Jane Doe (6 months)", "Jane Doe", "6 months", false},
		{"AnniversaryMissingParens", engine.Anniversary, "Jane Doe 5 yrs", "", "", true},
		{"AnniversaryMissingClose", engine.Anniversary, "Jane Doe (5 yrs", "", "", true},
		{"AnniversaryEmptyName", engine.Anniversary, "  (5 yrs)", "", "", true},
		{"Birthday", engine.Birthday, "John Smith - Birthday", "John Smith", "", false},
		{"BirthdayHyphenatedFirstDashWins", engine.Birthday, "Mary-Jane Watson - Birthday", "Mary", "", false},
		{"BirthdayMissingDash", engine.Birthday, "John Smith Birthday", "", "", true},
		{"BirthdayEmptyName", engine.Birthday, " - Birthday", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := engine.ParseSummary(tt.kind, tt.summary)
			if tt.wantErr {
				assert.ErrorIs(t, err, engine.ErrMalformedSummary)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.kind, e.Kind)
			assert.Equal(t, tt.wantName, e.Name)
			assert.Equal(t, tt.wantDuration, e.Duration)
		})
	}
}
