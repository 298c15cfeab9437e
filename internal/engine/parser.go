package engine

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/tartampluch/go-celebrations/internal/config"
)

// ParseFeed decodes an iCalendar document and yields the events of the given
// kind that fall on target, in feed order.
//
// The sequence is lazy and reads r on first iteration; it cannot be restarted.
// A summary that lacks its delimiter yields a *MalformedSummaryError and the
// iteration continues, so the caller decides whether to skip or abort.
// A document that cannot be decoded yields an error wrapping ErrFeedUnavailable and stops.
func ParseFeed(r io.Reader, kind Kind, target time.Time) iter.Seq2[CelebrationEvent, error] {
	dec := ical.NewDecoder(r)

	return func(yield func(CelebrationEvent, error) bool) {
		log := slog.With(
			config.LogKeyComponent, config.CompEngine,
			config.LogKeyKind, kind.String(),
		)
		selected := 0

		for {
			cal, err := dec.Decode()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				yield(CelebrationEvent{}, fmt.Errorf("%w: %s: %w", ErrFeedUnavailable, config.ErrFeedDecode, err))
				return
			}

			for _, e := range cal.Events() {
				onTarget, err := occursOn(&e, target)
				if err != nil {
					// One unreadable entry must not hide the rest of the feed.
					log.Warn(config.MsgSkippedVEvent, config.LogKeyError, err)
					continue
				}
				if !onTarget {
					continue
				}

				summary, err := e.Props.Text(ical.PropSummary)
				if err != nil {
					log.Warn(config.MsgSkippedVEvent, config.LogKeyError, err)
					continue
				}

				selected++
				if !yield(ParseSummary(kind, summary)) {
					return
				}
			}
		}

		log.Debug(config.MsgFeedParsed,
			config.LogKeyTarget, target.Format(config.DateFormatDay),
			config.LogKeyEvents, selected,
		)
	}
}

// occursOn reports whether the event starts on target, or, for entries
// carrying an RRULE, has an occurrence on target.
func occursOn(e *ical.Event, target time.Time) (bool, error) {
	loc := target.Location()

	start, err := e.DateTimeStart(loc)
	if err != nil {
		return false, err
	}
	if sameDay(start, target) {
		return true, nil
	}

	set, err := e.RecurrenceSet(loc)
	if err != nil || set == nil {
		return false, err
	}
	dayStart := TargetDate(target, 0)
	dayEnd := dayStart.AddDate(0, 0, 1).Add(-time.Nanosecond)
	return len(set.Between(dayStart, dayEnd, true)) > 0, nil
}

// ParseSummary extracts the person (and service length) from a feed summary.
//
//	Anniversary: "Jane Doe (5 yrs)"      -> Name "Jane Doe", Duration "5 years"
//	Birthday:    "John Smith - Birthday" -> Name "John Smith"
func ParseSummary(kind Kind, summary string) (CelebrationEvent, error) {
	switch kind {
	case Anniversary:
		open := strings.Index(summary, config.DelimAnniversaryOpen)
		closing := strings.LastIndex(summary, config.DelimAnniversaryClose)
		if open < 0 || closing < open {
			return CelebrationEvent{}, &MalformedSummaryError{
				Kind:      kind,
				Summary:   summary,
				Delimiter: config.DelimAnniversaryOpen + config.DelimAnniversaryClose,
			}
		}
		name := strings.TrimSpace(summary[:open])
		if name == "" {
			return CelebrationEvent{}, &MalformedSummaryError{Kind: kind, Summary: summary, Delimiter: config.DelimAnniversaryOpen}
		}
		duration := strings.TrimSpace(summary[open+1 : closing])
		duration = strings.Replace(duration, config.TokenYearShort, config.TokenYearLong, 1)
		return CelebrationEvent{Kind: kind, Name: name, Duration: duration}, nil

	case Birthday:
		idx := strings.Index(summary, config.DelimBirthday)
		if idx < 0 {
			return CelebrationEvent{}, &MalformedSummaryError{Kind: kind, Summary: summary, Delimiter: config.DelimBirthday}
		}
		name := strings.TrimSpace(summary[:idx])
		if name == "" {
			return CelebrationEvent{}, &MalformedSummaryError{Kind: kind, Summary: summary, Delimiter: config.DelimBirthday}
		}
		return CelebrationEvent{Kind: kind, Name: name}, nil

	default:
		return CelebrationEvent{}, fmt.Errorf("%w: unknown kind %d", ErrMalformedSummary, int(kind))
	}
}
