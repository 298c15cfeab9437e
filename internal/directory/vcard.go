package directory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/emersion/go-vcard"
	"github.com/tartampluch/go-celebrations/internal/config"
	"github.com/tartampluch/go-celebrations/internal/engine"
)

// VCardSource reads the directory from a vCard export, either a local file
// (Path) or a remote document (URL). Path wins when both are set.
type VCardSource struct {
	Path string

	URL     string
	User    string
	Pass    string
	Fetcher engine.Fetcher
}

// ListUsers decodes every card of the export. When domains is not empty,
// only addresses belonging to one of them are kept.
//
// A card that cannot be decoded fails the whole listing, as does an export
// holding no card at all (an HTML error page decodes to nothing).
// A partial directory would silently drop mentions.
func (s *VCardSource) ListUsers(ctx context.Context, domains []string) ([]engine.UserRecord, error) {
	r, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	decoder := vcard.NewDecoder(r)
	var users []engine.UserRecord
	cards := 0

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		card, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: card %d: %w", config.ErrVCardDecode, cards+1, err)
		}
		cards++

		email := strings.TrimSpace(card.PreferredValue(config.VCardEmail))
		if !inDomains(email, domains) {
			continue
		}
		users = append(users, engine.UserRecord{
			FullName:     cardName(card),
			PrimaryEmail: email,
		})
	}

	if cards == 0 {
		return nil, errors.New(config.ErrVCardEmpty)
	}

	slog.DebugContext(ctx, config.MsgDirectoryPage,
		config.LogKeyComponent, config.CompDirectory,
		config.LogKeyCount, len(users),
	)
	return users, nil
}

func (s *VCardSource) open(ctx context.Context) (io.ReadCloser, error) {
	switch {
	case s.Path != "":
		return os.Open(s.Path)
	case s.URL != "":
		if s.Fetcher == nil {
			return nil, errors.New(config.ErrFetcherMissing)
		}
		return s.Fetcher.Fetch(ctx, s.URL, s.User, s.Pass)
	default:
		return nil, errors.New(config.ErrLocalPathEmpty)
	}
}

// cardName prefers FN, then the structured N property.
func cardName(card vcard.Card) string {
	if fn := strings.TrimSpace(card.PreferredValue(config.VCardFN)); fn != "" {
		return fn
	}
	if n := card.Name(); n != nil {
		return strings.Join(strings.Fields(n.GivenName+" "+n.FamilyName), " ")
	}
	return ""
}

func inDomains(email string, domains []string) bool {
	if len(domains) == 0 {
		return true
	}
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	domain := strings.ToLower(email[at+1:])
	return slices.ContainsFunc(domains, func(d string) bool {
		return strings.ToLower(d) == domain
	})
}
