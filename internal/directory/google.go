package directory

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/tartampluch/go-celebrations/internal/config"
	"github.com/tartampluch/go-celebrations/internal/engine"
	"golang.org/x/oauth2/google"
	admin "google.golang.org/api/admin/directory/v1"
	"google.golang.org/api/option"
)

// GoogleSource lists users through the Google Admin Directory API.
type GoogleSource struct {
	svc *admin.Service
}

// NewGoogleSource builds a directory client.
//
// When credentialsFile is set, it must hold a service account key with
// domain-wide delegation; subject is the administrator it impersonates.
// Additional options are applied last and may override the transport.
func NewGoogleSource(ctx context.Context, credentialsFile, subject string, opts ...option.ClientOption) (*GoogleSource, error) {
	var clientOpts []option.ClientOption
	if credentialsFile != "" {
		data, err := os.ReadFile(credentialsFile)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", config.ErrCredentialsRead, err)
		}
		conf, err := google.JWTConfigFromJSON(data, admin.AdminDirectoryUserReadonlyScope)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", config.ErrCredentialsParse, err)
		}
		conf.Subject = subject
		clientOpts = append(clientOpts, option.WithHTTPClient(conf.Client(ctx)))
	}
	clientOpts = append(clientOpts, opts...)

	svc, err := admin.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrDirectoryClient, err)
	}
	svc.UserAgent = config.UserAgent
	return &GoogleSource{svc: svc}, nil
}

// ListUsers returns every user of each domain, following all result pages.
// Domains are listed in the given order; within a domain users come sorted by email.
func (s *GoogleSource) ListUsers(ctx context.Context, domains []string) ([]engine.UserRecord, error) {
	var users []engine.UserRecord

	for _, domain := range domains {
		log := slog.With(
			config.LogKeyComponent, config.CompDirectory,
			config.LogKeyDomain, domain,
		)

		call := s.svc.Users.List().
			Domain(domain).
			OrderBy(config.DirectoryOrderBy).
			ViewType(config.DirectoryViewType).
			MaxResults(config.DirectoryPageSize)

		err := call.Pages(ctx, func(page *admin.Users) error {
			for _, u := range page.Users {
				users = append(users, toRecord(u))
			}
			log.DebugContext(ctx, config.MsgDirectoryPage, config.LogKeyCount, len(page.Users))
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", domain, err)
		}
	}

	return users, nil
}

func toRecord(u *admin.User) engine.UserRecord {
	r := engine.UserRecord{PrimaryEmail: u.PrimaryEmail}
	if u.Name != nil {
		r.FullName = u.Name.FullName
	}
	return r
}
