package stub

import (
	"context"
	"fmt"

	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/db"
	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/importer"
)

// ImportResult reports what a seed import created.
type ImportResult struct {
	Users, Projects, Proposals int
	// Tokens holds the sessions issued for users that asked for one,
	// keyed by user ID.
	Tokens map[string]Tokens
}

// ImportSeedFile loads, validates and imports a seed file.
func (s *Server) ImportSeedFile(ctx context.Context, path string) (*ImportResult, error) {
	schema, err := importer.LoadSeedSchema(path)
	if err != nil {
		return nil, fmt.Errorf("loading seed file: %w", err)
	}
	if errs := importer.ValidateSeedSchema(schema); len(errs) > 0 {
		return nil, formatValidationErrors(errs)
	}
	seed, err := importer.Convert(schema, s.opts.Now())
	if err != nil {
		return nil, fmt.Errorf("converting seed file: %w", err)
	}
	return s.ImportSeed(ctx, seed)
}

// ImportSeed persists seed in one transaction. Sessions are issued after
// the commit.
func (s *Server) ImportSeed(ctx context.Context, seed *importer.Seed) (*ImportResult, error) {
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		for _, u := range seed.Users {
			if err := s.users(tx).Create(ctx, u); err != nil {
				return fmt.Errorf("creating user %q: %w", u.Email, err)
			}
		}
		for _, p := range seed.Projects {
			if err := s.projects(tx).Create(ctx, p); err != nil {
				return fmt.Errorf("creating project %q: %w", p.Title, err)
			}
		}
		for _, p := range seed.Proposals {
			if err := s.proposals(tx).Create(ctx, p); err != nil {
				return fmt.Errorf("creating proposal on %s: %w", p.ProjectID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &ImportResult{
		Users:     len(seed.Users),
		Projects:  len(seed.Projects),
		Proposals: len(seed.Proposals),
		Tokens:    make(map[string]Tokens, len(seed.SessionUsers)),
	}
	for _, id := range seed.SessionUsers {
		tokens, err := s.IssueSession(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("issuing session for %s: %w", id, err)
		}
		result.Tokens[id] = tokens
	}
	return result, nil
}

func formatValidationErrors(errs []error) error {
	msg := fmt.Sprintf("seed file has %d validation error(s):", len(errs))
	for _, e := range errs {
		msg += "\n  - " + e.Error()
	}
	return fmt.Errorf("%s", msg)
}
