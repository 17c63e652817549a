package stub

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/domain"
	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/importer"
	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seedJSON = `{
  "users": [
    {"ref": "client", "email": "client@example.com", "role": "client", "issue_session": true},
    {"ref": "dev", "email": "dev@example.com", "role": "freelancer"}
  ],
  "projects": [
    {"ref": "site", "client_ref": "client", "title": "Website", "budget_min": 1000, "budget_max": 2000}
  ],
  "proposals": [
    {"project_ref": "site", "freelancer_ref": "dev", "cover_letter": "I can help", "proposed_budget": 1500,
     "milestones": [{"title": "Design", "amount": 500}, {"title": "Build", "amount": 1000}]}
  ]
}`

func writeSeed(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestImportSeedFile(t *testing.T) {
	s := newTestServer(t, Options{})
	ctx := context.Background()

	result, err := s.ImportSeedFile(ctx, writeSeed(t, seedJSON))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Users)
	assert.Equal(t, 1, result.Projects)
	assert.Equal(t, 1, result.Proposals)
	require.Len(t, result.Tokens, 1)

	var access string
	for _, tok := range result.Tokens {
		access = tok.AccessToken
	}

	rec := do(t, s.Handler(), http.MethodGet, "/projects", "Bearer "+access, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Projects []domain.Project `json:"projects"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Projects, 1)
	assert.Equal(t, "Website", list.Projects[0].Title)

	rec = do(t, s.Handler(), http.MethodGet, "/projects/"+list.Projects[0].ID+"/proposals", "Bearer "+access, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var props struct {
		Proposals []domain.Proposal `json:"proposals"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &props))
	require.Len(t, props.Proposals, 1)
	assert.Len(t, props.Proposals[0].Milestones, 2)
}

func TestImportSeedFile_ValidationErrors(t *testing.T) {
	s := newTestServer(t, Options{})

	_, err := s.ImportSeedFile(context.Background(), writeSeed(t, `{"users": [{"ref": "x", "email": "bad", "role": "boss"}]}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 validation error(s)")
}

func TestImportSeed_RollsBackOnFailure(t *testing.T) {
	s := newTestServer(t, Options{})
	ctx := context.Background()

	schema, err := importer.ParseSeedSchema([]byte(seedJSON))
	require.NoError(t, err)
	seed, err := importer.Convert(schema, s.opts.Now())
	require.NoError(t, err)
	// Same freelancer twice on one project violates the unique constraint.
	dup := *seed.Proposals[0]
	dup.ID = "second"
	seed.Proposals = append(seed.Proposals, &dup)

	_, err = s.ImportSeed(ctx, seed)
	require.Error(t, err)

	_, err = s.users(s.db).GetByID(ctx, seed.Users[0].ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
