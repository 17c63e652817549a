package importer

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSchema() *SeedSchema {
	return &SeedSchema{
		Users: []UserImport{
			{Ref: "c1", Email: "client@example.com", Role: "client", IssueSession: true},
			{Ref: "f1", Email: "dev@example.com", DisplayName: "Dev", Role: "freelancer"},
		},
		Projects: []ProjectImport{
			{Ref: "p1", ClientRef: "c1", Title: "Shop", BudgetMin: 100, BudgetMax: 200, Currency: "USD"},
		},
		Proposals: []ProposalImport{
			{
				ProjectRef: "p1", FreelancerRef: "f1", CoverLetter: "hi", ProposedBudget: 150,
				Milestones: []MilestoneImport{{Title: "Design", Amount: 50}, {Title: "Build", Amount: 100, DurationDays: 10}},
			},
		},
	}
}

func TestValidateSeedSchema_Valid(t *testing.T) {
	assert.Empty(t, ValidateSeedSchema(validSchema()))
}

func TestValidateSeedSchema_CollectsAllErrors(t *testing.T) {
	schema := &SeedSchema{
		Users: []UserImport{
			{Ref: "c1", Email: "not-an-email", Role: "client"},
			{Ref: "c1", Email: "x@example.com", Role: "owner", Status: "gone"},
		},
		Projects: []ProjectImport{
			{Ref: "p1", ClientRef: "nobody", Title: ""},
		},
		Proposals: []ProposalImport{
			{ProjectRef: "p9", FreelancerRef: "c1", ProposedBudget: 0},
		},
	}

	errs := ValidateSeedSchema(schema)
	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}

	assert.Contains(t, msgs, `users[0].email: invalid address "not-an-email"`)
	assert.Contains(t, msgs, `users[1].ref: duplicate ref "c1"`)
	assert.Contains(t, msgs, `users[1].role: invalid value "owner"`)
	assert.Contains(t, msgs, `users[1].status: invalid value "gone"`)
	assert.Contains(t, msgs, `projects[0].client_ref: unknown user "nobody"`)
	assert.Contains(t, msgs, `projects[0]: project title is required`)
	assert.Contains(t, msgs, `proposals[0].project_ref: unknown project "p9"`)
	assert.Contains(t, msgs, `proposals[0].cover_letter is required`)
	assert.Contains(t, msgs, `proposals[0].proposed_budget must be positive`)
}

func TestValidateSeedSchema_RoleMismatch(t *testing.T) {
	schema := validSchema()
	schema.Projects[0].ClientRef = "f1"
	schema.Proposals[0].FreelancerRef = "c1"

	errs := ValidateSeedSchema(schema)
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0].Error(), "not a client")
	assert.Contains(t, errs[1].Error(), "not a freelancer")
}

func TestValidateSeedSchema_Milestones(t *testing.T) {
	schema := validSchema()
	schema.Proposals[0].Milestones[1].Amount = 90
	schema.Proposals[0].FreeTextMilestones = "also this"

	errs := ValidateSeedSchema(schema)
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0].Error(), "mutually exclusive")
	assert.Contains(t, errs[1].Error(), "amounts total 140.00, proposed budget is 150.00")
}

func TestValidateSeedSchema_DuplicateProposal(t *testing.T) {
	schema := validSchema()
	schema.Proposals = append(schema.Proposals, schema.Proposals[0])

	errs := ValidateSeedSchema(schema)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), `already has a proposal`)
}

func TestConvert_ResolvesRefs(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	seed, err := Convert(validSchema(), now)
	require.NoError(t, err)

	require.Len(t, seed.Users, 2)
	client, freelancer := seed.Users[0], seed.Users[1]
	assert.Equal(t, "client", client.DisplayName, "display name defaults to the email local part")
	assert.Equal(t, domain.UserActive, client.Status)
	assert.Equal(t, []string{client.ID}, seed.SessionUsers)

	require.Len(t, seed.Projects, 1)
	proj := seed.Projects[0]
	assert.Equal(t, client.ID, proj.ClientID)
	assert.Equal(t, domain.ProjectOpen, proj.Status)
	assert.Equal(t, seed.Refs["p1"], proj.ID)

	require.Len(t, seed.Proposals, 1)
	prop := seed.Proposals[0]
	assert.Equal(t, proj.ID, prop.ProjectID)
	assert.Equal(t, freelancer.ID, prop.FreelancerID)
	assert.Equal(t, domain.CurrencyUSD, prop.Currency, "currency is inherited from the project")
	assert.True(t, prop.UseStructuredMilestones)
	require.Len(t, prop.Milestones, 2)
	assert.Equal(t, 2, prop.Milestones[1].Order)
	assert.Equal(t, 10, prop.Milestones[1].DurationDays)
	assert.Equal(t, now, prop.CreatedAt)
}

func TestConvert_UnknownRef(t *testing.T) {
	schema := validSchema()
	schema.Projects[0].ClientRef = "missing"

	_, err := Convert(schema, time.Now())
	assert.Error(t, err)
}

func TestLoadSeedSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"users": [{"ref": "a", "email": "admin@example.com", "role": "admin"}]
	}`), 0o644))

	schema, err := LoadSeedSchema(path)
	require.NoError(t, err)
	require.Len(t, schema.Users, 1)
	assert.Equal(t, "admin", schema.Users[0].Role)
}

func TestParseSeedSchema_RejectsUnknownFields(t *testing.T) {
	_, err := ParseSeedSchema([]byte(`{"users": [], "prjects": []}`))
	assert.Error(t, err)
}
