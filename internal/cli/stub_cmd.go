package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/cli/formatter"
	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/db"
	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/domain"
	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/stub"
	"github.com/spf13/cobra"
)

func newStubCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stub",
		Short: "Local stand-in for the marketplace backend",
	}

	var (
		addr, dbPath, prefix string
		devTokens, compress  bool
		seed                 bool
		seedFile             string
	)
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve the stub backend over SQLite",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := db.OpenDB(dbPath)
			if err != nil {
				return err
			}
			defer database.Close()

			srv := stub.New(database, stub.Options{
				AnonKey:    app.Config.AnonKey,
				DevTokens:  devTokens,
				Compress:   compress,
				Logger:     app.Logger,
				PathPrefix: prefix,
			})
			if seed {
				if err := seedDemo(cmd.Context(), app, srv); err != nil {
					return fmt.Errorf("seeding demo data: %w", err)
				}
			}
			if seedFile != "" {
				if err := importSeedFile(cmd.Context(), app, srv, seedFile); err != nil {
					return err
				}
			}
			return srv.Serve(cmd.Context(), addr)
		},
	}
	serve.Flags().StringVar(&addr, "addr", ":8787", "Listen address")
	serve.Flags().StringVar(&dbPath, "db", db.MemoryPath, "SQLite database path")
	serve.Flags().StringVar(&prefix, "prefix", "/functions/v1/server", "Base path the routes are mounted under")
	serve.Flags().BoolVar(&devTokens, "dev-tokens", false, "Accept X-Dev-Token authentication")
	serve.Flags().BoolVar(&compress, "compress", true, "Brotli-encode responses when accepted")
	serve.Flags().BoolVar(&seed, "seed", false, "Create demo users and a project, and print their tokens")
	serve.Flags().StringVar(&seedFile, "seed-file", "", "Import users, projects and proposals from a JSON fixture")

	cmd.AddCommand(serve)
	return cmd
}

func seedDemo(ctx context.Context, app *App, srv *stub.Server) error {
	users := []struct {
		email string
		role  domain.Role
	}{
		{"client@casewhr.local", domain.RoleClient},
		{"freelancer@casewhr.local", domain.RoleFreelancer},
		{"admin@casewhr.local", domain.RoleAdmin},
	}

	rows := make([][]string, 0, len(users))
	var clientID string
	for _, u := range users {
		user, err := srv.SeedUser(ctx, u.email, u.role)
		if err != nil {
			return err
		}
		if u.role == domain.RoleClient {
			clientID = user.ID
		}
		tokens, err := srv.IssueSession(ctx, user.ID)
		if err != nil {
			return err
		}
		rows = append(rows, []string{string(u.role), user.ID, tokens.AccessToken, tokens.RefreshToken})
	}

	proj, err := srv.SeedProject(ctx, clientID, domain.ProjectDraft{
		Title:     "Company website redesign",
		BudgetMin: 30000,
		BudgetMax: 60000,
		Currency:  domain.CurrencyTWD,
	})
	if err != nil {
		return err
	}

	app.printf("%s\n", formatter.RenderTable([]string{"ROLE", "USER", "ACCESS TOKEN", "REFRESH TOKEN"}, rows))
	app.printf("%s %s\n", formatter.Dim("demo project"), proj.ID)
	return nil
}

func importSeedFile(ctx context.Context, app *App, srv *stub.Server, path string) error {
	result, err := srv.ImportSeedFile(ctx, path)
	if err != nil {
		return err
	}
	app.printf("Imported %d users, %d projects, %d proposals from %s\n",
		result.Users, result.Projects, result.Proposals, path)

	if len(result.Tokens) == 0 {
		return nil
	}
	rows := make([][]string, 0, len(result.Tokens))
	for userID, tokens := range result.Tokens {
		rows = append(rows, []string{userID, tokens.AccessToken, tokens.RefreshToken})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i][0] < rows[j][0] })
	app.printf("%s\n", formatter.RenderTable([]string{"USER", "ACCESS TOKEN", "REFRESH TOKEN"}, rows))
	return nil
}
