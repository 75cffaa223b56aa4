package bigquery

import (
	"context"
	"crypto/sha256"
	"embed"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/finsight/internal/logger"
	"google.golang.org/api/iterator"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migration is a single versioned SQL file.
type Migration struct {
	Version  int
	Name     string
	Filename string
	SQL      string
	Checksum string
}

// migrationPattern matches files such as 0001_name.sql.
var migrationPattern = regexp.MustCompile(`^(\d{4})_(.+)\.sql$`)

// ReadMigrations loads all migrations from fsys, sorted by version, with the
// {{PROJECT_ID}} and {{DATASET_ID}} placeholders substituted. The checksum is
// taken over the file before substitution.
func ReadMigrations(fsys fs.FS, projectID, datasetID string) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("ReadMigrations: reading directory: %w", err)
	}

	var out []Migration
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := migrationPattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		version, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}

		content, err := fs.ReadFile(fsys, e.Name())
		if err != nil {
			return nil, fmt.Errorf("ReadMigrations: reading %s: %w", e.Name(), err)
		}

		sql := strings.ReplaceAll(string(content), "{{PROJECT_ID}}", projectID)
		sql = strings.ReplaceAll(sql, "{{DATASET_ID}}", datasetID)

		out = append(out, Migration{
			Version:  version,
			Name:     m[2],
			Filename: e.Name(),
			SQL:      sql,
			Checksum: fmt.Sprintf("%x", sha256.Sum256(content)),
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// EmbeddedMigrations returns the migrations shipped with the binary.
func EmbeddedMigrations(projectID, datasetID string) ([]Migration, error) {
	sub, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		return nil, fmt.Errorf("EmbeddedMigrations: %w", err)
	}
	return ReadMigrations(sub, projectID, datasetID)
}

// PendingMigrations drops the migrations whose version is already applied.
func PendingMigrations(all []Migration, applied map[int]bool) []Migration {
	var pending []Migration
	for _, m := range all {
		if !applied[m.Version] {
			pending = append(pending, m)
		}
	}
	return pending
}

// ApplyMigrationsWithClient runs every pending embedded migration and records
// it in schema_migrations. It returns the number of migrations applied.
func ApplyMigrationsWithClient(ctx context.Context, client *bigquery.Client, datasetID, appliedBy string) (int, error) {
	log := logger.FromContext(ctx)

	all, err := EmbeddedMigrations(client.Project(), datasetID)
	if err != nil {
		return 0, err
	}
	if len(all) == 0 {
		return 0, nil
	}

	// The first migration creates schema_migrations itself.
	if err := runAndWait(ctx, client.Query(all[0].SQL)); err != nil {
		return 0, fmt.Errorf("ApplyMigrations: ensure schema_migrations: %w", err)
	}

	applied, err := appliedVersions(ctx, client, datasetID)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, m := range PendingMigrations(all, applied) {
		log.Info().Int("version", m.Version).Str("name", m.Name).Msg("Applying migration")

		if err := runAndWait(ctx, client.Query(m.SQL)); err != nil {
			return count, fmt.Errorf("ApplyMigrations: %04d_%s: %w", m.Version, m.Name, err)
		}
		if err := recordMigration(ctx, client, datasetID, appliedBy, m); err != nil {
			return count, fmt.Errorf("ApplyMigrations: record %04d_%s: %w", m.Version, m.Name, err)
		}
		count++
	}
	return count, nil
}

func appliedVersions(ctx context.Context, client *bigquery.Client, datasetID string) (map[int]bool, error) {
	q := client.Query(`SELECT version FROM ` + tableRef(client.Project(), datasetID, "schema_migrations"))
	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("appliedVersions: reading query: %w", err)
	}

	out := make(map[int]bool)
	for {
		var row struct {
			Version int64 `bigquery:"version"`
		}
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("appliedVersions: iterating: %w", err)
		}
		out[int(row.Version)] = true
	}
	return out, nil
}

func recordMigration(ctx context.Context, client *bigquery.Client, datasetID, appliedBy string, m Migration) error {
	q := client.Query(`
		INSERT INTO ` + tableRef(client.Project(), datasetID, "schema_migrations") + `
		(version, name, applied_at, checksum, applied_by)
		VALUES (@version, @name, @applied_at, @checksum, @applied_by)
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "version", Value: m.Version},
		{Name: "name", Value: m.Name},
		{Name: "applied_at", Value: time.Now().UTC()},
		{Name: "checksum", Value: m.Checksum},
		{Name: "applied_by", Value: appliedBy},
	}
	return runAndWait(ctx, q)
}
