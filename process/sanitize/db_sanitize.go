// Package sanitize truncates the application tables, optionally reseeding
// the roles and the admin account afterwards.
package sanitize

import (
	"context"
	"fmt"
	"io"
	"log"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"

	"statrater/models"
)

// DefaultTables are the application tables, children last.
const DefaultTables = "roles,users,presets,ratings,refresh_tokens"

var nameRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Options mirrors the flags of cmd_sanitize.
type Options struct {
	Tables string
	DryRun bool
	Yes    bool
	Reseed bool
}

// TableNames splits a comma separated list and drops names that are not
// plain identifiers.
func TableNames(csv string) []string {
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !nameRe.MatchString(p) {
			log.Printf("warning: skipping invalid table name '%s'", p)
			continue
		}
		out = append(out, p)
	}
	return out
}

// TruncateStatement quotes the validated names into one TRUNCATE.
func TruncateStatement(tables []string) string {
	quoted := make([]string, 0, len(tables))
	for _, t := range tables {
		quoted = append(quoted, fmt.Sprintf("%q", t))
	}
	return fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", strings.Join(quoted, ", "))
}

// Run truncates the requested tables that exist. Without Yes, or with
// DryRun, it only prints what would be done.
func Run(gdb *gorm.DB, w io.Writer, opts Options) error {
	existing := []string{}
	// check presence individually to avoid any injection risk
	for _, t := range TableNames(opts.Tables) {
		var cnt int64
		if err := gdb.Raw("SELECT count(*) FROM pg_tables WHERE schemaname = 'public' AND tablename = ?", t).Scan(&cnt).Error; err != nil {
			return fmt.Errorf("failed to query pg_tables for %s: %w", t, err)
		}
		if cnt > 0 {
			existing = append(existing, t)
		} else {
			log.Printf("info: table %s not found, skipping", t)
		}
	}
	if len(existing) == 0 {
		fmt.Fprintln(w, "no requested tables present in the database; nothing to do")
		return nil
	}

	fmt.Fprintln(w, "Tables considered for truncation:")
	for _, t := range existing {
		fmt.Fprintf(w, " - %s\n", t)
	}
	if opts.DryRun {
		fmt.Fprintln(w, "dry-run enabled; no changes will be made. Use --dry-run=false --yes to execute.")
		return nil
	}
	if !opts.Yes {
		fmt.Fprintln(w, "Destructive operation. Pass --yes to confirm execution. Aborting.")
		return nil
	}

	stmt := TruncateStatement(existing)
	log.Printf("Executing: %s", stmt)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := gdb.WithContext(ctx).Exec(stmt).Error; err != nil {
		return fmt.Errorf("truncate failed: %w", err)
	}
	log.Println("Truncate completed.")

	if opts.Reseed {
		if err := models.EnsureRoles(gdb); err != nil {
			return err
		}
		if _, err := models.CreateUser(gdb, "admin", "admin123", models.RoleAdministrator, ""); err != nil {
			return fmt.Errorf("failed to create admin user: %w", err)
		}
	}
	return nil
}
