// Command seed-demo provisions the demo accounts. Password hashes are
// computed here rather than stored in seed SQL, so the hashing
// parameters stay in one place.
package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"taskdeck.org/internal/auth"
	"taskdeck.org/internal/ids"
)

const demoPassword = "Password123!"

type demoUser struct {
	email string
	role  auth.Role
	orgID string
}

var demoUsers = []demoUser{
	{email: "owner@demo.com", role: auth.RoleOwner, orgID: "org-parent"},
	{email: "admin@demo.com", role: auth.RoleAdmin, orgID: "org-parent"},
	{email: "viewer@demo.com", role: auth.RoleViewer, orgID: "org-parent"},
	{email: "child-admin@demo.com", role: auth.RoleAdmin, orgID: "org-child"},
}

func main() {
	log.SetFlags(0)
	dsn := flag.String("dsn", os.Getenv("TASKDECK_PG_DSN"), "PostgreSQL DSN")
	flag.Parse()

	if *dsn == "" {
		log.Fatal("missing DSN: provide via -dsn or TASKDECK_PG_DSN")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := sql.Open("pgx", *dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	for _, u := range demoUsers {
		hash, err := auth.HashPassword(demoPassword)
		if err != nil {
			log.Fatalf("hash password for %s: %v", u.email, err)
		}
		_, err = db.ExecContext(ctx, `
			insert into users (id, email, password_hash, role, organization_id)
			values ($1, $2, $3, $4, $5)
			on conflict (email) do update set
				password_hash = excluded.password_hash,
				role = excluded.role,
				organization_id = excluded.organization_id,
				updated_at = now()
		`, ids.New(), u.email, hash, string(u.role), u.orgID)
		if err != nil {
			log.Fatalf("seed user %s: %v", u.email, err)
		}
		log.Printf("seeded %s (%s @ %s)", u.email, u.role, u.orgID)
	}
}
