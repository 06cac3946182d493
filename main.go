package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/asaidimu/go-paginate/core/query"
	"github.com/asaidimu/go-paginate/core/schema"
	"github.com/asaidimu/go-paginate/sqlite"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

const (
	dbFileName     = "user.db"
	userSchemaJSON = `{
		"name": "users",
		"version": "1.0.0",
		"description": "Schema for user profiles",
		"fields": {
			"id": {"type": "integer", "description": "Unique identifier for the user"},
			"name": {"type": "string", "description": "Full name of the user"},
			"email": {"type": "string", "description": "Email address"},
			"age": {"type": "integer", "description": "Age of the user"},
			"is_active": {"type": "boolean", "description": "User account active status"},
			"books": {
				"type": "array",
				"itemsType": "object",
				"description": "Books the user has borrowed",
				"fields": {
					"id": {"type": "integer"},
					"title": {"type": "string"}
				}
			}
		}
	}`
	optionsJSON = `{
		"filter": [
			{"books": {"title": {"eq": "Dark Horse"}}},
			{"age": {"gte": 28}, "is_active": {"eq": true}}
		],
		"sort": {"age": "desc", "name": "asc"},
		"page": 1,
		"limit": 2
	}`
)

func main() {
	// Remove the database file if it already exists to start fresh
	if err := os.Remove(dbFileName); err != nil && !os.IsNotExist(err) {
		log.Fatalf("Failed to remove existing database file %s: %v", dbFileName, err)
	}
	fmt.Printf("Starting fresh: removed existing %s (if any).\n", dbFileName)

	db, err := sql.Open("sqlite3", dbFileName)
	if err != nil {
		log.Fatalf("Failed to open database connection: %v", err)
	}
	defer func() {
		if cErr := db.Close(); cErr != nil {
			log.Printf("Error closing database connection: %v", cErr)
		}
		fmt.Println("Database connection closed.")
	}()

	ctx := context.Background()
	source := sqlite.NewSource(db, nil, sqlite.DefaultOptions())

	userSchema, err := schema.ParseSchema([]byte(userSchemaJSON))
	if err != nil {
		log.Fatalf("Failed to parse user schema JSON: %v", err)
	}

	fmt.Println("Creating 'users' table...")
	if err := source.CreateCollection(ctx, userSchema); err != nil {
		log.Fatalf("Failed to create collection 'users': %v", err)
	}

	fmt.Println("Inserting sample data...")
	_, err = source.InsertDocuments(ctx, userSchema, []schema.Document{
		{"id": 1, "name": "Alice Smith", "email": "alice@example.com", "age": 30, "is_active": true,
			"books": []any{map[string]any{"id": 1, "title": "Marvel"}}},
		{"id": 2, "name": "Alex Smith", "email": "alex@example.com", "age": 27, "is_active": true,
			"books": []any{map[string]any{"id": 4, "title": "Dark Horse"}}},
		{"id": 3, "name": "Bob Jones", "email": "bob@example.com", "age": 28, "is_active": false,
			"books": []any{}},
		{"id": 4, "name": "Carol White", "email": "carol@example.com", "age": 41, "is_active": true,
			"books": []any{map[string]any{"id": 2, "title": "DC Comics"}}},
	})
	if err != nil {
		log.Fatalf("Failed to insert users: %v", err)
	}

	data, err := source.Load(ctx, userSchema)
	if err != nil {
		log.Fatalf("Failed to load collections: %v", err)
	}

	paginator, err := query.NewPaginator(query.DefaultConfig())
	if err != nil {
		log.Fatalf("Failed to create paginator: %v", err)
	}
	if err := paginator.RegisterSchema(userSchema); err != nil {
		log.Fatalf("Failed to register schema: %v", err)
	}

	done := make(chan struct{})
	_, err = paginator.Subscribe(query.RegisterSubscriptionOptions{
		Event: query.PaginateSuccess,
		Label: "demo",
		Callback: func(ctx context.Context, event query.PaginationEvent) error {
			defer close(done)
			fmt.Printf("Paginated '%s' with %v in %dms\n", event.Collection, event.Queries, *event.Duration)
			return nil
		},
	})
	if err != nil {
		log.Fatalf("Failed to subscribe: %v", err)
	}

	opts, err := query.ParseOptions([]byte(optionsJSON))
	if err != nil {
		log.Fatalf("Failed to parse options: %v", err)
	}

	fmt.Println("\nPaginating data from 'users' table:")
	result, err := paginator.Paginate(ctx, "users", data, opts)
	if err != nil {
		log.Fatalf("Failed to paginate users: %v", err)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
	}

	fmt.Println("-------------------------------------------------------------------")
	fmt.Printf("%-10s %-20s %-25s %-5s %-10s\n", "ID", "Name", "Email", "Age", "Active")
	fmt.Println("-------------------------------------------------------------------")
	for _, row := range result.Items {
		fmt.Printf("%-10d %-20s %-25s %-5d %-10t\n",
			row["id"].(int64), row["name"].(string), row["email"].(string), row["age"].(int64), row["is_active"].(bool))
	}
	fmt.Println("-------------------------------------------------------------------")
	fmt.Printf("Page %d of %d (%d matching users, %d per page)\n",
		result.CurrentPage, result.PageCount, result.Total, result.Limit)

	fmt.Printf("\nDatabase created successfully at: %s\n", dbFileName)
	fmt.Println("You can inspect this database file using the 'sqlite3' command-line tool:")
	fmt.Printf("1. Open your terminal.\n")
	fmt.Printf("2. Navigate to the directory where 'main.go' and 'user.db' are located.\n")
	fmt.Printf("3. Run: sqlite3 %s\n", dbFileName)
	fmt.Printf("4. Inside the sqlite3 prompt, you can run SQL commands:\n")
	fmt.Printf("    - .schema users (to view table schema)\n")
	fmt.Printf("    - SELECT * FROM users; (to view data)\n")
	fmt.Printf("    - .quit (to exit)\n")
}
