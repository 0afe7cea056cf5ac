// Command seed_catalog fills a database with sample public domain books.
// Usage: go run cmd/seed_catalog/main.go [-db path/to/library.db]
package main

import (
	"flag"
	"log"
	"os"

	"librarium/internal/config"
	"librarium/internal/database"
	"librarium/internal/database/authors"
	"librarium/internal/database/books"
	"librarium/internal/entities"
)

func main() {
	dbPath := flag.String("db", config.DefaultDatabasePath, "path to the sqlite database file")
	fresh := flag.Bool("fresh", false, "delete the database file first")
	flag.Parse()

	if *fresh {
		if err := os.Remove(*dbPath); err != nil && !os.IsNotExist(err) {
			log.Fatalf("Failed to remove existing database: %v", err)
		}
	}

	db, err := database.New(config.Database{Driver: config.DriverSQLite, Path: *dbPath})
	if err != nil {
		log.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	authorsRepo := authors.NewRepository(db.DB)
	booksRepo := books.NewRepository(db.DB)

	for _, seed := range catalog() {
		author := seed.author
		if err := authorsRepo.Create(&author); err != nil {
			log.Fatalf("Failed to save author %s: %v", author.Name, err)
		}

		for _, title := range seed.books {
			book := title
			book.AuthorID = author.ID
			if err := booksRepo.Create(&book); err != nil {
				log.Printf("Failed to save book %s: %v", book.Title, err)
				continue
			}
			log.Printf("Saved: %s by %s (%d copies)", book.Title, author.Name, book.CopiesTotal)
		}
	}

	log.Println("Catalog seeded successfully!")
}

type authorSeed struct {
	author entities.Author
	books  []entities.Book
}

func catalog() []authorSeed {
	return []authorSeed{
		{
			author: entities.Author{Name: "Jane Austen", Nationality: "British"},
			books: []entities.Book{
				{Title: "Pride and Prejudice", ISBN: "9780141439518", PublishedYear: 1813, CopiesTotal: 3},
				{Title: "Emma", ISBN: "9780141439587", PublishedYear: 1815, CopiesTotal: 2},
			},
		},
		{
			author: entities.Author{Name: "Mary Shelley", Nationality: "British"},
			books: []entities.Book{
				{Title: "Frankenstein", ISBN: "9780141439471", PublishedYear: 1818, CopiesTotal: 4},
			},
		},
		{
			author: entities.Author{Name: "Herman Melville", Nationality: "American"},
			books: []entities.Book{
				{Title: "Moby-Dick", ISBN: "9780142437247", PublishedYear: 1851, CopiesTotal: 2},
			},
		},
		{
			author: entities.Author{Name: "Fyodor Dostoevsky", Nationality: "Russian"},
			books: []entities.Book{
				{Title: "Crime and Punishment", ISBN: "9780140449136", PublishedYear: 1866, CopiesTotal: 3},
				{Title: "The Brothers Karamazov", ISBN: "9780374528379", PublishedYear: 1880, CopiesTotal: 1},
			},
		},
		{
			author: entities.Author{Name: "Jules Verne", Nationality: "French"},
			books: []entities.Book{
				{Title: "Twenty Thousand Leagues Under the Seas", ISBN: "9780140367225", PublishedYear: 1870, CopiesTotal: 2},
			},
		},
	}
}
