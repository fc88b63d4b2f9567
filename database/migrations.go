package database

import (
	"log"

	"prolific/models"

	"gorm.io/gorm"
)

// RunMigrations creates the user table, and the post table when posts are
// kept in SQL.
func RunMigrations(db *gorm.DB, withPosts bool) error {
	log.Println("Running database migrations...")

	tables := []interface{}{&models.User{}}
	if withPosts {
		tables = append(tables, &models.Post{})
	}

	if err := db.AutoMigrate(tables...); err != nil {
		log.Printf("Error running migrations: %v", err)
		return err
	}

	log.Println("Migrations completed successfully")
	return nil
}
