package models

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDatabase() {
	// Load .env for local runs. In production the file does not exist, the
	// error is expected and ignored.
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("FATAL ERROR: DATABASE_URL is not set.")
	}

	// TranslateError turns driver-specific duplicate-key failures into
	// gorm.ErrDuplicatedKey so handlers can map them to client errors.
	db, err := gorm.Open(mysql.Open(dbURL), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&Company{}, &Group{}, &Employee{}, &Face{}, &Attendance{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	log.Println("Database connection established.")
	DB = db
}
