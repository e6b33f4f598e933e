package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"hotel-reservation/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// SeedDatabase fills reference data so the core is runnable out of the box:
// a demo guest account, the hotel listing, the room-type catalog and a few
// physical rooms per type.
func SeedDatabase() {
	var userCount int64
	DB.Model(&models.User{}).Count(&userCount)
	if userCount == 0 {
		hash, err := bcrypt.GenerateFromPassword([]byte("guest123"), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("warning: failed to hash default user password: %v", err)
		} else {
			user := models.User{
				FullName: "Demo Guest",
				Email:    "guest@hotel.local",
				Password: string(hash),
				Phone:    "0900000000",
			}
			if err := DB.Create(&user).Error; err != nil {
				log.Printf("warning: failed to create default user: %v", err)
			} else {
				log.Println("Default user seeded")
			}
		}
	}

	var hotelCount int64
	DB.Model(&models.Hotel{}).Count(&hotelCount)
	if hotelCount == 0 {
		hotel := models.Hotel{
			Name:    "Horizon Hotel",
			Address: "88 Riverside Road",
			Phone:   "02-000-0000",
			Email:   "frontdesk@hotel.local",
		}
		if err := DB.Create(&hotel).Error; err != nil {
			log.Printf("warning: failed to seed hotel: %v", err)
		} else {
			log.Println("Hotel seeded")
		}
	}

	var rtCount int64
	DB.Model(&models.RoomType{}).Count(&rtCount)
	if rtCount == 0 {
		roomTypes := []models.RoomType{
			{TypeName: "Standard", Description: "Standard Room", MaxGuests: 2, BasePrice: 1200,
				Amenities: datatypes.JSON([]byte(`["wifi","tv"]`))},
			{TypeName: "Superior", Description: "Superior Room", MaxGuests: 3, BasePrice: 1800,
				Amenities: datatypes.JSON([]byte(`["wifi","tv","bathtub"]`))},
			{TypeName: "Deluxe", Description: "Deluxe Room", MaxGuests: 4, BasePrice: 2600,
				Amenities: datatypes.JSON([]byte(`["wifi","tv","bathtub","balcony"]`))},
		}
		if err := DB.Create(&roomTypes).Error; err != nil {
			log.Printf("warning: failed to seed room types: %v", err)
		} else {
			log.Println("RoomTypes seeded")
		}

		rooms := make([]models.Room, 0, len(roomTypes)*3)
		for i := range roomTypes {
			rt := roomTypes[i]
			for n := 1; n <= 3; n++ {
				rtID := rt.ID
				rooms = append(rooms, models.Room{
					RoomTypeID:   &rtID,
					RoomNumber:   fmt.Sprintf("%d0%d", i+1, n),
					Type:         rt.TypeName,
					Status:       models.RoomStatusAvailable,
					Floor:        fmt.Sprintf("%d", i+1),
					Price:        rt.BasePrice,
					MaxOccupancy: int(rt.MaxGuests),
				})
			}
		}
		if err := DB.Create(&rooms).Error; err != nil {
			log.Printf("warning: failed to seed rooms: %v", err)
		} else {
			log.Println("Rooms seeded")
		}
	}
}

func envOrDefault(key, def string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	return value
}

func mysqlDSNFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}

	user := u.User.Username()
	pass, _ := u.User.Password()
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "3306"
	}

	dbName := strings.TrimPrefix(u.Path, "/")
	if dbName == "" {
		return "", fmt.Errorf("mysql url missing database name")
	}

	q := u.Query()
	if q.Get("charset") == "" {
		q.Set("charset", "utf8mb4")
	}
	if q.Get("parseTime") == "" {
		q.Set("parseTime", "True")
	}
	if q.Get("loc") == "" {
		q.Set("loc", "Local")
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?%s", user, pass, host, port, dbName, q.Encode()), nil
}

func resolveMySQLDSN() (string, error) {
	raw := strings.TrimSpace(os.Getenv("MYSQL_URL"))
	if raw == "" {
		raw = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	}

	if raw != "" {
		if strings.HasPrefix(raw, "mysql://") {
			return mysqlDSNFromURL(raw)
		}
		return raw, nil
	}

	user := envOrDefault("DB_USER", "root")
	pass := envOrDefault("DB_PASS", "")
	host := envOrDefault("DB_HOST", "127.0.0.1")
	port := envOrDefault("DB_PORT", "3306")
	dbName := envOrDefault("DB_NAME", "hotel_db")

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		user, pass, host, port, dbName,
	), nil
}

func ConnectDatabase() error {
	dsn, err := resolveMySQLDSN()
	if err != nil {
		return err
	}

	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Warn,
			Colorful:      true,
		},
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: newLogger})
	if err != nil {
		return err
	}

	DB = db

	// AutoMigrate in parent->child order
	if err := DB.AutoMigrate(
		&models.User{},
		&models.Hotel{},
		&models.RoomType{},
		&models.Room{},
		&models.Reservation{},
	); err != nil {
		return err
	}

	SeedDatabase()
	return nil
}
