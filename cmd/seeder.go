package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	bookingDatamodel "github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal/core/datamodel/booking"
	contractDatamodel "github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal/core/datamodel/contract"
	rentalDatamodel "github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal/core/datamodel/rental"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		db, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: sqlDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to open gorm: %v", err)
		}

		if clearData {
			for _, table := range []string{"payments", "contracts", "rentals", "bookings", "staff"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		seedStaff(db, cfg.Security.BCryptCost)
		seedRentals(db)
	},
}

func seedStaff(db *gorm.DB, bcryptCost int) {
	password := "password"
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)

	staffEmail := "huy.staff@mail.com"
	var exists int
	row := db.Raw("SELECT 1 FROM staff WHERE email = ?", staffEmail).Row()
	if err := row.Scan(&exists); err == nil {
		fmt.Println("staff user already exists:", staffEmail)
		return
	}

	if err := db.Exec(
		"INSERT INTO staff (email, name, station_id, password_hash, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, true, now(), now())",
		staffEmail, "Huy Staff", "ST01", string(hash)).Error; err != nil {
		log.Fatalf("failed to insert staff user: %v", err)
	}
	fmt.Println("Seeded staff user:", staffEmail)
}

func seedRentals(db *gorm.DB) {
	now := time.Now()

	booking := &bookingDatamodel.Booking{
		Code:          "BK0001",
		CustomerName:  "Nguyen Van A",
		CustomerPhone: "0901234567",
		StationID:     "ST01",
		VehicleCode:   "EV0001",
		StartTime:     now.Add(-48 * time.Hour),
		EndTime:       now.Add(-2 * time.Hour),
		DepositAmount: 500000,
		Status:        bookingDatamodel.StatusPickedUp,
	}
	if err := db.Where("code = ?", booking.Code).FirstOrCreate(booking).Error; err != nil {
		log.Fatalf("failed to seed booking: %v", err)
	}

	rental := &rentalDatamodel.Rental{
		Code:        "RN0001",
		BookingCode: booking.Code,
		VehicleCode: booking.VehicleCode,
		StationID:   booking.StationID,
		StaffID:     "STF01",
		Status:      rentalDatamodel.StatusActive,
		ConditionBefore: &rentalDatamodel.ConditionSnapshot{
			Mileage:           12000,
			BatteryLevel:      100,
			ExteriorCondition: rentalDatamodel.GradeGood,
			InteriorCondition: rentalDatamodel.GradeGood,
		},
	}
	if err := db.Where("code = ?", rental.Code).FirstOrCreate(rental).Error; err != nil {
		log.Fatalf("failed to seed rental: %v", err)
	}

	signedAt := now.Add(-47 * time.Hour)
	contract := &contractDatamodel.Contract{
		Code:             "CT0001",
		RentalCode:       rental.Code,
		Status:           contractDatamodel.StatusSigned,
		StaffSignedAt:    &signedAt,
		CustomerSignedAt: &signedAt,
	}
	if err := db.Where("rental_code = ?", contract.RentalCode).FirstOrCreate(contract).Error; err != nil {
		log.Fatalf("failed to seed contract: %v", err)
	}

	fmt.Println("Seeded booking BK0001, rental RN0001 and signed contract CT0001")
}
