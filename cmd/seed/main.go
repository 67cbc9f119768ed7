package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"apptbook/internal/auth"
	"apptbook/internal/config"
	"apptbook/internal/db"
	"apptbook/internal/errors"
	"apptbook/internal/model"
	"apptbook/internal/repository"
	"apptbook/internal/service"
)

const (
	demoUsername = "demo"
	demoPassword = "demo1234"
)

func main() {
	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(&model.User{}, &model.Appointment{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	userRepo := repository.NewUserRepository(gormDB)
	appointmentRepo := repository.NewAppointmentRepository(gormDB)
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	authService := service.NewAuthService(userRepo, jwtService)
	appointmentService := service.NewAppointmentService(appointmentRepo, nil)

	ctx := context.Background()

	user, err := authService.Register(ctx, demoUsername, demoPassword)
	if err == errors.ErrUsernameTaken {
		log.Printf("Demo user %q already exists, reusing it", demoUsername)
		user, err = userRepo.FindByUsername(ctx, demoUsername)
	}
	if err != nil {
		log.Fatalf("Failed to seed demo user: %v", err)
	}

	// a few bookings spread over the coming days
	tomorrow := time.Now().Add(24 * time.Hour).Truncate(time.Hour)
	seedAppointments := []struct {
		personName string
		title      string
		at         time.Time
	}{
		{"Dr. Adams", "Dental checkup", tomorrow.Add(10 * time.Hour)},
		{"Sam Field", "Project kickoff", tomorrow.Add(38 * time.Hour)},
		{"Dr. Adams", "Follow-up visit", tomorrow.Add(58 * time.Hour)},
	}

	created := 0
	for _, sa := range seedAppointments {
		if _, err := appointmentService.Create(ctx, user.ID, sa.personName, sa.title, sa.at); err != nil {
			if err == errors.ErrTimeSlotTaken {
				log.Printf("Slot %s already seeded, skipping", sa.at)
				continue
			}
			log.Fatalf("Failed to seed appointment: %v", err)
		}
		created++
	}

	fmt.Printf("Seed complete: user %q with %d new appointment(s)\n", user.Username, created)
}
