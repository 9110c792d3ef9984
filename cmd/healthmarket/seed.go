package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/zatekoja/healthmarket/internal/domain/entities"
	"github.com/zatekoja/healthmarket/internal/domain/repositories"
	"github.com/zatekoja/healthmarket/internal/infrastructure/observability"
	"github.com/zatekoja/healthmarket/pkg/config"
	apperrors "github.com/zatekoja/healthmarket/pkg/errors"
	"github.com/zatekoja/healthmarket/pkg/money"
	"github.com/zatekoja/healthmarket/pkg/utils"
)

func seedCmd() *cobra.Command {
	var ownerPhone string
	var ownerName string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the starter catalog and create the owner account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			observability.InitLogger(cfg.OTEL.ServiceName, cfg.Env)

			ctx := cmd.Context()
			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := seedCatalog(ctx, a); err != nil {
				return err
			}
			if ownerPhone != "" {
				if err := seedOwner(ctx, a.users, ownerName, ownerPhone); err != nil {
					return err
				}
			}
			if _, err := a.catalog.ReindexDoctors(ctx); err != nil {
				log.Warn().Err(err).Msg("doctor search index not refreshed")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&ownerPhone, "owner-phone", "", "mobile number of the owner account to create")
	cmd.Flags().StringVar(&ownerName, "owner-name", "Owner", "first name of the owner account")
	return cmd
}

var seedDoctors = []entities.Doctor{
	{Name: "Dr. Meera Iyer", Specialty: "Cardiology", Location: "Chennai", AvailableTime: "10:00 AM - 1:00 PM", Experience: 15},
	{Name: "Dr. Rohan Kapoor", Specialty: "Dermatology", Location: "Delhi", AvailableTime: "11:00 AM - 3:00 PM", Experience: 8},
	{Name: "Dr. Arjun Nair", Specialty: "Orthopedics", Location: "Kochi", AvailableTime: "2:00 PM - 5:00 PM", Experience: 12},
	{Name: "Dr. Sneha Kulkarni", Specialty: "Pediatrics", Location: "Pune", AvailableTime: "9:00 AM - 12:00 PM", Experience: 10},
	{Name: "Dr. Vikram Rao", Specialty: "Neurology", Location: "Bengaluru", AvailableTime: "4:00 PM - 7:00 PM", Experience: 18},
	{Name: "Dr. Fatima Sheikh", Specialty: "ENT", Location: "Hyderabad", AvailableTime: "10:00 AM - 2:00 PM", Experience: 7},
	{Name: "Dr. Priya Menon", Specialty: "Gynecology", Location: "Mumbai", AvailableTime: "12:00 PM - 4:00 PM", Experience: 14},
	{Name: "Dr. Anil Gupta", Specialty: "Gastroenterology", Location: "Jaipur", AvailableTime: "5:00 PM - 8:00 PM", Experience: 11},
	{Name: "Dr. Kavita Joshi", Specialty: "General Physician", Location: "Ahmedabad", AvailableTime: "9:00 AM - 1:00 PM", Experience: 20},
}

var seedMedicines = []struct {
	name, price, mrp, category, description string
}{
	{"Paracetamol 500mg", "25.50", "30.00", "Fever & Pain", "Strip of 15 tablets"},
	{"Cetirizine 10mg", "22.00", "25.00", "Allergy", "Strip of 10 tablets"},
	{"Pantoprazole 40mg", "89.00", "110.00", "Digestive Care", "Strip of 15 tablets"},
	{"Vitamin D3 60000 IU", "120.00", "145.00", "Vitamins", "Pack of 4 capsules"},
	{"ORS Orange Sachet", "20.00", "22.00", "Hydration", "21 g sachet"},
	{"Azithromycin 500mg", "118.00", "132.00", "Antibiotics", "Strip of 3 tablets"},
	{"Digital Thermometer", "199.00", "299.00", "Devices", "Flexible tip, 60 second reading"},
}

var seedLabTests = []struct {
	name, price, mrp, preparations string
	includes                       []string
}{
	{"Complete Blood Count", "499", "799", "No fasting required", []string{"Haemoglobin", "RBC count", "WBC count", "Platelet count"}},
	{"Lipid Profile", "699", "999", "10-12 hours fasting", []string{"Total cholesterol", "HDL", "LDL", "Triglycerides"}},
	{"Thyroid Profile", "549", "850", "No fasting required", []string{"T3", "T4", "TSH"}},
	{"HbA1c", "449", "650", "No fasting required", []string{"Glycated haemoglobin", "Average blood glucose"}},
	{"Vitamin B12", "899", "1200", "No fasting required", []string{"Cyanocobalamin"}},
}

// seedCatalog fills each empty catalog; catalogs that already have rows are
// left alone so the command can be re-run
func seedCatalog(ctx context.Context, a *app) error {
	doctors, err := a.doctors.List(ctx, repositories.DoctorFilter{})
	if err != nil {
		return err
	}
	if len(doctors) == 0 {
		for i := range seedDoctors {
			doctor := seedDoctors[i]
			if err := a.catalog.CreateDoctor(ctx, &doctor); err != nil {
				return fmt.Errorf("seed doctor %s: %w", doctor.Name, err)
			}
		}
		log.Info().Int("count", len(seedDoctors)).Msg("seeded doctors")
	}

	medicines, err := a.medicines.List(ctx, repositories.MedicineFilter{})
	if err != nil {
		return err
	}
	if len(medicines) == 0 {
		for _, m := range seedMedicines {
			medicine := &entities.Medicine{
				Name:        m.name,
				Price:       money.MustParse(m.price),
				MRP:         money.MustParse(m.mrp),
				Category:    m.category,
				Description: m.description,
			}
			if err := a.catalog.CreateMedicine(ctx, medicine); err != nil {
				return fmt.Errorf("seed medicine %s: %w", m.name, err)
			}
		}
		log.Info().Int("count", len(seedMedicines)).Msg("seeded medicines")
	}

	tests, err := a.labTests.List(ctx, repositories.LabTestFilter{})
	if err != nil {
		return err
	}
	if len(tests) == 0 {
		for _, lt := range seedLabTests {
			test := &entities.LabTest{
				Name:         lt.name,
				Price:        money.MustParse(lt.price),
				MRP:          money.MustParse(lt.mrp),
				Preparations: lt.preparations,
				Includes:     lt.includes,
			}
			if err := a.catalog.CreateLabTest(ctx, test); err != nil {
				return fmt.Errorf("seed lab test %s: %w", lt.name, err)
			}
		}
		log.Info().Int("count", len(seedLabTests)).Msg("seeded lab tests")
	}
	return nil
}

// seedOwner creates the owner account, or promotes an existing user
func seedOwner(ctx context.Context, users repositories.UserRepository, name, phone string) error {
	if !utils.IsValidPhone(phone) {
		return fmt.Errorf("owner phone %q is not a valid mobile number", phone)
	}
	phone = utils.NormalizePhone(phone)

	user, err := users.GetByPhone(ctx, phone)
	switch {
	case err == nil:
		if user.Role == entities.RoleOwner {
			return nil
		}
		user.Role = entities.RoleOwner
		if err := users.Update(ctx, user); err != nil {
			return err
		}
	case apperrors.IsNotFound(err):
		user = &entities.User{FirstName: name, Phone: phone, Role: entities.RoleOwner}
		if err := users.Create(ctx, user); err != nil {
			return err
		}
	default:
		return err
	}

	log.Info().Int64("user_id", user.ID).Str("phone", phone).Msg("owner account ready")
	return nil
}
